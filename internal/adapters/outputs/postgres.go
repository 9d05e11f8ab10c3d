package outputs

import (
	"context"

	"github.com/longregen/promptune/internal/ports"
)

// PostgresOutputter implements ports.Outputter by stashing the final
// PromptSet into one OptimizationRun's Meta field, so "promptune optimize show --json"
// can display the winning prompts alongside the run's score history without
// a separate table.
type PostgresOutputter struct {
	repo  ports.OptimizationRunRepository
	runID string
}

var _ ports.Outputter = (*PostgresOutputter)(nil)

func NewPostgresOutputter(repo ports.OptimizationRunRepository, runID string) *PostgresOutputter {
	return &PostgresOutputter{repo: repo, runID: runID}
}

func (o *PostgresOutputter) Output(ctx context.Context, prompts ports.PromptSet) error {
	run, err := o.repo.GetRun(ctx, o.runID)
	if err != nil {
		return err
	}

	serialized := make(map[string]any, len(prompts))
	for stage, prompt := range prompts {
		demos := make([]map[string]string, 0, len(prompt.Examples))
		for _, d := range prompt.Examples {
			demos = append(demos, map[string]string{"input": d.Input, "output": d.Output})
		}
		serialized[stage] = map[string]any{
			"instruction":    prompt.Instruction.Text,
			"demonstrations": demos,
		}
	}

	if run.Meta == nil {
		run.Meta = make(map[string]any)
	}
	run.Meta["final_prompts"] = serialized

	return o.repo.UpdateRun(ctx, run)
}
