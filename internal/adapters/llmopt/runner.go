package llmopt

import (
	"context"
	"fmt"
	"strings"

	"github.com/longregen/promptune/internal/ports"
)

// PipelineOutput is the value PipelineRunner.Run returns as ports.Runner's
// opaque any result. It carries every intermediate stage's text alongside
// the final one, plus the example's expected target, so an Evaluator can
// score the pipeline's behavior without needing its own copy of the
// dataset.
type PipelineOutput struct {
	Stages   map[string]string
	Final    string
	Expected string
}

// PipelineRunner executes a fixed, ordered sequence of stages against one
// Example: each stage's Instruction, plus any few-shot Demonstrations, is
// rendered into a single LLM call, and the stage's output becomes the
// next stage's input. The first stage receives Example.InputText.
type PipelineRunner struct {
	llm    *ClientAdapter
	stages []string
}

// NewPipelineRunner wraps service and fixes the stage execution order.
func NewPipelineRunner(service ports.LLMService, stages []string) *PipelineRunner {
	return &PipelineRunner{llm: NewLLMServiceAdapter(service), stages: stages}
}

var _ ports.Runner = (*PipelineRunner)(nil)

// Run implements ports.Runner.
func (r *PipelineRunner) Run(ctx context.Context, item ports.Example, prompts ports.PromptSet) (any, error) {
	out := PipelineOutput{
		Stages:   make(map[string]string, len(r.stages)),
		Expected: item.Target,
	}
	current := item.InputText

	for _, stage := range r.stages {
		prompt, ok := prompts[stage]
		if !ok {
			return nil, fmt.Errorf("prompt set missing stage %q", stage)
		}

		resp, err := r.llm.Generate(ctx, renderStagePrompt(prompt, current))
		if err != nil {
			return nil, fmt.Errorf("running stage %q: %w", stage, err)
		}

		current = strings.TrimSpace(resp.Content)
		out.Stages[stage] = current
	}

	out.Final = current
	return out, nil
}

// renderStagePrompt builds the literal LLM call text for one stage: its
// instruction, any few-shot demonstrations, then the current input.
func renderStagePrompt(prompt ports.Prompt, input string) string {
	var sb strings.Builder
	sb.WriteString(prompt.Instruction.Text)
	sb.WriteString("\n\n")
	for _, demo := range prompt.Examples {
		fmt.Fprintf(&sb, "Input: %s\nOutput: %s\n\n", demo.Input, demo.Output)
	}
	fmt.Fprintf(&sb, "Input: %s\nOutput:", input)
	return sb.String()
}
