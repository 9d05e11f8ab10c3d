package optimizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/longregen/promptune/internal/ports"
)

// maxDataSummaryExamples bounds the preview handed to the Proposer in
// ProposerContext.DataSummary.
const maxDataSummaryExamples = 3

// assembler forms the next candidate PromptSet from the current best plus a
// freshly proposed Prompt for one target stage.
type assembler struct {
	proposer ports.Proposer
	stages   []string
	dataset  []ports.Example
	initial  ports.PromptSet
	hist     *history
}

func newAssembler(proposer ports.Proposer, stages []string, dataset []ports.Example, initial ports.PromptSet, hist *history) *assembler {
	return &assembler{proposer: proposer, stages: stages, dataset: dataset, initial: initial, hist: hist}
}

// assemble builds the ProposerContext for stage, invokes the Proposer, and
// returns a fresh PromptSet equal to best except for stage's entry. best is
// never mutated.
func (a *assembler) assemble(ctx context.Context, stage string, best ports.PromptSet) (ports.PromptSet, error) {
	pc := ports.ProposerContext{
		StageName:      stage,
		DataSummary:    a.dataSummary(),
		ProgramSummary: a.programSummary(),
		PastAttempts:   a.hist.attemptsFor(stage),
		InitialPrompts: a.initial,
	}

	newPrompt, err := a.proposer.Propose(ctx, pc)
	if err != nil {
		return nil, newCollaboratorError("proposer", err)
	}

	candidate := make(ports.PromptSet, len(best))
	for k, v := range best {
		candidate[k] = v
	}
	candidate[stage] = newPrompt
	return candidate, nil
}

func (a *assembler) dataSummary() string {
	n := len(a.dataset)
	if n > maxDataSummaryExamples {
		n = maxDataSummaryExamples
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ex := a.dataset[i]
		parts = append(parts, fmt.Sprintf("%d: input=%q target=%q", i, ex.InputText, ex.Target))
	}
	return strings.Join(parts, "; ")
}

func (a *assembler) programSummary() string {
	return "Program stages: " + strings.Join(a.stages, ", ")
}
