package evaluators

import (
	"context"
	"fmt"
	"strings"

	"github.com/longregen/promptune/internal/adapters/llmopt"
	"github.com/longregen/promptune/internal/ports"
)

// ExactMatch scores a batch as the fraction of outputs whose final stage
// text matches its expected target exactly, ignoring case and leading or
// trailing whitespace.
type ExactMatch struct{}

var _ ports.Evaluator = ExactMatch{}

// Evaluate implements ports.Evaluator.
func (ExactMatch) Evaluate(ctx context.Context, outputs []any) (float64, error) {
	if len(outputs) == 0 {
		return 0, nil
	}

	matches := 0
	for i, o := range outputs {
		out, ok := o.(llmopt.PipelineOutput)
		if !ok {
			return 0, fmt.Errorf("outputs[%d]: expected llmopt.PipelineOutput, got %T", i, o)
		}
		if normalizeText(out.Final) == normalizeText(out.Expected) {
			matches++
		}
	}
	return float64(matches) / float64(len(outputs)), nil
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
