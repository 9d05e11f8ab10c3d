package evaluators

import (
	"context"
	"fmt"
	"strings"

	"github.com/longregen/promptune/internal/adapters/llmopt"
	"github.com/longregen/promptune/internal/ports"
)

// LLMJudge scores a batch by asking an LLM to rate each output against its
// expected target on a 0.0-1.0 scale against the given criteria, then
// averaging.
type LLMJudge struct {
	llm      ports.LLMService
	criteria string
}

// NewLLMJudge builds an LLMJudge that grades outputs against criteria
// (e.g. "helpfulness, accuracy") using llm.
func NewLLMJudge(llm ports.LLMService, criteria string) *LLMJudge {
	return &LLMJudge{llm: llm, criteria: criteria}
}

var _ ports.Evaluator = (*LLMJudge)(nil)

// Evaluate implements ports.Evaluator.
func (j *LLMJudge) Evaluate(ctx context.Context, outputs []any) (float64, error) {
	if len(outputs) == 0 {
		return 0, nil
	}

	var total float64
	for i, o := range outputs {
		out, ok := o.(llmopt.PipelineOutput)
		if !ok {
			return 0, fmt.Errorf("outputs[%d]: expected llmopt.PipelineOutput, got %T", i, o)
		}
		score, err := j.judgeOne(ctx, out)
		if err != nil {
			return 0, fmt.Errorf("judging outputs[%d]: %w", i, err)
		}
		total += score
	}
	return total / float64(len(outputs)), nil
}

func (j *LLMJudge) judgeOne(ctx context.Context, out llmopt.PipelineOutput) (float64, error) {
	prompt := fmt.Sprintf(`Evaluate this response based on: %s

Expected: %s
Actual: %s

Provide a score from 0.0 to 1.0 and explain your reasoning.
Format:
REASONING: ...
SCORE: X.X`, j.criteria, out.Expected, out.Final)

	resp, err := j.llm.Chat(ctx, []ports.LLMMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return 0, err
	}

	return parseJudgeScore(resp.Content), nil
}

func parseJudgeScore(content string) float64 {
	var score float64
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "SCORE:") {
			fmt.Sscanf(strings.TrimSpace(strings.TrimPrefix(line, "SCORE:")), "%f", &score)
		}
	}
	return score
}
