package evaluators

import (
	"context"
	"testing"

	"github.com/longregen/promptune/internal/adapters/llmopt"
	"github.com/longregen/promptune/internal/ports"
)

type fakeLLMService struct {
	response string
	err      error
}

func (f *fakeLLMService) Chat(ctx context.Context, messages []ports.LLMMessage) (*ports.LLMResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ports.LLMResponse{Content: f.response}, nil
}

func (f *fakeLLMService) ChatStream(ctx context.Context, messages []ports.LLMMessage) (<-chan ports.LLMStreamChunk, error) {
	ch := make(chan ports.LLMStreamChunk)
	close(ch)
	return ch, nil
}

func TestLLMJudge_Evaluate(t *testing.T) {
	llm := &fakeLLMService{response: "REASONING: close enough\nSCORE: 0.8"}
	judge := NewLLMJudge(llm, "helpfulness")

	score, err := judge.Evaluate(context.Background(), []any{
		llmopt.PipelineOutput{Final: "Paris is the capital", Expected: "Paris"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0.8 {
		t.Errorf("Evaluate() = %v, want 0.8", score)
	}
}

func TestLLMJudge_Evaluate_Empty(t *testing.T) {
	judge := NewLLMJudge(&fakeLLMService{}, "helpfulness")
	score, err := judge.Evaluate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Errorf("Evaluate() = %v, want 0", score)
	}
}

func TestParseJudgeScore(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected float64
	}{
		{"well formed", "REASONING: good\nSCORE: 0.9", 0.9},
		{"no score line", "REASONING: good", 0},
		{"score with extra whitespace", "SCORE:   0.5  ", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseJudgeScore(tt.content); got != tt.expected {
				t.Errorf("parseJudgeScore(%q) = %v, want %v", tt.content, got, tt.expected)
			}
		})
	}
}
