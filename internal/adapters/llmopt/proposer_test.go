package llmopt

import (
	"context"
	"testing"

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

func TestLLMProposer_Propose_NoPastAttempts(t *testing.T) {
	proposer := NewLLMProposer(&fakeLLMService{response: "should not be used"})

	initial := ports.Prompt{Instruction: ports.Instruction{Text: "answer concisely"}}
	pc := ports.ProposerContext{
		StageName:      "answer",
		InitialPrompts: ports.PromptSet{"answer": initial},
	}

	got, err := proposer.Propose(context.Background(), pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Instruction.Text != initial.Instruction.Text {
		t.Errorf("Propose() = %q, want the initial prompt verbatim %q", got.Instruction.Text, initial.Instruction.Text)
	}
}

func TestLLMProposer_Propose_MissingInitial(t *testing.T) {
	proposer := NewLLMProposer(&fakeLLMService{})
	_, err := proposer.Propose(context.Background(), ports.ProposerContext{StageName: "answer"})
	if err == nil {
		t.Error("expected an error when no initial prompt is registered for the stage")
	}
}

func TestLLMProposer_Propose_WithPastAttempts(t *testing.T) {
	proposer := NewLLMProposer(&fakeLLMService{response: "  be more concise  "})

	pc := ports.ProposerContext{
		StageName: "answer",
		PastAttempts: []ports.Attempt{
			{Prompt: ports.Prompt{Instruction: ports.Instruction{Text: "answer"}}, Score: 0.3},
			{Prompt: ports.Prompt{Instruction: ports.Instruction{Text: "answer thoroughly"}}, Score: 0.7},
		},
	}

	got, err := proposer.Propose(context.Background(), pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Instruction.Text != "be more concise" {
		t.Errorf("Propose() instruction = %q, want trimmed llm output", got.Instruction.Text)
	}
}

func TestBestAttempt(t *testing.T) {
	attempts := []ports.Attempt{
		{Score: 0.2},
		{Score: 0.9},
		{Score: 0.5},
	}
	if got := bestAttempt(attempts); got.Score != 0.9 {
		t.Errorf("bestAttempt() score = %v, want 0.9", got.Score)
	}
}
