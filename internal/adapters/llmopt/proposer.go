package llmopt

import (
	"context"
	"fmt"
	"strings"

	"github.com/longregen/promptune/internal/ports"
)

// proposalSignature documents the shape of one instruction-drafting call.
var proposalSignature = MustParseSignature(
	"stage_name, data_summary, program_summary, past_attempts -> instruction",
)

// LLMProposer drafts an improved Instruction for one stage, using that
// stage's past (prompt, score) attempts as in-context feedback. On the
// first call for a stage, when PastAttempts is empty, it returns the
// caller-supplied initial prompt verbatim rather than asking the LLM to
// invent one from nothing.
type LLMProposer struct {
	llm *ClientAdapter
}

// NewLLMProposer wraps service as the backend an LLMProposer drafts with.
func NewLLMProposer(service ports.LLMService) *LLMProposer {
	return &LLMProposer{llm: NewLLMServiceAdapter(service)}
}

var _ ports.Proposer = (*LLMProposer)(nil)

// Propose implements ports.Proposer.
func (p *LLMProposer) Propose(ctx context.Context, pc ports.ProposerContext) (ports.Prompt, error) {
	if len(pc.PastAttempts) == 0 {
		initial, ok := pc.InitialPrompts[pc.StageName]
		if !ok {
			return ports.Prompt{}, fmt.Errorf("no initial prompt for stage %q", pc.StageName)
		}
		return initial, nil
	}

	resp, err := p.llm.Generate(ctx, renderProposalPrompt(pc))
	if err != nil {
		return ports.Prompt{}, fmt.Errorf("proposing instruction for stage %q: %w", pc.StageName, err)
	}

	instruction := strings.TrimSpace(resp.Content)
	if instruction == "" {
		return ports.Prompt{}, fmt.Errorf("proposing instruction for stage %q: llm returned an empty instruction", pc.StageName)
	}

	return ports.Prompt{
		Instruction: ports.Instruction{Text: instruction},
		Examples:    bestAttempt(pc.PastAttempts).Prompt.Examples,
	}, nil
}

func renderProposalPrompt(pc ports.ProposerContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are refining the %q stage of a multi-stage LLM pipeline (signature %s).\n\n", pc.StageName, proposalSignature.Name)
	if pc.ProgramSummary != "" {
		fmt.Fprintf(&sb, "Pipeline summary: %s\n", pc.ProgramSummary)
	}
	if pc.DataSummary != "" {
		fmt.Fprintf(&sb, "Training data summary: %s\n", pc.DataSummary)
	}
	sb.WriteString("\nPast attempts for this stage, in the order they were tried:\n")
	for _, attempt := range pc.PastAttempts {
		fmt.Fprintf(&sb, "- score %.3f: %q\n", attempt.Score, attempt.Prompt.Instruction.Text)
	}
	sb.WriteString("\nWrite a single improved instruction for this stage that keeps what worked in the higher-scoring attempts and fixes what didn't in the lower-scoring ones. Reply with only the instruction text.\n")
	return sb.String()
}

func bestAttempt(attempts []ports.Attempt) ports.Attempt {
	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.Score > best.Score {
			best = a
		}
	}
	return best
}
