package llmopt

import (
	"context"
	"fmt"

	"github.com/XiaoConstantine/dspy-go/pkg/core"

	"github.com/longregen/promptune/internal/ports"
)

// ClientAdapter adapts a ports.LLMService to dspy-go's core.LLM interface,
// so dspy-go's signature and module machinery can target whichever backend
// ports.LLMService is configured with.
type ClientAdapter struct {
	service ports.LLMService
}

// NewLLMServiceAdapter wraps service as a dspy-go core.LLM.
func NewLLMServiceAdapter(service ports.LLMService) *ClientAdapter {
	return &ClientAdapter{service: service}
}

var _ core.LLM = (*ClientAdapter)(nil)

// Generate implements the dspy-go LLM interface with a single-turn user
// message; this is the only method the optimizer's Proposer and Runner
// adapters actually call.
func (a *ClientAdapter) Generate(ctx context.Context, prompt string, opts ...core.GenerateOption) (*core.LLMResponse, error) {
	messages := []ports.LLMMessage{
		{Role: "user", Content: prompt},
	}

	resp, err := a.service.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("llm service chat failed: %w", err)
	}

	return &core.LLMResponse{
		Content: resp.Content,
	}, nil
}

// GenerateWithJSON is not used by the optimizer; nothing in this pipeline
// requires schema-validated structured output.
func (a *ClientAdapter) GenerateWithJSON(ctx context.Context, prompt string, opts ...core.GenerateOption) (map[string]interface{}, error) {
	return nil, fmt.Errorf("GenerateWithJSON not implemented: not used by the prompt optimizer")
}

// GenerateWithFunctions is not used by the optimizer; stage instructions
// are plain text, never tool calls.
func (a *ClientAdapter) GenerateWithFunctions(ctx context.Context, prompt string, functions []map[string]interface{}, opts ...core.GenerateOption) (map[string]interface{}, error) {
	return nil, fmt.Errorf("GenerateWithFunctions not implemented: not used by the prompt optimizer")
}

// CreateEmbedding is not used by ClientAdapter; the semantic-similarity
// Evaluator embeds text directly through ports.EmbeddingService instead.
func (a *ClientAdapter) CreateEmbedding(ctx context.Context, input string, opts ...core.EmbeddingOption) (*core.EmbeddingResult, error) {
	return nil, fmt.Errorf("CreateEmbedding not implemented: use ports.EmbeddingService")
}

// CreateEmbeddings is not used by ClientAdapter; see CreateEmbedding.
func (a *ClientAdapter) CreateEmbeddings(ctx context.Context, inputs []string, opts ...core.EmbeddingOption) (*core.BatchEmbeddingResult, error) {
	return nil, fmt.Errorf("CreateEmbeddings not implemented: use ports.EmbeddingService")
}

// StreamGenerate is not used by the optimizer, which runs stages in batch,
// not interactively.
func (a *ClientAdapter) StreamGenerate(ctx context.Context, prompt string, opts ...core.GenerateOption) (*core.StreamResponse, error) {
	return nil, fmt.Errorf("StreamGenerate not implemented: use ports.LLMService.ChatStream directly")
}

// GenerateWithContent is not used by the optimizer, which optimizes
// text-only prompts.
func (a *ClientAdapter) GenerateWithContent(ctx context.Context, content []core.ContentBlock, opts ...core.GenerateOption) (*core.LLMResponse, error) {
	return nil, fmt.Errorf("GenerateWithContent not implemented: the prompt optimizer is text-only")
}

// StreamGenerateWithContent is not used by the optimizer; see GenerateWithContent.
func (a *ClientAdapter) StreamGenerateWithContent(ctx context.Context, content []core.ContentBlock, opts ...core.GenerateOption) (*core.StreamResponse, error) {
	return nil, fmt.Errorf("StreamGenerateWithContent not implemented: the prompt optimizer is text-only")
}

// ProviderName returns the provider name dspy-go surfaces in logs/traces.
func (a *ClientAdapter) ProviderName() string {
	return "promptune"
}

// ModelID returns the model identifier dspy-go surfaces in logs/traces.
func (a *ClientAdapter) ModelID() string {
	return "promptune-llm-service"
}

// Capabilities reports what this adapter actually supports.
func (a *ClientAdapter) Capabilities() []core.Capability {
	return []core.Capability{core.CapabilityChat, core.CapabilityCompletion}
}
