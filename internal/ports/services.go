package ports

import "context"

// LLMMessage represents a message in the LLM conversation context
type LLMMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMResponse represents a response from the LLM
type LLMResponse struct {
	Content   string `json:"content,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// LLMStreamChunk represents a streaming chunk from the LLM
type LLMStreamChunk struct {
	Content   string `json:"content,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Done      bool   `json:"done"`
	Error     error  `json:"error,omitempty"`
}

// LLMService defines the interface for LLM interactions. The Proposer and
// LLM-judge Evaluator adapters (internal/adapters/llmopt, internal/adapters/evaluators)
// both depend on this rather than on internal/llm.Service directly, so either
// can be exercised against a fake in tests without a real backend.
type LLMService interface {
	Chat(ctx context.Context, messages []LLMMessage) (*LLMResponse, error)
	ChatStream(ctx context.Context, messages []LLMMessage) (<-chan LLMStreamChunk, error)
}

// EmbeddingResult represents the result of embedding generation
type EmbeddingResult struct {
	Embedding  []float32 `json:"embedding"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
}

// EmbeddingService defines the interface for generating embeddings, used by
// the semantic-similarity Evaluator to score candidate outputs against
// reference targets with cosine similarity (internal/adapters/evaluators).
type EmbeddingService interface {
	Embed(ctx context.Context, text string) (*EmbeddingResult, error)
	EmbedBatch(ctx context.Context, texts []string) ([]*EmbeddingResult, error)
	GetDimensions() int
}
