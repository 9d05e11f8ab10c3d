package evaluators

import (
	"context"
	"fmt"
	"math"

	"github.com/longregen/promptune/internal/adapters/llmopt"
	"github.com/longregen/promptune/internal/ports"
)

// SemanticSimilarity scores a batch by averaging the cosine similarity
// between each output's embedding and its expected target's embedding.
type SemanticSimilarity struct {
	embed ports.EmbeddingService
}

// NewSemanticSimilarity builds a SemanticSimilarity backed by embed.
func NewSemanticSimilarity(embed ports.EmbeddingService) *SemanticSimilarity {
	return &SemanticSimilarity{embed: embed}
}

var _ ports.Evaluator = (*SemanticSimilarity)(nil)

// Evaluate implements ports.Evaluator.
func (s *SemanticSimilarity) Evaluate(ctx context.Context, outputs []any) (float64, error) {
	if len(outputs) == 0 {
		return 0, nil
	}

	pairs := make([]llmopt.PipelineOutput, 0, len(outputs))
	texts := make([]string, 0, len(outputs)*2)
	for i, o := range outputs {
		out, ok := o.(llmopt.PipelineOutput)
		if !ok {
			return 0, fmt.Errorf("outputs[%d]: expected llmopt.PipelineOutput, got %T", i, o)
		}
		pairs = append(pairs, out)
		texts = append(texts, out.Final, out.Expected)
	}

	embeddings, err := s.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding batch: %w", err)
	}
	if len(embeddings) != len(texts) {
		return 0, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}

	var total float64
	for i := range pairs {
		total += float64(cosineSimilarity(embeddings[2*i].Embedding, embeddings[2*i+1].Embedding))
	}
	return total / float64(len(pairs)), nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
}
