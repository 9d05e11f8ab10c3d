package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/longregen/promptune/internal/ports"
)

// EmbeddingCacheRepository decorates a ports.EmbeddingService with a
// Postgres+pgvector cache, keyed by a hash of the input text, so the
// semantic-similarity Evaluator does not re-embed the same Runner output or
// training target on every trial. Modeled on memory_repository.go's
// pgvector.Vector column handling, generalized from memory search to a
// straight cache lookup.
type EmbeddingCacheRepository struct {
	BaseRepository
	inner ports.EmbeddingService
}

var _ ports.EmbeddingService = (*EmbeddingCacheRepository)(nil)

// NewEmbeddingCacheRepository wraps inner with a Postgres-backed cache.
func NewEmbeddingCacheRepository(pool *pgxpool.Pool, inner ports.EmbeddingService) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{
		BaseRepository: NewBaseRepository(pool),
		inner:          inner,
	}
}

func (r *EmbeddingCacheRepository) GetDimensions() int {
	return r.inner.GetDimensions()
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed returns the cached embedding for text if one exists, otherwise
// embeds through inner and stores the result before returning it.
func (r *EmbeddingCacheRepository) Embed(ctx context.Context, text string) (*ports.EmbeddingResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	hash := hashText(text)

	var vec pgvector.Vector
	var model string
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT embedding, model FROM embedding_cache WHERE text_hash = $1`, hash)
	if err := row.Scan(&vec, &model); err == nil {
		values := vec.Slice()
		return &ports.EmbeddingResult{
			Embedding:  values,
			Model:      model,
			Dimensions: len(values),
		}, nil
	}

	result, err := r.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	_, err = r.conn(ctx).Exec(ctx,
		`INSERT INTO embedding_cache (text_hash, text, embedding, model, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (text_hash) DO NOTHING`,
		hash, text, pgvector.NewVector(result.Embedding), result.Model)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// EmbedBatch embeds each text individually through Embed so cache hits and
// misses can be mixed within a single batch.
func (r *EmbeddingCacheRepository) EmbedBatch(ctx context.Context, texts []string) ([]*ports.EmbeddingResult, error) {
	results := make([]*ports.EmbeddingResult, len(texts))
	for i, text := range texts {
		result, err := r.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}
