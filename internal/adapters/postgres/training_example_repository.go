package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/promptune/internal/domain"
	"github.com/longregen/promptune/internal/domain/models"
	"github.com/longregen/promptune/internal/ports"
)

// TrainingExampleRepository implements ports.TrainingExampleRepository,
// persisting the rows a Postgres-backed DataLoader reads into a run's
// dataset (internal/adapters/loaders).
type TrainingExampleRepository struct {
	BaseRepository
	idGenerator ports.IDGenerator
}

// NewTrainingExampleRepository creates a new training example repository
func NewTrainingExampleRepository(pool *pgxpool.Pool, idGenerator ports.IDGenerator) *TrainingExampleRepository {
	return &TrainingExampleRepository{
		BaseRepository: NewBaseRepository(pool),
		idGenerator:    idGenerator,
	}
}

// Create inserts a new training example
func (r *TrainingExampleRepository) Create(ctx context.Context, example *models.TrainingExample) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO training_examples (
			id, dataset, input_text, target, source, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	_, err := r.conn(ctx).Exec(ctx, query,
		example.ID,
		example.Dataset,
		example.InputText,
		example.Target,
		example.Source,
		example.CreatedAt,
	)

	return err
}

// Get retrieves a training example by ID
func (r *TrainingExampleRepository) Get(ctx context.Context, id string) (*models.TrainingExample, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, dataset, input_text, target, source, created_at, deleted_at
		FROM training_examples
		WHERE id = $1 AND deleted_at IS NULL`

	return r.scanExample(r.conn(ctx).QueryRow(ctx, query, id))
}

// ListByDataset retrieves every non-deleted example belonging to a dataset,
// in insertion order — the order a DataLoader hands to the candidate
// assembler and batch sampler.
func (r *TrainingExampleRepository) ListByDataset(ctx context.Context, dataset string) ([]*models.TrainingExample, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, dataset, input_text, target, source, created_at, deleted_at
		FROM training_examples
		WHERE dataset = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	rows, err := r.conn(ctx).Query(ctx, query, dataset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	examples := make([]*models.TrainingExample, 0)
	for rows.Next() {
		var example models.TrainingExample
		if err := rows.Scan(
			&example.ID,
			&example.Dataset,
			&example.InputText,
			&example.Target,
			&example.Source,
			&example.CreatedAt,
			&example.DeletedAt,
		); err != nil {
			return nil, err
		}
		examples = append(examples, &example)
	}
	return examples, rows.Err()
}

// Delete soft-deletes a training example by ID
func (r *TrainingExampleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE training_examples
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.conn(ctx).Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrExampleNotFound
	}

	return nil
}

func (r *TrainingExampleRepository) scanExample(row pgx.Row) (*models.TrainingExample, error) {
	var example models.TrainingExample

	err := row.Scan(
		&example.ID,
		&example.Dataset,
		&example.InputText,
		&example.Target,
		&example.Source,
		&example.CreatedAt,
		&example.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExampleNotFound
		}
		return nil, err
	}

	return &example, nil
}
