package ports

import (
	"context"

	"github.com/longregen/promptune/internal/domain/models"
)

// ListOptimizationRunsOptions filters/paginates OptimizationRunRepository.List.
type ListOptimizationRunsOptions struct {
	Status string
	Limit  int
	Offset int
}

// OptimizationRunRepository persists OptimizationRun headers and their
// TrialRecord history — the supplemented, ambient counterpart to the core
// optimizer's purely in-memory History (internal/optimizer.history).
type OptimizationRunRepository interface {
	CreateRun(ctx context.Context, run *models.OptimizationRun) error
	GetRun(ctx context.Context, id string) (*models.OptimizationRun, error)
	UpdateRun(ctx context.Context, run *models.OptimizationRun) error
	ListRuns(ctx context.Context, opts ListOptimizationRunsOptions) ([]*models.OptimizationRun, error)

	AppendTrial(ctx context.Context, trial *models.TrialRecord) error
	GetTrials(ctx context.Context, runID string) ([]*models.TrialRecord, error)
	GetBestTrial(ctx context.Context, runID string) (*models.TrialRecord, error)
}

// TrainingExampleRepository persists the rows a Postgres-backed DataLoader
// reads into a run's dataset.
type TrainingExampleRepository interface {
	Create(ctx context.Context, example *models.TrainingExample) error
	Get(ctx context.Context, id string) (*models.TrainingExample, error)
	ListByDataset(ctx context.Context, dataset string) ([]*models.TrainingExample, error)
	Delete(ctx context.Context, id string) error
}

// TransactionManager runs fn inside a database transaction, committing on a
// nil return and rolling back otherwise. Nested calls join the outer
// transaction rather than starting a new one.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator mints prefixed, collision-resistant identifiers for every
// entity kind the repositories persist.
type IDGenerator interface {
	GenerateRunID() string
	GenerateTrialID() string
	GenerateExampleID() string
	GenerateRequestID() string
}
