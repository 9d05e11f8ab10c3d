package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/promptune/internal/domain"
	"github.com/longregen/promptune/internal/domain/models"
	"github.com/longregen/promptune/internal/ports"
)

// OptimizationRepository implements ports.OptimizationRunRepository,
// persisting OptimizationRun headers and their append-only TrialRecord
// history in Postgres.
type OptimizationRepository struct {
	BaseRepository
}

// NewOptimizationRepository creates a new optimization repository
func NewOptimizationRepository(pool *pgxpool.Pool) *OptimizationRepository {
	return &OptimizationRepository{
		BaseRepository: NewBaseRepository(pool),
	}
}

// CreateRun creates a new optimization run
func (r *OptimizationRepository) CreateRun(ctx context.Context, run *models.OptimizationRun) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	stages, err := json.Marshal(run.Stages)
	if err != nil {
		return err
	}
	config, err := json.Marshal(run.Config)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(run.Meta)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO optimization_runs (
			id, name, description, status, stages, max_iterations, batch_size,
			seed, early_stop_threshold, iterations, best_score, best_stage,
			config, meta, started_at, completed_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)`

	_, err = r.conn(ctx).Exec(ctx, query,
		run.ID,
		run.Name,
		run.Description,
		run.Status,
		stages,
		run.MaxIterations,
		run.BatchSize,
		run.Seed,
		run.EarlyStopThreshold,
		run.Iterations,
		run.BestScore,
		run.BestStage,
		config,
		meta,
		run.StartedAt,
		run.CompletedAt,
		run.CreatedAt,
		run.UpdatedAt,
	)

	return err
}

// GetRun retrieves an optimization run by ID
func (r *OptimizationRepository) GetRun(ctx context.Context, id string) (*models.OptimizationRun, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, description, status, stages, max_iterations, batch_size,
			seed, early_stop_threshold, iterations, best_score, best_stage,
			config, meta, started_at, completed_at, created_at, updated_at
		FROM optimization_runs
		WHERE id = $1`

	return r.scanRun(r.conn(ctx).QueryRow(ctx, query, id))
}

// UpdateRun updates an existing optimization run
func (r *OptimizationRepository) UpdateRun(ctx context.Context, run *models.OptimizationRun) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	config, err := json.Marshal(run.Config)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(run.Meta)
	if err != nil {
		return err
	}

	query := `
		UPDATE optimization_runs
		SET status = $1, iterations = $2, best_score = $3, best_stage = $4,
			config = $5, meta = $6, completed_at = $7, updated_at = $8
		WHERE id = $9`

	result, err := r.conn(ctx).Exec(ctx, query,
		run.Status,
		run.Iterations,
		run.BestScore,
		run.BestStage,
		config,
		meta,
		run.CompletedAt,
		run.UpdatedAt,
		run.ID,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}

	return nil
}

// ListRuns retrieves optimization runs with optional status filter and pagination
func (r *OptimizationRepository) ListRuns(ctx context.Context, opts ports.ListOptimizationRunsOptions) ([]*models.OptimizationRun, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, name, description, status, stages, max_iterations, batch_size,
			seed, early_stop_threshold, iterations, best_score, best_stage,
			config, meta, started_at, completed_at, created_at, updated_at
		FROM optimization_runs`

	args := []any{}
	argPos := 1

	if opts.Status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argPos)
		args = append(args, opts.Status)
		argPos++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*models.OptimizationRun, 0)
	for rows.Next() {
		run, err := r.scanRunRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AppendTrial inserts one TrialRecord. Trials are never updated after
// insertion, mirroring the in-memory core history's append-only contract.
func (r *OptimizationRepository) AppendTrial(ctx context.Context, trial *models.TrialRecord) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO optimization_trials (
			id, run_id, iteration, stage, instruction, score, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := r.conn(ctx).Exec(ctx, query,
		trial.ID,
		trial.RunID,
		trial.Iteration,
		trial.Stage,
		trial.Instruction,
		trial.Score,
		trial.CreatedAt,
	)

	return err
}

// GetTrials retrieves every trial for a run, in the order they occurred.
func (r *OptimizationRepository) GetTrials(ctx context.Context, runID string) ([]*models.TrialRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, run_id, iteration, stage, instruction, score, created_at
		FROM optimization_trials
		WHERE run_id = $1
		ORDER BY iteration ASC`

	rows, err := r.conn(ctx).Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trials := make([]*models.TrialRecord, 0)
	for rows.Next() {
		var trial models.TrialRecord
		if err := rows.Scan(
			&trial.ID,
			&trial.RunID,
			&trial.Iteration,
			&trial.Stage,
			&trial.Instruction,
			&trial.Score,
			&trial.CreatedAt,
		); err != nil {
			return nil, err
		}
		trials = append(trials, &trial)
	}
	return trials, rows.Err()
}

// GetBestTrial returns the highest-scoring trial recorded for a run.
func (r *OptimizationRepository) GetBestTrial(ctx context.Context, runID string) (*models.TrialRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, run_id, iteration, stage, instruction, score, created_at
		FROM optimization_trials
		WHERE run_id = $1
		ORDER BY score DESC
		LIMIT 1`

	var trial models.TrialRecord
	err := r.conn(ctx).QueryRow(ctx, query, runID).Scan(
		&trial.ID,
		&trial.RunID,
		&trial.Iteration,
		&trial.Stage,
		&trial.Instruction,
		&trial.Score,
		&trial.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTrialNotFound
		}
		return nil, err
	}
	return &trial, nil
}

func (r *OptimizationRepository) scanRun(row pgx.Row) (*models.OptimizationRun, error) {
	var run models.OptimizationRun
	var description sql.NullString
	var stages, config, meta []byte
	var bestScore sql.NullFloat64
	var bestStage sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.Name,
		&description,
		&run.Status,
		&stages,
		&run.MaxIterations,
		&run.BatchSize,
		&run.Seed,
		&run.EarlyStopThreshold,
		&run.Iterations,
		&bestScore,
		&bestStage,
		&config,
		&meta,
		&run.StartedAt,
		&completedAt,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	run.Description = description.String
	run.BestScore = bestScore.Float64
	run.BestStage = bestStage.String
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if err := unmarshalJSONSliceInto(stages, &run.Stages); err != nil {
		return nil, err
	}
	if err := unmarshalMapInto(config, &run.Config); err != nil {
		return nil, err
	}
	if err := unmarshalMapInto(meta, &run.Meta); err != nil {
		return nil, err
	}

	return &run, nil
}

func (r *OptimizationRepository) scanRunRow(rows pgx.Rows) (*models.OptimizationRun, error) {
	var run models.OptimizationRun
	var description sql.NullString
	var stages, config, meta []byte
	var bestScore sql.NullFloat64
	var bestStage sql.NullString
	var completedAt sql.NullTime

	err := rows.Scan(
		&run.ID,
		&run.Name,
		&description,
		&run.Status,
		&stages,
		&run.MaxIterations,
		&run.BatchSize,
		&run.Seed,
		&run.EarlyStopThreshold,
		&run.Iterations,
		&bestScore,
		&bestStage,
		&config,
		&meta,
		&run.StartedAt,
		&completedAt,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Description = description.String
	run.BestScore = bestScore.Float64
	run.BestStage = bestStage.String
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if err := unmarshalJSONSliceInto(stages, &run.Stages); err != nil {
		return nil, err
	}
	if err := unmarshalMapInto(config, &run.Config); err != nil {
		return nil, err
	}
	if err := unmarshalMapInto(meta, &run.Meta); err != nil {
		return nil, err
	}

	return &run, nil
}

func unmarshalJSONSliceInto(data []byte, target *[]string) error {
	if len(data) == 0 {
		*target = []string{}
		return nil
	}
	return json.Unmarshal(data, target)
}

func unmarshalMapInto(data []byte, target *map[string]any) error {
	if len(data) == 0 {
		*target = make(map[string]any)
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		*target = make(map[string]any)
		return err
	}
	if *target == nil {
		*target = make(map[string]any)
	}
	return nil
}
