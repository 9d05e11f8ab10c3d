package models

import "time"

// OptimizationRun is the persisted record of one call to optimizer.Optimize:
// its configuration, its outcome, and enough bookkeeping to list and
// resurface past runs from the CLI. It is the ambient, storage-facing
// counterpart to the core's in-memory Trial history — the core package
// itself never persists anything (see internal/optimizer's Non-goals).
type OptimizationRun struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	Status             string         `json:"status"` // "running", "completed", "failed"
	Stages             []string       `json:"stages"`
	MaxIterations      int            `json:"max_iterations"`
	BatchSize          int            `json:"batch_size"`
	Seed               int64          `json:"seed"`
	EarlyStopThreshold float64        `json:"early_stop_threshold"`
	Iterations         int            `json:"iterations"`
	BestScore          float64        `json:"best_score,omitempty"`
	BestStage          string         `json:"best_stage,omitempty"`
	Config             map[string]any `json:"config,omitempty"`
	Meta               map[string]any `json:"meta,omitempty"`
	StartedAt          time.Time      `json:"started_at"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// OptimizationRun status values
const (
	OptimizationStatusRunning   = "running"
	OptimizationStatusCompleted = "completed"
	OptimizationStatusFailed    = "failed"
)

func NewOptimizationRun(id, name string, stages []string, maxIterations, batchSize int, seed int64, earlyStopThreshold float64) *OptimizationRun {
	now := time.Now().UTC()
	return &OptimizationRun{
		ID:                 id,
		Name:               name,
		Status:             OptimizationStatusRunning,
		Stages:             stages,
		MaxIterations:      maxIterations,
		BatchSize:          batchSize,
		Seed:               seed,
		EarlyStopThreshold: earlyStopThreshold,
		Iterations:         0,
		Config:             make(map[string]any),
		Meta:               make(map[string]any),
		StartedAt:          now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func (r *OptimizationRun) MarkCompleted(bestScore float64, bestStage string, iterations int) {
	now := time.Now().UTC()
	r.Status = OptimizationStatusCompleted
	r.BestScore = bestScore
	r.BestStage = bestStage
	r.Iterations = iterations
	r.CompletedAt = &now
	r.UpdatedAt = now
}

func (r *OptimizationRun) MarkFailed() {
	now := time.Now().UTC()
	r.Status = OptimizationStatusFailed
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// TrialRecord is the persisted form of one optimizer.Trial: which stage was
// mutated, the instruction text assigned to it in that iteration's
// candidate PromptSet, and the resulting score. Unlike PromptCandidate in
// the GEPA-era model this replaces, a TrialRecord is never updated after
// insertion — it mirrors the core's own append-only History.
type TrialRecord struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Iteration   int       `json:"iteration"`
	Stage       string    `json:"stage"`
	Instruction string    `json:"instruction"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewTrialRecord(id, runID string, iteration int, stage, instruction string, score float64) *TrialRecord {
	return &TrialRecord{
		ID:          id,
		RunID:       runID,
		Iteration:   iteration,
		Stage:       stage,
		Instruction: instruction,
		Score:       score,
		CreatedAt:   time.Now().UTC(),
	}
}
