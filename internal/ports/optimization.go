package ports

import "context"

// RunProgressEvent reports one step of an in-flight optimization run to
// subscribers — the supplemented real-time-progress feature layered on top
// of the core optimizer, which itself has no notion of pub/sub (see
// internal/optimizer's Non-goals).
type RunProgressEvent struct {
	Type          string  `json:"type"` // "started", "improved", "completed", "failed"
	RunID         string  `json:"run_id"`
	Iteration     int     `json:"iteration"`
	MaxIterations int     `json:"max_iterations"`
	Stage         string  `json:"stage,omitempty"`
	Score         float64 `json:"score,omitempty"`
	BestScore     float64 `json:"best_score,omitempty"`
	BestStage     string  `json:"best_stage,omitempty"`
	Message       string  `json:"message,omitempty"`
	Timestamp     string  `json:"timestamp"`
}

// RunProgressPublisher fans RunProgressEvents out to subscribers of a
// specific run. Implementations can back Subscribe/PublishProgress with an
// in-memory channel registry or a WebSocket broadcaster
// (internal/adapters/progress).
type RunProgressPublisher interface {
	// Subscribe returns a channel that receives events for runID until
	// Unsubscribe or Close is called.
	Subscribe(runID string) <-chan RunProgressEvent

	// Unsubscribe removes the given channel from runID's subscriber set.
	Unsubscribe(runID string, ch <-chan RunProgressEvent)

	// PublishProgress broadcasts event to every subscriber of event.RunID.
	PublishProgress(event RunProgressEvent)

	// Close closes and drops every subscriber channel for runID.
	Close(runID string)
}

// RunOptimizationInput parameterizes one call to the optimization use case.
type RunOptimizationInput struct {
	Name               string         `json:"name"`
	Dataset            string         `json:"dataset"`
	Stages             []string       `json:"stages"`
	InitialPrompts     map[string]any `json:"initial_prompts"`
	MaxIterations      int            `json:"max_iterations"`
	BatchSize          int            `json:"batch_size"`
	Seed               int64          `json:"seed,omitempty"`
	EarlyStopThreshold float64        `json:"early_stop_threshold"`
}

// RunOptimizationOutput is returned immediately; the run itself proceeds
// asynchronously and reports through ProgressChannel.
type RunOptimizationOutput struct {
	RunID           string                  `json:"run_id"`
	ProgressChannel <-chan RunProgressEvent `json:"-"`
}

// RunProgressBroadcaster pushes progress updates to connected WebSocket
// clients (internal/adapters/progress), independent of the Subscribe-based
// channel fan-out RunProgressPublisher offers.
type RunProgressBroadcaster interface {
	BroadcastRunProgress(runID string, update RunProgressUpdate)
}

// RunProgressUpdate is the wire shape broadcast to WebSocket clients.
type RunProgressUpdate struct {
	RunID         string  `json:"run_id"`
	Type          string  `json:"type"`
	Iteration     int     `json:"iteration"`
	MaxIterations int     `json:"max_iterations"`
	Stage         string  `json:"stage,omitempty"`
	Score         float64 `json:"score,omitempty"`
	BestScore     float64 `json:"best_score,omitempty"`
	BestStage     string  `json:"best_stage,omitempty"`
	Message       string  `json:"message,omitempty"`
	Timestamp     int64   `json:"timestamp"`
}

// RunOptimizationUseCase is the application-layer entry point wrapping
// internal/optimizer.Optimize with persistence and progress reporting.
type RunOptimizationUseCase interface {
	// Execute starts a run and returns as soon as it has been recorded,
	// without waiting for it to finish. Progress streams on the returned
	// channel until the run reaches a terminal state.
	Execute(ctx context.Context, input *RunOptimizationInput) (*RunOptimizationOutput, error)

	// GetProgress returns a channel for an already-running run, or nil if
	// runID is unknown or has already completed.
	GetProgress(runID string) <-chan RunProgressEvent
}
