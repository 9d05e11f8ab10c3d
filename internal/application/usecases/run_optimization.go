// Package usecases wraps internal/optimizer.Optimize with the persistence
// and progress reporting a CLI or HTTP caller expects, mirroring the
// service-layer seam the teacher used to keep its own HTTP handlers thin.
package usecases

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/longregen/promptune/internal/domain/models"
	"github.com/longregen/promptune/internal/optimizer"
	"github.com/longregen/promptune/internal/ports"
)

// CollaboratorFactory builds the five optimizer.Dependencies collaborators
// for one run, given its dataset name, declared stages, and ID — so
// RunOptimization stays agnostic of which concrete LLM/Postgres/JSONL
// adapters a caller wires in.
type CollaboratorFactory func(runID, dataset string, stages []string) (optimizer.Dependencies, error)

// RunOptimization implements ports.RunOptimizationUseCase, running
// optimizer.Optimize in a background goroutine and reporting its progress
// through a ports.RunProgressPublisher while persisting the run and each
// trial that improved on its best score through an OptimizationRunRepository.
type RunOptimization struct {
	runsRepo  ports.OptimizationRunRepository
	idGen     ports.IDGenerator
	publisher ports.RunProgressPublisher
	build     CollaboratorFactory

	mu      sync.Mutex
	running map[string]bool
}

var _ ports.RunOptimizationUseCase = (*RunOptimization)(nil)

func NewRunOptimization(
	runsRepo ports.OptimizationRunRepository,
	idGen ports.IDGenerator,
	publisher ports.RunProgressPublisher,
	build CollaboratorFactory,
) *RunOptimization {
	return &RunOptimization{
		runsRepo:  runsRepo,
		idGen:     idGen,
		publisher: publisher,
		build:     build,
		running:   make(map[string]bool),
	}
}

// Execute records a new OptimizationRun, starts optimizer.Optimize for it in
// a background goroutine, and returns immediately with a channel that
// streams the run's progress until it reaches a terminal state.
func (u *RunOptimization) Execute(ctx context.Context, input *ports.RunOptimizationInput) (*ports.RunOptimizationOutput, error) {
	opts := optimizer.DefaultOptions()
	if input.MaxIterations > 0 {
		opts.MaxIterations = input.MaxIterations
	}
	if input.BatchSize > 0 {
		opts.BatchSize = input.BatchSize
	}
	if input.Seed != 0 {
		opts.Seed = input.Seed
	}
	if input.EarlyStopThreshold > 0 {
		opts.EarlyStopThreshold = input.EarlyStopThreshold
	}

	runID := u.idGen.GenerateRunID()
	run := models.NewOptimizationRun(runID, input.Name, input.Stages, opts.MaxIterations, opts.BatchSize, opts.Seed, opts.EarlyStopThreshold)
	if err := u.runsRepo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}

	deps, err := u.build(runID, input.Dataset, input.Stages)
	if err != nil {
		run.MarkFailed()
		_ = u.runsRepo.UpdateRun(ctx, run)
		return nil, fmt.Errorf("building collaborators: %w", err)
	}

	u.mu.Lock()
	u.running[runID] = true
	u.mu.Unlock()

	progressCh := u.publisher.Subscribe(runID)

	go u.runInBackground(runID, run, input, deps, opts)

	return &ports.RunOptimizationOutput{RunID: runID, ProgressChannel: progressCh}, nil
}

func (u *RunOptimization) runInBackground(runID string, run *models.OptimizationRun, input *ports.RunOptimizationInput, deps optimizer.Dependencies, opts ports.Options) {
	defer func() {
		u.mu.Lock()
		delete(u.running, runID)
		u.mu.Unlock()
		u.publisher.Close(runID)
	}()

	ctx := context.Background()

	u.publisher.PublishProgress(ports.RunProgressEvent{
		Type:          "started",
		RunID:         runID,
		MaxIterations: opts.MaxIterations,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})

	deps.OnImproved = func(trial ports.Trial) {
		tr := models.NewTrialRecord(u.idGen.GenerateTrialID(), runID, trial.Iteration, trial.Stage, trial.Prompts[trial.Stage].Instruction.Text, trial.Score)
		if err := u.runsRepo.AppendTrial(ctx, tr); err != nil {
			log.Printf("run %s: failed to persist trial: %v", runID, err)
		}

		u.publisher.PublishProgress(ports.RunProgressEvent{
			Type:          "improved",
			RunID:         runID,
			Iteration:     trial.Iteration,
			MaxIterations: opts.MaxIterations,
			Stage:         trial.Stage,
			Score:         trial.Score,
			BestScore:     trial.Score,
			BestStage:     trial.Stage,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		})
	}

	best, err := optimizer.Optimize(ctx, input.Stages, input.InitialPrompts, deps, opts)
	if err != nil {
		run.MarkFailed()
		_ = u.runsRepo.UpdateRun(ctx, run)
		u.publisher.PublishProgress(ports.RunProgressEvent{
			Type:      "failed",
			RunID:     runID,
			Message:   err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	bestScore := 0.0
	bestStage := ""
	for stage := range best {
		bestStage = stage
		break
	}
	if trial, err := u.runsRepo.GetBestTrial(ctx, runID); err == nil {
		bestScore = trial.Score
		bestStage = trial.Stage
	}

	run.MarkCompleted(bestScore, bestStage, opts.MaxIterations)
	if err := u.runsRepo.UpdateRun(ctx, run); err != nil {
		log.Printf("run %s: failed to mark completed: %v", runID, err)
	}

	u.publisher.PublishProgress(ports.RunProgressEvent{
		Type:      "completed",
		RunID:     runID,
		BestScore: bestScore,
		BestStage: bestStage,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// GetProgress returns nil once a run has finished and its channel has been
// closed by runInBackground; a caller that wants terminal-state events must
// already be subscribed before the run completes.
func (u *RunOptimization) GetProgress(runID string) <-chan ports.RunProgressEvent {
	u.mu.Lock()
	running := u.running[runID]
	u.mu.Unlock()

	if !running {
		return nil
	}
	return u.publisher.Subscribe(runID)
}
