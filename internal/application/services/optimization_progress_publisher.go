package services

import (
	"sync"
	"time"

	"github.com/longregen/promptune/internal/ports"
)

// RunProgressPublisher manages subscriptions and publishing of optimization
// progress events, separating the pub/sub infrastructure concern from
// internal/optimizer's own business logic.
type RunProgressPublisher struct {
	channels map[string][]chan ports.RunProgressEvent
	mu       sync.RWMutex

	// broadcaster is optional WebSocket delivery; pass nil to skip it.
	broadcaster ports.RunProgressBroadcaster
}

var _ ports.RunProgressPublisher = (*RunProgressPublisher)(nil)

// NewRunProgressPublisher creates a new progress publisher. broadcaster may
// be nil if WebSocket broadcasting is not needed.
func NewRunProgressPublisher(broadcaster ports.RunProgressBroadcaster) *RunProgressPublisher {
	return &RunProgressPublisher{
		channels:    make(map[string][]chan ports.RunProgressEvent),
		broadcaster: broadcaster,
	}
}

// Subscribe creates a new buffered channel for receiving progress events for a run.
func (p *RunProgressPublisher) Subscribe(runID string) <-chan ports.RunProgressEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan ports.RunProgressEvent, 100)
	p.channels[runID] = append(p.channels[runID], ch)
	return ch
}

// Unsubscribe removes and closes a channel previously returned by Subscribe.
func (p *RunProgressPublisher) Unsubscribe(runID string, ch <-chan ports.RunProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	channels := p.channels[runID]
	for i, subscriberCh := range channels {
		if subscriberCh == ch {
			p.channels[runID] = append(channels[:i], channels[i+1:]...)
			close(subscriberCh)
			break
		}
	}

	if len(p.channels[runID]) == 0 {
		delete(p.channels, runID)
	}
}

// PublishProgress sends an event to every subscriber and, if a broadcaster
// is configured, to WebSocket clients. Sends are non-blocking: a full
// subscriber buffer drops that event rather than stall the optimizer loop.
func (p *RunProgressPublisher) PublishProgress(event ports.RunProgressEvent) {
	if p.broadcaster != nil {
		timestamp, _ := time.Parse(time.RFC3339, event.Timestamp)
		p.broadcaster.BroadcastRunProgress(event.RunID, ports.RunProgressUpdate{
			RunID:         event.RunID,
			Type:          event.Type,
			Iteration:     event.Iteration,
			MaxIterations: event.MaxIterations,
			Stage:         event.Stage,
			Score:         event.Score,
			BestScore:     event.BestScore,
			BestStage:     event.BestStage,
			Message:       event.Message,
			Timestamp:     timestamp.UnixMilli(),
		})
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, ch := range p.channels[event.RunID] {
		select {
		case ch <- event:
		default:
			// Slow subscriber; drop this event rather than block others.
		}
	}
}

// Close closes every subscriber channel for a run.
func (p *RunProgressPublisher) Close(runID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ch := range p.channels[runID] {
		close(ch)
	}
	delete(p.channels, runID)
}

// SubscriberCount returns the number of active subscribers for a run.
func (p *RunProgressPublisher) SubscriberCount(runID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.channels[runID])
}

// ActiveRuns returns the IDs of runs that currently have subscribers.
func (p *RunProgressPublisher) ActiveRuns() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	runs := make([]string, 0, len(p.channels))
	for runID := range p.channels {
		runs = append(runs, runID)
	}
	return runs
}
