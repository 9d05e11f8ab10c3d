package progress

import (
	"testing"
	"time"

	"github.com/longregen/promptune/internal/ports"
)

func TestNewWebSocketBroadcaster(t *testing.T) {
	b := NewWebSocketBroadcaster()
	if b == nil {
		t.Fatal("expected broadcaster to be created")
	}
	if b.connections == nil {
		t.Error("expected connections map to be initialized")
	}
}

func TestWebSocketBroadcaster_GetSubscriberCount(t *testing.T) {
	b := NewWebSocketBroadcaster()

	if count := b.GetSubscriberCount("run_123"); count != 0 {
		t.Errorf("expected count 0 for new run, got %d", count)
	}
	if count := b.GetSubscriberCount("nonexistent"); count != 0 {
		t.Errorf("expected count 0 for nonexistent run, got %d", count)
	}
}

func TestWebSocketBroadcaster_BroadcastRunProgress_NoSubscribers(t *testing.T) {
	b := NewWebSocketBroadcaster()

	update := ports.RunProgressUpdate{
		RunID:     "run_123",
		Type:      "trial",
		Iteration: 1,
		Stage:     "extract",
		Score:     0.8,
		Timestamp: 1700000000,
	}

	b.BroadcastRunProgress("run_123", update)
}

func TestWebSocketBroadcaster_ConcurrentAccess(t *testing.T) {
	b := NewWebSocketBroadcaster()
	runID := "run_concurrent"
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			b.GetSubscriberCount(runID)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		go func(seq int) {
			b.BroadcastRunProgress(runID, ports.RunProgressUpdate{
				RunID:     runID,
				Type:      "trial",
				Iteration: seq,
			})
			done <- true
		}(i)
	}

	timeout := time.After(5 * time.Second)
	for i := 0; i < 20; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatal("timeout waiting for concurrent operations")
		}
	}
}

func TestWebSocketBroadcaster_MultipleRuns(t *testing.T) {
	b := NewWebSocketBroadcaster()

	runs := []string{"run_1", "run_2", "run_3"}
	for i, runID := range runs {
		b.BroadcastRunProgress(runID, ports.RunProgressUpdate{RunID: runID, Iteration: i})
	}

	for _, runID := range runs {
		if count := b.GetSubscriberCount(runID); count != 0 {
			t.Errorf("expected count 0 for %s, got %d", runID, count)
		}
	}
}
