// Package progress fans out RunProgressUpdate events to WebSocket clients
// watching a specific optimization run, generalizing the conversation
// broadcaster pattern to runs.
package progress

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/longregen/promptune/internal/ports"
)

// WebSocketBroadcaster implements ports.RunProgressBroadcaster over a
// registry of per-run WebSocket connections.
type WebSocketBroadcaster struct {
	connections map[string]map[*websocket.Conn]struct{}
	mu          sync.RWMutex
}

var _ ports.RunProgressBroadcaster = (*WebSocketBroadcaster)(nil)

func NewWebSocketBroadcaster() *WebSocketBroadcaster {
	return &WebSocketBroadcaster{
		connections: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Subscribe registers conn to receive progress updates for runID.
func (b *WebSocketBroadcaster) Subscribe(runID string, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connections[runID] == nil {
		b.connections[runID] = make(map[*websocket.Conn]struct{})
	}
	b.connections[runID][conn] = struct{}{}
	log.Printf("websocket subscribed to run %s (total: %d)", runID, len(b.connections[runID]))
}

// Unsubscribe removes conn from runID's subscriber set.
func (b *WebSocketBroadcaster) Unsubscribe(runID string, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if conns, ok := b.connections[runID]; ok {
		delete(conns, conn)
		log.Printf("websocket unsubscribed from run %s (remaining: %d)", runID, len(conns))
		if len(conns) == 0 {
			delete(b.connections, runID)
		}
	}
}

// GetSubscriberCount returns the number of live connections watching runID.
func (b *WebSocketBroadcaster) GetSubscriberCount(runID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.connections[runID])
}

func (b *WebSocketBroadcaster) broadcastBinary(runID string, data []byte) {
	b.mu.RLock()
	conns, ok := b.connections[runID]
	if !ok || len(conns) == 0 {
		b.mu.RUnlock()
		return
	}
	targets := make([]*websocket.Conn, 0, len(conns))
	for conn := range conns {
		targets = append(targets, conn)
	}
	b.mu.RUnlock()

	for _, conn := range targets {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			log.Printf("failed to broadcast to websocket connection: %v", err)
			b.Unsubscribe(runID, conn)
		}
	}
}

// BroadcastRunProgress implements ports.RunProgressBroadcaster, msgpack-
// encoding update and pushing it to every subscriber of update.RunID.
func (b *WebSocketBroadcaster) BroadcastRunProgress(runID string, update ports.RunProgressUpdate) {
	data, err := msgpack.Marshal(update)
	if err != nil {
		log.Printf("failed to encode run progress update: %v", err)
		return
	}
	b.broadcastBinary(runID, data)
}
