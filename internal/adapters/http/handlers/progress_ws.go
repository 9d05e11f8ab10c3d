package handlers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/longregen/promptune/internal/adapters/progress"
)

// ProgressWSHandler upgrades GET /runs/{id}/progress/ws into a WebSocket
// connection subscribed to one run's progress broadcaster, generalizing the
// conversation-scoped sync socket to an optimization run.
type ProgressWSHandler struct {
	upgrader    websocket.Upgrader
	broadcaster *progress.WebSocketBroadcaster
}

func NewProgressWSHandler(broadcaster *progress.WebSocketBroadcaster, allowedOrigins []string) *ProgressWSHandler {
	allowedOriginsMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedOriginsMap[origin] = true
	}

	return &ProgressWSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return allowedOriginsMap[origin]
			},
		},
		broadcaster: broadcaster,
	}
}

func (h *ProgressWSHandler) Handle(w http.ResponseWriter, r *http.Request) {
	runID, ok := validateURLParam(r, w, "id", "run id")
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade websocket connection: %v", err)
		return
	}
	defer conn.Close()

	h.broadcaster.Subscribe(runID, conn)
	defer h.broadcaster.Unsubscribe(runID, conn)

	log.Printf("websocket connection established for run %s", runID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.readPump(ctx, conn)
		cancel()
	}()
	wg.Wait()

	log.Printf("websocket connection closed for run %s", runID)
}

// readPump discards client frames but keeps the read deadline alive via
// pong handling, so the connection is dropped promptly if the client goes
// away; promptune's progress socket is send-only from the server's side.
func (h *ProgressWSHandler) readPump(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
	}
}
