package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/metrics"
)

const (
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// Mobile clients send no Origin header; sessions are token based.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type frame struct {
	Type  string `json:"type"`
	Items any    `json:"items,omitempty"`
	Error string `json:"error,omitempty"`
}

// serveStream upgrades the request to a WebSocket and forwards every
// snapshot of the stream as a JSON frame, passed through present when it is
// not nil. The stream is closed when the client disconnects.
func serveStream[T any](w http.ResponseWriter, r *http.Request, m *metrics.Metrics, kind string, open func(ctx context.Context) (*live.Stream[T], error), present func(T) any) {
	// The request context is not cancelled after a hijack, so the read
	// loop below owns cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := open(ctx)
	if err != nil {
		writeServiceError(w, err, "failed to open live "+kind)
		return
	}
	defer stream.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "kind", kind)
		return
	}
	defer conn.Close()

	if m != nil {
		m.LiveSubscribers.WithLabelValues(kind).Inc()
		defer m.LiveSubscribers.WithLabelValues(kind).Dec()
	}

	// Read loop ends on client close or error.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-stream.C:
			if !ok {
				return
			}
			var f frame
			switch {
			case snap.Err != nil:
				slog.Error("live query failed", "error", snap.Err, "kind", kind)
				f = frame{Type: "error", Error: "failed to refresh " + kind}
			case present != nil:
				f = frame{Type: "snapshot", Items: present(snap.Items)}
			default:
				f = frame{Type: "snapshot", Items: snap.Items}
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
