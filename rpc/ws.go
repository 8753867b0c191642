package rpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"hdgold/core/types"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsBufferSize   = 64
)

type wsEventPayload struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// wsHub fans committed audit events out to websocket subscribers. It
// satisfies the event sink interface; slow subscribers are dropped rather
// than applying backpressure to the ledger.
type wsHub struct {
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[chan *types.Event]struct{}
}

func newWSHub(logger *slog.Logger) *wsHub {
	return &wsHub{
		logger:      logger,
		subscribers: make(map[chan *types.Event]struct{}),
	}
}

// Publish implements the event sink interface.
func (h *wsHub) Publish(evt *types.Event) {
	if h == nil || evt == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- evt:
		default:
			// Subscriber is not keeping up; close its stream.
			delete(h.subscribers, ch)
			close(ch)
		}
	}
}

func (h *wsHub) subscribe() chan *types.Event {
	ch := make(chan *types.Event, wsBufferSize)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *wsHub) unsubscribe(ch chan *types.Event) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *wsHub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				_ = conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
				return
			}
			if err := writeEvent(ctx, conn, evt); err != nil {
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt *types.Event) error {
	data, err := json.Marshal(wsEventPayload{Type: evt.Type, Attributes: evt.Attributes})
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
