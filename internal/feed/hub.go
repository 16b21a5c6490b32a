package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// safeConn wraps a websocket.Conn with a write mutex.
// gorilla/websocket allows one concurrent writer; this enforces that.
type safeConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *safeConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

// Hub relays the Redis change feed to connected WebSocket clients.
// Every client sees every pickup event; filtering to the screens a
// client cares about happens client-side.
type Hub struct {
	logger *logrus.Logger

	mu    sync.RWMutex
	conns map[*safeConn]struct{}
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[*safeConn]struct{}),
	}
}

// Run consumes the Redis subscription until ctx is cancelled. Malformed
// payloads are logged and skipped; the feed never propagates them.
func (h *Hub) Run(ctx context.Context, sub *goredis.PubSub) {
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.WithError(err).Warn("dropping malformed feed payload")
				continue
			}

			h.Broadcast(event)
		}
	}
}

// Broadcast pushes an event to every subscriber. Write failures only
// affect the failing connection.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	conns := make([]*safeConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.writeJSON(event); err != nil {
			h.logger.WithError(err).Debug("feed write failed, dropping subscriber")
			h.remove(c)
			c.ws.Close()
		}
	}
}

// Subscribers reports the current connection count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// HandleWS upgrades the request and holds the connection open until
// the client goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("failed to upgrade feed connection")
		return
	}

	conn := &safeConn{ws: ws}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("subscribers", h.Subscribers()).Debug("feed client connected")

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(conn)
	ws.Close()
	h.logger.WithField("subscribers", h.Subscribers()).Debug("feed client disconnected")
}

func (h *Hub) remove(conn *safeConn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}
