package notify

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub tracks the websocket connections of logged-in users and fans
// notifications out to them.
type Hub struct {
	mu           sync.RWMutex
	conns        map[int64]map[*websocket.Conn]struct{}
	pingInterval time.Duration
	logger       *zap.Logger
}

// NewHub builds connection hub.
func NewHub(pingInterval time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		conns:        make(map[int64]map[*websocket.Conn]struct{}),
		pingInterval: pingInterval,
		logger:       logger,
	}
}

// Add registers a user's connection.
func (h *Hub) Add(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

// Remove drops a user's connection.
func (h *Hub) Remove(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// UserIDs returns the ids of currently connected users.
func (h *Hub) UserIDs() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]int64, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	return ids
}

// Send writes the payload to every connection of the user. Connections
// that fail to write are dropped.
func (h *Hub) Send(userID int64, payload interface{}) {
	h.mu.RLock()
	set := h.conns[userID]
	conns := make([]*websocket.Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.logger.Warn("dropping notification connection",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			conn.Close()
			h.Remove(userID, conn)
		}
	}
}

// Run begins the ping loop to keep connections active, until the context
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.ping()
		}
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.conns {
		for conn := range set {
			_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		}
	}
}
