// Package ws pushes toast notifications to connected UI clients.
package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lumenapps/explore/internal/logging"
	"go.uber.org/zap"
)

// Notification kinds. Exactly one success or error notification is emitted
// per creation attempt.
const (
	KindSuccess = "success"
	KindError   = "error"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin enforcement is handled by the CORS layer
	},
}

// Notice is a user-visible toast message.
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Hub fans notices out to every connected client.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   *logging.Logger

	onNotify func(Notice) // metrics hooks, optional
	onCount  func(int)
}

// NewHub creates an empty hub.
func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		log:   log.Named("ws"),
	}
}

// OnNotify installs a hook invoked for every notice, used for metrics.
func (h *Hub) OnNotify(fn func(Notice)) {
	h.onNotify = fn
}

// OnCountChange installs a hook invoked with the connection count whenever
// a client joins or leaves.
func (h *Hub) OnCountChange(fn func(int)) {
	h.onCount = fn
}

// HandleConnection upgrades the request and keeps the connection registered
// until the client goes away.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	count := len(h.conns)
	h.mu.Unlock()
	if h.onCount != nil {
		h.onCount(count)
	}
	h.log.Debug("client connected", zap.Int("connections", count))

	// Drain reads; the stream is server-to-client only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	count = len(h.conns)
	h.mu.Unlock()
	if h.onCount != nil {
		h.onCount(count)
	}
	conn.Close()
}

// Notify broadcasts a toast to all connected clients. Implements the
// creation workflow's Notifier contract. Connections that fail to accept
// the write are dropped.
func (h *Hub) Notify(kind, message string) {
	n := Notice{Type: kind, Message: message}
	if h.onNotify != nil {
		h.onNotify(n)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(n); err != nil {
			h.log.Debug("dropping client", zap.Error(err))
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Connections returns the number of connected clients.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
