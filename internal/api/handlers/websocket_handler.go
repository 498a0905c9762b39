package handlers

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// Hub fans each newly analyzed review out to every connected websocket
// client. Writes are serialized per hub; a failed write drops the client.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) register(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(n))
	logger.Info("Websocket client connected", zap.Int("clients", n))
}

func (h *Hub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(n))
	logger.Info("Websocket client disconnected", zap.Int("clients", n))
}

// Broadcast pushes one analysis record to all connected clients.
func (h *Hub) Broadcast(rec *models.AnalysisRecord) {
	if rec == nil {
		return
	}

	msg := map[string]interface{}{
		"type":   "analysis",
		"record": rec,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if err := c.WriteJSON(msg); err != nil {
			logger.Warn("Dropping websocket client after failed write", zap.Error(err))
			c.Close()
			delete(h.clients, c)
		}
	}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

// HandleConnection keeps a live-feed connection open until the client
// disconnects. Inbound messages are ignored; the feed is one-way.
func (h *Hub) HandleConnection(c *websocket.Conn) {
	h.register(c)

	defer func() {
		h.unregister(c)
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
