package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ConnectionObserver is told when clients come and go.
type ConnectionObserver interface {
	LiveConnectionOpened()
	LiveConnectionClosed()
}

// Hub fans events out to every connected client.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu       sync.RWMutex
	clients  map[*Client]struct{}
	logger   *zap.Logger
	observer ConnectionObserver
}

// NewHub builds a hub; call Run before registering clients.
func NewHub(logger *zap.Logger, observer ConnectionObserver) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		logger:     logger,
		observer:   observer,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			if h.observer != nil {
				h.observer.LiveConnectionOpened()
			}
			h.logger.Debug("live feed client registered", zap.String("actor", c.actor))
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("live feed client too slow, dropping", zap.String("actor", c.actor))
					h.drop(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held.
func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	c.stop()
	if h.observer != nil {
		h.observer.LiveConnectionClosed()
	}
}

// Publish broadcasts an event to all clients. It never blocks the caller.
func (h *Hub) Publish(eventType string, payload interface{}) {
	if h == nil {
		return
	}
	msg, err := encode(eventType, payload)
	if err != nil {
		h.logger.Error("encode live event", zap.String("type", eventType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("live feed backlog full, event dropped", zap.String("type", eventType))
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encode(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Type: eventType, Payload: payload, Timestamp: time.Now().UTC()})
}
