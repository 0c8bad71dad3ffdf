package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/brightnest/daycare/internal/pkg/messaging"
	"github.com/rs/zerolog"
)

// Hub keeps the connected feed clients and broadcasts content events to them
type Hub struct {
	clients map[*Client]bool

	// Events waiting to be broadcast
	broadcast chan messaging.Event

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Guards clients for ClientCount
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan messaging.Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case evt := <-h.broadcast:
			h.broadcastEvent(evt)
		}
	}
}

// Publish queues evt for every client subscribed to its topic
func (h *Hub) Publish(ctx context.Context, evt messaging.Event) error {
	select {
	case h.broadcast <- evt:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// join registers client unless the hub has stopped
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Strs("topics", client.topicList()).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Feed client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Feed client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// broadcastEvent sends evt to subscribed clients and drops the ones that cannot keep up
func (h *Hub) broadcastEvent(evt messaging.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("type", evt.Type).
			Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	topic := evt.Topic()
	sent := 0
	for client := range h.clients {
		if !client.wants(topic) {
			continue
		}
		select {
		case client.send <- data:
			sent++
		default:
			// Send buffer full
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("type", evt.Type).
		Int("clientCount", sent).
		Msg("Event broadcast to feed")
}
