// internal/messaging/hub.go

package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/rs/zerolog"
)

// Hub maintains active websocket connections, one per user
type Hub struct {
	clients    map[string]*Client
	clientsMux sync.RWMutex

	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	log zerolog.Logger
}

// NewHub creates a hub. Call Run in its own goroutine.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        logging.Component("hub"),
	}
}

// Run processes registrations until Shutdown
func (h *Hub) Run() {
	defer close(h.done)
	defer h.cleanup()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	// Remove old connection for the same user
	if old, exists := h.clients[client.userID]; exists {
		old.close()
	}
	h.clients[client.userID] = client

	h.log.Debug().Str("user_id", client.userID).Int("clients", len(h.clients)).Msg("client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if current, exists := h.clients[client.userID]; exists && current == client {
		client.close()
		delete(h.clients, client.userID)
		h.log.Debug().Str("user_id", client.userID).Int("clients", len(h.clients)).Msg("client disconnected")
	}
}

func (h *Hub) cleanup() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for _, client := range h.clients {
		client.close()
	}
	h.clients = make(map[string]*Client)
}

// SendToUser queues message for userID. Offline users are skipped; a client
// whose queue is full is dropped.
func (h *Hub) SendToUser(userID string, message WSMessage) bool {
	h.clientsMux.RLock()
	client, exists := h.clients[userID]
	h.clientsMux.RUnlock()
	if !exists {
		return false
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Str("type", message.Type).Msg("failed to marshal websocket message")
		return false
	}

	if !client.enqueue(data) {
		go h.drop(client)
		return false
	}
	return true
}

func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// NotifyUser pushes a typed event to userID
func (h *Hub) NotifyUser(userID, eventType string, data interface{}) {
	h.SendToUser(userID, WSMessage{
		Type:      eventType,
		Data:      mustMarshalJSON(data),
		Timestamp: time.Now().UTC(),
	})
}

// IsUserOnline reports whether userID has a live connection
func (h *Hub) IsUserOnline(userID string) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	_, exists := h.clients[userID]
	return exists
}

// Shutdown closes every connection and stops Run
func (h *Hub) Shutdown() {
	h.cancel()
	<-h.done
}

// GetActiveConnections returns the number of connected users
func (h *Hub) GetActiveConnections() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

func mustMarshalJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(data)
}
