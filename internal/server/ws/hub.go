// Package ws provides the WebSocket chat gateway. Clients join a room,
// inbound messages are persisted through the chat service, and every
// persisted message is broadcast to the room's connected clients.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/feedstack/social-feed-service/internal/domain"
)

// Hub routes broadcasts to the clients connected to each room. It is
// safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int64]map[*Client]struct{}
	logger zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[int64]map[*Client]struct{}),
		logger: logger.With().Str("component", "chat_hub").Logger(),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[c.roomID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[c.roomID] = clients
	}
	clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[c.roomID]
	if !ok {
		return
	}
	if _, present := clients[c]; !present {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.roomID)
	}
}

// Broadcast delivers a persisted message to every client in its room.
// Clients whose send buffer is full are dropped rather than allowed to
// stall the room.
func (h *Hub) Broadcast(ctx context.Context, message *domain.ChatMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Int64("message_id", message.ID).Msg("failed to encode broadcast")
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[message.RoomID]))
	for c := range h.rooms[message.RoomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn().
				Int64("room_id", message.RoomID).
				Int64("user_id", c.userID).
				Msg("client send buffer full, disconnecting")
			h.unregister(c)
		}
	}
}

// RoomClients reports the number of connected clients in a room.
func (h *Hub) RoomClients(roomID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
