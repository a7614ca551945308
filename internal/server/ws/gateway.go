package ws

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/feedstack/social-feed-service/internal/config"
	"github.com/feedstack/social-feed-service/internal/observability"
	"github.com/feedstack/social-feed-service/internal/service"
)

// Gateway upgrades authenticated requests on a chat room route to
// WebSocket sessions. It expects to be mounted behind the HTTP auth
// middleware, which puts the user id into the request context.
type Gateway struct {
	hub      *Hub
	chat     *service.ChatService
	cfg      config.ChatConfig
	upgrader *websocket.Upgrader
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewGateway creates a Gateway.
func NewGateway(
	hub *Hub,
	chat *service.ChatService,
	cfg config.ChatConfig,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Gateway {
	return &Gateway{
		hub:  hub,
		chat: chat,
		cfg:  cfg,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		metrics: metrics,
		logger:  logger.With().Str("component", "chat_gateway").Logger(),
	}
}

// ServeHTTP handles GET /chat-rooms/{roomID}/ws.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := observability.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil || roomID <= 0 {
		http.Error(w, "roomID must be a positive integer", http.StatusBadRequest)
		return
	}

	member, err := g.chat.IsMember(r.Context(), roomID, userID)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !member {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		g.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	session := uuid.NewString()
	client := &Client{
		conn:    conn,
		hub:     g.hub,
		chat:    g.chat,
		cfg:     g.cfg,
		roomID:  roomID,
		userID:  userID,
		send:    make(chan []byte, g.cfg.SendBuffer),
		session: session,
		logger: observability.WithRoomContext(g.logger, roomID, userID).
			With().Str("session_id", session).Logger(),
	}

	g.hub.register(client)
	g.metrics.RecordChatConnectionOpened()
	client.logger.Info().Msg("chat session opened")

	go client.writePump()
	go func() {
		// The session outlives the upgrade request; its context would
		// cancel the pumps on return.
		client.readPump(context.WithoutCancel(r.Context()))
		g.metrics.RecordChatConnectionClosed()
		client.logger.Info().Msg("chat session closed")
	}()
}
