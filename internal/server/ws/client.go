package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/feedstack/social-feed-service/internal/config"
	"github.com/feedstack/social-feed-service/internal/service"
)

// inboundFrame is the JSON shape clients send.
type inboundFrame struct {
	Message string `json:"message"`
}

// Client is one WebSocket connection bound to a room.
type Client struct {
	conn    *websocket.Conn
	hub     *Hub
	chat    *service.ChatService
	cfg     config.ChatConfig
	roomID  int64
	userID  int64
	send    chan []byte
	logger  zerolog.Logger
	session string
}

// readPump consumes frames until the connection drops. Each frame is
// persisted through the chat service and broadcast to the room.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.logger.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}
		if strings.TrimSpace(frame.Message) == "" {
			continue
		}

		message, err := c.chat.SendMessage(ctx, service.SendMessageInput{
			RoomID:   c.roomID,
			AuthorID: c.userID,
			Message:  frame.Message,
		})
		if err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist chat message")
			continue
		}

		c.hub.Broadcast(ctx, message)
	}
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings. A closed send channel ends the session.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
