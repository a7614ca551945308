package httpserver

import (
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/service"
)

type createRoomRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required,min=1,max=50,dive,gt=0"`
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4096"`
}

// createChatRoom handles POST /chat-rooms. The room row and all
// membership rows commit together.
func (s *Server) createChatRoom(w http.ResponseWriter, r *http.Request) {
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRoomRequest
	if !s.decodeValidJSON(w, r, &req) {
		return
	}

	var room *domain.ChatRoom
	err := s.db.WithTransaction(r.Context(), func(tx pgx.Tx) error {
		var txErr error
		room, txErr = s.chat.CreateRoom(r.Context(), tx, principal.ID, req.UserIDs)
		return txErr
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

// listChatRooms handles GET /chat-rooms.
func (s *Server) listChatRooms(w http.ResponseWriter, r *http.Request) {
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := parsePagination(w, r)
	if !ok {
		return
	}

	result, err := s.chat.ListRooms(r.Context(), s.engine, req, principal.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// getChatRoom handles GET /chat-rooms/{roomID}.
func (s *Server) getChatRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r, "roomID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	room, err := s.chat.GetRoom(r.Context(), roomID, principal.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// listChatMessages handles GET /chat-rooms/{roomID}/messages.
func (s *Server) listChatMessages(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r, "roomID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := parsePagination(w, r)
	if !ok {
		return
	}

	result, err := s.chat.ListMessages(r.Context(), s.engine, req, roomID, principal.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// sendChatMessage handles POST /chat-rooms/{roomID}/messages, the REST
// alternative to the WebSocket gateway.
func (s *Server) sendChatMessage(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r, "roomID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req sendMessageRequest
	if !s.decodeValidJSON(w, r, &req) {
		return
	}

	message, err := s.chat.SendMessage(r.Context(), service.SendMessageInput{
		RoomID:   roomID,
		AuthorID: principal.ID,
		Message:  req.Message,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}
