package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/events"
	"github.com/feedstack/social-feed-service/internal/observability"
	"github.com/feedstack/social-feed-service/internal/pagination"
	"github.com/feedstack/social-feed-service/internal/repository"
)

// SendMessageInput carries the fields needed to send a chat message.
type SendMessageInput struct {
	RoomID   int64
	AuthorID int64
	Message  string
}

// ChatService implements chat rooms and messages. It is shared by the
// REST handlers and the WebSocket gateway.
type ChatService struct {
	rooms     repository.ChatRepository
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(
	rooms repository.ChatRepository,
	publisher events.Publisher,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		rooms:     rooms,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "chat_service").Logger(),
	}
}

// CreateRoom creates a room containing the creator and the given
// members. The room row and all membership rows must commit together,
// so a transaction is required.
func (s *ChatService) CreateRoom(ctx context.Context, tx pgx.Tx, creatorID int64, memberIDs []int64) (*domain.ChatRoom, error) {
	if tx == nil {
		return nil, &domain.TxMisuseError{Op: "chat room create"}
	}

	ids := make([]int64, 0, len(memberIDs)+1)
	ids = append(ids, creatorID)
	for _, id := range memberIDs {
		if id != creatorID {
			ids = append(ids, id)
		}
	}

	room, err := s.rooms.WithTx(tx).CreateRoom(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("room_id", room.ID).
		Int("members", len(ids)).
		Msg("chat room created")
	return room, nil
}

// GetRoom returns a room with its member summaries. Only members may
// see a room.
func (s *ChatService) GetRoom(ctx context.Context, roomID, requesterID int64) (*domain.ChatRoom, error) {
	if err := s.requireMember(ctx, roomID, requesterID); err != nil {
		return nil, err
	}
	return s.rooms.GetRoom(ctx, roomID)
}

// ListRooms returns a page of the user's rooms.
func (s *ChatService) ListRooms(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64) (pagination.Result[*domain.ChatRoom], error) {
	return s.rooms.ListRooms(ctx, engine, req, userID)
}

// SendMessage persists a message into a room the author is a member of.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*domain.ChatMessage, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, domain.NewValidationError("message", "must not be empty")
	}
	if err := s.requireMember(ctx, input.RoomID, input.AuthorID); err != nil {
		return nil, err
	}

	message := &domain.ChatMessage{
		RoomID:   input.RoomID,
		AuthorID: input.AuthorID,
		Message:  input.Message,
	}
	if err := s.rooms.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	s.metrics.RecordChatMessageSent()
	if err := s.publisher.Publish(ctx, domain.Event{
		Type:        domain.EventChatMessageCreated,
		AggregateID: message.ID,
		Payload:     message,
	}); err != nil {
		s.logger.Warn().Err(err).Int64("message_id", message.ID).Msg("chat.message.created event not published")
	}
	return message, nil
}

// ListMessages returns a page of a room's messages. Only members may
// read a room.
func (s *ChatService) ListMessages(ctx context.Context, engine *pagination.Engine, req *pagination.Request, roomID, requesterID int64) (pagination.Result[*domain.ChatMessage], error) {
	if err := s.requireMember(ctx, roomID, requesterID); err != nil {
		return nil, err
	}
	return s.rooms.ListMessages(ctx, engine, req, roomID)
}

// IsMember reports whether the user belongs to the room.
func (s *ChatService) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	return s.rooms.IsMember(ctx, roomID, userID)
}

func (s *ChatService) requireMember(ctx context.Context, roomID, userID int64) error {
	exists, err := s.rooms.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("chat room", roomID)
	}

	member, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !member {
		return domain.ErrForbidden
	}
	return nil
}
