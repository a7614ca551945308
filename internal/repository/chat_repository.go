package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// ChatRepository handles chat rooms, memberships, and messages.
type ChatRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx pgx.Tx) ChatRepository

	// CreateRoom inserts a room and its memberships in one unit of work.
	// Returns domain.ErrInvalidInput if any member does not exist.
	CreateRoom(ctx context.Context, userIDs []int64) (*domain.ChatRoom, error)

	// GetRoom retrieves a room with its member summaries.
	// Returns domain.ErrNotFound if no matching room exists.
	GetRoom(ctx context.Context, id int64) (*domain.ChatRoom, error)

	// RoomExists reports whether a room with the given ID exists.
	RoomExists(ctx context.Context, id int64) (bool, error)

	// IsMember reports whether the user belongs to the room.
	IsMember(ctx context.Context, roomID, userID int64) (bool, error)

	// ListRooms lists the rooms the user belongs to. Member summaries
	// are not hydrated during listing.
	ListRooms(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64) (pagination.Result[*domain.ChatRoom], error)

	// CreateMessage inserts a message and populates its ID and timestamps.
	// Returns domain.ErrInvalidInput if the room or author does not exist.
	CreateMessage(ctx context.Context, message *domain.ChatMessage) error

	// ListMessages lists the messages of one room with author summaries.
	ListMessages(ctx context.Context, engine *pagination.Engine, req *pagination.Request, roomID int64) (pagination.Result[*domain.ChatMessage], error)
}
