package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/pagination"
)

// Compile-time interface verification.
var _ ChatRepository = (*PgChatRepository)(nil)

// roomListFields maps filterable and sortable request fields to room columns.
var roomListFields = map[string]string{
	"id":        "r.id",
	"createdAt": "r.created_at",
}

// messageListFields maps filterable and sortable request fields to
// message columns.
var messageListFields = map[string]string{
	"id":        "m.id",
	"authorId":  "m.author_id",
	"message":   "m.message",
	"createdAt": "m.created_at",
	"author":    "u.nickname",
}

// PgChatRepository is a PostgreSQL implementation of ChatRepository.
type PgChatRepository struct {
	db DBTX
}

// NewPgChatRepository creates a new PostgreSQL chat repository.
func NewPgChatRepository(db DBTX) *PgChatRepository {
	return &PgChatRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PgChatRepository) WithTx(tx pgx.Tx) ChatRepository {
	return &PgChatRepository{db: tx}
}

// CreateRoom inserts a room and its memberships.
func (r *PgChatRepository) CreateRoom(ctx context.Context, userIDs []int64) (*domain.ChatRoom, error) {
	if len(userIDs) < 2 {
		return nil, domain.NewValidationError("users", "a room needs at least two members")
	}

	room := &domain.ChatRoom{}
	err := r.db.QueryRow(ctx, `
		INSERT INTO chat_rooms DEFAULT VALUES
		RETURNING id, created_at, updated_at`).
		Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	for _, userID := range userIDs {
		_, err := r.db.Exec(ctx, `
			INSERT INTO chat_room_users (room_id, user_id)
			VALUES ($1, $2)`, room.ID, userID)
		if err != nil {
			if isPgForeignKeyViolation(err) {
				return nil, domain.NewValidationError("users", fmt.Sprintf("user %d does not exist", userID))
			}
			if isPgUniqueViolation(err) {
				return nil, domain.NewValidationError("users", fmt.Sprintf("user %d listed twice", userID))
			}
			return nil, fmt.Errorf("failed to add room member: %w", err)
		}
	}

	users, err := r.roomMembers(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	room.Users = users

	return room, nil
}

// GetRoom retrieves a room with its member summaries.
func (r *PgChatRepository) GetRoom(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.db.QueryRow(ctx, `
		SELECT id, created_at, updated_at
		FROM chat_rooms
		WHERE id = $1`, id).
		Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("chat room", id)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	users, err := r.roomMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Users = users

	return &room, nil
}

// RoomExists reports whether a room with the given ID exists.
func (r *PgChatRepository) RoomExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM chat_rooms WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check room existence: %w", err)
	}
	return exists, nil
}

// IsMember reports whether the user belongs to the room.
func (r *PgChatRepository) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat_room_users
			WHERE room_id = $1 AND user_id = $2
		)`, roomID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check room membership: %w", err)
	}
	return exists, nil
}

// ListRooms lists the rooms the user belongs to. The membership join is
// to-one per room, so it does not inflate pagination counts.
func (r *PgChatRepository) ListRooms(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64) (pagination.Result[*domain.ChatRoom], error) {
	q := pagination.Query{
		Table:    "chat_rooms r",
		Columns:  []string{"r.id", "r.created_at", "r.updated_at"},
		Joins:    []string{"JOIN chat_room_users cru ON cru.room_id = r.id"},
		Where:    []string{"cru.user_id = $1"},
		Args:     []interface{}{userID},
		Fields:   roomListFields,
		IDColumn: "r.id",
	}

	return pagination.Paginate(ctx, engine, r.db, req, q, scanRoomFromRows, "/chat-rooms")
}

// CreateMessage inserts a message and populates its ID and timestamps.
func (r *PgChatRepository) CreateMessage(ctx context.Context, message *domain.ChatMessage) error {
	if message == nil {
		return domain.NewValidationError("message", "message cannot be nil")
	}
	if message.RoomID == 0 {
		return domain.NewValidationError("room_id", "room ID is required")
	}
	if message.AuthorID == 0 {
		return domain.NewValidationError("author_id", "author ID is required")
	}
	if message.Message == "" {
		return domain.NewValidationError("message", "message text is required")
	}

	query := `
		INSERT INTO chat_messages (room_id, author_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		message.RoomID, message.AuthorID, message.Message,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)

	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.NewValidationError("room_id", "room or author does not exist")
		}
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListMessages lists the messages of one room with author summaries.
func (r *PgChatRepository) ListMessages(ctx context.Context, engine *pagination.Engine, req *pagination.Request, roomID int64) (pagination.Result[*domain.ChatMessage], error) {
	q := pagination.Query{
		Table: "chat_messages m",
		Columns: []string{
			"m.id", "m.room_id", "m.author_id", "m.message",
			"m.created_at", "m.updated_at",
			"u.nickname",
		},
		Joins:    []string{"JOIN users u ON u.id = m.author_id"},
		Where:    []string{"m.room_id = $1"},
		Args:     []interface{}{roomID},
		Fields:   messageListFields,
		IDColumn: "m.id",
	}

	path := fmt.Sprintf("/chat-rooms/%d/messages", roomID)
	return pagination.Paginate(ctx, engine, r.db, req, q, scanMessageFromRows, path)
}

// roomMembers loads the member summaries of a room.
func (r *PgChatRepository) roomMembers(ctx context.Context, roomID int64) ([]domain.UserSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.nickname
		FROM chat_room_users cru
		JOIN users u ON u.id = cru.user_id
		WHERE cru.room_id = $1
		ORDER BY u.id ASC`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	defer rows.Close()

	var users []domain.UserSummary
	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.ID, &u.Nickname); err != nil {
			return nil, fmt.Errorf("failed to scan room member: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room members: %w", err)
	}

	return users, nil
}

// scanRoomFromRows scans the current row from pgx.Rows into a ChatRoom.
func scanRoomFromRows(rows pgx.Rows) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	if err := rows.Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt); err != nil {
		return nil, err
	}
	return &room, nil
}

// scanMessageFromRows scans the current row from pgx.Rows into a ChatMessage.
func scanMessageFromRows(rows pgx.Rows) (*domain.ChatMessage, error) {
	var message domain.ChatMessage
	var authorNickname string
	err := rows.Scan(
		&message.ID, &message.RoomID, &message.AuthorID, &message.Message,
		&message.CreatedAt, &message.UpdatedAt,
		&authorNickname,
	)
	if err != nil {
		return nil, err
	}
	message.Author = &domain.UserSummary{ID: message.AuthorID, Nickname: authorNickname}
	return &message, nil
}
