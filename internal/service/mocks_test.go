package service

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/observability"
	"github.com/feedstack/social-feed-service/internal/pagination"
	"github.com/feedstack/social-feed-service/internal/repository"
)

// stubTx is a non-nil pgx.Tx for exercising tx-requiring paths. The
// repository mocks never touch the handle, so no method is implemented.
type stubTx struct {
	pgx.Tx
}

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestMetrics(namespace string) *observability.Metrics {
	return observability.NewMetrics(namespace)
}

// mockPublisher implements events.Publisher.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// mockUserRepository implements repository.UserRepository.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) WithTx(tx pgx.Tx) repository.UserRepository { return m }

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	args := m.Called(ctx, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmailOrNickname(ctx context.Context, email, nickname string) (bool, error) {
	args := m.Called(ctx, email, nickname)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) UpdateRefreshToken(ctx context.Context, id int64, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *mockUserRepository) AdjustFollowerCount(ctx context.Context, id int64, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *mockUserRepository) AdjustFollowingCount(ctx context.Context, id int64, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *mockUserRepository) List(ctx context.Context, engine *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.User], error) {
	args := m.Called(ctx, engine, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pagination.Result[*domain.User]), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockPostRepository implements repository.PostRepository.
type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) WithTx(tx pgx.Tx) repository.PostRepository { return m }

func (m *mockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepository) Update(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPostRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostRepository) IncrementCommentCount(ctx context.Context, id int64, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *mockPostRepository) IncrementLikeCount(ctx context.Context, id int64, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *mockPostRepository) List(ctx context.Context, engine *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.Post], error) {
	args := m.Called(ctx, engine, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pagination.Result[*domain.Post]), args.Error(1)
}

// mockImageRepository implements repository.ImageRepository.
type mockImageRepository struct {
	mock.Mock
}

func (m *mockImageRepository) WithTx(tx pgx.Tx) repository.ImageRepository { return m }

func (m *mockImageRepository) Create(ctx context.Context, image *domain.PostImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *mockImageRepository) ListByPostID(ctx context.Context, postID int64) ([]domain.PostImage, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostImage), args.Error(1)
}

func (m *mockImageRepository) DeleteByPostID(ctx context.Context, postID int64) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

// mockCommentRepository implements repository.CommentRepository.
type mockCommentRepository struct {
	mock.Mock
}

func (m *mockCommentRepository) WithTx(tx pgx.Tx) repository.CommentRepository { return m }

func (m *mockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *mockCommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, engine *pagination.Engine, req *pagination.Request, postID int64) (pagination.Result[*domain.Comment], error) {
	args := m.Called(ctx, engine, req, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pagination.Result[*domain.Comment]), args.Error(1)
}

// mockFollowRepository implements repository.FollowRepository.
type mockFollowRepository struct {
	mock.Mock
}

func (m *mockFollowRepository) WithTx(tx pgx.Tx) repository.FollowRepository { return m }

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error) {
	args := m.Called(ctx, followerID, followeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FollowRelation), args.Error(1)
}

func (m *mockFollowRepository) Get(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error) {
	args := m.Called(ctx, followerID, followeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FollowRelation), args.Error(1)
}

func (m *mockFollowRepository) Confirm(ctx context.Context, followerID, followeeID int64) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFollowRepository) ListFollowers(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error) {
	args := m.Called(ctx, engine, req, userID, includeUnconfirmed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pagination.Result[*domain.FollowRelation]), args.Error(1)
}

func (m *mockFollowRepository) ListFollowing(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error) {
	args := m.Called(ctx, engine, req, userID, includeUnconfirmed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pagination.Result[*domain.FollowRelation]), args.Error(1)
}

// mockChatRepository implements repository.ChatRepository.
type mockChatRepository struct {
	mock.Mock
}

func (m *mockChatRepository) WithTx(tx pgx.Tx) repository.ChatRepository { return m }

func (m *mockChatRepository) CreateRoom(ctx context.Context, userIDs []int64) (*domain.ChatRoom, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatRoom), args.Error(1)
}

func (m *mockChatRepository) GetRoom(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatRoom), args.Error(1)
}

func (m *mockChatRepository) RoomExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockChatRepository) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockChatRepository) ListRooms(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID int64) (pagination.Result[*domain.ChatRoom], error) {
	args := m.Called(ctx, engine, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pagination.Result[*domain.ChatRoom]), args.Error(1)
}

func (m *mockChatRepository) CreateMessage(ctx context.Context, message *domain.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockChatRepository) ListMessages(ctx context.Context, engine *pagination.Engine, req *pagination.Request, roomID int64) (pagination.Result[*domain.ChatMessage], error) {
	args := m.Called(ctx, engine, req, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pagination.Result[*domain.ChatMessage]), args.Error(1)
}
