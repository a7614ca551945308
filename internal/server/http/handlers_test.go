package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/feedstack/social-feed-service/internal/auth"
	"github.com/feedstack/social-feed-service/internal/config"
	"github.com/feedstack/social-feed-service/internal/database"
	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/observability"
	"github.com/feedstack/social-feed-service/internal/pagination"
	"github.com/feedstack/social-feed-service/internal/repository"
	"github.com/feedstack/social-feed-service/internal/service"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// stubTx is a non-nil pgx.Tx handed to transactional paths by fakeDB.
// Repositories are mocked, so no method is ever called on it.
type stubTx struct {
	pgx.Tx
}

// fakeDB implements Database. WithTransaction simply runs fn with a
// stub transaction handle.
type fakeDB struct {
	healthFn func() database.HealthStatus
	txErr    error
}

func (f *fakeDB) Health(context.Context) database.HealthStatus {
	if f.healthFn != nil {
		return f.healthFn()
	}
	return database.HealthStatus{Status: "healthy"}
}

func (f *fakeDB) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if f.txErr != nil {
		return f.txErr
	}
	return fn(stubTx{})
}

// capturePublisher implements events.Publisher and records every event.
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *capturePublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) captured() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.events...)
}

// mockUserRepo implements repository.UserRepository for handler tests.
type mockUserRepo struct {
	createFn          func(ctx context.Context, user *domain.User) error
	getByIDFn         func(ctx context.Context, id int64) (*domain.User, error)
	getByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	existsFn          func(ctx context.Context, email, nickname string) (bool, error)
	updateRefreshFn   func(ctx context.Context, id int64, token string) error
	adjustFollowerFn  func(ctx context.Context, id int64, delta int) error
	adjustFollowingFn func(ctx context.Context, id int64, delta int) error
	listFn            func(ctx context.Context) (pagination.Result[*domain.User], error)
	deleteFn          func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) WithTx(pgx.Tx) repository.UserRepository { return m }

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByNickname(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) ExistsByEmailOrNickname(ctx context.Context, email, nickname string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, email, nickname)
	}
	return false, nil
}

func (m *mockUserRepo) UpdateRefreshToken(ctx context.Context, id int64, token string) error {
	if m.updateRefreshFn != nil {
		return m.updateRefreshFn(ctx, id, token)
	}
	return nil
}

func (m *mockUserRepo) AdjustFollowerCount(ctx context.Context, id int64, delta int) error {
	if m.adjustFollowerFn != nil {
		return m.adjustFollowerFn(ctx, id, delta)
	}
	return nil
}

func (m *mockUserRepo) AdjustFollowingCount(ctx context.Context, id int64, delta int) error {
	if m.adjustFollowingFn != nil {
		return m.adjustFollowingFn(ctx, id, delta)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, _ *pagination.Engine, _ *pagination.Request) (pagination.Result[*domain.User], error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return &pagination.PageResult[*domain.User]{Data: []*domain.User{}}, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockPostRepo implements repository.PostRepository for handler tests.
type mockPostRepo struct {
	createFn    func(ctx context.Context, post *domain.Post) error
	getByIDFn   func(ctx context.Context, id int64) (*domain.Post, error)
	updateFn    func(ctx context.Context, post *domain.Post) error
	deleteFn    func(ctx context.Context, id int64) error
	existsFn    func(ctx context.Context, id int64) (bool, error)
	incCommentF func(ctx context.Context, id int64, delta int) error
	listFn      func(ctx context.Context, req *pagination.Request) (pagination.Result[*domain.Post], error)
}

func (m *mockPostRepo) WithTx(pgx.Tx) repository.PostRepository { return m }

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = 1
	return nil
}

func (m *mockPostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPostRepo) Update(ctx context.Context, post *domain.Post) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPostRepo) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

func (m *mockPostRepo) IncrementCommentCount(ctx context.Context, id int64, delta int) error {
	if m.incCommentF != nil {
		return m.incCommentF(ctx, id, delta)
	}
	return nil
}

func (m *mockPostRepo) IncrementLikeCount(context.Context, int64, int) error { return nil }

func (m *mockPostRepo) List(ctx context.Context, _ *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.Post], error) {
	if m.listFn != nil {
		return m.listFn(ctx, req)
	}
	return &pagination.PageResult[*domain.Post]{Data: []*domain.Post{}}, nil
}

// mockImageRepo implements repository.ImageRepository for handler tests.
type mockImageRepo struct {
	createFn func(ctx context.Context, image *domain.PostImage) error
}

func (m *mockImageRepo) WithTx(pgx.Tx) repository.ImageRepository { return m }

func (m *mockImageRepo) Create(ctx context.Context, image *domain.PostImage) error {
	if m.createFn != nil {
		return m.createFn(ctx, image)
	}
	return nil
}

func (m *mockImageRepo) ListByPostID(context.Context, int64) ([]domain.PostImage, error) {
	return nil, nil
}

func (m *mockImageRepo) DeleteByPostID(context.Context, int64) error { return nil }

// mockCommentRepo implements repository.CommentRepository for handler tests.
type mockCommentRepo struct {
	createFn  func(ctx context.Context, comment *domain.Comment) error
	getByIDFn func(ctx context.Context, id int64) (*domain.Comment, error)
	deleteFn  func(ctx context.Context, id int64) error
	listFn    func(ctx context.Context, postID int64) (pagination.Result[*domain.Comment], error)
}

func (m *mockCommentRepo) WithTx(pgx.Tx) repository.CommentRepository { return m }

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCommentRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, _ *pagination.Engine, _ *pagination.Request, postID int64) (pagination.Result[*domain.Comment], error) {
	if m.listFn != nil {
		return m.listFn(ctx, postID)
	}
	return &pagination.CursorResult[*domain.Comment]{Data: []*domain.Comment{}}, nil
}

// mockFollowRepo implements repository.FollowRepository for handler tests.
type mockFollowRepo struct {
	createFn    func(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error)
	getFn       func(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error)
	confirmFn   func(ctx context.Context, followerID, followeeID int64) error
	deleteFn    func(ctx context.Context, followerID, followeeID int64) (bool, error)
	followersFn func(ctx context.Context, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error)
}

func (m *mockFollowRepo) WithTx(pgx.Tx) repository.FollowRepository { return m }

func (m *mockFollowRepo) Create(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error) {
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return &domain.FollowRelation{Base: domain.Base{ID: 1}, FollowerID: followerID, FolloweeID: followeeID}, nil
}

func (m *mockFollowRepo) Get(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error) {
	if m.getFn != nil {
		return m.getFn(ctx, followerID, followeeID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockFollowRepo) Confirm(ctx context.Context, followerID, followeeID int64) error {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepo) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepo) ListFollowers(ctx context.Context, _ *pagination.Engine, _ *pagination.Request, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error) {
	if m.followersFn != nil {
		return m.followersFn(ctx, userID, includeUnconfirmed)
	}
	return &pagination.CursorResult[*domain.FollowRelation]{Data: []*domain.FollowRelation{}}, nil
}

func (m *mockFollowRepo) ListFollowing(ctx context.Context, _ *pagination.Engine, _ *pagination.Request, userID int64, includeUnconfirmed bool) (pagination.Result[*domain.FollowRelation], error) {
	return &pagination.CursorResult[*domain.FollowRelation]{Data: []*domain.FollowRelation{}}, nil
}

// mockChatRepo implements repository.ChatRepository for handler tests.
type mockChatRepo struct {
	createRoomFn func(ctx context.Context, userIDs []int64) (*domain.ChatRoom, error)
	getRoomFn    func(ctx context.Context, id int64) (*domain.ChatRoom, error)
	roomExistsFn func(ctx context.Context, id int64) (bool, error)
	isMemberFn   func(ctx context.Context, roomID, userID int64) (bool, error)
	createMsgFn  func(ctx context.Context, message *domain.ChatMessage) error
}

func (m *mockChatRepo) WithTx(pgx.Tx) repository.ChatRepository { return m }

func (m *mockChatRepo) CreateRoom(ctx context.Context, userIDs []int64) (*domain.ChatRoom, error) {
	if m.createRoomFn != nil {
		return m.createRoomFn(ctx, userIDs)
	}
	return &domain.ChatRoom{Base: domain.Base{ID: 1}}, nil
}

func (m *mockChatRepo) GetRoom(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	if m.getRoomFn != nil {
		return m.getRoomFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockChatRepo) RoomExists(ctx context.Context, id int64) (bool, error) {
	if m.roomExistsFn != nil {
		return m.roomExistsFn(ctx, id)
	}
	return true, nil
}

func (m *mockChatRepo) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, roomID, userID)
	}
	return true, nil
}

func (m *mockChatRepo) ListRooms(context.Context, *pagination.Engine, *pagination.Request, int64) (pagination.Result[*domain.ChatRoom], error) {
	return &pagination.CursorResult[*domain.ChatRoom]{Data: []*domain.ChatRoom{}}, nil
}

func (m *mockChatRepo) CreateMessage(ctx context.Context, message *domain.ChatMessage) error {
	if m.createMsgFn != nil {
		return m.createMsgFn(ctx, message)
	}
	message.ID = 1
	return nil
}

func (m *mockChatRepo) ListMessages(context.Context, *pagination.Engine, *pagination.Request, int64) (pagination.Result[*domain.ChatMessage], error) {
	return &pagination.CursorResult[*domain.ChatMessage]{Data: []*domain.ChatMessage{}}, nil
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// testRepos bundles the repository mocks a test server is built on.
type testRepos struct {
	users    *mockUserRepo
	posts    *mockPostRepo
	images   *mockImageRepo
	comments *mockCommentRepo
	follows  *mockFollowRepo
	chat     *mockChatRepo
}

func defaultRepos() *testRepos {
	return &testRepos{
		users:    &mockUserRepo{},
		posts:    &mockPostRepo{},
		images:   &mockImageRepo{},
		comments: &mockCommentRepo{},
		follows:  &mockFollowRepo{},
		chat:     &mockChatRepo{},
	}
}

func testHTTPAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "handler-test-secret-handler-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "social-feed-service-test",
		// Minimum cost keeps tests fast.
		BcryptCost: 4,
	}
}

// newTestServer creates a Server wired to mocked repositories and a
// capturing event publisher. namespace keeps prometheus registrations
// from colliding across tests.
func newTestServer(t *testing.T, repos *testRepos, publisher *capturePublisher, namespace string) *Server {
	t.Helper()

	logger := zerolog.Nop()
	metrics := observability.NewMetrics(namespace)
	tokens, err := auth.NewTokenManager(testHTTPAuthConfig())
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}

	baseURL, _ := url.Parse("http://api.test")
	engine := pagination.NewEngine(baseURL, logger, metrics.PaginationQueries)

	s := &Server{
		db:        &fakeDB{},
		engine:    engine,
		users:     service.NewUserService(repos.users, tokens, testHTTPAuthConfig(), metrics, logger),
		posts:     service.NewPostService(repos.posts, repos.images, publisher, metrics, logger),
		comments:  service.NewCommentService(repos.comments, repos.posts, publisher, metrics, logger),
		follows:   service.NewFollowService(repos.follows, repos.users, publisher, metrics, logger),
		chat:      service.NewChatService(repos.chat, publisher, metrics, logger),
		tokens:    tokens,
		metrics:   metrics,
		validate:  validator.New(),
		loginGate: newIPRateLimiter(5),
		logger:    logger,
	}
	s.router = s.buildRouter()
	return s
}

// serveHTTP dispatches a request through the router.
func serveHTTP(s *Server, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, r)
	return rr
}

// authorize attaches a valid access token for the given user.
func authorize(t *testing.T, s *Server, r *http.Request, userID int64, role domain.UserRole) *http.Request {
	t.Helper()
	token, err := s.tokens.IssueAccess(&domain.User{Base: domain.Base{ID: userID}, Role: role})
	if err != nil {
		t.Fatalf("failed to issue access token: %v", err)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// decodeBody decodes a JSON response body into target.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}
