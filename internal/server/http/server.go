// Package httpserver provides the HTTP REST API server for the social
// feed service.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/feedstack/social-feed-service/internal/auth"
	"github.com/feedstack/social-feed-service/internal/config"
	"github.com/feedstack/social-feed-service/internal/database"
	"github.com/feedstack/social-feed-service/internal/observability"
	"github.com/feedstack/social-feed-service/internal/pagination"
	"github.com/feedstack/social-feed-service/internal/service"
)

// Database is the slice of *database.DB the server uses: health
// reporting and the transaction boundary around multi-step writes.
type Database interface {
	Health(ctx context.Context) database.HealthStatus
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	db         Database
	engine     *pagination.Engine
	users      *service.UserService
	posts      *service.PostService
	comments   *service.CommentService
	follows    *service.FollowService
	chat       *service.ChatService
	tokens     *auth.TokenManager
	metrics    *observability.Metrics
	metricsCfg config.MetricsConfig
	validate   *validator.Validate
	loginGate  *ipRateLimiter
	// chatGateway upgrades GET /chat-rooms/{roomID}/ws to a WebSocket
	// session; nil disables the route.
	chatGateway http.Handler
	logger      zerolog.Logger
}

// Services bundles the domain services the server dispatches to.
type Services struct {
	Users    *service.UserService
	Posts    *service.PostService
	Comments *service.CommentService
	Follows  *service.FollowService
	Chat     *service.ChatService
}

// NewServer creates an HTTP server with all dependencies.
func NewServer(
	cfg config.ServerConfig,
	metricsCfg config.MetricsConfig,
	db Database,
	engine *pagination.Engine,
	svcs Services,
	tokens *auth.TokenManager,
	metrics *observability.Metrics,
	chatGateway http.Handler,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		db:          db,
		engine:      engine,
		users:       svcs.Users,
		posts:       svcs.Posts,
		comments:    svcs.Comments,
		follows:     svcs.Follows,
		chat:        svcs.Chat,
		tokens:      tokens,
		metrics:     metrics,
		metricsCfg:  metricsCfg,
		validate:    validator.New(),
		loginGate:   newIPRateLimiter(cfg.LoginRatePerMinute),
		chatGateway: chatGateway,
		logger:      logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestContextMiddleware)
	r.Use(s.metricsMiddleware)

	// Health endpoints (no auth)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	if s.metricsCfg.Enabled {
		r.Method(http.MethodGet, s.metricsCfg.Path, promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.With(s.rateLimitMiddleware).Post("/login", s.login)
		r.Post("/refresh", s.refresh)
		r.With(s.authMiddleware).Post("/logout", s.logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.listUsers)
		r.Get("/{userID}", s.getUser)
		r.Delete("/{userID}", s.deleteUser)

		r.Get("/{userID}/followers", s.listFollowers)
		r.Get("/{userID}/following", s.listFollowing)
		r.Post("/{userID}/follow", s.requestFollow)
		r.Delete("/{userID}/follow", s.unfollow)
		r.Post("/{userID}/follow/confirm", s.confirmFollow)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", s.listPosts)
		r.Get("/{postID}", s.getPost)
		r.Get("/{postID}/comments", s.listComments)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/", s.createPost)
			r.Patch("/{postID}", s.updatePost)
			r.Delete("/{postID}", s.deletePost)
			r.Post("/{postID}/comments", s.createComment)
		})
	})

	r.With(s.authMiddleware).Delete("/comments/{commentID}", s.deleteComment)

	r.Route("/chat-rooms", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", s.createChatRoom)
		r.Get("/", s.listChatRooms)
		r.Get("/{roomID}", s.getChatRoom)
		r.Get("/{roomID}/messages", s.listChatMessages)
		r.Post("/{roomID}/messages", s.sendChatMessage)
		if s.chatGateway != nil {
			r.Handle("/{roomID}/ws", s.chatGateway)
		}
	})

	return r
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler reports whether the service can take traffic.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}
