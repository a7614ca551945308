// Package main provides the entry point for the social feed service
// HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/feedstack/social-feed-service/internal/auth"
	"github.com/feedstack/social-feed-service/internal/config"
	"github.com/feedstack/social-feed-service/internal/database"
	"github.com/feedstack/social-feed-service/internal/events"
	"github.com/feedstack/social-feed-service/internal/observability"
	"github.com/feedstack/social-feed-service/internal/pagination"
	"github.com/feedstack/social-feed-service/internal/repository"
	httpserver "github.com/feedstack/social-feed-service/internal/server/http"
	"github.com/feedstack/social-feed-service/internal/server/ws"
	"github.com/feedstack/social-feed-service/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("social-feed-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Run migrations if configured.
	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Metrics registry.
	metrics := observability.NewMetrics("socialfeed")

	// Create repositories.
	userRepo := repository.NewPgUserRepository(db)
	postRepo := repository.NewPgPostRepository(db)
	imageRepo := repository.NewPgImageRepository(db)
	commentRepo := repository.NewPgCommentRepository(db)
	followRepo := repository.NewPgFollowRepository(db)
	chatRepo := repository.NewPgChatRepository(db)

	// Pagination engine; next-page URLs are synthesized against the
	// public base URL.
	baseURL, err := url.Parse(cfg.Server.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("parse public base URL: %w", err)
	}
	engine := pagination.NewEngine(baseURL, logger, metrics.PaginationQueries)

	// Domain event publisher.
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger, metrics)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("kafka event publisher enabled")
	} else {
		publisher = events.NewNoopPublisher()
		logger.Info().Msg("event publishing disabled")
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close event publisher")
		}
	}()

	// Token issuance.
	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("create token manager: %w", err)
	}

	// Domain services.
	userService := service.NewUserService(userRepo, tokens, cfg.Auth, metrics, logger)
	postService := service.NewPostService(postRepo, imageRepo, publisher, metrics, logger)
	commentService := service.NewCommentService(commentRepo, postRepo, publisher, metrics, logger)
	followService := service.NewFollowService(followRepo, userRepo, publisher, metrics, logger)
	chatService := service.NewChatService(chatRepo, publisher, metrics, logger)

	// WebSocket chat gateway.
	hub := ws.NewHub(logger)
	gateway := ws.NewGateway(hub, chatService, cfg.Chat, metrics, logger)

	// HTTP server.
	server := httpserver.NewServer(
		cfg.Server,
		cfg.Metrics,
		db,
		engine,
		httpserver.Services{
			Users:    userService,
			Posts:    postService,
			Comments: commentService,
			Follows:  followService,
			Chat:     chatService,
		},
		tokens,
		metrics,
		gateway,
		logger,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info().Msg("social-feed-service stopped")
	return nil
}
