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

// CreateCommentInput carries the fields needed to create a comment.
type CreateCommentInput struct {
	PostID   int64
	AuthorID int64
	Content  string
}

// CommentService implements per-post comments. Creating or deleting a
// comment adjusts the post's denormalized comment counter in the same
// transaction as the row write.
type CommentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	publisher events.Publisher,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *CommentService {
	return &CommentService{
		comments:  comments,
		posts:     posts,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "comment_service").Logger(),
	}
}

// Create inserts the comment and bumps the post's comment counter. Both
// writes must commit together, so a transaction is required.
func (s *CommentService) Create(ctx context.Context, tx pgx.Tx, input CreateCommentInput) (*domain.Comment, error) {
	if tx == nil {
		return nil, &domain.TxMisuseError{Op: "comment create"}
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, domain.NewValidationError("content", "must not be empty")
	}

	comment := &domain.Comment{
		PostID:   input.PostID,
		AuthorID: input.AuthorID,
		Content:  input.Content,
	}
	if err := s.comments.WithTx(tx).Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.posts.WithTx(tx).IncrementCommentCount(ctx, input.PostID, 1); err != nil {
		return nil, err
	}
	return comment, nil
}

// NotifyCreated records the creation and publishes the comment.created
// event. Call it after the creating transaction has committed.
func (s *CommentService) NotifyCreated(ctx context.Context, comment *domain.Comment) {
	s.metrics.RecordCommentCreated()
	if err := s.publisher.Publish(ctx, domain.Event{
		Type:        domain.EventCommentCreated,
		AggregateID: comment.ID,
		Payload:     comment,
	}); err != nil {
		s.logger.Warn().Err(err).Int64("comment_id", comment.ID).Msg("comment.created event not published")
	}
}

// Get returns a comment by id.
func (s *CommentService) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

// ListByPost returns a page of a post's comments. The post must exist.
func (s *CommentService) ListByPost(ctx context.Context, engine *pagination.Engine, req *pagination.Request, postID int64) (pagination.Result[*domain.Comment], error) {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewNotFoundError("post", postID)
	}
	return s.comments.ListByPost(ctx, engine, req, postID)
}

// Delete removes a comment and decrements the post's comment counter
// in the same transaction. Only the author or an admin may delete.
func (s *CommentService) Delete(ctx context.Context, tx pgx.Tx, id, requesterID int64, requesterRole domain.UserRole) error {
	if tx == nil {
		return &domain.TxMisuseError{Op: "comment delete"}
	}

	comments := s.comments.WithTx(tx)
	comment, err := comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != requesterID && requesterRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if err := comments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.posts.WithTx(tx).IncrementCommentCount(ctx, comment.PostID, -1); err != nil {
		return err
	}

	s.logger.Info().Int64("comment_id", id).Msg("comment deleted")
	return nil
}
