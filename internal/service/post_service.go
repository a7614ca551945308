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

// CreatePostInput carries the fields needed to create a post.
type CreatePostInput struct {
	AuthorID   int64
	Title      string
	Content    string
	ImagePaths []string
}

// UpdatePostInput carries the fields of a post update. Nil fields are
// left unchanged; a non-nil ImagePaths replaces the whole image set.
type UpdatePostInput struct {
	Title      *string
	Content    *string
	ImagePaths *[]string
}

// PostService implements post CRUD with attached images.
type PostService struct {
	posts     repository.PostRepository
	images    repository.ImageRepository
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewPostService creates a PostService.
func NewPostService(
	posts repository.PostRepository,
	images repository.ImageRepository,
	publisher events.Publisher,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *PostService {
	return &PostService{
		posts:     posts,
		images:    images,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "post_service").Logger(),
	}
}

// Create inserts the post row and its ordered image rows. The post and
// its images must land atomically, so a transaction is required.
func (s *PostService) Create(ctx context.Context, tx pgx.Tx, input CreatePostInput) (*domain.Post, error) {
	if tx == nil {
		return nil, &domain.TxMisuseError{Op: "post create"}
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}

	post := &domain.Post{
		AuthorID: input.AuthorID,
		Title:    input.Title,
		Content:  input.Content,
	}
	if err := s.posts.WithTx(tx).Create(ctx, post); err != nil {
		return nil, err
	}

	images := s.images.WithTx(tx)
	for i, path := range input.ImagePaths {
		img := &domain.PostImage{
			PostID: post.ID,
			Order:  i,
			Kind:   domain.ImageKindPost,
			Path:   path,
		}
		if err := images.Create(ctx, img); err != nil {
			return nil, err
		}
		post.Images = append(post.Images, *img)
	}

	return post, nil
}

// NotifyCreated records the creation and publishes the post.created
// event. Call it after the creating transaction has committed.
func (s *PostService) NotifyCreated(ctx context.Context, post *domain.Post) {
	s.metrics.RecordPostCreated()
	if err := s.publisher.Publish(ctx, domain.Event{
		Type:        domain.EventPostCreated,
		AggregateID: post.ID,
		Payload:     post,
	}); err != nil {
		s.logger.Warn().Err(err).Int64("post_id", post.ID).Msg("post.created event not published")
	}
}

// Get returns a post with its author summary and images.
func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// List returns a page of posts per the pagination request.
func (s *PostService) List(ctx context.Context, engine *pagination.Engine, req *pagination.Request) (pagination.Result[*domain.Post], error) {
	return s.posts.List(ctx, engine, req)
}

// Update applies a partial update. Only the author or an admin may
// update a post. Replacing the image set rewrites every image row, so a
// transaction is required whenever ImagePaths is non-nil.
func (s *PostService) Update(ctx context.Context, tx pgx.Tx, id, requesterID int64, requesterRole domain.UserRole, input UpdatePostInput) (*domain.Post, error) {
	if input.ImagePaths != nil && tx == nil {
		return nil, &domain.TxMisuseError{Op: "post image replace"}
	}

	posts := s.posts
	if tx != nil {
		posts = s.posts.WithTx(tx)
	}

	post, err := posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requesterID && requesterRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domain.NewValidationError("title", "must not be empty")
		}
		post.Title = title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}

	if err := posts.Update(ctx, post); err != nil {
		return nil, err
	}

	if input.ImagePaths != nil {
		images := s.images.WithTx(tx)
		if err := images.DeleteByPostID(ctx, id); err != nil {
			return nil, err
		}
		post.Images = post.Images[:0]
		for i, path := range *input.ImagePaths {
			img := &domain.PostImage{
				PostID: id,
				Order:  i,
				Kind:   domain.ImageKindPost,
				Path:   path,
			}
			if err := images.Create(ctx, img); err != nil {
				return nil, err
			}
			post.Images = append(post.Images, *img)
		}
	}

	return post, nil
}

// Delete removes a post. Image and comment rows go with it via the
// foreign key cascades. Only the author or an admin may delete.
func (s *PostService) Delete(ctx context.Context, id, requesterID int64, requesterRole domain.UserRole) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID && requesterRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("post_id", id).Msg("post deleted")
	return nil
}
