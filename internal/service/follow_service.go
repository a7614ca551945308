package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/events"
	"github.com/feedstack/social-feed-service/internal/observability"
	"github.com/feedstack/social-feed-service/internal/pagination"
	"github.com/feedstack/social-feed-service/internal/repository"
)

// FollowService implements the follow request/confirm lifecycle. A
// relation starts unconfirmed; confirmation and unfollow move the
// denormalized follower/following counters on both users in the same
// transaction as the relation write.
type FollowService struct {
	follows   repository.FollowRepository
	users     repository.UserRepository
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewFollowService creates a FollowService.
func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	publisher events.Publisher,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *FollowService {
	return &FollowService{
		follows:   follows,
		users:     users,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "follow_service").Logger(),
	}
}

// Request creates an unconfirmed follow relation. The followee must
// exist; counters do not move until confirmation.
func (s *FollowService) Request(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error) {
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return nil, err
	}

	relation, err := s.follows.Create(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordFollowRequested()
	s.logger.Info().
		Int64("follower_id", followerID).
		Int64("followee_id", followeeID).
		Msg("follow requested")
	return relation, nil
}

// Confirm flips the relation to confirmed and bumps the followee's
// follower counter and the follower's following counter. All three
// writes must commit together, so a transaction is required. Only the
// followee may confirm.
func (s *FollowService) Confirm(ctx context.Context, tx pgx.Tx, followerID, followeeID, requesterID int64) error {
	if tx == nil {
		return &domain.TxMisuseError{Op: "follow confirm"}
	}
	if requesterID != followeeID {
		return domain.ErrForbidden
	}

	if err := s.follows.WithTx(tx).Confirm(ctx, followerID, followeeID); err != nil {
		return err
	}

	users := s.users.WithTx(tx)
	if err := users.AdjustFollowerCount(ctx, followeeID, 1); err != nil {
		return err
	}
	if err := users.AdjustFollowingCount(ctx, followerID, 1); err != nil {
		return err
	}
	return nil
}

// NotifyConfirmed records the confirmation and publishes the
// follow.confirmed event. Call it after the confirming transaction has
// committed.
func (s *FollowService) NotifyConfirmed(ctx context.Context, relation *domain.FollowRelation) {
	s.metrics.RecordFollowConfirmed()
	if err := s.publisher.Publish(ctx, domain.Event{
		Type:        domain.EventFollowConfirmed,
		AggregateID: relation.ID,
		Payload:     relation,
	}); err != nil {
		s.logger.Warn().Err(err).Int64("relation_id", relation.ID).Msg("follow.confirmed event not published")
	}
}

// Get returns the relation between follower and followee.
func (s *FollowService) Get(ctx context.Context, followerID, followeeID int64) (*domain.FollowRelation, error) {
	return s.follows.Get(ctx, followerID, followeeID)
}

// Unfollow deletes the relation. Counters move back only if the
// relation was confirmed, so the delete and the decrements must commit
// together. Only the follower may unfollow.
func (s *FollowService) Unfollow(ctx context.Context, tx pgx.Tx, followerID, followeeID, requesterID int64) error {
	if tx == nil {
		return &domain.TxMisuseError{Op: "unfollow"}
	}
	if requesterID != followerID {
		return domain.ErrForbidden
	}

	confirmed, err := s.follows.WithTx(tx).Delete(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	users := s.users.WithTx(tx)
	if err := users.AdjustFollowerCount(ctx, followeeID, -1); err != nil {
		return err
	}
	if err := users.AdjustFollowingCount(ctx, followerID, -1); err != nil {
		return err
	}
	return nil
}

// ListFollowers returns a page of the user's followers. Unconfirmed
// requests are visible only to the user themselves.
func (s *FollowService) ListFollowers(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID, requesterID int64) (pagination.Result[*domain.FollowRelation], error) {
	includeUnconfirmed := userID == requesterID
	return s.follows.ListFollowers(ctx, engine, req, userID, includeUnconfirmed)
}

// ListFollowing returns a page of the users this user follows.
// Unconfirmed requests are visible only to the user themselves.
func (s *FollowService) ListFollowing(ctx context.Context, engine *pagination.Engine, req *pagination.Request, userID, requesterID int64) (pagination.Result[*domain.FollowRelation], error) {
	includeUnconfirmed := userID == requesterID
	return s.follows.ListFollowing(ctx, engine, req, userID, includeUnconfirmed)
}
