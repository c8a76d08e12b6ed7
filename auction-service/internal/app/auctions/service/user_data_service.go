package service

import (
	"context"
	"errors"
	"fmt"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/repository"
	"auctionhouse/pkg/logger"
	"auctionhouse/pkg/metrics"

	"github.com/google/uuid"
)

// ErrInvalidUserEvent marks an event that can never be handled; consumers
// skip it instead of retrying.
var ErrInvalidUserEvent = errors.New("invalid user event")

// UserDataService removes the data of users deleted in users-service.
type UserDataService struct {
	userDataRepo repository.UserDataRepository
	tx           repository.TxManager
}

func NewUserDataService(userDataRepo repository.UserDataRepository, tx repository.TxManager) *UserDataService {
	return &UserDataService{
		userDataRepo: userDataRepo,
		tx:           tx,
	}
}

// HandleUserEvent processes one message from the user topic. Events other
// than USER_DELETED are ignored. Purging is idempotent.
func (s *UserDataService) HandleUserEvent(ctx context.Context, event *entity.UserEvent) error {
	if event.EventType != entity.EventUserDeleted {
		logger.Ctx(ctx).Debug().Str("event_type", event.EventType).Msg("Ignoring user event")
		return nil
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user id %q: %v", ErrInvalidUserEvent, event.UserID, err)
	}

	return s.PurgeUser(ctx, userID)
}

func (s *UserDataService) PurgeUser(ctx context.Context, userID uuid.UUID) error {
	var result *entity.PurgeResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.userDataRepo.PurgeUser(ctx, userID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to purge user data: %w", err)
	}

	metrics.UserDataPurged.WithLabelValues("auctions").Add(float64(result.Auctions))
	metrics.UserDataPurged.WithLabelValues("bids").Add(float64(result.Bids))
	metrics.UserDataPurged.WithLabelValues("ratings").Add(float64(result.Ratings))
	metrics.UserDataPurged.WithLabelValues("comments").Add(float64(result.Comments))

	logger.Ctx(ctx).Info().
		Str("user_id", userID.String()).
		Int64("auctions", result.Auctions).
		Int64("bids", result.Bids).
		Int64("ratings", result.Ratings).
		Int64("comments", result.Comments).
		Msg("User data purged")

	return nil
}
