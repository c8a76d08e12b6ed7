package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"
	"auctionhouse/activity-worker-service/internal/app/activity/repository"
	"auctionhouse/pkg/logger"
	"auctionhouse/pkg/metrics"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type ActivityService struct {
	repo      repository.ActivityRepository
	retention time.Duration
	now       func() time.Time
}

func NewActivityService(repo repository.ActivityRepository, retention time.Duration) *ActivityService {
	return &ActivityService{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

// Record stores one feed entry per event. Events of unknown types and
// events without an id are dropped; a repeated event id is not an error.
func (s *ActivityService) Record(ctx context.Context, event *entity.AuctionEvent) error {
	if !entity.KnownEvent(event.EventType) {
		logger.Ctx(ctx).Debug().Str("event_type", event.EventType).Msg("Ignoring event type")
		return nil
	}
	if event.EventID == "" {
		logger.Ctx(ctx).Warn().Str("event_type", event.EventType).Msg("Dropping event without id")
		return nil
	}

	activity := newActivity(event, s.now().UTC())
	err := s.repo.Insert(ctx, activity)
	switch {
	case errors.Is(err, repository.ErrDuplicateEvent):
		metrics.ActivityRecorded.WithLabelValues(event.EventType, "duplicate").Inc()
		logger.Ctx(ctx).Debug().Msg("Event already recorded")
		return nil
	case err != nil:
		metrics.ActivityRecorded.WithLabelValues(event.EventType, "failed").Inc()
		return fmt.Errorf("failed to record activity: %w", err)
	}

	metrics.ActivityRecorded.WithLabelValues(event.EventType, "stored").Inc()
	return nil
}

func newActivity(event *entity.AuctionEvent, recordedAt time.Time) *entity.Activity {
	occurredAt := event.Timestamp.UTC()
	if event.Timestamp.IsZero() {
		occurredAt = recordedAt
	}

	return &entity.Activity{
		EventID:    event.EventID,
		EventType:  event.EventType,
		AuctionID:  event.AuctionID,
		ActorID:    event.ActorID,
		Actor:      event.Actor,
		EntityID:   event.EntityID,
		Price:      event.Price,
		Value:      event.Value,
		Title:      event.Title,
		OccurredAt: occurredAt,
		RecordedAt: recordedAt,
	}
}

// ListForAuction returns the newest entries first. limit falls back to
// DefaultLimit when unset and is capped at MaxLimit.
func (s *ActivityService) ListForAuction(ctx context.Context, auctionID uint, limit int) ([]entity.Activity, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	activities, err := s.repo.ListByAuction(ctx, auctionID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// Prune removes entries that occurred before now minus the retention window.
func (s *ActivityService) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.retention)

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		metrics.ActivityPruned.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("failed to prune activities: %w", err)
	}

	metrics.ActivityPruned.WithLabelValues("success").Inc()
	logger.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("Pruned old activities")
	return deleted, nil
}
