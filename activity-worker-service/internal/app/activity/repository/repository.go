package repository

import (
	"context"
	"errors"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"
)

var ErrDuplicateEvent = errors.New("activity for this event already exists")

type ActivityRepository interface {
	EnsureIndexes(ctx context.Context) error
	// Insert returns ErrDuplicateEvent when the event was already stored.
	Insert(ctx context.Context, activity *entity.Activity) error
	// ListByAuction returns the newest entries first.
	ListByAuction(ctx context.Context, auctionID uint, limit int64) ([]entity.Activity, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
