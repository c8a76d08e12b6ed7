package service

import (
	"context"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"
)

type ActivityServiceInterface interface {
	Record(ctx context.Context, event *entity.AuctionEvent) error
	ListForAuction(ctx context.Context, auctionID uint, limit int) ([]entity.Activity, error)
	Prune(ctx context.Context) (int64, error)
}
