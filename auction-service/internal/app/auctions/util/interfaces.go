package util

import (
	"context"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"
)

// CategoryCache holds the full category list between writes.
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	// GetCategories returns nil, nil on a miss.
	GetCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategories(ctx context.Context) error
}

// TokenBlacklist answers whether users-service has revoked an access token.
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
