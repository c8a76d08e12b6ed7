package mocks

import (
	"context"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"

	"github.com/stretchr/testify/mock"
)

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockActivityRepository) Insert(ctx context.Context, activity *entity.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByAuction(ctx context.Context, auctionID uint, limit int64) ([]entity.Activity, error) {
	args := m.Called(ctx, auctionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Activity), args.Error(1)
}

func (m *MockActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
