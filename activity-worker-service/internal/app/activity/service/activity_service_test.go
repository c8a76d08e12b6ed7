package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"
	"auctionhouse/activity-worker-service/internal/app/activity/repository"
	"auctionhouse/activity-worker-service/internal/app/activity/repository/mocks"
	"auctionhouse/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo repository.ActivityRepository) *ActivityService {
	svc := NewActivityService(repo, 720*time.Hour)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func bidEvent() *entity.AuctionEvent {
	return &entity.AuctionEvent{
		EventID:   "5b0e2c1a-1f7d-4f0e-9d59-3c3c9b0f8e11",
		EventType: entity.EventBidPlaced,
		AuctionID: 7,
		ActorID:   "0d8f5a4e-8f43-4a43-9a4c-4f7b2b1c0e02",
		Actor:     "bob",
		EntityID:  31,
		Price:     "125.50",
		Timestamp: time.Date(2025, 3, 10, 11, 59, 0, 0, time.FixedZone("CET", 3600)),
	}
}

func TestActivityService_Record_Stored(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockActivityRepository)
	svc := newTestService(repo)
	event := bidEvent()
	stored := metrics.ActivityRecorded.WithLabelValues(entity.EventBidPlaced, "stored")
	before := testutil.ToFloat64(stored)

	repo.On("Insert", ctx, mock.MatchedBy(func(a *entity.Activity) bool {
		return a.EventID == event.EventID &&
			a.AuctionID == 7 &&
			a.Actor == "bob" &&
			a.EntityID == 31 &&
			a.Price == "125.50" &&
			a.OccurredAt.Equal(event.Timestamp) &&
			a.OccurredAt.Location() == time.UTC &&
			a.RecordedAt.Equal(fixedNow)
	})).Return(nil)

	// Act
	err := svc.Record(ctx, event)

	// Assert
	require.NoError(t, err)
	repo.AssertExpectations(t)
	assert.Equal(t, before+1, testutil.ToFloat64(stored))
}

func TestActivityService_Record_MissingTimestampUsesNow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockActivityRepository)
	svc := newTestService(repo)
	event := bidEvent()
	event.Timestamp = time.Time{}

	repo.On("Insert", ctx, mock.MatchedBy(func(a *entity.Activity) bool {
		return a.OccurredAt.Equal(fixedNow)
	})).Return(nil)

	// Act
	err := svc.Record(ctx, event)

	// Assert
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestActivityService_Record_DuplicateIsNotAnError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockActivityRepository)
	svc := newTestService(repo)
	duplicate := metrics.ActivityRecorded.WithLabelValues(entity.EventBidPlaced, "duplicate")
	before := testutil.ToFloat64(duplicate)

	repo.On("Insert", ctx, mock.Anything).Return(repository.ErrDuplicateEvent)

	// Act
	err := svc.Record(ctx, bidEvent())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(duplicate))
}

func TestActivityService_Record_RepositoryError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockActivityRepository)
	svc := newTestService(repo)

	repo.On("Insert", ctx, mock.Anything).Return(errors.New("no reachable servers"))

	// Act
	err := svc.Record(ctx, bidEvent())

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record activity")
}

func TestActivityService_Record_SkipsUnusableEvents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *entity.AuctionEvent)
	}{
		{name: "unknown type", mutate: func(e *entity.AuctionEvent) { e.EventType = "AUCTION_ARCHIVED" }},
		{name: "user event", mutate: func(e *entity.AuctionEvent) { e.EventType = "USER_DELETED" }},
		{name: "missing event id", mutate: func(e *entity.AuctionEvent) { e.EventID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			repo := new(mocks.MockActivityRepository)
			svc := newTestService(repo)
			event := bidEvent()
			tt.mutate(event)

			// Act
			err := svc.Record(context.Background(), event)

			// Assert
			assert.NoError(t, err)
			repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestActivityService_ListForAuction_Limits(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int64
	}{
		{name: "unset uses default", limit: 0, expected: DefaultLimit},
		{name: "within range", limit: 10, expected: 10},
		{name: "at maximum", limit: MaxLimit, expected: MaxLimit},
		{name: "above maximum is capped", limit: 1000, expected: MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			repo := new(mocks.MockActivityRepository)
			svc := newTestService(repo)
			expected := []entity.Activity{{EventID: "e1", AuctionID: 3}}

			repo.On("ListByAuction", ctx, uint(3), tt.expected).Return(expected, nil)

			// Act
			activities, err := svc.ListForAuction(ctx, 3, tt.limit)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, expected, activities)
			repo.AssertExpectations(t)
		})
	}
}

func TestActivityService_ListForAuction_Error(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockActivityRepository)
	svc := newTestService(repo)

	repo.On("ListByAuction", ctx, uint(3), int64(DefaultLimit)).Return(nil, errors.New("timeout"))

	// Act
	activities, err := svc.ListForAuction(ctx, 3, 0)

	// Assert
	require.Error(t, err)
	assert.Nil(t, activities)
}

func TestActivityService_Prune(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockActivityRepository)
	svc := newTestService(repo)
	success := metrics.ActivityPruned.WithLabelValues("success")
	before := testutil.ToFloat64(success)

	repo.On("DeleteOlderThan", ctx, fixedNow.Add(-720*time.Hour)).Return(int64(12), nil)

	// Act
	deleted, err := svc.Prune(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
	assert.Equal(t, before+1, testutil.ToFloat64(success))
	repo.AssertExpectations(t)
}

func TestActivityService_Prune_Error(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockActivityRepository)
	svc := newTestService(repo)
	failed := metrics.ActivityPruned.WithLabelValues("failed")
	before := testutil.ToFloat64(failed)

	repo.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), errors.New("not primary"))

	// Act
	deleted, err := svc.Prune(ctx)

	// Assert
	require.Error(t, err)
	assert.Zero(t, deleted)
	assert.Equal(t, before+1, testutil.ToFloat64(failed))
}
