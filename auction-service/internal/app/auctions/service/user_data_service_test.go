package service

import (
	"context"
	"errors"
	"testing"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserDataService_HandleUserEvent_Deleted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockUserDataRepository)
	tx := new(mocks.MockTxManager)
	userID := uuid.New()

	tx.On("WithinTransaction", ctx).Return(nil)
	repo.On("PurgeUser", ctx, userID).Return(&entity.PurgeResult{Auctions: 1, Bids: 2, Ratings: 3, Comments: 4}, nil)

	svc := NewUserDataService(repo, tx)

	// Act
	err := svc.HandleUserEvent(ctx, &entity.UserEvent{EventType: entity.EventUserDeleted, UserID: userID.String()})

	// Assert
	require.NoError(t, err)
	repo.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestUserDataService_HandleUserEvent_IgnoresOtherEvents(t *testing.T) {
	// Arrange
	repo := new(mocks.MockUserDataRepository)
	tx := new(mocks.MockTxManager)
	svc := NewUserDataService(repo, tx)

	// Act
	err := svc.HandleUserEvent(context.Background(), &entity.UserEvent{EventType: "USER_UPDATED", UserID: uuid.NewString()})

	// Assert
	require.NoError(t, err)
	repo.AssertNotCalled(t, "PurgeUser", mock.Anything, mock.Anything)
}

func TestUserDataService_HandleUserEvent_InvalidUserID(t *testing.T) {
	// Arrange
	svc := NewUserDataService(new(mocks.MockUserDataRepository), new(mocks.MockTxManager))

	// Act
	err := svc.HandleUserEvent(context.Background(), &entity.UserEvent{EventType: entity.EventUserDeleted, UserID: "not-a-uuid"})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidUserEvent)
	assert.Contains(t, err.Error(), "invalid user id")
}

func TestUserDataService_PurgeUser_RepoError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockUserDataRepository)
	tx := new(mocks.MockTxManager)
	userID := uuid.New()

	tx.On("WithinTransaction", ctx).Return(nil)
	repo.On("PurgeUser", ctx, userID).Return(nil, errors.New("db error"))

	svc := NewUserDataService(repo, tx)

	// Act
	err := svc.PurgeUser(ctx, userID)

	// Assert
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidUserEvent)
	assert.Contains(t, err.Error(), "failed to purge user data")
}
