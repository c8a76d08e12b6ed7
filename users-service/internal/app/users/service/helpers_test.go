package service

import (
	"testing"
	"time"

	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testPassword = "password123"

func newTestJWTManager() *util.JWTManager {
	return util.NewJWTManager("test-secret-key", 15*time.Minute, 7*24*time.Hour)
}

func newTestUser(t *testing.T) *entity.User {
	t.Helper()
	hash, err := util.HashPassword(testPassword)
	require.NoError(t, err)
	return &entity.User{
		ID:           uuid.New(),
		Username:     "alice",
		FirstName:    "Alice",
		LastName:     "Liddell",
		Email:        "alice@example.com",
		Municipality: "Valencia",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
}

func strPtr(s string) *string {
	return &s
}
