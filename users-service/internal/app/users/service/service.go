package service

import (
	"context"
	"errors"
	"fmt"

	"auctionhouse/users-service/internal/app/users/repository"

	"github.com/google/uuid"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	ID       uuid.UUID
	Username string
	IsAdmin  bool
}

// canManage reports whether the caller may read or change the account id.
func (c Caller) canManage(id uuid.UUID) bool {
	return c.IsAdmin || c.ID == id
}

// checkUnique rejects an email or username already held by another account.
// Empty values are not checked.
func checkUnique(ctx context.Context, users repository.UserRepository, email, username string, excludeID uuid.UUID) error {
	if email != "" {
		exists, err := users.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return ErrDuplicateEmail
		}
	}
	if username != "" {
		exists, err := users.ExistsByUsername(ctx, username, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			return ErrDuplicateUsername
		}
	}
	return nil
}

// mapRepoError turns repository sentinels into business errors. A unique
// violation that slipped past checkUnique still surfaces as a duplicate.
func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrDuplicateUsername
	}
	return err
}
