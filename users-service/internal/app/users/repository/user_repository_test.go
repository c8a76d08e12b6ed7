package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	driverErr := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "no rows", err: pgx.ErrNoRows, wantErr: ErrNotFound},
		{
			name:    "duplicate email",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			wantErr: ErrDuplicateEmail,
		},
		{
			name:    "duplicate username",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"},
			wantErr: ErrDuplicateUsername,
		},
		{name: "driver error", err: driverErr, wantErr: driverErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, "create user"), tt.wantErr)
		})
	}
}

func TestMapError_UnknownConstraintIsWrapped(t *testing.T) {
	// Arrange
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}

	// Act
	err := mapError(pgErr, "create user")

	// Assert
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.NotErrorIs(t, err, ErrDuplicateUsername)
	assert.Contains(t, err.Error(), "failed to create user")

	var target *pgconn.PgError
	assert.True(t, errors.As(err, &target))
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, mapError(nil, "create user"))
}
