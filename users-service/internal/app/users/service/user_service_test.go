package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/repository"
	"auctionhouse/users-service/internal/app/users/repository/mocks"
	"auctionhouse/users-service/internal/app/users/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userServiceDeps struct {
	users     *mocks.MockUserRepository
	tokens    *mocks.MockTokenRepository
	publisher *mocks.MockMessagePublisher
	service   *UserService
}

func newUserServiceDeps() userServiceDeps {
	d := userServiceDeps{
		users:     new(mocks.MockUserRepository),
		tokens:    new(mocks.MockTokenRepository),
		publisher: new(mocks.MockMessagePublisher),
	}
	d.service = NewUserService(d.users, d.tokens, d.publisher)
	return d
}

// ==================== List / Get Tests ====================

func TestUserService_List_AdminOnly(t *testing.T) {
	// Arrange
	d := newUserServiceDeps()
	alice := newTestUser(t)

	// Act
	_, err := d.service.List(context.Background(), Caller{ID: alice.ID})

	// Assert
	assert.ErrorIs(t, err, ErrForbidden)
	d.users.AssertNotCalled(t, "List", mock.Anything)
}

func TestUserService_List_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newUserServiceDeps()
	alice := newTestUser(t)
	d.users.On("List", ctx).Return([]entity.User{*alice}, nil)

	// Act
	users, err := d.service.List(ctx, Caller{ID: uuid.New(), IsAdmin: true})

	// Assert
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserService_Get_Access(t *testing.T) {
	alice := newTestUser(t)

	tests := []struct {
		name    string
		caller  Caller
		wantErr error
	}{
		{name: "self", caller: Caller{ID: alice.ID}},
		{name: "admin", caller: Caller{ID: uuid.New(), IsAdmin: true}},
		{name: "other user", caller: Caller{ID: uuid.New()}, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			d := newUserServiceDeps()
			d.users.On("GetByID", mock.Anything, alice.ID).Return(alice, nil).Maybe()

			// Act
			resp, err := d.service.Get(context.Background(), tt.caller, alice.ID)

			// Assert
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, resp.ID)
			assert.Equal(t, "Valencia", resp.Municipality)
		})
	}
}

func TestUserService_Get_NotFound(t *testing.T) {
	// Arrange
	d := newUserServiceDeps()
	id := uuid.New()
	d.users.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

	// Act
	_, err := d.service.Get(context.Background(), Caller{ID: uuid.New(), IsAdmin: true}, id)

	// Assert
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// ==================== Update Tests ====================

func TestUserService_Update_Partial(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newUserServiceDeps()
	alice := newTestUser(t)

	d.users.On("GetByID", ctx, alice.ID).Return(alice, nil)
	d.users.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Locality == "Ruzafa" && u.Username == "alice" && u.Email == "alice@example.com"
	})).Return(nil)

	// Act
	resp, err := d.service.Update(ctx, Caller{ID: alice.ID}, alice.ID, &entity.UpdateUserRequest{Locality: strPtr("Ruzafa")}, true)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Ruzafa", resp.Locality)
	d.users.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything, mock.Anything)
	d.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Update_FullRequiresUsernameAndEmail(t *testing.T) {
	// Arrange
	d := newUserServiceDeps()
	alice := newTestUser(t)

	// Act
	_, err := d.service.Update(context.Background(), Caller{ID: alice.ID}, alice.ID, &entity.UpdateUserRequest{
		Username: strPtr("alice"),
	}, false)

	// Assert
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "email", svcErr.Field)
	assert.Equal(t, "This field is required.", svcErr.Message)
	d.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUserService_Update_ChangesEmailAndPassword(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newUserServiceDeps()
	alice := newTestUser(t)

	d.users.On("GetByID", ctx, alice.ID).Return(alice, nil)
	d.users.On("ExistsByEmail", ctx, "new@example.com", alice.ID).Return(false, nil)
	d.users.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "new@example.com" && util.CheckPassword("newpass456", u.PasswordHash)
	})).Return(nil)

	// Act
	resp, err := d.service.Update(ctx, Caller{ID: alice.ID}, alice.ID, &entity.UpdateUserRequest{
		Username: strPtr("alice"),
		Email:    strPtr("new@example.com"),
		Password: strPtr("newpass456"),
	}, false)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	d.users.AssertExpectations(t)
	d.users.AssertNotCalled(t, "ExistsByUsername", mock.Anything, mock.Anything, mock.Anything)
	d.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Update_OverlongPasswordWritesNothing(t *testing.T) {
	// Arrange
	d := newUserServiceDeps()
	alice := newTestUser(t)

	// Act
	_, err := d.service.Update(context.Background(), Caller{ID: alice.ID}, alice.ID, &entity.UpdateUserRequest{
		Email:    strPtr("new@example.com"),
		Password: strPtr("a1" + strings.Repeat("x", 80)),
	}, true)

	// Assert
	assert.ErrorIs(t, err, ErrWeakPassword)
	d.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	d.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Update_DuplicateUsername(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newUserServiceDeps()
	alice := newTestUser(t)

	d.users.On("GetByID", ctx, alice.ID).Return(alice, nil)
	d.users.On("ExistsByUsername", ctx, "bob", alice.ID).Return(true, nil)

	// Act
	_, err := d.service.Update(ctx, Caller{ID: alice.ID}, alice.ID, &entity.UpdateUserRequest{Username: strPtr("bob")}, true)

	// Assert
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_Update_Rejected(t *testing.T) {
	alice := newTestUser(t)

	tests := []struct {
		name    string
		caller  Caller
		req     *entity.UpdateUserRequest
		wantErr error
	}{
		{
			name:    "other user",
			caller:  Caller{ID: uuid.New()},
			req:     &entity.UpdateUserRequest{Locality: strPtr("x")},
			wantErr: ErrForbidden,
		},
		{
			name:    "weak password",
			caller:  Caller{ID: alice.ID},
			req:     &entity.UpdateUserRequest{Password: strPtr("short")},
			wantErr: ErrWeakPassword,
		},
		{
			name:    "blank username",
			caller:  Caller{ID: alice.ID},
			req:     &entity.UpdateUserRequest{Username: strPtr("  ")},
			wantErr: ErrInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			d := newUserServiceDeps()

			// Act
			resp, err := d.service.Update(context.Background(), tt.caller, alice.ID, tt.req, true)

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
			d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

// ==================== Delete Tests ====================

func TestUserService_Delete_PublishesUserDeleted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newUserServiceDeps()
	alice := newTestUser(t)

	d.users.On("GetByID", ctx, alice.ID).Return(alice, nil)
	d.users.On("Delete", ctx, alice.ID).Return(nil)
	d.tokens.On("DeleteUserRefreshTokens", ctx, alice.ID).Return(nil)
	d.publisher.On("PublishMessage", ctx, alice.ID.String(), mock.MatchedBy(func(payload []byte) bool {
		var event entity.UserEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return false
		}
		return event.EventType == entity.EventUserDeleted &&
			event.UserID == alice.ID.String() &&
			event.Username == "alice" &&
			event.EventID != ""
	})).Return(nil)

	// Act
	err := d.service.Delete(ctx, Caller{ID: alice.ID}, alice.ID)

	// Assert
	require.NoError(t, err)
	d.users.AssertExpectations(t)
	d.tokens.AssertExpectations(t)
	d.publisher.AssertExpectations(t)
}

func TestUserService_Delete_PublishFailureStillDeletes(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newUserServiceDeps()
	alice := newTestUser(t)

	d.users.On("GetByID", ctx, alice.ID).Return(alice, nil)
	d.users.On("Delete", ctx, alice.ID).Return(nil)
	d.tokens.On("DeleteUserRefreshTokens", ctx, alice.ID).Return(errors.New("redis down"))
	d.publisher.On("PublishMessage", ctx, alice.ID.String(), mock.Anything).Return(errors.New("kafka down"))

	// Act
	err := d.service.Delete(ctx, Caller{ID: uuid.New(), IsAdmin: true}, alice.ID)

	// Assert
	require.NoError(t, err)
	d.users.AssertCalled(t, "Delete", ctx, alice.ID)
}

func TestUserService_Delete_Forbidden(t *testing.T) {
	// Arrange
	d := newUserServiceDeps()

	// Act
	err := d.service.Delete(context.Background(), Caller{ID: uuid.New()}, uuid.New())

	// Assert
	assert.ErrorIs(t, err, ErrForbidden)
	d.publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	// Arrange
	d := newUserServiceDeps()
	id := uuid.New()
	d.users.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

	// Act
	err := d.service.Delete(context.Background(), Caller{ID: id}, id)

	// Assert
	assert.ErrorIs(t, err, ErrUserNotFound)
	d.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// ==================== Username / ChangePassword Tests ====================

func TestUserService_Username(t *testing.T) {
	// Arrange
	d := newUserServiceDeps()
	alice := newTestUser(t)
	missing := uuid.New()
	d.users.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
	d.users.On("GetByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	// Act
	found, err := d.service.Username(context.Background(), alice.ID)
	_, missingErr := d.service.Username(context.Background(), missing)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.ErrorIs(t, missingErr, ErrUserNotFound)
}

func TestUserService_ChangePassword_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newUserServiceDeps()
	alice := newTestUser(t)

	d.users.On("GetByID", ctx, alice.ID).Return(alice, nil)
	d.users.On("UpdatePassword", ctx, alice.ID, mock.MatchedBy(func(hash string) bool {
		return util.CheckPassword("brandnew99", hash)
	})).Return(nil)

	// Act
	err := d.service.ChangePassword(ctx, Caller{ID: alice.ID}, &entity.ChangePasswordRequest{
		OldPassword: testPassword,
		NewPassword: "brandnew99",
	})

	// Assert
	require.NoError(t, err)
	d.users.AssertExpectations(t)
}

func TestUserService_ChangePassword_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		req       *entity.ChangePasswordRequest
		wantCode  string
		wantField string
		wantMsg   string
	}{
		{
			name:      "wrong old password",
			req:       &entity.ChangePasswordRequest{OldPassword: "password999", NewPassword: "brandnew99"},
			wantCode:  "WRONG_PASSWORD",
			wantField: "old_password",
			wantMsg:   "Wrong password.",
		},
		{
			name:      "weak new password",
			req:       &entity.ChangePasswordRequest{OldPassword: testPassword, NewPassword: "weak"},
			wantCode:  "INVALID_PASSWORD",
			wantField: "new_password",
			wantMsg:   "Password must be at least 8 characters long.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			d := newUserServiceDeps()
			alice := newTestUser(t)
			d.users.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)

			// Act
			err := d.service.ChangePassword(context.Background(), Caller{ID: alice.ID}, tt.req)

			// Assert
			var svcErr *Error
			require.True(t, errors.As(err, &svcErr))
			assert.Equal(t, tt.wantCode, svcErr.Code)
			assert.Equal(t, tt.wantField, svcErr.Field)
			assert.Equal(t, tt.wantMsg, svcErr.Message)
			d.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
