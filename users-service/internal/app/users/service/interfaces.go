package service

import (
	"context"
	"time"

	"auctionhouse/users-service/internal/app/users/entity"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error)
	Logout(ctx context.Context, caller Caller, accessToken string, expiresAt time.Time, refreshToken string) error
}

type UserServiceInterface interface {
	List(ctx context.Context, caller Caller) ([]entity.UserResponse, error)
	Get(ctx context.Context, caller Caller, id uuid.UUID) (*entity.UserResponse, error)
	Update(ctx context.Context, caller Caller, id uuid.UUID, req *entity.UpdateUserRequest, partial bool) (*entity.UserResponse, error)
	Delete(ctx context.Context, caller Caller, id uuid.UUID) error
	Username(ctx context.Context, id uuid.UUID) (*entity.UsernameResponse, error)
	ChangePassword(ctx context.Context, caller Caller, req *entity.ChangePasswordRequest) error
}
