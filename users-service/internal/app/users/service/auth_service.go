package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auctionhouse/pkg/logger"
	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/repository"
	"auctionhouse/users-service/internal/app/users/util"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *util.JWTManager
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error) {
	if !util.StrongPassword(req.Password) {
		return nil, ErrWeakPassword
	}
	if err := checkUnique(ctx, s.userRepo, req.Email, req.Username, uuid.Nil); err != nil {
		return nil, err
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Municipality: req.Municipality,
		Locality:     req.Locality,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if req.BirthDate != nil {
		birthDate := req.BirthDate.Time()
		user.BirthDate = &birthDate
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("User registered")

	return &entity.RegisterResponse{
		User:   entity.NewUserResponse(user),
		Tokens: *tokens,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. The old token is
// consumed; presenting it again fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	stored, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to delete refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the access token until its expiry. A named refresh token
// is dropped alone, otherwise every refresh token of the caller goes.
func (s *AuthService) Logout(ctx context.Context, caller Caller, accessToken string, expiresAt time.Time, refreshToken string) error {
	if err := s.tokenRepo.AddToBlacklist(ctx, accessToken, expiresAt); err != nil {
		return fmt.Errorf("failed to blacklist access token: %w", err)
	}

	if refreshToken == "" {
		if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, caller.ID); err != nil {
			return fmt.Errorf("failed to delete refresh tokens: %w", err)
		}
		return nil
	}

	stored, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get refresh token: %w", err)
	}
	if stored.UserID != caller.ID {
		return ErrInvalidRefreshToken
	}
	if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *entity.User) (*entity.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.jwtManager.RefreshTokenDuration())
	if err := s.tokenRepo.SaveRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &entity.TokenPair{
		Access:    accessToken,
		Refresh:   refreshToken,
		ExpiresIn: int64(s.jwtManager.AccessTokenDuration().Seconds()),
	}, nil
}
