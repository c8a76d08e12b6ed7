package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"auctionhouse/pkg/logger"
	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/repository"
	"auctionhouse/users-service/internal/app/users/util"

	"github.com/google/uuid"
)

type UserService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	publisher util.MessagePublisher
}

func NewUserService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	publisher util.MessagePublisher,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		publisher: publisher,
	}
}

// List is restricted to administrators.
func (s *UserService) List(ctx context.Context, caller Caller) ([]entity.UserResponse, error) {
	if !caller.IsAdmin {
		return nil, ErrForbidden
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]entity.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, entity.NewUserResponse(&users[i]))
	}
	return result, nil
}

func (s *UserService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*entity.UserResponse, error) {
	if !caller.canManage(id) {
		return nil, ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	resp := entity.NewUserResponse(user)
	return &resp, nil
}

// Update applies the provided fields. A full update (PUT) also requires
// username and email; absent optional fields keep their values either way.
func (s *UserService) Update(ctx context.Context, caller Caller, id uuid.UUID, req *entity.UpdateUserRequest, partial bool) (*entity.UserResponse, error) {
	if !caller.canManage(id) {
		return nil, ErrForbidden
	}

	if !partial {
		if req.Username == nil {
			return nil, InvalidField("username", "This field is required.")
		}
		if req.Email == nil {
			return nil, InvalidField("email", "This field is required.")
		}
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		return nil, InvalidField("username", "This field may not be blank.")
	}
	if req.Password != nil && !util.StrongPassword(*req.Password) {
		return nil, ErrWeakPassword
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	var email, username string
	if req.Email != nil && *req.Email != user.Email {
		email = *req.Email
	}
	if req.Username != nil && *req.Username != user.Username {
		username = *req.Username
	}
	if err := checkUnique(ctx, s.userRepo, email, username, id); err != nil {
		return nil, err
	}

	if req.Password != nil {
		passwordHash, err := util.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = passwordHash
	}
	applyUserUpdate(user, req)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}

	resp := entity.NewUserResponse(user)
	return &resp, nil
}

func applyUserUpdate(user *entity.User, req *entity.UpdateUserRequest) {
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.BirthDate != nil {
		birthDate := req.BirthDate.Time()
		user.BirthDate = &birthDate
	}
	if req.Municipality != nil {
		user.Municipality = *req.Municipality
	}
	if req.Locality != nil {
		user.Locality = *req.Locality
	}
}

// Delete removes the account, revokes its refresh tokens and announces the
// deletion so that other services drop the user's data.
func (s *UserService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if !caller.canManage(id) {
		return ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}

	if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, id); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("user_id", id.String()).Msg("Failed to drop refresh tokens of deleted user")
	}

	s.publishUserDeleted(ctx, user)

	logger.Ctx(ctx).Info().
		Str("user_id", id.String()).
		Str("deleted_by", caller.ID.String()).
		Msg("User deleted")
	return nil
}

// publishUserDeleted is best effort: the account is already gone.
func (s *UserService) publishUserDeleted(ctx context.Context, user *entity.User) {
	event := entity.UserEvent{
		EventID:   uuid.NewString(),
		EventType: entity.EventUserDeleted,
		UserID:    user.ID.String(),
		Username:  user.Username,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("Failed to marshal user event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.UserID, payload); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("event_type", event.EventType).
			Str("user_id", event.UserID).
			Msg("Failed to publish user event")
	}
}

// Username is public so that clients can label bids and comments.
func (s *UserService) Username(ctx context.Context, id uuid.UUID) (*entity.UsernameResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return &entity.UsernameResponse{Username: user.Username}, nil
}

func (s *UserService) ChangePassword(ctx context.Context, caller Caller, req *entity.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return mapRepoError(err)
	}

	if !util.CheckPassword(req.OldPassword, user.PasswordHash) {
		return ErrWrongPassword
	}
	if !util.StrongPassword(req.NewPassword) {
		return ErrWeakPassword.withField("new_password")
	}

	return s.setPassword(ctx, user.ID, req.NewPassword)
}

func (s *UserService) setPassword(ctx context.Context, id uuid.UUID, password string) error {
	passwordHash, err := util.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, id, passwordHash); err != nil {
		return mapRepoError(err)
	}
	return nil
}
