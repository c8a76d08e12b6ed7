package entity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date time.Time

func (d Date) Time() time.Time {
	return time.Time(d)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(d).Format(DateLayout))), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("date has wrong format, use %s", DateLayout)
	}
	*d = Date(parsed)
	return nil
}

// ============================================================================
// Requests
// ============================================================================

type RegisterRequest struct {
	Username     string `json:"username" validate:"required,max=150"`
	FirstName    string `json:"first_name" validate:"max=150"`
	LastName     string `json:"last_name" validate:"max=150"`
	Email        string `json:"email" validate:"required,email"`
	BirthDate    *Date  `json:"birth_date"`
	Municipality string `json:"municipality" validate:"max=100"`
	Locality     string `json:"locality" validate:"max=100"`
	Password     string `json:"password" validate:"required"`
}

// UpdateUserRequest backs PUT and PATCH. Nil fields are not provided.
type UpdateUserRequest struct {
	Username     *string `json:"username" validate:"omitempty,max=150"`
	FirstName    *string `json:"first_name" validate:"omitempty,max=150"`
	LastName     *string `json:"last_name" validate:"omitempty,max=150"`
	Email        *string `json:"email" validate:"omitempty,email"`
	BirthDate    *Date   `json:"birth_date"`
	Municipality *string `json:"municipality" validate:"omitempty,max=100"`
	Locality     *string `json:"locality" validate:"omitempty,max=100"`
	Password     *string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// LogoutRequest optionally names the refresh token to revoke. Without it
// every refresh token of the caller is dropped.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ============================================================================
// Responses
// ============================================================================

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	BirthDate    *Date     `json:"birth_date"`
	Municipality string    `json:"municipality"`
	Locality     string    `json:"locality"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Municipality: u.Municipality,
		Locality:     u.Locality,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt.UTC(),
	}
	if u.BirthDate != nil {
		d := Date(*u.BirthDate)
		resp.BirthDate = &d
	}
	return resp
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

type RegisterResponse struct {
	User   UserResponse `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

type UsernameResponse struct {
	Username string `json:"username"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
