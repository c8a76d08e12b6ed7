package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. PasswordHash never leaves the service.
type User struct {
	ID           uuid.UUID  `db:"id"`
	Username     string     `db:"username"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Email        string     `db:"email"`
	BirthDate    *time.Time `db:"birth_date"`
	Municipality string     `db:"municipality"`
	Locality     string     `db:"locality"`
	PasswordHash string     `db:"password_hash"`
	IsAdmin      bool       `db:"is_admin"`
	CreatedAt    time.Time  `db:"created_at"`
}

// RefreshToken is an opaque token stored in Redis until it expires or is used.
type RefreshToken struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// UserEvent is published to the user topic. auction-service consumes
// USER_DELETED to purge the user's auctions, bids, ratings and comments.
type UserEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

const EventUserDeleted = "USER_DELETED"
