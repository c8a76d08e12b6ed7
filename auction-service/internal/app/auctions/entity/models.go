package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups auctions. Deleting a category deletes its auctions.
type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:50;not null;uniqueIndex"`

	Auctions []Auction `gorm:"constraint:OnDelete:CASCADE"`
}

// Auction is a listed item accepting bids until ClosingDate.
// CreationDate and AuctioneerID are set once on creation and never change.
type Auction struct {
	ID           uint            `gorm:"primaryKey"`
	Title        string          `gorm:"size:150;not null"`
	Description  string          `gorm:"type:text;not null"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Stock        int             `gorm:"not null"`
	Brand        string          `gorm:"size:100;not null"`
	CategoryID   uint            `gorm:"not null;index"`
	Thumbnail    string          `gorm:"not null"`
	CreationDate time.Time       `gorm:"not null"`
	ClosingDate  time.Time       `gorm:"not null;index"`
	AuctioneerID uuid.UUID       `gorm:"type:uuid;not null;index"`

	Bids     []Bid     `gorm:"constraint:OnDelete:CASCADE"`
	Ratings  []Rating  `gorm:"constraint:OnDelete:CASCADE"`
	Comments []Comment `gorm:"constraint:OnDelete:CASCADE"`
}

type Bid struct {
	ID           uint            `gorm:"primaryKey"`
	AuctionID    uint            `gorm:"not null;index"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreationDate time.Time       `gorm:"not null"`
	BidderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Bidder       string          `gorm:"size:150;not null"`
}

// Rating is unique per (UserID, AuctionID).
type Rating struct {
	ID        uint      `gorm:"primaryKey"`
	Value     int       `gorm:"not null;default:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_auction"`
	User      string    `gorm:"size:150;not null"`
	AuctionID uint      `gorm:"not null;uniqueIndex:idx_rating_user_auction;index"`
}

// Comment is unique per (UserID, AuctionID). EditDate moves on every update.
type Comment struct {
	ID           uint      `gorm:"primaryKey"`
	Title        string    `gorm:"type:text;not null"`
	Text         string    `gorm:"type:text;not null"`
	CreationDate time.Time `gorm:"not null"`
	EditDate     time.Time `gorm:"not null"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_user_auction"`
	User         string    `gorm:"size:150;not null"`
	AuctionID    uint      `gorm:"not null;uniqueIndex:idx_comment_user_auction;index"`
}

// RatingStats is the aggregate of ratings for one auction.
type RatingStats struct {
	AuctionID uint
	Count     int64
	Sum       int64
}

// PurgeResult reports rows removed for a deleted user.
type PurgeResult struct {
	Auctions int64
	Bids     int64
	Ratings  int64
	Comments int64
}

// AuctionEvent is published to the auction topic on every write.
type AuctionEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	AuctionID uint      `json:"auction_id"`
	ActorID   string    `json:"actor_id"`
	Actor     string    `json:"actor"`
	EntityID  uint      `json:"entity_id,omitempty"`
	Price     string    `json:"price,omitempty"`
	Value     int       `json:"value,omitempty"`
	Title     string    `json:"title,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventAuctionCreated = "AUCTION_CREATED"
	EventAuctionUpdated = "AUCTION_UPDATED"
	EventAuctionDeleted = "AUCTION_DELETED"
	EventBidPlaced      = "BID_PLACED"
	EventRatingCreated  = "RATING_CREATED"
	EventCommentCreated = "COMMENT_CREATED"
)

// UserEvent arrives from users-service on the user topic.
type UserEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

const EventUserDeleted = "USER_DELETED"
