package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity is one entry of an auction's feed, stored once per event.
type Activity struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	EventID    string             `json:"event_id" bson:"event_id"`
	EventType  string             `json:"event_type" bson:"event_type"`
	AuctionID  uint               `json:"auction_id" bson:"auction_id"`
	ActorID    string             `json:"actor_id" bson:"actor_id"`
	Actor      string             `json:"actor" bson:"actor"`
	EntityID   uint               `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Price      string             `json:"price,omitempty" bson:"price,omitempty"`
	Value      int                `json:"value,omitempty" bson:"value,omitempty"`
	Title      string             `json:"title,omitempty" bson:"title,omitempty"`
	OccurredAt time.Time          `json:"occurred_at" bson:"occurred_at"`
	RecordedAt time.Time          `json:"recorded_at" bson:"recorded_at"`
}

// AuctionEvent is the message auction-service publishes on the auction topic.
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

// KnownEvent reports whether eventType belongs in the feed.
func KnownEvent(eventType string) bool {
	switch eventType {
	case EventAuctionCreated, EventAuctionUpdated, EventAuctionDeleted,
		EventBidPlaced, EventRatingCreated, EventCommentCreated:
		return true
	}
	return false
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}
