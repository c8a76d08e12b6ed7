package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"
	"auctionhouse/auction-service/internal/app/auctions/util"
	"auctionhouse/pkg/logger"

	"github.com/google/uuid"
)

// Clock returns the current time. Services take it as an option so that
// tests can pin "now".
type Clock func() time.Time

type options struct {
	now Clock
}

type Option func(*options)

func WithClock(now Clock) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// eventPublisher sends AuctionEvents. Failures are logged and swallowed:
// the write has already committed.
type eventPublisher struct {
	publisher util.MessagePublisher
}

func (p eventPublisher) publish(ctx context.Context, eventType string, auctionID uint, caller policy.Caller, fill func(*entity.AuctionEvent)) {
	if p.publisher == nil {
		return
	}

	event := entity.AuctionEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		AuctionID: auctionID,
		ActorID:   caller.ID.String(),
		Actor:     caller.Username,
		Timestamp: time.Now().UTC(),
	}
	if fill != nil {
		fill(&event)
	}

	if err := p.send(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().
			Err(err).
			Str("event_type", eventType).
			Uint("auction_id", auctionID).
			Msg("Failed to publish auction event")
	}
}

func (p eventPublisher) send(ctx context.Context, event entity.AuctionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal auction event: %w", err)
	}

	if err := p.publisher.PublishMessage(ctx, strconv.FormatUint(uint64(event.AuctionID), 10), data); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}
	return nil
}
