package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/service"
	"auctionhouse/pkg/logger"
	"auctionhouse/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const serviceName = "auction-service"

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

// UserEventsConsumer reads users-service events and removes the data of
// deleted users. A message is retried until it is handled and only then
// committed; undecodable messages and invalid events are committed and
// skipped.
type UserEventsConsumer struct {
	reader  MessageReader
	handler service.UserEventHandler
	topic   string
	groupID string

	fetchTimeout time.Duration
	retryDelay   time.Duration

	cancel   context.CancelFunc
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewUserEventsConsumer(cfg ConsumerConfig, handler service.UserEventHandler) *UserEventsConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: time.Second,
	})

	return newUserEventsConsumer(reader, cfg.Topic, cfg.GroupID, handler)
}

func newUserEventsConsumer(reader MessageReader, topic, groupID string, handler service.UserEventHandler) *UserEventsConsumer {
	return &UserEventsConsumer{
		reader:       reader,
		handler:      handler,
		topic:        topic,
		groupID:      groupID,
		fetchTimeout: 10 * time.Second,
		retryDelay:   time.Second,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

func (c *UserEventsConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group_id", c.groupID).Msg("Starting user events consumer")

	ctx, c.cancel = context.WithCancel(ctx)
	go c.consume(ctx)
}

func (c *UserEventsConsumer) Stop() error {
	logger.Info().Msg("Stopping user events consumer")

	close(c.stopChan)
	if c.cancel != nil {
		c.cancel()
	}
	<-c.doneChan

	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	logger.Info().Msg("User events consumer stopped")
	return nil
}

func (c *UserEventsConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
		message, err := c.reader.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			metrics.RecordKafkaError(serviceName, c.topic, "fetch")
			logger.Error().Err(err).Msg("Error fetching message")
			c.sleep(ctx)
			continue
		}

		if !c.processUntilDone(ctx, message) {
			return
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			metrics.RecordKafkaError(serviceName, c.topic, "commit")
			logger.Error().Err(err).Msg("Error committing message")
		}
	}
}

// processUntilDone retries the message until it is handled and reports
// false when the consumer stopped first. Permanently invalid events count as
// handled.
func (c *UserEventsConsumer) processUntilDone(ctx context.Context, message kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		timer := metrics.NewKafkaConsumeTimer(serviceName, c.topic, c.groupID)
		err := c.processMessage(ctx, message)
		timer.ObserveDuration(err)
		if err == nil {
			return true
		}
		if errors.Is(err, service.ErrInvalidUserEvent) {
			logger.Warn().
				Err(err).
				Int64("offset", message.Offset).
				Msg("Skipping invalid user event")
			return true
		}

		logger.Error().
			Err(err).
			Int("attempt", attempt).
			Int("partition", message.Partition).
			Int64("offset", message.Offset).
			Msg("Error processing message, retrying")

		c.sleep(ctx)
		if ctx.Err() != nil {
			return false
		}
		select {
		case <-c.stopChan:
			return false
		default:
		}
	}
}

func (c *UserEventsConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.UserEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		logger.Warn().
			Err(err).
			Int64("offset", message.Offset).
			Msg("Skipping undecodable user event")
		return nil
	}

	ctx = logger.WithContext(ctx, map[string]interface{}{
		"event_id":   event.EventID,
		"event_type": event.EventType,
		"user_id":    event.UserID,
	})
	logger.Ctx(ctx).Info().
		Int("partition", message.Partition).
		Int64("offset", message.Offset).
		Msg("Received user event")

	if err := c.handler.HandleUserEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to handle user event: %w", err)
	}
	return nil
}

func (c *UserEventsConsumer) sleep(ctx context.Context) {
	select {
	case <-time.After(c.retryDelay):
	case <-ctx.Done():
	case <-c.stopChan:
	}
}
