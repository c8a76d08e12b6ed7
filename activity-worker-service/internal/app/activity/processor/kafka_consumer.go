package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"
	"auctionhouse/activity-worker-service/internal/app/activity/service"
	"auctionhouse/pkg/logger"
	"auctionhouse/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const serviceName = "activity-worker-service"

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

// KafkaConsumer feeds auction events into the activity service. A message
// is retried until it is stored and only then committed; undecodable
// messages are committed and skipped.
type KafkaConsumer struct {
	reader      MessageReader
	activitySvc service.ActivityServiceInterface
	topic       string
	groupID     string

	fetchTimeout time.Duration
	retryDelay   time.Duration

	cancel   context.CancelFunc
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewKafkaConsumer(cfg ConsumerConfig, activitySvc service.ActivityServiceInterface) *KafkaConsumer {
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

	return newKafkaConsumer(reader, cfg.Topic, cfg.GroupID, activitySvc)
}

func newKafkaConsumer(reader MessageReader, topic, groupID string, activitySvc service.ActivityServiceInterface) *KafkaConsumer {
	return &KafkaConsumer{
		reader:       reader,
		activitySvc:  activitySvc,
		topic:        topic,
		groupID:      groupID,
		fetchTimeout: 10 * time.Second,
		retryDelay:   2 * time.Second,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group_id", c.groupID).Msg("Starting activity consumer")

	ctx, c.cancel = context.WithCancel(ctx)
	go c.consume(ctx)
}

func (c *KafkaConsumer) Stop() error {
	logger.Info().Msg("Stopping activity consumer")

	close(c.stopChan)
	if c.cancel != nil {
		c.cancel()
	}
	<-c.doneChan

	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	logger.Info().Msg("Activity consumer stopped")
	return nil
}

func (c *KafkaConsumer) consume(ctx context.Context) {
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

// processUntilDone reports false when the consumer was stopped before the
// message could be handled.
func (c *KafkaConsumer) processUntilDone(ctx context.Context, message kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		timer := metrics.NewKafkaConsumeTimer(serviceName, c.topic, c.groupID)
		err := c.processMessage(ctx, message)
		timer.ObserveDuration(err)
		if err == nil {
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

func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.AuctionEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		logger.Warn().
			Err(err).
			Int64("offset", message.Offset).
			Msg("Skipping undecodable auction event")
		return nil
	}

	ctx = logger.WithContext(ctx, map[string]interface{}{
		"event_id":   event.EventID,
		"event_type": event.EventType,
		"auction_id": event.AuctionID,
	})
	logger.Ctx(ctx).Debug().
		Int("partition", message.Partition).
		Int64("offset", message.Offset).
		Msg("Received auction event")

	if err := c.activitySvc.Record(ctx, &event); err != nil {
		return fmt.Errorf("failed to record auction event: %w", err)
	}
	return nil
}

func (c *KafkaConsumer) sleep(ctx context.Context) {
	select {
	case <-time.After(c.retryDelay):
	case <-ctx.Done():
	case <-c.stopChan:
	}
}
