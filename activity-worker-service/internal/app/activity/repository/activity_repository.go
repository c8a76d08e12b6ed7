package repository

import (
	"context"
	"fmt"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"
	"auctionhouse/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	serviceName = "activity-worker-service"
	table       = "activities"
)

type activityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(collection *mongo.Collection) ActivityRepository {
	return &activityRepository{collection: collection}
}

// EnsureIndexes creates the unique event_id index that makes redelivery
// idempotent, plus the lookup and retention indexes.
func (r *activityRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("event_id_uidx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "auction_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("auction_id_occurred_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "occurred_at", Value: 1}},
			Options: options.Index().SetName("occurred_at_idx"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}
	return nil
}

func (r *activityRepository) Insert(ctx context.Context, activity *entity.Activity) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, table)
	defer func() { timer.ObserveDuration(err) }()

	result, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		activity.ID = oid
	}
	return nil
}

func (r *activityRepository) ListByAuction(ctx context.Context, auctionID uint, limit int64) (activities []entity.Activity, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, table)
	defer func() { timer.ObserveDuration(err) }()

	filter := bson.M{"auction_id": auctionID}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find activities: %w", err)
	}
	defer cursor.Close(ctx)

	activities = make([]entity.Activity, 0)
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

func (r *activityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (deleted int64, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, table)
	defer func() { timer.ObserveDuration(err) }()

	result, err := r.collection.DeleteMany(ctx, bson.M{"occurred_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old activities: %w", err)
	}
	return result.DeletedCount, nil
}
