package util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	serviceName = "auction-service"

	categoriesCacheKey = "categories:all"
	categoriesPrefix   = "categories"

	// blacklistPrefix is shared with users-service, which writes the keys on logout.
	blacklistPrefix = "blacklist:"
)

type cachedCategory struct {
	ID   uint   `msgpack:"id"`
	Name string `msgpack:"name"`
}

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisClientFromConn(client), nil
}

func NewRedisClientFromConn(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func (r *RedisClient) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := msgpack.Marshal(lo.Map(categories, func(c entity.Category, _ int) cachedCategory {
		return cachedCategory{ID: c.ID, Name: c.Name}
	}))
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	if err := r.client.Set(ctx, categoriesCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set categories in cache: %w", err)
	}

	return nil
}

func (r *RedisClient) GetCategories(ctx context.Context) ([]entity.Category, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, categoriesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, categoriesPrefix)
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get categories from cache: %w", err)
	}

	var cached []cachedCategory
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}
	metrics.RecordCacheHit(serviceName, categoriesPrefix)

	return lo.Map(cached, func(c cachedCategory, _ int) entity.Category {
		return entity.Category{ID: c.ID, Name: c.Name}
	}), nil
}

func (r *RedisClient) DeleteCategories(ctx context.Context) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, categoriesCacheKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete categories from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpExists)
	defer timer.ObserveDuration()

	n, err := r.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpExists)
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
