package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auctionhouse/pkg/metrics"
	"auctionhouse/users-service/internal/app/users/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Key layout shared with auction-service, which reads blacklistKey.
const (
	refreshTokenPrefix = "refresh_token:"
	userTokensPrefix   = "user_tokens:"
	blacklistPrefix    = "blacklist:"
)

type redisTokenRepository struct {
	client *redis.Client
}

func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client}
}

// SaveRefreshToken stores token -> user id and adds the token to the user's
// set so that logout can drop every token of the user.
func (r *redisTokenRepository) SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	defer metrics.NewRedisTimer(serviceName, metrics.RedisOpSet).ObserveDuration()

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return errors.New("token already expired")
	}

	userTokensKey := userTokensPrefix + userID.String()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, refreshTokenPrefix+token, userID.String(), ttl)
	pipe.SAdd(ctx, userTokensKey, token)
	pipe.Expire(ctx, userTokensKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) GetRefreshToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	defer metrics.NewRedisTimer(serviceName, metrics.RedisOpGet).ObserveDuration()

	key := refreshTokenPrefix + token
	userIDStr, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user id stored for refresh token: %w", err)
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get refresh token ttl: %w", err)
	}

	return &entity.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// DeleteRefreshToken returns ErrNotFound when the token was already used,
// which makes refresh rotation single-use under concurrency.
func (r *redisTokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	defer metrics.NewRedisTimer(serviceName, metrics.RedisOpDel).ObserveDuration()

	key := refreshTokenPrefix + token
	userIDStr, err := r.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	if err := r.client.SRem(ctx, userTokensPrefix+userIDStr, token).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to remove token from user set: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	defer metrics.NewRedisTimer(serviceName, metrics.RedisOpDel).ObserveDuration()

	userTokensKey := userTokensPrefix + userID.String()
	tokens, err := r.client.SMembers(ctx, userTokensKey).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to get user tokens: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, refreshTokenPrefix+token)
	}
	keys = append(keys, userTokensKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

// AddToBlacklist keeps the token until it would have expired anyway.
func (r *redisTokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	defer metrics.NewRedisTimer(serviceName, metrics.RedisOpSet).ObserveDuration()

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, blacklistPrefix+token, "1", ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	defer metrics.NewRedisTimer(serviceName, metrics.RedisOpExists).ObserveDuration()

	exists, err := r.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpExists)
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}
