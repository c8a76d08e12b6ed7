package util

import (
	"context"
	"testing"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisClientTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *RedisClient
}

func TestRedisClientSuite(t *testing.T) {
	suite.Run(t, new(RedisClientTestSuite))
}

func (s *RedisClientTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.cache = NewRedisClientFromConn(s.client)
}

func (s *RedisClientTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisClientTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *RedisClientTestSuite) TestGetCategories_Miss() {
	// Act
	categories, err := s.cache.GetCategories(context.Background())

	// Assert
	s.NoError(err)
	s.Nil(categories)
}

func (s *RedisClientTestSuite) TestSetThenGetCategories() {
	ctx := context.Background()

	// Arrange
	input := []entity.Category{{ID: 1, Name: "Books"}, {ID: 2, Name: "Toys"}}
	s.Require().NoError(s.cache.SetCategories(ctx, input, time.Minute))

	// Act
	categories, err := s.cache.GetCategories(ctx)

	// Assert
	s.NoError(err)
	s.Equal(input, categories)
	s.True(s.miniRedis.Exists(categoriesCacheKey))
}

func (s *RedisClientTestSuite) TestSetCategories_Expires() {
	ctx := context.Background()

	// Arrange
	s.Require().NoError(s.cache.SetCategories(ctx, []entity.Category{{ID: 1, Name: "Books"}}, time.Minute))

	// Act
	s.miniRedis.FastForward(2 * time.Minute)
	categories, err := s.cache.GetCategories(ctx)

	// Assert
	s.NoError(err)
	s.Nil(categories)
}

func (s *RedisClientTestSuite) TestGetCategories_CorruptedPayload() {
	// Arrange
	s.Require().NoError(s.miniRedis.Set(categoriesCacheKey, "not msgpack"))

	// Act
	categories, err := s.cache.GetCategories(context.Background())

	// Assert
	s.Error(err)
	s.Nil(categories)
}

func (s *RedisClientTestSuite) TestDeleteCategories() {
	ctx := context.Background()

	// Arrange
	s.Require().NoError(s.cache.SetCategories(ctx, []entity.Category{{ID: 1, Name: "Books"}}, time.Minute))

	// Act
	err := s.cache.DeleteCategories(ctx)

	// Assert
	s.NoError(err)
	s.False(s.miniRedis.Exists(categoriesCacheKey))
}

func (s *RedisClientTestSuite) TestIsBlacklisted() {
	ctx := context.Background()

	// Arrange
	s.Require().NoError(s.miniRedis.Set("blacklist:revoked-token", "1"))

	// Act
	revoked, err := s.cache.IsBlacklisted(ctx, "revoked-token")
	s.Require().NoError(err)
	active, err := s.cache.IsBlacklisted(ctx, "active-token")
	s.Require().NoError(err)

	// Assert
	s.True(revoked)
	s.False(active)
}

func (s *RedisClientTestSuite) TestIsBlacklisted_ConnectionError() {
	// Arrange
	broken := NewRedisClientFromConn(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
	defer broken.Close()

	// Act
	_, err := broken.IsBlacklisted(context.Background(), "token")

	// Assert
	s.Error(err)
}
