package mocks

import (
	"context"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCategoryRepository mocks repository.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uint) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuctionRepository mocks repository.AuctionRepository
type MockAuctionRepository struct {
	mock.Mock
}

func (m *MockAuctionRepository) Create(ctx context.Context, auction *entity.Auction) error {
	args := m.Called(ctx, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) GetByID(ctx context.Context, id uint) (*entity.Auction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Auction), args.Error(1)
}

func (m *MockAuctionRepository) List(ctx context.Context, search string) ([]entity.Auction, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Auction), args.Error(1)
}

func (m *MockAuctionRepository) ListByAuctioneer(ctx context.Context, auctioneerID uuid.UUID) ([]entity.Auction, error) {
	args := m.Called(ctx, auctioneerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Auction), args.Error(1)
}

func (m *MockAuctionRepository) Update(ctx context.Context, auction *entity.Auction) error {
	args := m.Called(ctx, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBidRepository mocks repository.BidRepository
type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) GetForAuction(ctx context.Context, auctionID, bidID uint) (*entity.Bid, error) {
	args := m.Called(ctx, auctionID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Bid), args.Error(1)
}

func (m *MockBidRepository) ListByAuction(ctx context.Context, auctionID uint) ([]entity.Bid, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Bid), args.Error(1)
}

func (m *MockBidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]entity.Bid, error) {
	args := m.Called(ctx, bidderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Bid), args.Error(1)
}

func (m *MockBidRepository) CountByAuctions(ctx context.Context, auctionIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, auctionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]int64), args.Error(1)
}

func (m *MockBidRepository) Update(ctx context.Context, bid *entity.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRatingRepository mocks repository.RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) GetByUserAndAuction(ctx context.Context, userID uuid.UUID, auctionID uint) (*entity.Rating, error) {
	args := m.Called(ctx, userID, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Rating), args.Error(1)
}

func (m *MockRatingRepository) ListByAuction(ctx context.Context, auctionID uint) ([]entity.Rating, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Rating), args.Error(1)
}

func (m *MockRatingRepository) StatsByAuctions(ctx context.Context, auctionIDs []uint) (map[uint]entity.RatingStats, error) {
	args := m.Called(ctx, auctionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]entity.RatingStats), args.Error(1)
}

func (m *MockRatingRepository) Update(ctx context.Context, rating *entity.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCommentRepository mocks repository.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByUserAndAuction(ctx context.Context, userID uuid.UUID, auctionID uint) (*entity.Comment, error) {
	args := m.Called(ctx, userID, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByAuction(ctx context.Context, auctionID uint) ([]entity.Comment, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserDataRepository mocks repository.UserDataRepository
type MockUserDataRepository struct {
	mock.Mock
}

func (m *MockUserDataRepository) PurgeUser(ctx context.Context, userID uuid.UUID) (*entity.PurgeResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PurgeResult), args.Error(1)
}

// MockTxManager records the call and runs fn with the same context unless an
// error is configured.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// MockCategoryCache mocks util.CategoryCache
type MockCategoryCache struct {
	mock.Mock
}

func (m *MockCategoryCache) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	args := m.Called(ctx, categories, ttl)
	return args.Error(0)
}

func (m *MockCategoryCache) GetCategories(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryCache) DeleteCategories(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTokenBlacklist mocks util.TokenBlacklist
type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// MockMessagePublisher mocks util.MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
