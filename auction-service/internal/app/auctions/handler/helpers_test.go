package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"
	"auctionhouse/auction-service/internal/app/auctions/repository/mocks"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== Service mocks ====================

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context) ([]entity.CategoryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Get(ctx context.Context, id uint) (*entity.CategoryResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, caller policy.Caller, req *entity.CategoryRequest) (*entity.CategoryResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, caller policy.Caller, id uint, req *entity.CategoryRequest) (*entity.CategoryResponse, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

type MockAuctionService struct {
	mock.Mock
}

func (m *MockAuctionService) Create(ctx context.Context, caller policy.Caller, req *entity.AuctionRequest) (*entity.AuctionListItem, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuctionListItem), args.Error(1)
}

func (m *MockAuctionService) List(ctx context.Context, search string) ([]entity.AuctionListItem, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AuctionListItem), args.Error(1)
}

func (m *MockAuctionService) ListByAuctioneer(ctx context.Context, caller policy.Caller) ([]entity.AuctionListItem, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AuctionListItem), args.Error(1)
}

func (m *MockAuctionService) Get(ctx context.Context, id uint) (*entity.AuctionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuctionDetail), args.Error(1)
}

func (m *MockAuctionService) Update(ctx context.Context, caller policy.Caller, id uint, req *entity.AuctionRequest, partial bool) (*entity.AuctionDetail, error) {
	args := m.Called(ctx, caller, id, req, partial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuctionDetail), args.Error(1)
}

func (m *MockAuctionService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

type MockBidService struct {
	mock.Mock
}

func (m *MockBidService) Place(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.BidRequest) (*entity.BidResponse, error) {
	args := m.Called(ctx, caller, auctionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BidResponse), args.Error(1)
}

func (m *MockBidService) List(ctx context.Context, auctionID uint) ([]entity.BidResponse, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.BidResponse), args.Error(1)
}

func (m *MockBidService) ListByBidder(ctx context.Context, caller policy.Caller) ([]entity.BidResponse, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.BidResponse), args.Error(1)
}

func (m *MockBidService) Get(ctx context.Context, caller policy.Caller, auctionID, bidID uint) (*entity.BidResponse, error) {
	args := m.Called(ctx, caller, auctionID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BidResponse), args.Error(1)
}

func (m *MockBidService) Update(ctx context.Context, caller policy.Caller, auctionID, bidID uint, req *entity.BidRequest, partial bool) (*entity.BidResponse, error) {
	args := m.Called(ctx, caller, auctionID, bidID, req, partial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BidResponse), args.Error(1)
}

func (m *MockBidService) Delete(ctx context.Context, caller policy.Caller, auctionID, bidID uint) error {
	args := m.Called(ctx, caller, auctionID, bidID)
	return args.Error(0)
}

type MockEngagementService struct {
	mock.Mock
}

func (m *MockEngagementService) rating(args mock.Arguments) (*entity.RatingResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingResponse), args.Error(1)
}

func (m *MockEngagementService) comment(args mock.Arguments) (*entity.CommentResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CommentResponse), args.Error(1)
}

func (m *MockEngagementService) Rate(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.RatingRequest) (*entity.RatingResponse, error) {
	return m.rating(m.Called(ctx, caller, auctionID, req))
}

func (m *MockEngagementService) ListRatings(ctx context.Context, auctionID uint) ([]entity.RatingResponse, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RatingResponse), args.Error(1)
}

func (m *MockEngagementService) MyRating(ctx context.Context, caller policy.Caller, auctionID uint) (*entity.RatingResponse, error) {
	return m.rating(m.Called(ctx, caller, auctionID))
}

func (m *MockEngagementService) UpdateMyRating(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.RatingRequest, partial bool) (*entity.RatingResponse, error) {
	return m.rating(m.Called(ctx, caller, auctionID, req, partial))
}

func (m *MockEngagementService) DeleteMyRating(ctx context.Context, caller policy.Caller, auctionID uint) error {
	return m.Called(ctx, caller, auctionID).Error(0)
}

func (m *MockEngagementService) Comment(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.CommentRequest) (*entity.CommentResponse, error) {
	return m.comment(m.Called(ctx, caller, auctionID, req))
}

func (m *MockEngagementService) ListComments(ctx context.Context, auctionID uint) ([]entity.CommentResponse, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CommentResponse), args.Error(1)
}

func (m *MockEngagementService) MyComment(ctx context.Context, caller policy.Caller, auctionID uint) (*entity.CommentResponse, error) {
	return m.comment(m.Called(ctx, caller, auctionID))
}

func (m *MockEngagementService) UpdateMyComment(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.CommentRequest, partial bool) (*entity.CommentResponse, error) {
	return m.comment(m.Called(ctx, caller, auctionID, req, partial))
}

func (m *MockEngagementService) DeleteMyComment(ctx context.Context, caller policy.Caller, auctionID uint) error {
	return m.Called(ctx, caller, auctionID).Error(0)
}

// ==================== Router helpers ====================

type testServer struct {
	router     *gin.Engine
	categories *MockCategoryService
	auctions   *MockAuctionService
	bids       *MockBidService
	engagement *MockEngagementService
	blacklist  *mocks.MockTokenBlacklist
}

func newTestServer() *testServer {
	s := &testServer{
		categories: new(MockCategoryService),
		auctions:   new(MockAuctionService),
		bids:       new(MockBidService),
		engagement: new(MockEngagementService),
		blacklist:  new(mocks.MockTokenBlacklist),
	}
	s.router = SetupRoutes(Handlers{
		Category:   NewCategoryHandler(s.categories),
		Auction:    NewAuctionHandler(s.auctions),
		Bid:        NewBidHandler(s.bids),
		Engagement: NewEngagementHandler(s.engagement),
	}, NewAuthMiddleware(testSecret, s.blacklist))
	return s
}

// do sends a request through the router. A non-empty token is sent as a
// bearer token and reported as not revoked.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		s.blacklist.On("IsBlacklisted", mock.Anything, token).Return(false, nil).Maybe()
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type testUser struct {
	ID       uuid.UUID
	Username string
	IsAdmin  bool
}

func newTestUser(username string) testUser {
	return testUser{ID: uuid.New(), Username: username}
}

func signToken(t *testing.T, u testUser, method jwt.SigningMethod, expiresIn time.Duration) string {
	t.Helper()

	claims := JWTClaims{
		UserID:   u.ID.String(),
		Username: u.Username,
		Email:    u.Username + "@example.com",
		IsAdmin:  u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func accessToken(t *testing.T, u testUser) string {
	return signToken(t, u, jwt.SigningMethodHS256, 15*time.Minute)
}

func callerMatching(u testUser) interface{} {
	return mock.MatchedBy(func(c policy.Caller) bool {
		return c.Authenticated && c.ID == u.ID && c.Username == u.Username && c.IsAdmin == u.IsAdmin
	})
}

func anonymousCaller() interface{} {
	return mock.MatchedBy(func(c policy.Caller) bool {
		return !c.Authenticated
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
