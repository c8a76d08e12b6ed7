package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, event *entity.AuctionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockActivityService) ListForAuction(ctx context.Context, auctionID uint, limit int) ([]entity.Activity, error) {
	args := m.Called(ctx, auctionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Activity), args.Error(1)
}

func (m *MockActivityService) Prune(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type testEnv struct {
	svc       *MockActivityService
	pingErr   error
	router    *gin.Engine
	fixedTime time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		svc:       new(MockActivityService),
		fixedTime: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	health := NewHealthCheckHandler(func(context.Context) error { return env.pingErr })
	health.now = func() time.Time { return env.fixedTime }

	env.router = SetupRoutes(NewActivityHandler(env.svc), health)
	return env
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
