package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/repository/mocks"
	"auctionhouse/users-service/internal/app/users/service"
	"auctionhouse/users-service/internal/app/users/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "password123"

type testEnv struct {
	router     *gin.Engine
	users      *mocks.MockUserRepository
	tokens     *mocks.MockTokenRepository
	publisher  *mocks.MockMessagePublisher
	jwtManager *util.JWTManager
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:      new(mocks.MockUserRepository),
		tokens:     new(mocks.MockTokenRepository),
		publisher:  new(mocks.MockMessagePublisher),
		jwtManager: util.NewJWTManager("test-secret-key", 15*time.Minute, 7*24*time.Hour),
	}

	authService := service.NewAuthService(env.users, env.tokens, env.jwtManager)
	userService := service.NewUserService(env.users, env.tokens, env.publisher)

	env.router = SetupRoutes(
		NewAuthHandler(authService),
		NewUserHandler(userService),
		NewAuthMiddleware(env.jwtManager, env.tokens),
	)
	return env
}

// signedToken issues an access token without touching the blacklist mock.
func (e *testEnv) signedToken(t *testing.T, user *entity.User) string {
	t.Helper()
	token, err := e.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Email, user.IsAdmin)
	require.NoError(t, err)
	return token
}

// tokenFor issues an access token that the blacklist reports as valid.
func (e *testEnv) tokenFor(t *testing.T, user *entity.User) string {
	t.Helper()
	token := e.signedToken(t, user)
	e.tokens.On("IsBlacklisted", mock.Anything, token).Return(false, nil).Maybe()
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func newTestUser(t *testing.T, username string) *entity.User {
	t.Helper()
	hash, err := util.HashPassword(testPassword)
	require.NoError(t, err)
	birthDate := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	return &entity.User{
		ID:           uuid.New(),
		Username:     username,
		FirstName:    "Test",
		Email:        username + "@example.com",
		BirthDate:    &birthDate,
		Municipality: "Valencia",
		PasswordHash: hash,
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
