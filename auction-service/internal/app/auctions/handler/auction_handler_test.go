package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuctionHandler_List_PassesSearch(t *testing.T) {
	// Arrange
	s := newTestServer()
	items := []entity.AuctionListItem{
		{AuctionDetail: entity.AuctionDetail{ID: 1, Title: "Camera", Price: "120.50", IsOpen: true, AverageRating: 1}, LastCall: true},
	}
	s.auctions.On("List", mock.Anything, "camera").Return(items, nil)

	// Act
	rec := s.do(t, http.MethodGet, "/auctions/?search=camera", "", nil)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "120.50", got[0]["price"])
	assert.Equal(t, true, got[0]["isOpen"])
	assert.Equal(t, true, got[0]["last_call"])
	s.auctions.AssertExpectations(t)
}

func TestAuctionHandler_Create_Success(t *testing.T) {
	// Arrange
	s := newTestServer()
	user := newTestUser("alice")
	created := &entity.AuctionListItem{AuctionDetail: entity.AuctionDetail{ID: 7, Title: "Camera", Auctioneer: user.ID.String()}}

	s.auctions.On("Create", mock.Anything, callerMatching(user), mock.MatchedBy(func(req *entity.AuctionRequest) bool {
		return req.Title != nil && *req.Title == "Camera" && req.Price != nil && req.Price.StringFixed(2) == "100.00"
	})).Return(created, nil)

	body := `{"title":"Camera","description":"Film","price":100,"stock":1,"brand":"Leica",` +
		`"category":1,"thumbnail":"https://example.com/c.jpg","closing_date":"2026-04-01T12:00:00Z"}`

	// Act
	rec := s.do(t, http.MethodPost, "/auctions/", accessToken(t, user), body)

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)
	s.auctions.AssertExpectations(t)
}

func TestAuctionHandler_Create_Unauthenticated(t *testing.T) {
	// Arrange
	s := newTestServer()
	s.auctions.On("Create", mock.Anything, anonymousCaller(), mock.Anything).Return(nil, service.ErrUnauthenticated)

	// Act
	rec := s.do(t, http.MethodPost, "/auctions/", "", `{"title":"Camera"}`)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "UNAUTHENTICATED", resp.Error)
	assert.Equal(t, "Authentication credentials were not provided.", resp.Message)
}

func TestAuctionHandler_Create_InvalidBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{name: "malformed json", body: `{"title":`, field: "", message: "Invalid request body."},
		{name: "bad closing date", body: `{"closing_date":"tomorrow"}`, field: "", message: "Invalid request body."},
		{name: "bad thumbnail", body: `{"thumbnail":"not a url"}`, field: "thumbnail", message: "Enter a valid URL."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := newTestServer()

			// Act
			rec := s.do(t, http.MethodPost, "/auctions/", accessToken(t, newTestUser("alice")), tt.body)

			// Assert
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error)
			assert.Equal(t, tt.field, resp.Field)
			assert.Equal(t, tt.message, resp.Message)
			s.auctions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuctionHandler_Create_ClosingDateTooSoon(t *testing.T) {
	// Arrange
	s := newTestServer()
	s.auctions.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, service.ErrClosingDateTooSoon)

	// Act
	rec := s.do(t, http.MethodPost, "/auctions/", accessToken(t, newTestUser("alice")), `{}`)

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "CLOSING_DATE_TOO_SOON", resp.Code)
	assert.Equal(t, "closing_date", resp.Field)
}

func TestAuctionHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(s *testServer)
		wantStatus int
		wantCode   string
	}{
		{
			name: "found",
			path: "/auctions/3/",
			setup: func(s *testServer) {
				s.auctions.On("Get", mock.Anything, uint(3)).Return(&entity.AuctionDetail{ID: 3}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "missing",
			path: "/auctions/4/",
			setup: func(s *testServer) {
				s.auctions.On("Get", mock.Anything, uint(4)).Return(nil, service.ErrAuctionNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "AUCTION_NOT_FOUND",
		},
		{
			name:       "non numeric id",
			path:       "/auctions/abc/",
			setup:      func(s *testServer) {},
			wantStatus: http.StatusNotFound,
			wantCode:   "AUCTION_NOT_FOUND",
		},
		{
			name: "repository failure",
			path: "/auctions/5/",
			setup: func(s *testServer) {
				s.auctions.On("Get", mock.Anything, uint(5)).Return(nil, errors.New("connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := newTestServer()
			tt.setup(s)

			// Act
			rec := s.do(t, http.MethodGet, tt.path, "", nil)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
		})
	}
}

func TestAuctionHandler_Update_PutAndPatch(t *testing.T) {
	tests := []struct {
		method  string
		partial bool
	}{
		{method: http.MethodPut, partial: false},
		{method: http.MethodPatch, partial: true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			// Arrange
			s := newTestServer()
			user := newTestUser("alice")
			s.auctions.On("Update", mock.Anything, callerMatching(user), uint(9), mock.AnythingOfType("*entity.AuctionRequest"), tt.partial).
				Return(&entity.AuctionDetail{ID: 9, Stock: 3}, nil)

			// Act
			rec := s.do(t, tt.method, "/auctions/9/", accessToken(t, user), `{"stock":3}`)

			// Assert
			assert.Equal(t, http.StatusOK, rec.Code)
			s.auctions.AssertExpectations(t)
		})
	}
}

func TestAuctionHandler_Update_Forbidden(t *testing.T) {
	// Arrange
	s := newTestServer()
	s.auctions.On("Update", mock.Anything, mock.Anything, uint(9), mock.Anything, true).Return(nil, service.ErrForbidden)

	// Act
	rec := s.do(t, http.MethodPatch, "/auctions/9/", accessToken(t, newTestUser("mallory")), `{"stock":3}`)

	// Assert
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
}

func TestAuctionHandler_Delete(t *testing.T) {
	// Arrange
	s := newTestServer()
	user := newTestUser("alice")
	s.auctions.On("Delete", mock.Anything, callerMatching(user), uint(9)).Return(nil)

	// Act
	rec := s.do(t, http.MethodDelete, "/auctions/9/", accessToken(t, user), nil)

	// Assert
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	s.auctions.AssertExpectations(t)
}

func TestAuctionHandler_ListMine_RoutesBeforeID(t *testing.T) {
	// Arrange
	s := newTestServer()
	user := newTestUser("alice")
	s.auctions.On("ListByAuctioneer", mock.Anything, callerMatching(user)).Return([]entity.AuctionListItem{}, nil)

	// Act
	rec := s.do(t, http.MethodGet, "/auctions/user_auctions/", accessToken(t, user), nil)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	s.auctions.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRouter_Health(t *testing.T) {
	// Arrange
	s := newTestServer()

	// Act
	rec := s.do(t, http.MethodGet, "/health", "", nil)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"auction-service"}`, rec.Body.String())
}
