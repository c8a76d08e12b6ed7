package service

import (
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() Option {
	return WithClock(func() time.Time { return testNow })
}

func newTestCaller(username string) policy.Caller {
	return policy.Caller{ID: uuid.New(), Username: username, Authenticated: true}
}

func newTestAdmin() policy.Caller {
	return policy.Caller{ID: uuid.New(), Username: "admin", IsAdmin: true, Authenticated: true}
}

func newTestAuction(id uint, owner uuid.UUID, closing time.Time) *entity.Auction {
	return &entity.Auction{
		ID:           id,
		Title:        "Vintage camera",
		Description:  "Film camera in working condition",
		Price:        decimal.RequireFromString("120.50"),
		Stock:        1,
		Brand:        "Leica",
		CategoryID:   1,
		Thumbnail:    "https://example.com/camera.jpg",
		CreationDate: testNow.Add(-48 * time.Hour),
		ClosingDate:  closing,
		AuctioneerID: owner,
	}
}

func newTestAuctionRequest(closing time.Time) *entity.AuctionRequest {
	return &entity.AuctionRequest{
		Title:       ptr("Vintage camera"),
		Description: ptr("Film camera in working condition"),
		Price:       ptr(decimal.RequireFromString("100")),
		Stock:       ptr(2),
		Brand:       ptr("Leica"),
		Category:    ptr(uint(1)),
		Thumbnail:   ptr("https://example.com/camera.jpg"),
		ClosingDate: ptr(entity.Timestamp(closing)),
	}
}

func ptr[T any](v T) *T {
	return &v
}
