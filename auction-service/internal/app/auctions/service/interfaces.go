package service

import (
	"context"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"
)

type CategoryServiceInterface interface {
	List(ctx context.Context) ([]entity.CategoryResponse, error)
	Get(ctx context.Context, id uint) (*entity.CategoryResponse, error)
	Create(ctx context.Context, caller policy.Caller, req *entity.CategoryRequest) (*entity.CategoryResponse, error)
	Update(ctx context.Context, caller policy.Caller, id uint, req *entity.CategoryRequest) (*entity.CategoryResponse, error)
	Delete(ctx context.Context, caller policy.Caller, id uint) error
}

type AuctionServiceInterface interface {
	Create(ctx context.Context, caller policy.Caller, req *entity.AuctionRequest) (*entity.AuctionListItem, error)
	List(ctx context.Context, search string) ([]entity.AuctionListItem, error)
	ListByAuctioneer(ctx context.Context, caller policy.Caller) ([]entity.AuctionListItem, error)
	Get(ctx context.Context, id uint) (*entity.AuctionDetail, error)
	Update(ctx context.Context, caller policy.Caller, id uint, req *entity.AuctionRequest, partial bool) (*entity.AuctionDetail, error)
	Delete(ctx context.Context, caller policy.Caller, id uint) error
}

type BidServiceInterface interface {
	Place(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.BidRequest) (*entity.BidResponse, error)
	List(ctx context.Context, auctionID uint) ([]entity.BidResponse, error)
	ListByBidder(ctx context.Context, caller policy.Caller) ([]entity.BidResponse, error)
	Get(ctx context.Context, caller policy.Caller, auctionID, bidID uint) (*entity.BidResponse, error)
	Update(ctx context.Context, caller policy.Caller, auctionID, bidID uint, req *entity.BidRequest, partial bool) (*entity.BidResponse, error)
	Delete(ctx context.Context, caller policy.Caller, auctionID, bidID uint) error
}

type EngagementServiceInterface interface {
	Rate(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.RatingRequest) (*entity.RatingResponse, error)
	ListRatings(ctx context.Context, auctionID uint) ([]entity.RatingResponse, error)
	MyRating(ctx context.Context, caller policy.Caller, auctionID uint) (*entity.RatingResponse, error)
	UpdateMyRating(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.RatingRequest, partial bool) (*entity.RatingResponse, error)
	DeleteMyRating(ctx context.Context, caller policy.Caller, auctionID uint) error

	Comment(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.CommentRequest) (*entity.CommentResponse, error)
	ListComments(ctx context.Context, auctionID uint) ([]entity.CommentResponse, error)
	MyComment(ctx context.Context, caller policy.Caller, auctionID uint) (*entity.CommentResponse, error)
	UpdateMyComment(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.CommentRequest, partial bool) (*entity.CommentResponse, error)
	DeleteMyComment(ctx context.Context, caller policy.Caller, auctionID uint) error
}

// UserEventHandler is what the user-topic consumer needs.
type UserEventHandler interface {
	HandleUserEvent(ctx context.Context, event *entity.UserEvent) error
}

var (
	_ CategoryServiceInterface   = (*CategoryService)(nil)
	_ AuctionServiceInterface    = (*AuctionService)(nil)
	_ BidServiceInterface        = (*BidService)(nil)
	_ EngagementServiceInterface = (*EngagementService)(nil)
	_ UserEventHandler           = (*UserDataService)(nil)
)
