package repository

import (
	"context"
	"errors"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrForeignKey = errors.New("foreign key violation")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uint) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uint) error
}

type AuctionRepository interface {
	Create(ctx context.Context, auction *entity.Auction) error
	GetByID(ctx context.Context, id uint) (*entity.Auction, error)
	// List returns auctions ordered by id. A non-empty search keeps only
	// auctions whose title or description contains it, ignoring case.
	List(ctx context.Context, search string) ([]entity.Auction, error)
	ListByAuctioneer(ctx context.Context, auctioneerID uuid.UUID) ([]entity.Auction, error)
	Update(ctx context.Context, auction *entity.Auction) error
	Delete(ctx context.Context, id uint) error
}

type BidRepository interface {
	Create(ctx context.Context, bid *entity.Bid) error
	// GetForAuction finds a bid only if it belongs to auctionID.
	GetForAuction(ctx context.Context, auctionID, bidID uint) (*entity.Bid, error)
	// ListByAuction orders by price, highest first.
	ListByAuction(ctx context.Context, auctionID uint) ([]entity.Bid, error)
	// ListByBidder orders by price, lowest first.
	ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]entity.Bid, error)
	CountByAuctions(ctx context.Context, auctionIDs []uint) (map[uint]int64, error)
	Update(ctx context.Context, bid *entity.Bid) error
	Delete(ctx context.Context, id uint) error
}

type RatingRepository interface {
	Create(ctx context.Context, rating *entity.Rating) error
	GetByUserAndAuction(ctx context.Context, userID uuid.UUID, auctionID uint) (*entity.Rating, error)
	ListByAuction(ctx context.Context, auctionID uint) ([]entity.Rating, error)
	StatsByAuctions(ctx context.Context, auctionIDs []uint) (map[uint]entity.RatingStats, error)
	Update(ctx context.Context, rating *entity.Rating) error
	Delete(ctx context.Context, id uint) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByUserAndAuction(ctx context.Context, userID uuid.UUID, auctionID uint) (*entity.Comment, error)
	ListByAuction(ctx context.Context, auctionID uint) ([]entity.Comment, error)
	Update(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id uint) error
}

// UserDataRepository removes everything a deleted user owns.
type UserDataRepository interface {
	PurgeUser(ctx context.Context, userID uuid.UUID) (*entity.PurgeResult, error)
}

// TxManager runs fn in a transaction. Repositories called with the context
// passed to fn take part in that transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
