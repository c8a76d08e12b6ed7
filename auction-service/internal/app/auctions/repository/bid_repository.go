package repository

import (
	"context"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type bidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &bidRepository{db: db}
}

func (r *bidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	return translateError(conn(ctx, r.db).Create(bid).Error, "create bid")
}

func (r *bidRepository) GetForAuction(ctx context.Context, auctionID, bidID uint) (*entity.Bid, error) {
	var bid entity.Bid
	err := conn(ctx, r.db).
		Where("id = ? AND auction_id = ?", bidID, auctionID).
		First(&bid).Error
	if err != nil {
		return nil, translateError(err, "get bid")
	}
	return &bid, nil
}

func (r *bidRepository) ListByAuction(ctx context.Context, auctionID uint) ([]entity.Bid, error) {
	var bids []entity.Bid
	err := conn(ctx, r.db).
		Where("auction_id = ?", auctionID).
		Order("price DESC").
		Order("id ASC").
		Find(&bids).Error
	if err != nil {
		return nil, translateError(err, "list bids")
	}
	return bids, nil
}

func (r *bidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]entity.Bid, error) {
	var bids []entity.Bid
	err := conn(ctx, r.db).
		Where("bidder_id = ?", bidderID).
		Order("price ASC").
		Order("id ASC").
		Find(&bids).Error
	if err != nil {
		return nil, translateError(err, "list bids by bidder")
	}
	return bids, nil
}

type bidCount struct {
	AuctionID uint
	Count     int64
}

// CountByAuctions returns the number of bids per auction in one grouped query.
// Auctions without bids are absent from the map.
func (r *bidRepository) CountByAuctions(ctx context.Context, auctionIDs []uint) (map[uint]int64, error) {
	if len(auctionIDs) == 0 {
		return map[uint]int64{}, nil
	}

	var rows []bidCount
	err := conn(ctx, r.db).
		Model(&entity.Bid{}).
		Select("auction_id, COUNT(*) AS count").
		Where("auction_id IN ?", auctionIDs).
		Group("auction_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "count bids")
	}

	return lo.SliceToMap(rows, func(row bidCount) (uint, int64) {
		return row.AuctionID, row.Count
	}), nil
}

func (r *bidRepository) Update(ctx context.Context, bid *entity.Bid) error {
	result := conn(ctx, r.db).Model(bid).Select("Price").Updates(bid)
	if result.Error != nil {
		return translateError(result.Error, "update bid")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bidRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&entity.Bid{}, id)
	if result.Error != nil {
		return translateError(result.Error, "delete bid")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
