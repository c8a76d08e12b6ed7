package repository

import (
	"context"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Create returns ErrDuplicate when the user already rated the auction.
func (r *ratingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	return translateError(conn(ctx, r.db).Create(rating).Error, "create rating")
}

func (r *ratingRepository) GetByUserAndAuction(ctx context.Context, userID uuid.UUID, auctionID uint) (*entity.Rating, error) {
	var rating entity.Rating
	err := conn(ctx, r.db).
		Where("user_id = ? AND auction_id = ?", userID, auctionID).
		First(&rating).Error
	if err != nil {
		return nil, translateError(err, "get rating")
	}
	return &rating, nil
}

func (r *ratingRepository) ListByAuction(ctx context.Context, auctionID uint) ([]entity.Rating, error) {
	var ratings []entity.Rating
	err := conn(ctx, r.db).
		Where("auction_id = ?", auctionID).
		Order("id ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, translateError(err, "list ratings")
	}
	return ratings, nil
}

// StatsByAuctions aggregates count and sum of rating values per auction.
// Auctions without ratings are absent from the map.
func (r *ratingRepository) StatsByAuctions(ctx context.Context, auctionIDs []uint) (map[uint]entity.RatingStats, error) {
	if len(auctionIDs) == 0 {
		return map[uint]entity.RatingStats{}, nil
	}

	var rows []entity.RatingStats
	err := conn(ctx, r.db).
		Model(&entity.Rating{}).
		Select("auction_id, COUNT(*) AS count, COALESCE(SUM(value), 0) AS sum").
		Where("auction_id IN ?", auctionIDs).
		Group("auction_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "aggregate ratings")
	}

	return lo.KeyBy(rows, func(row entity.RatingStats) uint {
		return row.AuctionID
	}), nil
}

func (r *ratingRepository) Update(ctx context.Context, rating *entity.Rating) error {
	result := conn(ctx, r.db).Model(rating).Select("Value").Updates(rating)
	if result.Error != nil {
		return translateError(result.Error, "update rating")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ratingRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&entity.Rating{}, id)
	if result.Error != nil {
		return translateError(result.Error, "delete rating")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
