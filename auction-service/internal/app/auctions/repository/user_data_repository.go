package repository

import (
	"context"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userDataRepository struct {
	db *gorm.DB
}

func NewUserDataRepository(db *gorm.DB) UserDataRepository {
	return &userDataRepository{db: db}
}

// PurgeUser deletes the user's auctions (cascading to everything attached to
// them) and then the user's own bids, ratings and comments on other auctions.
// Callers wrap it in TxManager.WithinTransaction.
func (r *userDataRepository) PurgeUser(ctx context.Context, userID uuid.UUID) (*entity.PurgeResult, error) {
	db := conn(ctx, r.db)
	result := &entity.PurgeResult{}

	steps := []struct {
		model  interface{}
		column string
		count  *int64
	}{
		{&entity.Auction{}, "auctioneer_id", &result.Auctions},
		{&entity.Bid{}, "bidder_id", &result.Bids},
		{&entity.Rating{}, "user_id", &result.Ratings},
		{&entity.Comment{}, "user_id", &result.Comments},
	}

	for _, step := range steps {
		res := db.Where(step.column+" = ?", userID).Delete(step.model)
		if res.Error != nil {
			return nil, translateError(res.Error, "purge user data")
		}
		*step.count = res.RowsAffected
	}

	return result, nil
}
