package repository

import (
	"context"
	"strings"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type auctionRepository struct {
	db *gorm.DB
}

func NewAuctionRepository(db *gorm.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) Create(ctx context.Context, auction *entity.Auction) error {
	return translateError(conn(ctx, r.db).Omit("Bids", "Ratings", "Comments").Create(auction).Error, "create auction")
}

func (r *auctionRepository) GetByID(ctx context.Context, id uint) (*entity.Auction, error) {
	var auction entity.Auction
	if err := conn(ctx, r.db).First(&auction, id).Error; err != nil {
		return nil, translateError(err, "get auction")
	}
	return &auction, nil
}

func (r *auctionRepository) List(ctx context.Context, search string) ([]entity.Auction, error) {
	query := conn(ctx, r.db).Order("id ASC")

	if search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`,
			pattern, pattern,
		)
	}

	var auctions []entity.Auction
	if err := query.Find(&auctions).Error; err != nil {
		return nil, translateError(err, "list auctions")
	}
	return auctions, nil
}

func (r *auctionRepository) ListByAuctioneer(ctx context.Context, auctioneerID uuid.UUID) ([]entity.Auction, error) {
	var auctions []entity.Auction
	err := conn(ctx, r.db).
		Where("auctioneer_id = ?", auctioneerID).
		Order("id ASC").
		Find(&auctions).Error
	if err != nil {
		return nil, translateError(err, "list auctions by auctioneer")
	}
	return auctions, nil
}

// Update writes the mutable columns only: creation_date and auctioneer_id
// never change after creation.
func (r *auctionRepository) Update(ctx context.Context, auction *entity.Auction) error {
	result := conn(ctx, r.db).
		Model(auction).
		Select("Title", "Description", "Price", "Stock", "Brand", "CategoryID", "Thumbnail", "ClosingDate").
		Updates(auction)
	if result.Error != nil {
		return translateError(result.Error, "update auction")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the auction; bids, ratings and comments cascade.
func (r *auctionRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&entity.Auction{}, id)
	if result.Error != nil {
		return translateError(result.Error, "delete auction")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
