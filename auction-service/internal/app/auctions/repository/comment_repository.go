package repository

import (
	"context"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create returns ErrDuplicate when the user already commented on the auction.
func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return translateError(conn(ctx, r.db).Create(comment).Error, "create comment")
}

func (r *commentRepository) GetByUserAndAuction(ctx context.Context, userID uuid.UUID, auctionID uint) (*entity.Comment, error) {
	var comment entity.Comment
	err := conn(ctx, r.db).
		Where("user_id = ? AND auction_id = ?", userID, auctionID).
		First(&comment).Error
	if err != nil {
		return nil, translateError(err, "get comment")
	}
	return &comment, nil
}

func (r *commentRepository) ListByAuction(ctx context.Context, auctionID uint) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := conn(ctx, r.db).
		Where("auction_id = ?", auctionID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translateError(err, "list comments")
	}
	return comments, nil
}

// Update writes title, text and edit_date; creation_date is left untouched.
func (r *commentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	result := conn(ctx, r.db).Model(comment).Select("Title", "Text", "EditDate").Updates(comment)
	if result.Error != nil {
		return translateError(result.Error, "update comment")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&entity.Comment{}, id)
	if result.Error != nil {
		return translateError(result.Error, "delete comment")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
