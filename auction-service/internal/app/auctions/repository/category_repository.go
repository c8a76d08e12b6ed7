package repository

import (
	"context"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create relies on the unique index on name; a clash returns ErrDuplicate.
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return translateError(conn(ctx, r.db).Create(category).Error, "create category")
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*entity.Category, error) {
	var category entity.Category
	if err := conn(ctx, r.db).First(&category, id).Error; err != nil {
		return nil, translateError(err, "get category")
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	if err := conn(ctx, r.db).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, translateError(err, "list categories")
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := conn(ctx, r.db).Model(category).Select("Name").Updates(category)
	if result.Error != nil {
		return translateError(result.Error, "update category")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the category; the foreign key cascades to its auctions.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&entity.Category{}, id)
	if result.Error != nil {
		return translateError(result.Error, "delete category")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
