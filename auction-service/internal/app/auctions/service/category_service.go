package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"
	"auctionhouse/auction-service/internal/app/auctions/repository"
	"auctionhouse/auction-service/internal/app/auctions/util"
	"auctionhouse/pkg/logger"

	"github.com/samber/lo"
)

const DefaultCategoriesTTL = time.Hour

// CategoryService manages categories. The full list is cached in Redis and
// invalidated on every write.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        util.CategoryCache
	cacheTTL     time.Duration
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	cache util.CategoryCache,
	cacheTTL time.Duration,
) *CategoryService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCategoriesTTL
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

// List serves from the cache when it holds data, else loads from the
// database and fills the cache.
func (s *CategoryService) List(ctx context.Context) ([]entity.CategoryResponse, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("Failed to read categories cache")
	}
	if err == nil && len(categories) > 0 {
		return toCategoryResponses(categories), nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, s.cacheTTL); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("Failed to cache categories")
	}

	return toCategoryResponses(categories), nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*entity.CategoryResponse, error) {
	category, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(entity.NewCategoryResponse(category)), nil
}

func (s *CategoryService) Create(ctx context.Context, caller policy.Caller, req *entity.CategoryRequest) (*entity.CategoryResponse, error) {
	if err := authorize(policy.OpCreate, policy.On(policy.KindCategory), caller); err != nil {
		return nil, err
	}

	name, err := categoryName(req)
	if err != nil {
		return nil, err
	}

	category := &entity.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidate(ctx)

	return lo.ToPtr(entity.NewCategoryResponse(category)), nil
}

// Update renames a category. PUT and PATCH are equivalent since name is the
// only writable field.
func (s *CategoryService) Update(ctx context.Context, caller policy.Caller, id uint, req *entity.CategoryRequest) (*entity.CategoryResponse, error) {
	if err := requireLogin(caller); err != nil {
		return nil, err
	}

	category, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(policy.OpUpdate, policy.On(policy.KindCategory), caller); err != nil {
		return nil, err
	}

	name, err := categoryName(req)
	if err != nil {
		return nil, err
	}
	category.Name = name

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateCategory
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidate(ctx)

	return lo.ToPtr(entity.NewCategoryResponse(category)), nil
}

// Delete removes a category together with its auctions.
func (s *CategoryService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	if err := requireLogin(caller); err != nil {
		return err
	}
	if err := authorize(policy.OpDelete, policy.On(policy.KindCategory), caller); err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

func (s *CategoryService) get(ctx context.Context, id uint) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

func categoryName(req *entity.CategoryRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", blankField("name")
	}
	if len([]rune(name)) > 50 {
		return "", InvalidField("name", "Ensure this field has no more than 50 characters.")
	}
	return name, nil
}

func toCategoryResponses(categories []entity.Category) []entity.CategoryResponse {
	return lo.Map(categories, func(c entity.Category, _ int) entity.CategoryResponse {
		return entity.NewCategoryResponse(&c)
	})
}
