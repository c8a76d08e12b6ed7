package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"
	"auctionhouse/auction-service/internal/app/auctions/repository"
	"auctionhouse/auction-service/internal/app/auctions/util"
	"auctionhouse/pkg/metrics"

	"github.com/samber/lo"
)

// AuctionService owns the auction lifecycle: creation with closing-date
// rules, owner-only edits and the derived isOpen, average_rating and
// last_call fields.
type AuctionService struct {
	auctionRepo  repository.AuctionRepository
	categoryRepo repository.CategoryRepository
	bidRepo      repository.BidRepository
	ratingRepo   repository.RatingRepository
	tx           repository.TxManager
	events       eventPublisher
	opts         options
}

func NewAuctionService(
	auctionRepo repository.AuctionRepository,
	categoryRepo repository.CategoryRepository,
	bidRepo repository.BidRepository,
	ratingRepo repository.RatingRepository,
	tx repository.TxManager,
	publisher util.MessagePublisher,
	opts ...Option,
) *AuctionService {
	return &AuctionService{
		auctionRepo:  auctionRepo,
		categoryRepo: categoryRepo,
		bidRepo:      bidRepo,
		ratingRepo:   ratingRepo,
		tx:           tx,
		events:       eventPublisher{publisher: publisher},
		opts:         newOptions(opts),
	}
}

func (s *AuctionService) Create(ctx context.Context, caller policy.Caller, req *entity.AuctionRequest) (*entity.AuctionListItem, error) {
	if err := authorize(policy.OpCreate, policy.On(policy.KindAuction), caller); err != nil {
		return nil, err
	}
	if field := req.MissingField(); field != "" {
		return nil, requiredField(field)
	}

	now := s.opts.now()
	auction := &entity.Auction{
		CreationDate: now,
		AuctioneerID: caller.ID,
	}
	if err := applyAuctionRequest(auction, req); err != nil {
		return nil, err
	}
	if err := ValidateClosingDateForCreate(auction.ClosingDate, now); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureCategory(ctx, auction.CategoryID); err != nil {
			return err
		}
		if err := s.auctionRepo.Create(ctx, auction); err != nil {
			if errors.Is(err, repository.ErrForeignKey) {
				return invalidCategory(auction.CategoryID)
			}
			return fmt.Errorf("failed to create auction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AuctionsCreated.Inc()
	s.events.publish(ctx, entity.EventAuctionCreated, auction.ID, caller, func(e *entity.AuctionEvent) {
		e.EntityID = auction.ID
		e.Title = auction.Title
		e.Price = entity.FormatPrice(auction.Price)
	})

	return lo.ToPtr(s.listItem(auction, entity.RatingStats{}, 0)), nil
}

// List returns auctions whose title or description contains search,
// ignoring case. An empty search returns every auction.
func (s *AuctionService) List(ctx context.Context, search string) ([]entity.AuctionListItem, error) {
	auctions, err := s.auctionRepo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	return s.listItems(ctx, auctions)
}

// ListByAuctioneer returns the caller's own auctions.
func (s *AuctionService) ListByAuctioneer(ctx context.Context, caller policy.Caller) ([]entity.AuctionListItem, error) {
	if err := authorize(policy.OpList, policy.On(policy.KindUserScope), caller); err != nil {
		return nil, err
	}

	auctions, err := s.auctionRepo.ListByAuctioneer(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user auctions: %w", err)
	}
	return s.listItems(ctx, auctions)
}

func (s *AuctionService) Get(ctx context.Context, id uint) (*entity.AuctionDetail, error) {
	auction, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.ratingRepo.StatsByAuctions(ctx, []uint{id})
	if err != nil {
		return nil, fmt.Errorf("failed to get rating stats: %w", err)
	}

	return lo.ToPtr(s.detail(auction, stats[id])), nil
}

// Update applies a full (PUT) or partial (PATCH) update. CreationDate and
// AuctioneerID never change; a new closing date must lie in the future.
func (s *AuctionService) Update(ctx context.Context, caller policy.Caller, id uint, req *entity.AuctionRequest, partial bool) (*entity.AuctionDetail, error) {
	if err := requireLogin(caller); err != nil {
		return nil, err
	}
	if !partial {
		if field := req.MissingField(); field != "" {
			return nil, requiredField(field)
		}
	}

	var (
		auction *entity.Auction
		stats   map[uint]entity.RatingStats
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		auction, err = s.get(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(policy.OpUpdate, policy.Owned(policy.KindAuction, auction.AuctioneerID), caller); err != nil {
			return err
		}

		previousCategory := auction.CategoryID
		if err := applyAuctionRequest(auction, req); err != nil {
			return err
		}
		if req.ClosingDate != nil {
			if err := ValidateClosingDateForUpdate(auction.ClosingDate, s.opts.now()); err != nil {
				return err
			}
		}
		if auction.CategoryID != previousCategory {
			if err := s.ensureCategory(ctx, auction.CategoryID); err != nil {
				return err
			}
		}

		if err := s.auctionRepo.Update(ctx, auction); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return ErrAuctionNotFound
			case errors.Is(err, repository.ErrForeignKey):
				return invalidCategory(auction.CategoryID)
			}
			return fmt.Errorf("failed to update auction: %w", err)
		}

		stats, err = s.ratingRepo.StatsByAuctions(ctx, []uint{id})
		if err != nil {
			return fmt.Errorf("failed to get rating stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, entity.EventAuctionUpdated, auction.ID, caller, func(e *entity.AuctionEvent) {
		e.EntityID = auction.ID
		e.Title = auction.Title
		e.Price = entity.FormatPrice(auction.Price)
	})

	return lo.ToPtr(s.detail(auction, stats[id])), nil
}

// Delete removes an auction with its bids, ratings and comments.
func (s *AuctionService) Delete(ctx context.Context, caller policy.Caller, id uint) error {
	if err := requireLogin(caller); err != nil {
		return err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		auction, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(policy.OpDelete, policy.Owned(policy.KindAuction, auction.AuctioneerID), caller); err != nil {
			return err
		}

		if err := s.auctionRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAuctionNotFound
			}
			return fmt.Errorf("failed to delete auction: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.publish(ctx, entity.EventAuctionDeleted, id, caller, nil)

	return nil
}

func (s *AuctionService) get(ctx context.Context, id uint) (*entity.Auction, error) {
	return getAuction(ctx, s.auctionRepo, id)
}

func (s *AuctionService) ensureCategory(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalidCategory(id)
		}
		return fmt.Errorf("failed to get category: %w", err)
	}
	return nil
}

// listItems decorates a page of auctions using one grouped query for rating
// stats and one for bid counts.
func (s *AuctionService) listItems(ctx context.Context, auctions []entity.Auction) ([]entity.AuctionListItem, error) {
	if len(auctions) == 0 {
		return []entity.AuctionListItem{}, nil
	}

	ids := lo.Map(auctions, func(a entity.Auction, _ int) uint { return a.ID })

	stats, err := s.ratingRepo.StatsByAuctions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating stats: %w", err)
	}
	counts, err := s.bidRepo.CountByAuctions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count bids: %w", err)
	}

	return lo.Map(auctions, func(a entity.Auction, _ int) entity.AuctionListItem {
		return s.listItem(&a, stats[a.ID], counts[a.ID])
	}), nil
}

func (s *AuctionService) listItem(a *entity.Auction, stats entity.RatingStats, bidCount int64) entity.AuctionListItem {
	return entity.AuctionListItem{
		AuctionDetail: s.detail(a, stats),
		LastCall:      LastCall(a, bidCount, s.opts.now()),
	}
}

func (s *AuctionService) detail(a *entity.Auction, stats entity.RatingStats) entity.AuctionDetail {
	return entity.AuctionDetail{
		ID:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		Price:         entity.FormatPrice(a.Price),
		Stock:         a.Stock,
		Brand:         a.Brand,
		Category:      a.CategoryID,
		Thumbnail:     a.Thumbnail,
		CreationDate:  entity.Timestamp(a.CreationDate),
		ClosingDate:   entity.Timestamp(a.ClosingDate),
		Auctioneer:    a.AuctioneerID.String(),
		IsOpen:        IsOpen(a, s.opts.now()),
		AverageRating: averageFromStats(stats),
	}
}

// applyAuctionRequest copies the provided fields onto a and validates them.
func applyAuctionRequest(a *entity.Auction, req *entity.AuctionRequest) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return blankField("title")
		}
		a.Title = *req.Title
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return blankField("description")
		}
		a.Description = *req.Description
	}
	if req.Price != nil {
		if err := validatePrice("price", *req.Price); err != nil {
			return err
		}
		a.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 1 {
			return InvalidField("stock", "Ensure this value is greater than or equal to 1.")
		}
		a.Stock = *req.Stock
	}
	if req.Brand != nil {
		if strings.TrimSpace(*req.Brand) == "" {
			return blankField("brand")
		}
		a.Brand = *req.Brand
	}
	if req.Category != nil {
		a.CategoryID = *req.Category
	}
	if req.Thumbnail != nil {
		if strings.TrimSpace(*req.Thumbnail) == "" {
			return blankField("thumbnail")
		}
		a.Thumbnail = *req.Thumbnail
	}
	if req.ClosingDate != nil {
		a.ClosingDate = req.ClosingDate.Time()
	}
	return nil
}

func invalidCategory(id uint) *Error {
	return InvalidField("category", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
}
