package service

import (
	"context"
	"errors"
	"fmt"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"
	"auctionhouse/auction-service/internal/app/auctions/repository"
	"auctionhouse/auction-service/internal/app/auctions/util"
	"auctionhouse/pkg/logger"
	"auctionhouse/pkg/metrics"

	"github.com/samber/lo"
)

// BidService admits bids. A bid is accepted at any price and at any time;
// the auction comes from the path and the bidder from the caller.
type BidService struct {
	auctionRepo repository.AuctionRepository
	bidRepo     repository.BidRepository
	tx          repository.TxManager
	events      eventPublisher
	opts        options
}

func NewBidService(
	auctionRepo repository.AuctionRepository,
	bidRepo repository.BidRepository,
	tx repository.TxManager,
	publisher util.MessagePublisher,
	opts ...Option,
) *BidService {
	return &BidService{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		tx:          tx,
		events:      eventPublisher{publisher: publisher},
		opts:        newOptions(opts),
	}
}

func (s *BidService) Place(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.BidRequest) (*entity.BidResponse, error) {
	if err := authorize(policy.OpCreate, policy.On(policy.KindBid), caller); err != nil {
		return nil, err
	}
	if req.Price == nil {
		return nil, requiredField("price")
	}
	if err := validatePrice("price", *req.Price); err != nil {
		return nil, err
	}

	now := s.opts.now()
	bid := &entity.Bid{
		AuctionID:    auctionID,
		Price:        *req.Price,
		CreationDate: now,
		BidderID:     caller.ID,
		Bidder:       caller.Username,
	}

	var open bool
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		auction, err := getAuction(ctx, s.auctionRepo, auctionID)
		if err != nil {
			return err
		}
		open = IsOpen(auction, now)

		if err := s.bidRepo.Create(ctx, bid); err != nil {
			if errors.Is(err, repository.ErrForeignKey) {
				return ErrAuctionNotFound
			}
			return fmt.Errorf("failed to create bid: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	state := "open"
	if !open {
		state = "closed"
		logger.Ctx(ctx).Info().
			Uint("auction_id", auctionID).
			Uint("bid_id", bid.ID).
			Msg("Bid accepted on a closed auction")
	}
	metrics.BidsPlaced.WithLabelValues(state).Inc()
	metrics.BidPrice.Observe(bid.Price.InexactFloat64())

	s.events.publish(ctx, entity.EventBidPlaced, auctionID, caller, func(e *entity.AuctionEvent) {
		e.EntityID = bid.ID
		e.Price = entity.FormatPrice(bid.Price)
	})

	return lo.ToPtr(entity.NewBidResponse(bid)), nil
}

// List returns the bids of an auction, highest price first.
func (s *BidService) List(ctx context.Context, auctionID uint) ([]entity.BidResponse, error) {
	if _, err := getAuction(ctx, s.auctionRepo, auctionID); err != nil {
		return nil, err
	}

	bids, err := s.bidRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return toBidResponses(bids), nil
}

// ListByBidder returns the caller's bids, lowest price first.
func (s *BidService) ListByBidder(ctx context.Context, caller policy.Caller) ([]entity.BidResponse, error) {
	if err := authorize(policy.OpList, policy.On(policy.KindUserScope), caller); err != nil {
		return nil, err
	}

	bids, err := s.bidRepo.ListByBidder(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user bids: %w", err)
	}
	return toBidResponses(bids), nil
}

func (s *BidService) Get(ctx context.Context, caller policy.Caller, auctionID, bidID uint) (*entity.BidResponse, error) {
	if err := authorize(policy.OpRead, policy.On(policy.KindBid), caller); err != nil {
		return nil, err
	}

	bid, err := s.get(ctx, auctionID, bidID)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(entity.NewBidResponse(bid)), nil
}

// Update changes the price of a bid. Only the bidder or an admin may do so.
func (s *BidService) Update(ctx context.Context, caller policy.Caller, auctionID, bidID uint, req *entity.BidRequest, partial bool) (*entity.BidResponse, error) {
	if err := requireLogin(caller); err != nil {
		return nil, err
	}
	if req.Price == nil && !partial {
		return nil, requiredField("price")
	}

	var bid *entity.Bid
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		bid, err = s.get(ctx, auctionID, bidID)
		if err != nil {
			return err
		}
		if err := authorize(policy.OpUpdate, policy.Owned(policy.KindBid, bid.BidderID), caller); err != nil {
			return err
		}
		if req.Price == nil {
			return nil
		}
		if err := validatePrice("price", *req.Price); err != nil {
			return err
		}
		bid.Price = *req.Price

		if err := s.bidRepo.Update(ctx, bid); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBidNotFound
			}
			return fmt.Errorf("failed to update bid: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.ToPtr(entity.NewBidResponse(bid)), nil
}

func (s *BidService) Delete(ctx context.Context, caller policy.Caller, auctionID, bidID uint) error {
	if err := requireLogin(caller); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bid, err := s.get(ctx, auctionID, bidID)
		if err != nil {
			return err
		}
		if err := authorize(policy.OpDelete, policy.Owned(policy.KindBid, bid.BidderID), caller); err != nil {
			return err
		}

		if err := s.bidRepo.Delete(ctx, bid.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBidNotFound
			}
			return fmt.Errorf("failed to delete bid: %w", err)
		}
		return nil
	})
}

func (s *BidService) get(ctx context.Context, auctionID, bidID uint) (*entity.Bid, error) {
	bid, err := s.bidRepo.GetForAuction(ctx, auctionID, bidID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

func getAuction(ctx context.Context, repo repository.AuctionRepository, id uint) (*entity.Auction, error) {
	auction, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

func toBidResponses(bids []entity.Bid) []entity.BidResponse {
	return lo.Map(bids, func(b entity.Bid, _ int) entity.BidResponse {
		return entity.NewBidResponse(&b)
	})
}
