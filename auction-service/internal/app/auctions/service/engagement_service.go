package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"
	"auctionhouse/auction-service/internal/app/auctions/repository"
	"auctionhouse/auction-service/internal/app/auctions/util"
	"auctionhouse/pkg/metrics"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
)

// EngagementService handles ratings and comments. A user holds at most one
// of each per auction; the unique index decides concurrent first writes.
type EngagementService struct {
	auctionRepo repository.AuctionRepository
	ratingRepo  repository.RatingRepository
	commentRepo repository.CommentRepository
	tx          repository.TxManager
	events      eventPublisher
	sanitizer   *bluemonday.Policy
	opts        options
}

func NewEngagementService(
	auctionRepo repository.AuctionRepository,
	ratingRepo repository.RatingRepository,
	commentRepo repository.CommentRepository,
	tx repository.TxManager,
	publisher util.MessagePublisher,
	opts ...Option,
) *EngagementService {
	return &EngagementService{
		auctionRepo: auctionRepo,
		ratingRepo:  ratingRepo,
		commentRepo: commentRepo,
		tx:          tx,
		events:      eventPublisher{publisher: publisher},
		sanitizer:   bluemonday.UGCPolicy(),
		opts:        newOptions(opts),
	}
}

// ============================================================================
// Ratings
// ============================================================================

// Rate stores the caller's rating. Value defaults to 1.
func (s *EngagementService) Rate(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.RatingRequest) (*entity.RatingResponse, error) {
	if err := authorize(policy.OpCreate, policy.On(policy.KindRating), caller); err != nil {
		return nil, err
	}

	value := lo.FromPtrOr(req.Value, minRating)
	if err := validateRatingValue(value); err != nil {
		return nil, err
	}

	rating := &entity.Rating{
		Value:     value,
		UserID:    caller.ID,
		User:      caller.Username,
		AuctionID: auctionID,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := getAuction(ctx, s.auctionRepo, auctionID); err != nil {
			return err
		}
		if err := s.ratingRepo.Create(ctx, rating); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrDuplicateRating
			case errors.Is(err, repository.ErrForeignKey):
				return ErrAuctionNotFound
			}
			return fmt.Errorf("failed to create rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RatingsCreated.Inc()
	metrics.RatingValue.Observe(float64(value))
	s.events.publish(ctx, entity.EventRatingCreated, auctionID, caller, func(e *entity.AuctionEvent) {
		e.EntityID = rating.ID
		e.Value = rating.Value
	})

	return lo.ToPtr(entity.NewRatingResponse(rating)), nil
}

func (s *EngagementService) ListRatings(ctx context.Context, auctionID uint) ([]entity.RatingResponse, error) {
	if _, err := getAuction(ctx, s.auctionRepo, auctionID); err != nil {
		return nil, err
	}

	ratings, err := s.ratingRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return lo.Map(ratings, func(r entity.Rating, _ int) entity.RatingResponse {
		return entity.NewRatingResponse(&r)
	}), nil
}

// MyRating returns the caller's rating, or a record with null id and value
// when the caller has not rated the auction.
func (s *EngagementService) MyRating(ctx context.Context, caller policy.Caller, auctionID uint) (*entity.RatingResponse, error) {
	if err := authorize(policy.OpRead, policy.On(policy.KindUserScope), caller); err != nil {
		return nil, err
	}
	if _, err := getAuction(ctx, s.auctionRepo, auctionID); err != nil {
		return nil, err
	}

	rating, err := s.ratingRepo.GetByUserAndAuction(ctx, caller.ID, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &entity.RatingResponse{User: caller.Username, Auction: auctionID}, nil
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return lo.ToPtr(entity.NewRatingResponse(rating)), nil
}

func (s *EngagementService) UpdateMyRating(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.RatingRequest, partial bool) (*entity.RatingResponse, error) {
	if err := requireLogin(caller); err != nil {
		return nil, err
	}

	var rating *entity.Rating
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		rating, err = s.myRating(ctx, caller, auctionID)
		if err != nil {
			return err
		}
		if err := authorize(policy.OpUpdate, policy.Owned(policy.KindRating, rating.UserID), caller); err != nil {
			return err
		}

		switch {
		case req.Value != nil:
			rating.Value = *req.Value
		case !partial:
			rating.Value = minRating
		default:
			return nil
		}
		if err := validateRatingValue(rating.Value); err != nil {
			return err
		}

		if err := s.ratingRepo.Update(ctx, rating); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRatingNotFound
			}
			return fmt.Errorf("failed to update rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.ToPtr(entity.NewRatingResponse(rating)), nil
}

func (s *EngagementService) DeleteMyRating(ctx context.Context, caller policy.Caller, auctionID uint) error {
	if err := requireLogin(caller); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rating, err := s.myRating(ctx, caller, auctionID)
		if err != nil {
			return err
		}
		if err := authorize(policy.OpDelete, policy.Owned(policy.KindRating, rating.UserID), caller); err != nil {
			return err
		}

		if err := s.ratingRepo.Delete(ctx, rating.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRatingNotFound
			}
			return fmt.Errorf("failed to delete rating: %w", err)
		}
		return nil
	})
}

func (s *EngagementService) myRating(ctx context.Context, caller policy.Caller, auctionID uint) (*entity.Rating, error) {
	rating, err := s.ratingRepo.GetByUserAndAuction(ctx, caller.ID, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

// ============================================================================
// Comments
// ============================================================================

// Comment stores the caller's comment. Title and text are sanitised as
// user-generated HTML.
func (s *EngagementService) Comment(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.CommentRequest) (*entity.CommentResponse, error) {
	if err := authorize(policy.OpCreate, policy.On(policy.KindComment), caller); err != nil {
		return nil, err
	}

	title, err := s.requiredText("title", req.Title)
	if err != nil {
		return nil, err
	}
	text, err := s.requiredText("text", req.Text)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	comment := &entity.Comment{
		Title:        title,
		Text:         text,
		CreationDate: now,
		EditDate:     now,
		UserID:       caller.ID,
		User:         caller.Username,
		AuctionID:    auctionID,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := getAuction(ctx, s.auctionRepo, auctionID); err != nil {
			return err
		}
		if err := s.commentRepo.Create(ctx, comment); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrDuplicateComment
			case errors.Is(err, repository.ErrForeignKey):
				return ErrAuctionNotFound
			}
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CommentsCreated.Inc()
	s.events.publish(ctx, entity.EventCommentCreated, auctionID, caller, func(e *entity.AuctionEvent) {
		e.EntityID = comment.ID
		e.Title = comment.Title
	})

	return lo.ToPtr(entity.NewCommentResponse(comment)), nil
}

func (s *EngagementService) ListComments(ctx context.Context, auctionID uint) ([]entity.CommentResponse, error) {
	if _, err := getAuction(ctx, s.auctionRepo, auctionID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return lo.Map(comments, func(c entity.Comment, _ int) entity.CommentResponse {
		return entity.NewCommentResponse(&c)
	}), nil
}

// MyComment returns the caller's comment, or an all-null record when the
// caller has not commented on the auction.
func (s *EngagementService) MyComment(ctx context.Context, caller policy.Caller, auctionID uint) (*entity.CommentResponse, error) {
	if err := authorize(policy.OpRead, policy.On(policy.KindUserScope), caller); err != nil {
		return nil, err
	}
	if _, err := getAuction(ctx, s.auctionRepo, auctionID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByUserAndAuction(ctx, caller.ID, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &entity.CommentResponse{User: caller.Username, Auction: auctionID}, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return lo.ToPtr(entity.NewCommentResponse(comment)), nil
}

// UpdateMyComment rewrites title and text. EditDate moves to now,
// CreationDate stays.
func (s *EngagementService) UpdateMyComment(ctx context.Context, caller policy.Caller, auctionID uint, req *entity.CommentRequest, partial bool) (*entity.CommentResponse, error) {
	if err := requireLogin(caller); err != nil {
		return nil, err
	}

	var comment *entity.Comment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		comment, err = s.myComment(ctx, caller, auctionID)
		if err != nil {
			return err
		}
		if err := authorize(policy.OpUpdate, policy.Owned(policy.KindComment, comment.UserID), caller); err != nil {
			return err
		}

		if req.Title != nil || !partial {
			if comment.Title, err = s.requiredText("title", req.Title); err != nil {
				return err
			}
		}
		if req.Text != nil || !partial {
			if comment.Text, err = s.requiredText("text", req.Text); err != nil {
				return err
			}
		}
		comment.EditDate = s.opts.now()

		if err := s.commentRepo.Update(ctx, comment); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCommentNotFound
			}
			return fmt.Errorf("failed to update comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.ToPtr(entity.NewCommentResponse(comment)), nil
}

func (s *EngagementService) DeleteMyComment(ctx context.Context, caller policy.Caller, auctionID uint) error {
	if err := requireLogin(caller); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		comment, err := s.myComment(ctx, caller, auctionID)
		if err != nil {
			return err
		}
		if err := authorize(policy.OpDelete, policy.Owned(policy.KindComment, comment.UserID), caller); err != nil {
			return err
		}

		if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCommentNotFound
			}
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		return nil
	})
}

func (s *EngagementService) myComment(ctx context.Context, caller policy.Caller, auctionID uint) (*entity.Comment, error) {
	comment, err := s.commentRepo.GetByUserAndAuction(ctx, caller.ID, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// requiredText strips markup from a mandatory text field and rejects it when
// nothing but whitespace remains. The result is plain text, not HTML.
func (s *EngagementService) requiredText(field string, value *string) (string, error) {
	if value == nil {
		return "", requiredField(field)
	}
	clean := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(*value)))
	if clean == "" {
		return "", blankField(field)
	}
	return clean, nil
}
