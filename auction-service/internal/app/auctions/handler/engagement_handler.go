package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// EngagementHandler serves ratings and comments of an auction, including
// the caller's own record under my_rating/ and my_comment/.
type EngagementHandler struct {
	engagementService service.EngagementServiceInterface
	validator         *validator.Validate
}

func NewEngagementHandler(engagementService service.EngagementServiceInterface) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
		validator:         newValidator(),
	}
}

// bindRating reports a value that does not decode as an integer with the
// rating range error.
func (h *EngagementHandler) bindRating(c *gin.Context, req *entity.RatingRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "value" {
			respondError(c, service.ErrInvalidRatingValue)
		} else {
			respondValidation(c, "", "Invalid request body.")
		}
		return false
	}
	return validateBody(c, h.validator, req)
}

func (h *EngagementHandler) ListRatings(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	ratings, err := h.engagementService.ListRatings(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func (h *EngagementHandler) Rate(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	var req entity.RatingRequest
	if !h.bindRating(c, &req) {
		return
	}

	rating, err := h.engagementService.Rate(c.Request.Context(), callerFrom(c), auctionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// MyRating answers 200 with a null value when the caller has not rated.
func (h *EngagementHandler) MyRating(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	rating, err := h.engagementService.MyRating(c.Request.Context(), callerFrom(c), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *EngagementHandler) UpdateMyRating(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		auctionID, ok := pathID(c, "id", service.ErrRatingNotFound)
		if !ok {
			return
		}

		var req entity.RatingRequest
		if !h.bindRating(c, &req) {
			return
		}

		rating, err := h.engagementService.UpdateMyRating(c.Request.Context(), callerFrom(c), auctionID, &req, partial)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rating)
	}
}

func (h *EngagementHandler) DeleteMyRating(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrRatingNotFound)
	if !ok {
		return
	}

	if err := h.engagementService.DeleteMyRating(c.Request.Context(), callerFrom(c), auctionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EngagementHandler) ListComments(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	comments, err := h.engagementService.ListComments(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *EngagementHandler) Comment(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	var req entity.CommentRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	comment, err := h.engagementService.Comment(c.Request.Context(), callerFrom(c), auctionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// MyComment answers 200 with null fields when the caller has not commented.
func (h *EngagementHandler) MyComment(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	comment, err := h.engagementService.MyComment(c.Request.Context(), callerFrom(c), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *EngagementHandler) UpdateMyComment(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		auctionID, ok := pathID(c, "id", service.ErrCommentNotFound)
		if !ok {
			return
		}

		var req entity.CommentRequest
		if !bindJSON(c, h.validator, &req) {
			return
		}

		comment, err := h.engagementService.UpdateMyComment(c.Request.Context(), callerFrom(c), auctionID, &req, partial)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, comment)
	}
}

func (h *EngagementHandler) DeleteMyComment(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrCommentNotFound)
	if !ok {
		return
	}

	if err := h.engagementService.DeleteMyComment(c.Request.Context(), callerFrom(c), auctionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
