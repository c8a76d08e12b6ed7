package handler

import (
	"net/http"
	"strconv"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"
	"auctionhouse/activity-worker-service/internal/app/activity/service"
	"auctionhouse/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activitySvc service.ActivityServiceInterface
}

func NewActivityHandler(activitySvc service.ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// ListForAuction serves GET /activity/auctions/:id/. The worker keeps no
// auction state, so an auction without entries yields an empty list.
func (h *ActivityHandler) ListForAuction(c *gin.Context) {
	auctionID, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || auctionID == 0 {
		c.JSON(http.StatusNotFound, entity.ErrorResponse{
			Error:   "NOT_FOUND",
			Code:    "AUCTION_NOT_FOUND",
			Message: "Auction not found.",
		})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			respondInvalidLimit(c, "A valid integer is required.")
			return
		}
		if limit < 1 {
			respondInvalidLimit(c, "Ensure this value is greater than or equal to 1.")
			return
		}
	}

	activities, err := h.activitySvc.ListForAuction(c.Request.Context(), uint(auctionID), limit)
	if err != nil {
		_ = c.Error(err)
		logger.Ctx(c.Request.Context()).Error().Err(err).Uint64("auction_id", auctionID).Msg("Failed to list activities")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error:   "INTERNAL_ERROR",
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error.",
		})
		return
	}

	c.JSON(http.StatusOK, activities)
}

func respondInvalidLimit(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, entity.ErrorResponse{
		Error:   "VALIDATION_ERROR",
		Code:    "INVALID_FIELD",
		Message: message,
		Field:   "limit",
	})
}
