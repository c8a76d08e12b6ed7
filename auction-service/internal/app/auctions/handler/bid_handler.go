package handler

import (
	"net/http"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type BidHandler struct {
	bidService service.BidServiceInterface
	validator  *validator.Validate
}

func NewBidHandler(bidService service.BidServiceInterface) *BidHandler {
	return &BidHandler{
		bidService: bidService,
		validator:  newValidator(),
	}
}

// List handles GET /auctions/:id/bid/
func (h *BidHandler) List(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	bids, err := h.bidService.List(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

// Place handles POST /auctions/:id/bid/
func (h *BidHandler) Place(c *gin.Context) {
	auctionID, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	var req entity.BidRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	bid, err := h.bidService.Place(c.Request.Context(), callerFrom(c), auctionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

// Get handles GET /auctions/:id/bid/:bid_id/
func (h *BidHandler) Get(c *gin.Context) {
	auctionID, bidID, ok := bidPath(c)
	if !ok {
		return
	}

	bid, err := h.bidService.Get(c.Request.Context(), callerFrom(c), auctionID, bidID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bid)
}

// Update returns the PUT or PATCH handler for /auctions/:id/bid/:bid_id/
func (h *BidHandler) Update(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		auctionID, bidID, ok := bidPath(c)
		if !ok {
			return
		}

		var req entity.BidRequest
		if !bindJSON(c, h.validator, &req) {
			return
		}

		bid, err := h.bidService.Update(c.Request.Context(), callerFrom(c), auctionID, bidID, &req, partial)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bid)
	}
}

// Delete handles DELETE /auctions/:id/bid/:bid_id/
func (h *BidHandler) Delete(c *gin.Context) {
	auctionID, bidID, ok := bidPath(c)
	if !ok {
		return
	}

	if err := h.bidService.Delete(c.Request.Context(), callerFrom(c), auctionID, bidID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMine handles GET /auctions/user_bids/
func (h *BidHandler) ListMine(c *gin.Context) {
	bids, err := h.bidService.ListByBidder(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

func bidPath(c *gin.Context) (uint, uint, bool) {
	auctionID, ok := pathID(c, "id", service.ErrBidNotFound)
	if !ok {
		return 0, 0, false
	}
	bidID, ok := pathID(c, "bid_id", service.ErrBidNotFound)
	if !ok {
		return 0, 0, false
	}
	return auctionID, bidID, true
}
