package handler

import (
	"net/http"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuctionHandler struct {
	auctionService service.AuctionServiceInterface
	validator      *validator.Validate
}

func NewAuctionHandler(auctionService service.AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
		validator:      newValidator(),
	}
}

// List handles GET /auctions/?search=
func (h *AuctionHandler) List(c *gin.Context) {
	auctions, err := h.auctionService.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auctions)
}

// Create handles POST /auctions/
func (h *AuctionHandler) Create(c *gin.Context) {
	var req entity.AuctionRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	auction, err := h.auctionService.Create(c.Request.Context(), callerFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, auction)
}

// Get handles GET /auctions/:id/
func (h *AuctionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	auction, err := h.auctionService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auction)
}

// Update returns the PUT (partial=false) or PATCH handler for /auctions/:id/
func (h *AuctionHandler) Update(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", service.ErrAuctionNotFound)
		if !ok {
			return
		}

		var req entity.AuctionRequest
		if !bindJSON(c, h.validator, &req) {
			return
		}

		auction, err := h.auctionService.Update(c.Request.Context(), callerFrom(c), id, &req, partial)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, auction)
	}
}

// Delete handles DELETE /auctions/:id/
func (h *AuctionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrAuctionNotFound)
	if !ok {
		return
	}

	if err := h.auctionService.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMine handles GET /auctions/user_auctions/
func (h *AuctionHandler) ListMine(c *gin.Context) {
	auctions, err := h.auctionService.ListByAuctioneer(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auctions)
}
