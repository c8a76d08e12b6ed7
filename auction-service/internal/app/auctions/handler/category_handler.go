package handler

import (
	"net/http"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CategoryHandler struct {
	categoryService service.CategoryServiceInterface
	validator       *validator.Validate
}

func NewCategoryHandler(categoryService service.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       newValidator(),
	}
}

// List handles GET /categories/
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Create handles POST /categories/
func (h *CategoryHandler) Create(c *gin.Context) {
	var req entity.CategoryRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), callerFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Get handles GET /categories/:id/
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrCategoryNotFound)
	if !ok {
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Update handles PUT and PATCH /categories/:id/
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrCategoryNotFound)
	if !ok {
		return
	}

	var req entity.CategoryRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), callerFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /categories/:id/
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrCategoryNotFound)
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
