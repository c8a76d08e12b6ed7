package handler

import (
	"net/http"

	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService service.UserServiceInterface
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   newValidator(),
	}
}

// List handles GET /users/
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get handles GET /users/:id/
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	h.get(c, id)
}

// Update handles PUT and PATCH /users/:id/
func (h *UserHandler) Update(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUserID(c)
		if !ok {
			return
		}
		h.update(c, id, partial)
	}
}

// Delete handles DELETE /users/:id/
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	h.delete(c, id)
}

// Profile handles GET /users/profile/
func (h *UserHandler) Profile(c *gin.Context) {
	h.get(c, callerFrom(c).ID)
}

// UpdateProfile handles PUT and PATCH /users/profile/
func (h *UserHandler) UpdateProfile(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.update(c, callerFrom(c).ID, partial)
	}
}

// DeleteProfile handles DELETE /users/profile/
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	h.delete(c, callerFrom(c).ID)
}

// Username handles GET /users/:id/username/
func (h *UserHandler) Username(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}

	resp, err := h.userService.Username(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChangePassword handles POST /users/change-password/
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req entity.ChangePasswordRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), callerFrom(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Password updated successfully."})
}

func (h *UserHandler) get(c *gin.Context, id uuid.UUID) {
	user, err := h.userService.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) update(c *gin.Context, id uuid.UUID, partial bool) {
	var req entity.UpdateUserRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), callerFrom(c), id, &req, partial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) delete(c *gin.Context, id uuid.UUID) {
	if err := h.userService.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
