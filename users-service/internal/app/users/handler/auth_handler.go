package handler

import (
	"errors"
	"net/http"

	"auctionhouse/pkg/metrics"
	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   newValidator(),
	}
}

// Register handles POST /users/register/
func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.AuthRegistrations.Inc()
	recordTokensIssued()
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /users/login/
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
		}
		respondError(c, err)
		return
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	recordTokensIssued()
	c.JSON(http.StatusOK, tokens)
}

// Refresh handles POST /users/refresh/
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req entity.RefreshRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	recordTokensIssued()
	c.JSON(http.StatusOK, tokens)
}

// Logout handles POST /users/log-out/. The body is optional.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req entity.LogoutRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, h.validator, &req) {
			return
		}
	}

	accessToken, expiresAt := accessTokenFrom(c)
	if err := h.authService.Logout(c.Request.Context(), callerFrom(c), accessToken, expiresAt, req.Refresh); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Successfully logged out."})
}

func recordTokensIssued() {
	metrics.AuthTokensIssued.WithLabelValues("access").Inc()
	metrics.AuthTokensIssued.WithLabelValues("refresh").Inc()
}
