package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"auctionhouse/pkg/logger"
	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/service"
	"auctionhouse/users-service/internal/app/users/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	callerKey      = "caller"
	accessTokenKey = "access_token"
	tokenExpiryKey = "token_expires_at"
)

// TokenBlacklist is the read side of the logout blacklist.
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtManager *util.JWTManager
	blacklist  TokenBlacklist
}

func NewAuthMiddleware(jwtManager *util.JWTManager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// Authenticate requires a valid, unrevoked bearer token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c, service.ErrUnauthenticated.Message)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthenticated(c, "Invalid authorization header format.")
			return
		}
		token := parts[1]

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			if errors.Is(err, util.ErrExpiredToken) {
				abortUnauthenticated(c, "Token has expired.")
				return
			}
			abortUnauthenticated(c, "Given token not valid for any token type.")
			return
		}

		revoked, err := m.blacklist.IsBlacklisted(c.Request.Context(), token)
		if err != nil {
			logger.Ctx(c.Request.Context()).Error().Err(err).Msg("Failed to check token blacklist")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, entity.ErrorResponse{
				Error:   "SERVICE_UNAVAILABLE",
				Code:    "SERVICE_UNAVAILABLE",
				Message: "Token could not be verified.",
			})
			return
		}
		if revoked {
			abortUnauthenticated(c, "Token has been revoked.")
			return
		}

		c.Set(callerKey, service.Caller{
			ID:       uuid.MustParse(claims.UserID),
			Username: claims.Username,
			IsAdmin:  claims.IsAdmin,
		})
		c.Set(accessTokenKey, token)
		c.Set(tokenExpiryKey, claims.ExpiresAt.Time)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

func callerFrom(c *gin.Context) service.Caller {
	return c.MustGet(callerKey).(service.Caller)
}

func accessTokenFrom(c *gin.Context) (string, time.Time) {
	return c.GetString(accessTokenKey), c.GetTime(tokenExpiryKey)
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
		Error:   "UNAUTHENTICATED",
		Code:    "UNAUTHENTICATED",
		Message: message,
	})
}
