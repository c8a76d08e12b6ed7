package handler

import (
	"net/http"
	"strings"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/policy"
	"auctionhouse/auction-service/internal/app/auctions/util"
	"auctionhouse/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const callerKey = "caller"

// JWTClaims mirrors the access token issued by users-service.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	jwtSecret string
	blacklist util.TokenBlacklist
}

func NewAuthMiddleware(jwtSecret string, blacklist util.TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		blacklist: blacklist,
	}
}

// Identify resolves the caller. Requests without an Authorization header
// continue as anonymous; a header with a bad, expired or revoked token is
// rejected.
func (m *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(callerKey, policy.Anonymous())
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthenticated(c, "Invalid authorization header format.")
			return
		}
		tokenString := parts[1]

		token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(m.jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			abortUnauthenticated(c, "Given token not valid for any token type.")
			return
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok {
			abortUnauthenticated(c, "Invalid token claims.")
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortUnauthenticated(c, "Invalid token claims.")
			return
		}

		if m.blacklist != nil {
			revoked, err := m.blacklist.IsBlacklisted(c.Request.Context(), tokenString)
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
		}

		c.Set(callerKey, policy.Caller{
			ID:            userID,
			Username:      claims.Username,
			IsAdmin:       claims.IsAdmin,
			Authenticated: true,
		})
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

func callerFrom(c *gin.Context) policy.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(policy.Caller); ok {
			return caller
		}
	}
	return policy.Anonymous()
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
		Error:   "UNAUTHENTICATED",
		Code:    "UNAUTHENTICATED",
		Message: message,
	})
}
