package handler

import (
	"context"
	"net/http"
	"time"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"

	"github.com/gin-gonic/gin"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

type HealthCheckHandler struct {
	checkMongo PingFunc
	now        func() time.Time
}

func NewHealthCheckHandler(checkMongo PingFunc) *HealthCheckHandler {
	return &HealthCheckHandler{
		checkMongo: checkMongo,
		now:        time.Now,
	}
}

func (h *HealthCheckHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	if err := h.checkMongo(ctx); err != nil {
		checks["mongodb"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["mongodb"] = "healthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, entity.HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: h.now().UTC(),
	})
}

func (h *HealthCheckHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.checkMongo(ctx); err != nil {
		c.String(http.StatusServiceUnavailable, "mongodb not ready")
		return
	}
	c.String(http.StatusOK, "ready")
}

func (h *HealthCheckHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}
