package handler

import (
	"auctionhouse/pkg/logger"
	"auctionhouse/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "activity-worker-service"

func SetupRoutes(activityHandler *ActivityHandler, healthHandler *HealthCheckHandler) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:   []string{logger.RequestIDHeader},
	}))

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/health/readiness", healthHandler.Readiness)
	router.GET("/health/liveness", healthHandler.Liveness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	activity := router.Group("/activity")
	{
		activity.GET("/auctions/:id/", activityHandler.ListForAuction)
	}

	return router
}
