package handler

import (
	"net/http"

	"auctionhouse/pkg/logger"
	"auctionhouse/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "users-service"

func SetupRoutes(authHandler *AuthHandler, userHandler *UserHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:   []string{logger.RequestIDHeader},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := router.Group("/users")
	{
		users.POST("/register/", authHandler.Register)
		users.POST("/login/", authHandler.Login)
		users.POST("/refresh/", authHandler.Refresh)
		users.GET("/:id/username/", userHandler.Username)

		protected := users.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("/log-out/", authHandler.Logout)
			protected.POST("/change-password/", userHandler.ChangePassword)

			protected.GET("/", userHandler.List)

			protected.GET("/profile/", userHandler.Profile)
			protected.PUT("/profile/", userHandler.UpdateProfile(false))
			protected.PATCH("/profile/", userHandler.UpdateProfile(true))
			protected.DELETE("/profile/", userHandler.DeleteProfile)

			protected.GET("/:id/", userHandler.Get)
			protected.PUT("/:id/", userHandler.Update(false))
			protected.PATCH("/:id/", userHandler.Update(true))
			protected.DELETE("/:id/", userHandler.Delete)
		}
	}

	return router
}
