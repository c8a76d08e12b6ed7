package handler

import (
	"net/http"

	"auctionhouse/pkg/logger"
	"auctionhouse/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "auction-service"

type Handlers struct {
	Category   *CategoryHandler
	Auction    *AuctionHandler
	Bid        *BidHandler
	Engagement *EngagementHandler
}

// SetupRoutes builds the auction-service router. Every route accepts
// anonymous callers at the middleware level; the services decide what an
// anonymous caller may do.
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware) *gin.Engine {
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

	categories := router.Group("/categories")
	categories.Use(authMiddleware.Identify())
	{
		categories.GET("/", h.Category.List)
		categories.POST("/", h.Category.Create)
		categories.GET("/:id/", h.Category.Get)
		categories.PUT("/:id/", h.Category.Update)
		categories.PATCH("/:id/", h.Category.Update)
		categories.DELETE("/:id/", h.Category.Delete)
	}

	auctions := router.Group("/auctions")
	auctions.Use(authMiddleware.Identify())
	{
		auctions.GET("/", h.Auction.List)
		auctions.POST("/", h.Auction.Create)
		auctions.GET("/user_auctions/", h.Auction.ListMine)
		auctions.GET("/user_bids/", h.Bid.ListMine)

		auctions.GET("/:id/", h.Auction.Get)
		auctions.PUT("/:id/", h.Auction.Update(false))
		auctions.PATCH("/:id/", h.Auction.Update(true))
		auctions.DELETE("/:id/", h.Auction.Delete)

		auctions.GET("/:id/bid/", h.Bid.List)
		auctions.POST("/:id/bid/", h.Bid.Place)
		auctions.GET("/:id/bid/:bid_id/", h.Bid.Get)
		auctions.PUT("/:id/bid/:bid_id/", h.Bid.Update(false))
		auctions.PATCH("/:id/bid/:bid_id/", h.Bid.Update(true))
		auctions.DELETE("/:id/bid/:bid_id/", h.Bid.Delete)

		auctions.GET("/:id/ratings/", h.Engagement.ListRatings)
		auctions.POST("/:id/ratings/", h.Engagement.Rate)
		auctions.GET("/:id/my_rating/", h.Engagement.MyRating)
		auctions.PUT("/:id/my_rating/", h.Engagement.UpdateMyRating(false))
		auctions.PATCH("/:id/my_rating/", h.Engagement.UpdateMyRating(true))
		auctions.DELETE("/:id/my_rating/", h.Engagement.DeleteMyRating)

		auctions.GET("/:id/comments/", h.Engagement.ListComments)
		auctions.POST("/:id/comments/", h.Engagement.Comment)
		auctions.GET("/:id/my_comment/", h.Engagement.MyComment)
		auctions.PUT("/:id/my_comment/", h.Engagement.UpdateMyComment(false))
		auctions.PATCH("/:id/my_comment/", h.Engagement.UpdateMyComment(true))
		auctions.DELETE("/:id/my_comment/", h.Engagement.DeleteMyComment)
	}

	return router
}
