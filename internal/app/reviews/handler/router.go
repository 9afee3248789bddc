package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"berrymarket/pkg/logger"
	"berrymarket/pkg/metrics"
)

// SetupRoutes настраивает все маршруты сервиса отзывов
func SetupRoutes(reviewHandler *ReviewHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("reviews"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "reviews",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Чтение отзывов и агрегата доступно без аутентификации
	public := router.Group("/reviews")
	{
		public.GET("/product/:product_id", reviewHandler.GetReviewsByProduct)
		public.GET("/product/:product_id/stats", reviewHandler.GetProductStats)
	}

	// Мутации требуют JWT: user_id автора берется из токена
	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.POST("/", reviewHandler.CreateReview)
		reviews.GET("/my", reviewHandler.GetUserReviews)
		reviews.GET("/:review_id", reviewHandler.GetReview)
		reviews.PATCH("/:review_id", reviewHandler.UpdateReview)
		reviews.DELETE("/:review_id", reviewHandler.DeleteReview)
	}

	return router
}
