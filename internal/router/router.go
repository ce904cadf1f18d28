package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/tradelog/internal/handler"
	"github.com/tradelog/internal/logger"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, l *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(l))
	r.Use(corsMiddleware())

	r.GET("/", api.Welcome)
	r.GET("/health", api.HealthCheck)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	categories := r.Group("/categories")
	{
		categories.POST("/", api.CreateCategory)
		categories.GET("/", api.ListCategories)
		categories.GET("/:id", api.GetCategory)
		categories.PUT("/:id", api.UpdateCategory)
		categories.DELETE("/:id", api.DeleteCategory)
	}

	trades := r.Group("/stock-trades")
	{
		trades.POST("/", api.CreateTrade)
		trades.GET("/", api.ListTrades)
		trades.GET("/:id", api.GetTrade)
		trades.PUT("/:id", api.UpdateTrade)
		trades.DELETE("/:id", api.DeleteTrade)
	}

	failureCases := r.Group("/failure-cases")
	{
		failureCases.POST("/", api.CreateFailureCase)
		failureCases.GET("/", api.ListFailureCases)
		failureCases.GET("/:id", api.GetFailureCase)
		failureCases.PUT("/:id", api.UpdateFailureCase)
		failureCases.DELETE("/:id", api.DeleteFailureCase)
	}

	reviews := r.Group("/daily-reviews")
	{
		reviews.POST("/", api.CreateDailyReview)
		reviews.GET("/", api.ListDailyReviews)
		reviews.GET("/by-date/:date", api.GetDailyReviewByDate)
		reviews.GET("/:id", api.GetDailyReview)
		reviews.PUT("/:id", api.UpdateDailyReview)
		reviews.DELETE("/:id", api.DeleteDailyReview)
	}

	funds := r.Group("/daily-funds")
	{
		funds.POST("/", api.CreateDailyFund)
		funds.GET("/", api.ListDailyFunds)
		funds.GET("/recent", api.ListRecentDailyFunds)
		funds.GET("/date/:date", api.GetDailyFundByDate)
		funds.GET("/:id", api.GetDailyFund)
		funds.PUT("/:id", api.UpdateDailyFund)
		funds.DELETE("/:id", api.DeleteDailyFund)
	}

	systems := r.Group("/trading-systems")
	{
		systems.POST("/", api.CreateTradingSystem)
		systems.GET("/", api.ListTradingSystems)
		systems.GET("/:id", api.GetTradingSystem)
		systems.PUT("/:id", api.UpdateTradingSystem)
		systems.DELETE("/:id", api.DeleteTradingSystem)
	}

	restrictions := r.Group("/trading-restrictions")
	{
		restrictions.POST("/", api.CreateTradingRestriction)
		restrictions.GET("/", api.ListTradingRestrictions)
		restrictions.GET("/:id", api.GetTradingRestriction)
		restrictions.PUT("/:id", api.UpdateTradingRestriction)
		restrictions.DELETE("/:id", api.DeleteTradingRestriction)
	}

	upload := r.Group("/upload")
	{
		upload.POST("/", api.UploadFile)
		upload.GET("/private/*key", api.GetPrivateURL)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
