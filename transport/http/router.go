package http

import (
	"github.com/gin-gonic/gin"

	"github.com/goalguru/walletauth/adapters/market"
	"github.com/goalguru/walletauth/ports"
	"github.com/goalguru/walletauth/service"
)

// SetupRouter sets up the Gin router exposing the orchestrator contract
// and the authenticated prediction-market surface. markets and catalog
// may be nil when the chain integration is disabled.
func SetupRouter(orc *service.Orchestrator, tokenizer ports.Tokenizer, markets ports.Market, catalog *market.Catalog) *gin.Engine {
	router := gin.Default()

	handlers := NewHandlers(orc, tokenizer, markets, catalog)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/state", handlers.State)
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", handlers.Logout)
		auth.POST("/check", handlers.Check)
		auth.POST("/error/clear", handlers.ClearError)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(tokenizer))
	{
		api.GET("/me", handlers.Me)
		api.GET("/markets", handlers.ListMarkets)
		api.GET("/markets/:id", handlers.ReadMarket)
		api.POST("/predictions", handlers.PlacePrediction)
	}

	return router
}
