package router

import (
	"github.com/gin-gonic/gin"

	"orcavox/internal/config"
	"orcavox/internal/handler"
	"orcavox/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	budgetH *handler.BudgetHandler,
	statsH *handler.StatsHandler,
	sessionH *handler.SessionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Live session transport bridge
	r.GET("/ws/session", sessionH.Live)

	// Protected API - require valid JWT
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(&cfg.JWT))

	v1.POST("/responses", budgetH.ProcessResponse)

	budget := v1.Group("/budget")
	budget.GET("", budgetH.GetDocument)
	budget.PATCH("/fields", budgetH.EditField)
	budget.POST("/:section", budgetH.AddEntry)
	budget.DELETE("/:section/:index", budgetH.RemoveEntry)
	budget.POST("/commit", budgetH.Commit)
	budget.POST("/discard", budgetH.Discard)
	budget.POST("/close", budgetH.Close)
	budget.POST("/export", budgetH.Export)
	budget.POST("/email", budgetH.EmailQuote)

	stats := v1.Group("/stats")
	stats.GET("", statsH.GetStats)
	stats.GET("/report", statsH.GetReport)
	stats.POST("/reset", statsH.Reset)

	return r
}
