package handler

import (
	"github.com/gin-gonic/gin"

	"orcavox/internal/service"
)

// StatsHandler handles the analytics endpoints.
type StatsHandler struct {
	budgets service.BudgetService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(budgets service.BudgetService) *StatsHandler {
	return &StatsHandler{budgets: budgets}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	RespondOK(c, h.budgets.Stats())
}

// GetReport handles GET /api/v1/stats/report
func (h *StatsHandler) GetReport(c *gin.Context) {
	RespondOK(c, h.budgets.Report())
}

// Reset handles POST /api/v1/stats/reset
func (h *StatsHandler) Reset(c *gin.Context) {
	RespondOK(c, gin.H{"session_id": h.budgets.ResetSession()})
}
