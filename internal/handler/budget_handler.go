package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orcavox/internal/domain"
	"orcavox/internal/service"
)

// BudgetHandler handles the budget document endpoints.
type BudgetHandler struct {
	budgets service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgets service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

// ProcessResponseRequest carries one raw model response text.
type ProcessResponseRequest struct {
	Text string `json:"text" binding:"required"`
}

// ProcessResponse handles POST /api/v1/responses
func (h *BudgetHandler) ProcessResponse(c *gin.Context) {
	var req ProcessResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}

	outcome, err := h.budgets.ProcessResponse(c.Request.Context(), req.Text)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, outcome)
}

// GetDocument handles GET /api/v1/budget
func (h *BudgetHandler) GetDocument(c *gin.Context) {
	doc := h.budgets.Document()
	if doc == nil {
		HandleError(c, domain.ErrNoDraft)
		return
	}
	RespondOK(c, doc)
}

// EditFieldRequest addresses one document field with its raw new value.
type EditFieldRequest struct {
	Path  string `json:"path" binding:"required"`
	Value string `json:"value"`
}

// EditField handles PATCH /api/v1/budget/fields
func (h *BudgetHandler) EditField(c *gin.Context) {
	var req EditFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "path is required")
		return
	}

	change, patch, err := h.budgets.EditField(req.Path, req.Value)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"change":   change,
		"patch":    patch,
		"document": h.budgets.Document(),
	})
}

// AddEntry handles POST /api/v1/budget/:section
func (h *BudgetHandler) AddEntry(c *gin.Context) {
	doc, err := h.budgets.AddEntry(domain.Section(c.Param("section")))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// RemoveEntry handles DELETE /api/v1/budget/:section/:index
func (h *BudgetHandler) RemoveEntry(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "index must be an integer")
		return
	}

	doc, err := h.budgets.RemoveEntry(domain.Section(c.Param("section")), index)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// Commit handles POST /api/v1/budget/commit
func (h *BudgetHandler) Commit(c *gin.Context) {
	doc := h.budgets.Commit()
	if doc == nil {
		HandleError(c, domain.ErrNoDraft)
		return
	}
	RespondOK(c, doc)
}

// Discard handles POST /api/v1/budget/discard
func (h *BudgetHandler) Discard(c *gin.Context) {
	doc := h.budgets.Discard()
	if doc == nil {
		HandleError(c, domain.ErrNoDraft)
		return
	}
	RespondOK(c, doc)
}

// Close handles POST /api/v1/budget/close
func (h *BudgetHandler) Close(c *gin.Context) {
	h.budgets.CloseDraft()
	RespondOK(c, gin.H{"closed": true})
}

// Export handles POST /api/v1/budget/export
func (h *BudgetHandler) Export(c *gin.Context) {
	result, err := h.budgets.Export(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// EmailQuoteRequest names the recipient of an exported quote.
type EmailQuoteRequest struct {
	To string `json:"to" binding:"required,email"`
}

// EmailQuote handles POST /api/v1/budget/email
func (h *BudgetHandler) EmailQuote(c *gin.Context) {
	var req EmailQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "a valid recipient email is required")
		return
	}

	if err := h.budgets.EmailQuote(c.Request.Context(), req.To); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"sent": true})
}
