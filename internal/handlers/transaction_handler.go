package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "cashdash/internal/errors"
	"cashdash/internal/pagination"
	"cashdash/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// AssignCategoryRequest sets or clears a transaction's category. A null or
// missing category_id clears it.
type AssignCategoryRequest struct {
	TransactionID string  `json:"transaction_id" binding:"required"`
	CategoryID    *string `json:"category_id"`
}

// ListTransactions handles the paginated ledger listing
// @Summary     List transactions
// @Description List transactions newest first with their category attached
// @Tags        transactions
// @Produce     json
// @Param       page              query int    false "Page number (default 1)"
// @Param       page_size         query int    false "Items per page (default 50, max 200)"
// @Param       from_date         query string false "Earliest date, YYYY-MM-DD"
// @Param       to_date           query string false "Latest date, YYYY-MM-DD"
// @Param       category_id       query string false "Category ID, or 'uncategorized'"
// @Param       linked_account_id query string false "Linked account ID"
// @Param       pending           query bool   false "Pending status"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	var err error

	if filter.FromDate, filter.ToDate, err = bindDateRange(c); err != nil {
		return filter, err
	}

	switch v := c.Query("category_id"); v {
	case "":
	case "uncategorized":
		filter.Uncategorized = true
	default:
		filter.CategoryID = &v
	}

	if v := c.Query("linked_account_id"); v != "" {
		filter.LinkedAccountID = &v
	}

	if v := c.Query("pending"); v != "" {
		pending, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid pending, must be true or false")
		}
		filter.Pending = &pending
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]models.Transaction
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// AssignCategory handles category assignment
// @Summary     Assign a category
// @Description Set or clear (category_id null) the category of a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body AssignCategoryRequest true "Assignment"
// @Success     200 {object} map[string]models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/assign-category [post]
func (h *TransactionHandler) AssignCategory(c *gin.Context) {
	var req AssignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.CategoryID != nil && *req.CategoryID == "" {
		req.CategoryID = nil
	}

	transaction, err := h.transactionService.AssignCategory(c.Request.Context(), req.TransactionID, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), "ASSIGN_CATEGORY", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"category_id": req.CategoryID})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}
