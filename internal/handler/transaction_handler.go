package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/middleware"
	"github.com/paisabank/paisabank-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// TransactionHandler handles ledger read HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionListResponse represents a page of ledger entries
type TransactionListResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// GetAccountTransactions handles GET /api/v1/accounts/:id/transactions
func (h *TransactionHandler) GetAccountTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)

	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	filters := &domain.TransactionFilters{}

	if typeParam := c.QueryParam("type"); typeParam != "" {
		t := domain.TransactionType(typeParam)
		switch t {
		case domain.TransactionTypeTransfer, domain.TransactionTypeLoanDisbursement, domain.TransactionTypeLoanPayment:
			filters.Type = &t
		default:
			return NewValidationError(c, "Invalid type parameter", []ValidationError{
				{Field: "type", Message: "Must be 'transfer', 'loan_disbursement' or 'loan_payment'"},
			})
		}
	}

	if pageParam := c.QueryParam("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return NewValidationError(c, "Invalid page parameter", nil)
		}
		filters.Page = int32(page)
	}

	if sizeParam := c.QueryParam("pageSize"); sizeParam != "" {
		size, err := strconv.Atoi(sizeParam)
		if err != nil || size < 1 {
			return NewValidationError(c, "Invalid pageSize parameter", nil)
		}
		filters.PageSize = int32(size)
	}

	page, err := h.transactionService.GetAccountTransactions(userID, accountID, filters)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int64("account_id", accountID).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	data := make([]TransactionResponse, len(page.Data))
	for i, tx := range page.Data {
		data[i] = toTransactionResponse(tx)
	}

	return c.JSON(http.StatusOK, TransactionListResponse{
		Data:       data,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}
