package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/middleware"
	"github.com/paisabank/paisabank-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// TransferHandler handles transfer HTTP requests
type TransferHandler struct {
	transferService *service.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// CreateTransferRequest represents the transfer request body. The amount is
// integer minor units.
type CreateTransferRequest struct {
	FromAccountID   int64   `json:"fromAccountId"`
	ToAccountNumber string  `json:"toAccountNumber"`
	AmountMinor     int64   `json:"amountMinor"`
	Note            *string `json:"note,omitempty"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID            int64   `json:"id"`
	Reference     string  `json:"reference"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	FromAccountID *int64  `json:"fromAccountId,omitempty"`
	ToAccountID   *int64  `json:"toAccountId,omitempty"`
	AmountMinor   int64   `json:"amountMinor"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	Note          *string `json:"note,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

// CreateTransfer handles POST /api/v1/transfers
func (h *TransferHandler) CreateTransfer(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateTransferRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	tx, err := h.transferService.Transfer(userID, service.TransferInput{
		FromAccountID:   req.FromAccountID,
		ToAccountNumber: req.ToAccountNumber,
		AmountMinor:     req.AmountMinor,
		Note:            req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransferAmountInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amountMinor", Message: "Amount must be positive"},
			})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", nil)
		case errors.Is(err, domain.ErrDestinationNotFound):
			return NewNotFoundError(c, "Destination account not found")
		case errors.Is(err, domain.ErrCurrencyMismatch):
			return NewUnprocessableError(c, "Accounts use different currencies")
		case errors.Is(err, domain.ErrInsufficientFunds):
			return NewUnprocessableError(c, "Insufficient funds or invalid source account")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int64("from_account_id", req.FromAccountID).Msg("Failed to create transfer")
		return NewInternalError(c, "Failed to create transfer")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("reference", tx.Reference).
		Int64("amount_minor", tx.AmountMinor).
		Msg("Transfer completed")

	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            tx.ID,
		Reference:     tx.Reference,
		Type:          string(tx.Type),
		Status:        string(tx.Status),
		FromAccountID: tx.FromAccountID,
		ToAccountID:   tx.ToAccountID,
		AmountMinor:   tx.AmountMinor,
		Amount:        domain.DisplayAmount(tx.AmountMinor),
		Currency:      tx.Currency,
		Note:          tx.Note,
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
	}
}
