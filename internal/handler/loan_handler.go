package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/middleware"
	"github.com/paisabank/paisabank-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService *service.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// ApplyLoanRequest represents the loan application request body
type ApplyLoanRequest struct {
	AccountID       int64 `json:"accountId"`
	PrincipalMinor  int64 `json:"principalMinor"`
	InterestRateBps int32 `json:"interestRateBps"`
	TermMonths      int32 `json:"termMonths"`
}

// PreviewLoanRequest represents the schedule preview request body
type PreviewLoanRequest struct {
	PrincipalMinor  int64 `json:"principalMinor"`
	InterestRateBps int32 `json:"interestRateBps"`
	TermMonths      int32 `json:"termMonths"`
}

// DecideLoanRequest represents the admin decision request body
type DecideLoanRequest struct {
	Decision string  `json:"decision"`
	Note     *string `json:"note,omitempty"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID              int64   `json:"id"`
	UserID          string  `json:"userId"`
	AccountID       int64   `json:"accountId"`
	PrincipalMinor  int64   `json:"principalMinor"`
	Principal       string  `json:"principal"`
	Currency        string  `json:"currency"`
	InterestRateBps int32   `json:"interestRateBps"`
	TermMonths      int32   `json:"termMonths"`
	Status          string  `json:"status"`
	DecisionNote    *string `json:"decisionNote,omitempty"`
	DecidedAt       *string `json:"decidedAt,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// EmiRowResponse represents one schedule row in API responses
type EmiRowResponse struct {
	Month              int32  `json:"month"`
	Payment            string `json:"payment"`
	Principal          string `json:"principal"`
	Interest           string `json:"interest"`
	RemainingPrincipal string `json:"remainingPrincipal"`
}

// EmiScheduleResponse represents the amortization schedule in API responses
type EmiScheduleResponse struct {
	MonthlyPayment string           `json:"monthlyPayment"`
	TotalPayable   string           `json:"totalPayable"`
	TotalInterest  string           `json:"totalInterest"`
	Rows           []EmiRowResponse `json:"rows"`
}

// LoanWithScheduleResponse bundles a loan with its schedule
type LoanWithScheduleResponse struct {
	Loan     LoanResponse        `json:"loan"`
	Schedule EmiScheduleResponse `json:"schedule"`
}

// DecisionResponse represents the admin decision result
type DecisionResponse struct {
	Loan         LoanResponse         `json:"loan"`
	Disbursement *TransactionResponse `json:"disbursement,omitempty"`
}

// ApplyLoan handles POST /api/v1/loans
func (h *LoanHandler) ApplyLoan(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req ApplyLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	loan, schedule, err := h.loanService.ApplyLoan(userID, service.ApplyLoanInput{
		AccountID:       req.AccountID,
		PrincipalMinor:  req.PrincipalMinor,
		InterestRateBps: req.InterestRateBps,
		TermMonths:      req.TermMonths,
	})
	if err != nil {
		if resp := loanValidationResponse(c, err); resp != nil {
			return resp
		}
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to apply for loan")
		return NewInternalError(c, "Failed to apply for loan")
	}

	log.Info().Str("user_id", userID.String()).Int64("loan_id", loan.ID).Int64("principal_minor", loan.PrincipalMinor).Msg("Loan application created")

	return c.JSON(http.StatusCreated, LoanWithScheduleResponse{
		Loan:     toLoanResponse(loan),
		Schedule: toEmiScheduleResponse(schedule),
	})
}

// PreviewLoan handles POST /api/v1/loans/preview
func (h *LoanHandler) PreviewLoan(c echo.Context) error {
	var req PreviewLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	schedule, err := h.loanService.PreviewSchedule(req.PrincipalMinor, req.InterestRateBps, req.TermMonths)
	if err != nil {
		if resp := loanValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Msg("Failed to preview loan schedule")
		return NewInternalError(c, "Failed to preview loan schedule")
	}

	return c.JSON(http.StatusOK, toEmiScheduleResponse(schedule))
}

// GetLoans handles GET /api/v1/loans
func (h *LoanHandler) GetLoans(c echo.Context) error {
	userID := middleware.GetUserID(c)

	loans, err := h.loanService.GetLoans(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get loans")
		return NewInternalError(c, "Failed to get loans")
	}

	response := make([]LoanResponse, len(loans))
	for i, loan := range loans {
		response[i] = toLoanResponse(loan)
	}
	return c.JSON(http.StatusOK, response)
}

// GetLoan handles GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, schedule, err := h.loanService.GetLoanByID(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int64("loan_id", id).Msg("Failed to get loan")
		return NewInternalError(c, "Failed to get loan")
	}

	return c.JSON(http.StatusOK, LoanWithScheduleResponse{
		Loan:     toLoanResponse(loan),
		Schedule: toEmiScheduleResponse(schedule),
	})
}

// PayInstallment handles POST /api/v1/loans/:id/payments
func (h *LoanHandler) PayInstallment(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	tx, err := h.loanService.PayInstallment(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return NewUnprocessableError(c, "Insufficient funds")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int64("loan_id", id).Msg("Failed to pay installment")
		return NewInternalError(c, "Failed to pay installment")
	}

	log.Info().Str("user_id", userID.String()).Int64("loan_id", id).Str("reference", tx.Reference).Msg("Installment paid")

	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// GetPendingLoans handles GET /api/v1/admin/loans
func (h *LoanHandler) GetPendingLoans(c echo.Context) error {
	loans, err := h.loanService.GetPendingLoans()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get pending loans")
		return NewInternalError(c, "Failed to get pending loans")
	}

	response := make([]LoanResponse, len(loans))
	for i, loan := range loans {
		response[i] = toLoanResponse(loan)
	}
	return c.JSON(http.StatusOK, response)
}

// DecideLoan handles POST /api/v1/admin/loans/:id/decision
func (h *LoanHandler) DecideLoan(c echo.Context) error {
	adminID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req DecideLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	loan, tx, err := h.loanService.DecideLoan(adminID, id, domain.LoanStatus(req.Decision), req.Note)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanDecisionInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "decision", Message: "Must be 'approved' or 'rejected'"},
			})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "note", Message: "Note must be 500 characters or less"},
			})
		case errors.Is(err, domain.ErrLoanNotFound):
			return NewNotFoundError(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanAlreadyDecided):
			return NewConflictError(c, "Loan has already been decided")
		}
		log.Error().Err(err).Str("admin_id", adminID.String()).Int64("loan_id", id).Msg("Failed to decide loan")
		return NewInternalError(c, "Failed to decide loan")
	}

	log.Info().
		Str("admin_id", adminID.String()).
		Int64("loan_id", loan.ID).
		Str("status", string(loan.Status)).
		Msg("Loan decided")

	resp := DecisionResponse{Loan: toLoanResponse(loan)}
	if tx != nil {
		t := toTransactionResponse(tx)
		resp.Disbursement = &t
	}
	return c.JSON(http.StatusOK, resp)
}

// loanValidationResponse maps loan validation errors to responses; returns nil
// for anything else
func loanValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrLoanPrincipalInvalid):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "principalMinor", Message: "Principal must be positive"},
		})
	case errors.Is(err, domain.ErrLoanRateInvalid):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "interestRateBps", Message: "Rate must be between 0 and 100000 basis points"},
		})
	case errors.Is(err, domain.ErrLoanTermInvalid):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "termMonths", Message: "Term must be between 1 and 600 months"},
		})
	}
	return nil
}

func toLoanResponse(loan *domain.Loan) LoanResponse {
	resp := LoanResponse{
		ID:              loan.ID,
		UserID:          loan.UserID.String(),
		AccountID:       loan.AccountID,
		PrincipalMinor:  loan.PrincipalMinor,
		Principal:       domain.DisplayAmount(loan.PrincipalMinor),
		Currency:        loan.Currency,
		InterestRateBps: loan.InterestRateBps,
		TermMonths:      loan.TermMonths,
		Status:          string(loan.Status),
		DecisionNote:    loan.DecisionNote,
		CreatedAt:       loan.CreatedAt.Format(time.RFC3339),
	}
	if loan.DecidedAt != nil {
		decidedAt := loan.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &decidedAt
	}
	return resp
}

func toEmiScheduleResponse(schedule *domain.EmiSchedule) EmiScheduleResponse {
	rows := make([]EmiRowResponse, len(schedule.Rows))
	for i, row := range schedule.Rows {
		rows[i] = EmiRowResponse{
			Month:              row.Month,
			Payment:            domain.DisplayAmount(row.PaymentMinor),
			Principal:          domain.DisplayAmount(row.PrincipalMinor),
			Interest:           domain.DisplayAmount(row.InterestMinor),
			RemainingPrincipal: domain.DisplayAmount(row.RemainingPrincipalMinor),
		}
	}
	return EmiScheduleResponse{
		MonthlyPayment: domain.DisplayAmount(schedule.MonthlyPaymentMinor),
		TotalPayable:   domain.DisplayAmount(schedule.TotalPayableMinor),
		TotalInterest:  domain.DisplayAmount(schedule.TotalInterestMinor),
		Rows:           rows,
	}
}
