package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/service"
	"github.com/paisabank/paisabank-backend/internal/testutil"
)

func setupLoanHandler() (*LoanHandler, *testutil.MockAccountRepository, *testutil.MockLoanRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	loanRepo := testutil.NewMockLoanRepository()
	ledgerRepo := testutil.NewMockLedgerRepository(accountRepo, loanRepo)
	return NewLoanHandler(service.NewLoanService(loanRepo, accountRepo, ledgerRepo)), accountRepo, loanRepo
}

func TestApplyLoan_Handler_Success(t *testing.T) {
	e := echo.New()
	handler, accountRepo, _ := setupLoanHandler()

	alice := uuid.New()
	account := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR"})

	reqBody := fmt.Sprintf(`{
		"accountId": %d,
		"principalMinor": 50000,
		"interestRateBps": 1200,
		"termMonths": 12
	}`, account.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, alice, domain.RoleUser)

	err := handler.ApplyLoan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response LoanWithScheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Loan.Status != "pending" {
		t.Errorf("Expected status pending, got %s", response.Loan.Status)
	}
	if response.Loan.Principal != "500.00" {
		t.Errorf("Expected principal '500.00', got %s", response.Loan.Principal)
	}
	if response.Schedule.MonthlyPayment != "44.42" {
		t.Errorf("Expected monthly payment '44.42', got %s", response.Schedule.MonthlyPayment)
	}
	if response.Schedule.TotalPayable != "533.12" {
		t.Errorf("Expected total payable '533.12', got %s", response.Schedule.TotalPayable)
	}
	if len(response.Schedule.Rows) != 12 {
		t.Errorf("Expected 12 schedule rows, got %d", len(response.Schedule.Rows))
	}
}

func TestApplyLoan_Handler_Validation(t *testing.T) {
	e := echo.New()
	handler, accountRepo, _ := setupLoanHandler()

	alice := uuid.New()
	account := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR"})

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			"zero principal",
			fmt.Sprintf(`{"accountId": %d, "principalMinor": 0, "interestRateBps": 1200, "termMonths": 12}`, account.ID),
			"principalMinor",
		},
		{
			"negative rate",
			fmt.Sprintf(`{"accountId": %d, "principalMinor": 50000, "interestRateBps": -1, "termMonths": 12}`, account.ID),
			"interestRateBps",
		},
		{
			"zero term",
			fmt.Sprintf(`{"accountId": %d, "principalMinor": 50000, "interestRateBps": 1200, "termMonths": 0}`, account.ID),
			"termMonths",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			setupAuthContext(c, alice, domain.RoleUser)

			if err := handler.ApplyLoan(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}

			var problem ProblemDetails
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("Failed to unmarshal problem: %v", err)
			}
			if len(problem.Errors) != 1 || problem.Errors[0].Field != tt.wantField {
				t.Errorf("Expected a %s validation error, got %v", tt.wantField, problem.Errors)
			}
		})
	}
}

func TestPreviewLoan_Handler(t *testing.T) {
	e := echo.New()
	handler, _, _ := setupLoanHandler()

	reqBody := `{"principalMinor": 120000, "interestRateBps": 0, "termMonths": 12}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans/preview", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New(), domain.RoleUser)

	err := handler.PreviewLoan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response EmiScheduleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	// Zero-interest loan splits evenly
	if response.MonthlyPayment != "100.00" {
		t.Errorf("Expected monthly payment '100.00', got %s", response.MonthlyPayment)
	}
	if response.TotalInterest != "0.00" {
		t.Errorf("Expected zero interest, got %s", response.TotalInterest)
	}
}

func TestDecideLoan_Handler_Approve(t *testing.T) {
	e := echo.New()
	handler, accountRepo, loanRepo := setupLoanHandler()

	alice := uuid.New()
	admin := uuid.New()
	account := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR"})
	loan, _ := loanRepo.Create(&domain.Loan{
		UserID:          alice,
		AccountID:       account.ID,
		PrincipalMinor:  50000,
		Currency:        "INR",
		InterestRateBps: 1200,
		TermMonths:      12,
		Status:          domain.LoanStatusPending,
	})

	reqBody := `{"decision": "approved", "note": "income verified"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/loans/1/decision", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", loan.ID))
	setupAuthContext(c, admin, domain.RoleAdmin)

	err := handler.DecideLoan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response DecisionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Loan.Status != "approved" {
		t.Errorf("Expected status approved, got %s", response.Loan.Status)
	}
	if response.Disbursement == nil {
		t.Fatal("Expected a disbursement entry")
	}
	if response.Disbursement.Type != "loan_disbursement" {
		t.Errorf("Expected loan_disbursement, got %s", response.Disbursement.Type)
	}
	if account.BalanceMinor != 50000 {
		t.Errorf("Expected account credited with principal, got %d", account.BalanceMinor)
	}
}

func TestDecideLoan_Handler_AlreadyDecided(t *testing.T) {
	e := echo.New()
	handler, accountRepo, loanRepo := setupLoanHandler()

	alice := uuid.New()
	account := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR"})
	loan, _ := loanRepo.Create(&domain.Loan{
		UserID:         alice,
		AccountID:      account.ID,
		PrincipalMinor: 50000,
		Currency:       "INR",
		TermMonths:     12,
		Status:         domain.LoanStatusRejected,
	})

	reqBody := `{"decision": "approved"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/loans/1/decision", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", loan.ID))
	setupAuthContext(c, uuid.New(), domain.RoleAdmin)

	err := handler.DecideLoan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestDecideLoan_Handler_InvalidDecision(t *testing.T) {
	e := echo.New()
	handler, _, _ := setupLoanHandler()

	reqBody := `{"decision": "maybe"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/loans/1/decision", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, uuid.New(), domain.RoleAdmin)

	err := handler.DecideLoan(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestPayInstallment_Handler_UndecidedLoan(t *testing.T) {
	e := echo.New()
	handler, accountRepo, loanRepo := setupLoanHandler()

	alice := uuid.New()
	account := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR"})
	loan, _ := loanRepo.Create(&domain.Loan{
		UserID:         alice,
		AccountID:      account.ID,
		PrincipalMinor: 50000,
		Currency:       "INR",
		TermMonths:     12,
		Status:         domain.LoanStatusPending,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans/1/payments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", loan.ID))
	setupAuthContext(c, alice, domain.RoleUser)

	err := handler.PayInstallment(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A loan that is not approved cannot accept payments
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetPendingLoans_Handler(t *testing.T) {
	e := echo.New()
	handler, accountRepo, loanRepo := setupLoanHandler()

	alice := uuid.New()
	account := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR"})
	loanRepo.Create(&domain.Loan{UserID: alice, AccountID: account.ID, PrincipalMinor: 50000, Currency: "INR", TermMonths: 12, Status: domain.LoanStatusPending})
	loanRepo.Create(&domain.Loan{UserID: alice, AccountID: account.ID, PrincipalMinor: 20000, Currency: "INR", TermMonths: 6, Status: domain.LoanStatusApproved})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/loans", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New(), domain.RoleAdmin)

	err := handler.GetPendingLoans(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []LoanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 pending loan, got %d", len(response))
	}
	if response[0].Status != "pending" {
		t.Errorf("Expected pending status, got %s", response[0].Status)
	}
}
