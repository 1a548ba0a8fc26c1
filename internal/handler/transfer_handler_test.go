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

func setupTransferHandler() (*TransferHandler, *testutil.MockAccountRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	loanRepo := testutil.NewMockLoanRepository()
	ledgerRepo := testutil.NewMockLedgerRepository(accountRepo, loanRepo)
	return NewTransferHandler(service.NewTransferService(ledgerRepo, accountRepo)), accountRepo
}

func TestCreateTransfer_Handler_Success(t *testing.T) {
	e := echo.New()
	handler, accountRepo := setupTransferHandler()

	alice := uuid.New()
	src := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR", BalanceMinor: 10000})
	dest := accountRepo.AddAccount(&domain.Account{UserID: uuid.New(), Currency: "INR"})

	reqBody := fmt.Sprintf(`{
		"fromAccountId": %d,
		"toAccountNumber": %q,
		"amountMinor": 2500,
		"note": "rent"
	}`, src.ID, dest.Number)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, alice, domain.RoleUser)

	err := handler.CreateTransfer(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Type != "transfer" || response.Status != "completed" {
		t.Errorf("Expected completed transfer, got %s/%s", response.Type, response.Status)
	}
	if response.AmountMinor != 2500 || response.Amount != "25.00" {
		t.Errorf("Expected amount 2500/'25.00', got %d/%s", response.AmountMinor, response.Amount)
	}
	if !strings.HasPrefix(response.Reference, "TXN-") {
		t.Errorf("Expected TXN reference, got %s", response.Reference)
	}
	if response.Note == nil || *response.Note != "rent" {
		t.Error("Expected note 'rent'")
	}

	if src.BalanceMinor != 7500 {
		t.Errorf("Expected source balance 7500, got %d", src.BalanceMinor)
	}
	if dest.BalanceMinor != 2500 {
		t.Errorf("Expected destination balance 2500, got %d", dest.BalanceMinor)
	}
}

func TestCreateTransfer_Handler_InsufficientFunds(t *testing.T) {
	e := echo.New()
	handler, accountRepo := setupTransferHandler()

	alice := uuid.New()
	src := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR", BalanceMinor: 100})
	dest := accountRepo.AddAccount(&domain.Account{UserID: uuid.New(), Currency: "INR"})

	reqBody := fmt.Sprintf(`{"fromAccountId": %d, "toAccountNumber": %q, "amountMinor": 500}`, src.ID, dest.Number)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, alice, domain.RoleUser)

	err := handler.CreateTransfer(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if problem.Type != ErrorTypeUnprocessable {
		t.Errorf("Expected unprocessable problem type, got %s", problem.Type)
	}
}

func TestCreateTransfer_Handler_DestinationNotFound(t *testing.T) {
	e := echo.New()
	handler, accountRepo := setupTransferHandler()

	alice := uuid.New()
	src := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR", BalanceMinor: 10000})

	reqBody := fmt.Sprintf(`{"fromAccountId": %d, "toAccountNumber": "PB999999999999", "amountMinor": 500}`, src.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, alice, domain.RoleUser)

	err := handler.CreateTransfer(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestCreateTransfer_Handler_InvalidAmount(t *testing.T) {
	e := echo.New()
	handler, accountRepo := setupTransferHandler()

	alice := uuid.New()
	src := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR", BalanceMinor: 10000})
	dest := accountRepo.AddAccount(&domain.Account{UserID: uuid.New(), Currency: "INR"})

	reqBody := fmt.Sprintf(`{"fromAccountId": %d, "toAccountNumber": %q, "amountMinor": -100}`, src.ID, dest.Number)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, alice, domain.RoleUser)

	err := handler.CreateTransfer(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "amountMinor" {
		t.Errorf("Expected an amountMinor validation error, got %v", problem.Errors)
	}
}

func TestCreateTransfer_Handler_CurrencyMismatch(t *testing.T) {
	e := echo.New()
	handler, accountRepo := setupTransferHandler()

	alice := uuid.New()
	src := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR", BalanceMinor: 10000})
	dest := accountRepo.AddAccount(&domain.Account{UserID: uuid.New(), Currency: "USD"})

	reqBody := fmt.Sprintf(`{"fromAccountId": %d, "toAccountNumber": %q, "amountMinor": 500}`, src.ID, dest.Number)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, alice, domain.RoleUser)

	err := handler.CreateTransfer(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rec.Code)
	}
}
