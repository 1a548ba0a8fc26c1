package handler

import (
	"encoding/json"
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

func TestCreateAccount_Handler_Success(t *testing.T) {
	e := echo.New()
	accountRepo := testutil.NewMockAccountRepository()
	handler := NewAccountHandler(service.NewAccountService(accountRepo))

	reqBody := `{"currency": "INR"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New(), domain.RoleUser)

	err := handler.CreateAccount(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Currency != "INR" {
		t.Errorf("Expected currency INR, got %s", response.Currency)
	}
	if response.Balance != "0.00" {
		t.Errorf("Expected balance '0.00', got %s", response.Balance)
	}
	if !strings.HasPrefix(response.Number, "PB") {
		t.Errorf("Expected PB-prefixed number, got %s", response.Number)
	}
}

func TestCreateAccount_Handler_InvalidCurrency(t *testing.T) {
	e := echo.New()
	handler := NewAccountHandler(service.NewAccountService(testutil.NewMockAccountRepository()))

	reqBody := `{"currency": "RUPEES"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, uuid.New(), domain.RoleUser)

	err := handler.CreateAccount(c)
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
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "currency" {
		t.Errorf("Expected a currency validation error, got %v", problem.Errors)
	}
}

func TestGetAccounts_Handler(t *testing.T) {
	e := echo.New()
	accountRepo := testutil.NewMockAccountRepository()
	handler := NewAccountHandler(service.NewAccountService(accountRepo))

	alice := uuid.New()
	accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR", BalanceMinor: 4432})
	accountRepo.AddAccount(&domain.Account{UserID: uuid.New(), Currency: "INR"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, alice, domain.RoleUser)

	err := handler.GetAccounts(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 account, got %d", len(response))
	}
	if response[0].Balance != "44.32" {
		t.Errorf("Expected balance '44.32', got %s", response[0].Balance)
	}
}

func TestGetAccount_Handler_NotFound(t *testing.T) {
	e := echo.New()
	accountRepo := testutil.NewMockAccountRepository()
	handler := NewAccountHandler(service.NewAccountService(accountRepo))

	// Account owned by someone else
	account := accountRepo.AddAccount(&domain.Account{UserID: uuid.New(), Currency: "INR"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, uuid.New(), domain.RoleUser)

	err := handler.GetAccount(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for account %d, got %d", account.ID, rec.Code)
	}
}

func TestGetAccount_Handler_InvalidID(t *testing.T) {
	e := echo.New()
	handler := NewAccountHandler(service.NewAccountService(testutil.NewMockAccountRepository()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	setupAuthContext(c, uuid.New(), domain.RoleUser)

	err := handler.GetAccount(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
