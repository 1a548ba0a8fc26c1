package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/testutil"
)

func setupTransactionTest() (*TransactionService, *testutil.MockAccountRepository, *testutil.MockTransactionRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	return NewTransactionService(transactionRepo, accountRepo), accountRepo, transactionRepo
}

func addEntry(repo *testutil.MockTransactionRepository, accountID int64, txType domain.TransactionType) {
	repo.Add(&domain.Transaction{
		Reference:     NewReference("TXN"),
		Type:          txType,
		Status:        domain.TransactionStatusCompleted,
		FromAccountID: &accountID,
		AmountMinor:   100,
		Currency:      "INR",
	})
}

func TestGetAccountTransactions_ForeignAccount(t *testing.T) {
	svc, accountRepo, _ := setupTransactionTest()

	account := accountRepo.AddAccount(&domain.Account{UserID: uuid.New(), Currency: "INR"})

	_, err := svc.GetAccountTransactions(uuid.New(), account.ID, nil)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestGetAccountTransactions_DefaultsAndCaps(t *testing.T) {
	svc, accountRepo, transactionRepo := setupTransactionTest()

	alice := uuid.New()
	account := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR"})
	for i := 0; i < 25; i++ {
		addEntry(transactionRepo, account.ID, domain.TransactionTypeTransfer)
	}

	// Nil filters default to page 1, size 20
	page, err := svc.GetAccountTransactions(alice, account.ID, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.Page != 1 || page.PageSize != domain.DefaultPageSize {
		t.Errorf("Expected page 1 size %d, got %d/%d", domain.DefaultPageSize, page.Page, page.PageSize)
	}
	if len(page.Data) != 20 {
		t.Errorf("Expected 20 entries on page 1, got %d", len(page.Data))
	}
	if page.TotalItems != 25 || page.TotalPages != 2 {
		t.Errorf("Expected 25 items in 2 pages, got %d/%d", page.TotalItems, page.TotalPages)
	}

	// Oversized page size is capped
	page, err = svc.GetAccountTransactions(alice, account.ID, &domain.TransactionFilters{PageSize: 1000})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.PageSize != domain.MaxPageSize {
		t.Errorf("Expected page size capped at %d, got %d", domain.MaxPageSize, page.PageSize)
	}
}

func TestGetAccountTransactions_TypeFilter(t *testing.T) {
	svc, accountRepo, transactionRepo := setupTransactionTest()

	alice := uuid.New()
	account := accountRepo.AddAccount(&domain.Account{UserID: alice, Currency: "INR"})
	addEntry(transactionRepo, account.ID, domain.TransactionTypeTransfer)
	addEntry(transactionRepo, account.ID, domain.TransactionTypeLoanPayment)
	addEntry(transactionRepo, account.ID, domain.TransactionTypeTransfer)

	filterType := domain.TransactionTypeLoanPayment
	page, err := svc.GetAccountTransactions(alice, account.ID, &domain.TransactionFilters{Type: &filterType})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.TotalItems != 1 {
		t.Errorf("Expected 1 loan_payment entry, got %d", page.TotalItems)
	}
	for _, tx := range page.Data {
		if tx.Type != domain.TransactionTypeLoanPayment {
			t.Errorf("Expected only loan_payment entries, got %s", tx.Type)
		}
	}
}
