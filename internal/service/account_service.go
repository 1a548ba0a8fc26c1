package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/paisabank/paisabank-backend/internal/domain"
)

// AccountService handles account creation and reads. Balances are never
// mutated here; only the ledger repository touches them.
type AccountService struct {
	accountRepo domain.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccount opens a zero-balance account in the given currency
func (s *AccountService) CreateAccount(userID uuid.UUID, currency string) (*domain.Account, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != domain.MaxCurrencyLength {
		return nil, domain.ErrInvalidInput
	}

	account := &domain.Account{
		UserID:       userID,
		Number:       NewAccountNumber(),
		Currency:     currency,
		BalanceMinor: 0,
	}
	return s.accountRepo.Create(account)
}

// GetAccounts retrieves all accounts owned by the user
func (s *AccountService) GetAccounts(userID uuid.UUID) ([]*domain.Account, error) {
	return s.accountRepo.GetAllByUser(userID)
}

// GetAccountByID retrieves one of the user's accounts
func (s *AccountService) GetAccountByID(userID uuid.UUID, id int64) (*domain.Account, error) {
	return s.accountRepo.GetByIDForUser(userID, id)
}

// NewAccountNumber generates a 12-digit account number with a "PB" prefix.
// Collisions are caught by the unique constraint on accounts.number.
func NewAccountNumber() string {
	max := big.NewInt(1_000_000_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return fmt.Sprintf("PB%012d", n)
}
