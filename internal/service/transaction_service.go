package service

import (
	"github.com/google/uuid"
	"github.com/paisabank/paisabank-backend/internal/domain"
)

// TransactionService exposes read access to the immutable ledger
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, accountRepo domain.AccountRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
}

// GetAccountTransactions lists ledger entries touching one of the user's
// accounts, newest first
func (s *TransactionService) GetAccountTransactions(userID uuid.UUID, accountID int64, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	// Ownership check first so a foreign account reads as not found
	if _, err := s.accountRepo.GetByIDForUser(userID, accountID); err != nil {
		return nil, err
	}

	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}

	return s.transactionRepo.GetByAccount(accountID, filters)
}

// GetByReference looks up a single ledger entry by its reference
func (s *TransactionService) GetByReference(reference string) (*domain.Transaction, error) {
	return s.transactionRepo.GetByReference(reference)
}
