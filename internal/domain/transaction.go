package domain

import (
	"time"
)

type TransactionType string

const (
	TransactionTypeTransfer         TransactionType = "transfer"
	TransactionTypeLoanDisbursement TransactionType = "loan_disbursement"
	TransactionTypeLoanPayment      TransactionType = "loan_payment"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger entry. Amounts are positive minor units;
// a transfer carries both account references, a disbursement only the
// destination, a loan payment only the source.
type Transaction struct {
	ID            int64             `json:"id"`
	Reference     string            `json:"reference"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	FromAccountID *int64            `json:"fromAccountId,omitempty"`
	ToAccountID   *int64            `json:"toAccountId,omitempty"`
	AmountMinor   int64             `json:"amountMinor"`
	Currency      string            `json:"currency"`
	Note          *string           `json:"note,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func (t *Transaction) Validate() error {
	if t.AmountMinor <= 0 {
		return ErrTransferAmountInvalid
	}
	switch t.Type {
	case TransactionTypeTransfer:
		if t.FromAccountID == nil || t.ToAccountID == nil {
			return ErrInvalidInput
		}
	case TransactionTypeLoanDisbursement:
		if t.ToAccountID == nil || t.FromAccountID != nil {
			return ErrInvalidInput
		}
	case TransactionTypeLoanPayment:
		if t.FromAccountID == nil {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	if t.Note != nil && len(*t.Note) > MaxNoteLength {
		return ErrInvalidInput
	}
	return nil
}

type TransactionFilters struct {
	Type     *TransactionType
	Page     int32
	PageSize int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

type TransactionRepository interface {
	GetByReference(reference string) (*Transaction, error)
	GetByAccount(accountID int64, filters *TransactionFilters) (*PaginatedTransactions, error)
}
