package domain

import "github.com/google/uuid"

// TransferParams describes one atomic transfer: conditional debit of the
// source, credit of the destination (looked up by account number) and a single
// transfer ledger entry, committed together or not at all.
type TransferParams struct {
	UserID          uuid.UUID
	FromAccountID   int64
	ToAccountNumber string
	AmountMinor     int64
	Reference       string
	Note            *string
}

// DecisionParams describes one atomic loan decision. For an approval the
// status flip, the funding-account credit and the loan_disbursement entry are
// one unit; a rejection only flips status and metadata.
type DecisionParams struct {
	LoanID          int64
	DecidedByUserID uuid.UUID
	Approve         bool
	DecisionNote    *string
	Reference       string
	Note            string
}

// LoanPaymentParams describes one atomic EMI installment payment: conditional
// debit of the funding account plus a loan_payment entry.
type LoanPaymentParams struct {
	UserID      uuid.UUID
	LoanID      int64
	AccountID   int64
	AmountMinor int64
	Reference   string
	Note        *string
}

// LedgerRepository is the only place account balances are mutated. Each method
// is a single all-or-nothing storage transaction; the debit precondition
// (sufficient balance, owned account) and the decrement are one conditional
// update so concurrent debits of the same account cannot overdraw.
type LedgerRepository interface {
	Transfer(p TransferParams) (*Transaction, error)
	DecideLoan(p DecisionParams) (*Loan, *Transaction, error)
	RecordLoanPayment(p LoanPaymentParams) (*Transaction, error)
}
