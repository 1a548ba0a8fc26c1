package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisabank/paisabank-backend/internal/domain"
)

// LedgerRepository implements domain.LedgerRepository using PostgreSQL.
// Every method is one database transaction: the conditional debit
// (balance_minor >= amount in the UPDATE predicate) is the compare-and-swap
// that makes concurrent debits of the same account safe, and the CHECK
// constraint on balance_minor is the backstop.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Transfer debits the source, credits the destination and records the ledger
// entry in one transaction. Any precondition failure aborts with zero
// observable effect.
func (r *LedgerRepository) Transfer(p domain.TransferParams) (*domain.Transaction, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Resolve the destination by account number
	var destID int64
	var destCurrency string
	err = tx.QueryRow(ctx,
		`SELECT id, currency FROM accounts WHERE number = $1`,
		p.ToAccountNumber,
	).Scan(&destID, &destCurrency)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDestinationNotFound
		}
		return nil, err
	}

	if destID == p.FromAccountID {
		return nil, domain.ErrInvalidInput
	}

	// Source currency for the mismatch check; ownership is enforced here and
	// again by the debit predicate
	var srcCurrency string
	err = tx.QueryRow(ctx,
		`SELECT currency FROM accounts WHERE id = $1 AND user_id = $2`,
		p.FromAccountID, p.UserID,
	).Scan(&srcCurrency)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInsufficientFunds
		}
		return nil, err
	}
	if srcCurrency != destCurrency {
		return nil, domain.ErrCurrencyMismatch
	}

	// Conditional debit: the balance check and the decrement are one atomic
	// update, so a concurrent transfer cannot overdraw the account
	ct, err := tx.Exec(ctx,
		`UPDATE accounts
		 SET balance_minor = balance_minor - $1, updated_at = now()
		 WHERE id = $2 AND user_id = $3 AND balance_minor >= $1`,
		p.AmountMinor, p.FromAccountID, p.UserID,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, domain.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx,
		`UPDATE accounts
		 SET balance_minor = balance_minor + $1, updated_at = now()
		 WHERE id = $2`,
		p.AmountMinor, destID,
	)
	if err != nil {
		return nil, err
	}

	entry := &domain.Transaction{
		Reference:     p.Reference,
		Type:          domain.TransactionTypeTransfer,
		Status:        domain.TransactionStatusCompleted,
		FromAccountID: &p.FromAccountID,
		ToAccountID:   &destID,
		AmountMinor:   p.AmountMinor,
		Currency:      srcCurrency,
		Note:          p.Note,
	}
	if err := insertTransaction(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// DecideLoan flips a pending loan to its terminal state. For an approval the
// funding-account credit and the disbursement entry commit together with the
// status change; a rejection only records the decision.
func (r *LedgerRepository) DecideLoan(p domain.DecisionParams) (*domain.Loan, *domain.Transaction, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	status := domain.LoanStatusRejected
	if p.Approve {
		status = domain.LoanStatusApproved
	}

	// The status predicate makes the decision single-shot: a concurrent or
	// repeated decision sees zero rows
	loan := &domain.Loan{}
	err = tx.QueryRow(ctx,
		`UPDATE loans
		 SET status = $2, decision_note = $3, decided_by_user_id = $4, decided_at = now(), updated_at = now()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING id, user_id, account_id, principal_minor, currency, interest_rate_bps,
		           term_months, status, decision_note, decided_by_user_id, decided_at,
		           created_at, updated_at`,
		p.LoanID, status, p.DecisionNote, p.DecidedByUserID,
	).Scan(
		&loan.ID, &loan.UserID, &loan.AccountID, &loan.PrincipalMinor, &loan.Currency,
		&loan.InterestRateBps, &loan.TermMonths, &loan.Status, &loan.DecisionNote,
		&loan.DecidedByUserID, &loan.DecidedAt, &loan.CreatedAt, &loan.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, r.classifyDecisionMiss(ctx, p.LoanID)
		}
		return nil, nil, err
	}

	if !p.Approve {
		if err := tx.Commit(ctx); err != nil {
			return nil, nil, err
		}
		return loan, nil, nil
	}

	// Approval: credit the funding account inside the same transaction. A
	// missing account is a data-integrity fault and aborts the decision.
	ct, err := tx.Exec(ctx,
		`UPDATE accounts
		 SET balance_minor = balance_minor + $1, updated_at = now()
		 WHERE id = $2`,
		loan.PrincipalMinor, loan.AccountID,
	)
	if err != nil {
		return nil, nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, nil, domain.ErrNotFound
	}

	entry := &domain.Transaction{
		Reference:   p.Reference,
		Type:        domain.TransactionTypeLoanDisbursement,
		Status:      domain.TransactionStatusCompleted,
		ToAccountID: &loan.AccountID,
		AmountMinor: loan.PrincipalMinor,
		Currency:    loan.Currency,
		Note:        &p.Note,
	}
	if err := insertTransaction(ctx, tx, entry); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return loan, entry, nil
}

// RecordLoanPayment debits one installment from the funding account and
// records the loan_payment entry, all-or-nothing.
func (r *LedgerRepository) RecordLoanPayment(p domain.LoanPaymentParams) (*domain.Transaction, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var currency string
	err = tx.QueryRow(ctx,
		`SELECT currency FROM accounts WHERE id = $1 AND user_id = $2`,
		p.AccountID, p.UserID,
	).Scan(&currency)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInsufficientFunds
		}
		return nil, err
	}

	ct, err := tx.Exec(ctx,
		`UPDATE accounts
		 SET balance_minor = balance_minor - $1, updated_at = now()
		 WHERE id = $2 AND user_id = $3 AND balance_minor >= $1`,
		p.AmountMinor, p.AccountID, p.UserID,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, domain.ErrInsufficientFunds
	}

	entry := &domain.Transaction{
		Reference:     p.Reference,
		Type:          domain.TransactionTypeLoanPayment,
		Status:        domain.TransactionStatusCompleted,
		FromAccountID: &p.AccountID,
		AmountMinor:   p.AmountMinor,
		Currency:      currency,
		Note:          p.Note,
	}
	if err := insertTransaction(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// classifyDecisionMiss distinguishes a missing loan from an already decided
// one after the single-shot update matched nothing.
func (r *LedgerRepository) classifyDecisionMiss(ctx context.Context, loanID int64) error {
	var status domain.LoanStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM loans WHERE id = $1`, loanID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrLoanNotFound
		}
		return err
	}
	return domain.ErrLoanAlreadyDecided
}

// insertTransaction appends one immutable ledger entry within tx
func insertTransaction(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	return tx.QueryRow(ctx,
		`INSERT INTO transactions (reference, type, status, from_account_id, to_account_id, amount_minor, currency, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		t.Reference, t.Type, t.Status, t.FromAccountID, t.ToAccountID, t.AmountMinor, t.Currency, t.Note,
	).Scan(&t.ID, &t.CreatedAt)
}
