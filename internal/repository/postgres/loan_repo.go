package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisabank/paisabank-backend/internal/domain"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL. Status
// transitions go through LedgerRepository.DecideLoan so the disbursement and
// the decision commit together.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, user_id, account_id, principal_minor, currency, interest_rate_bps,
	term_months, status, decision_note, decided_by_user_id, decided_at, created_at, updated_at`

// Create inserts a new pending loan application
func (r *LoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO loans (user_id, account_id, principal_minor, currency, interest_rate_bps, term_months, status)
		 VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		 RETURNING `+loanColumns,
		loan.UserID, loan.AccountID, loan.PrincipalMinor, loan.Currency,
		loan.InterestRateBps, loan.TermMonths,
	)
	return scanLoan(row)
}

// GetByID retrieves a loan by ID
func (r *LoanRepository) GetByID(id int64) (*domain.Loan, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	loan, err := scanLoan(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// GetByIDForUser retrieves a loan by ID scoped to its applicant
func (r *LoanRepository) GetByIDForUser(userID uuid.UUID, id int64) (*domain.Loan, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 AND user_id = $2`,
		id, userID)
	loan, err := scanLoan(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// GetAllByUser lists a user's loans, newest first
func (r *LoanRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Loan, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

// GetPending lists loans awaiting a decision, oldest first
func (r *LoanRepository) GetPending() ([]*domain.Loan, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE status = 'pending' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func collectLoans(rows pgx.Rows) ([]*domain.Loan, error) {
	loans := []*domain.Loan{}
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	loan := &domain.Loan{}
	err := row.Scan(
		&loan.ID, &loan.UserID, &loan.AccountID, &loan.PrincipalMinor, &loan.Currency,
		&loan.InterestRateBps, &loan.TermMonths, &loan.Status, &loan.DecisionNote,
		&loan.DecidedByUserID, &loan.DecidedAt, &loan.CreatedAt, &loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return loan, nil
}
