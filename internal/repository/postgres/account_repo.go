package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisabank/paisabank-backend/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL.
// Balance mutations are out of scope here; they only happen inside
// LedgerRepository transactions.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, user_id, number, currency, balance_minor, created_at, updated_at`

// Create inserts a new account with a zero balance
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (user_id, number, currency, balance_minor)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+accountColumns,
		account.UserID, account.Number, account.Currency, account.BalanceMinor,
	)
	return scanAccount(row)
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(id int64) (*domain.Account, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetByIDForUser retrieves an account by ID scoped to its owner. A foreign
// account reads as not found.
func (r *AccountRepository) GetByIDForUser(userID uuid.UUID, id int64) (*domain.Account, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`,
		id, userID)
	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetByNumber retrieves an account by its account number
func (r *AccountRepository) GetByNumber(number string) (*domain.Account, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number)
	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAllByUser lists a user's accounts, oldest first
func (r *AccountRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Account, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(
		&account.ID, &account.UserID, &account.Number, &account.Currency,
		&account.BalanceMinor, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}
