package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisabank/paisabank-backend/internal/domain"
)

// TransactionRepository implements read access to the ledger. Entries are
// written only through LedgerRepository; nothing here mutates rows.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, reference, type, status, from_account_id, to_account_id, amount_minor, currency, note, created_at`

// GetByReference retrieves a ledger entry by its unique reference
func (r *TransactionRepository) GetByReference(reference string) (*domain.Transaction, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE reference = $1`,
		reference)
	t, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByAccount lists entries where the account appears on either side,
// newest first, with an optional type filter
func (r *TransactionRepository) GetByAccount(accountID int64, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	// The type filter matches everything when NULL, so one query serves both
	// the filtered and unfiltered listing
	where := `(from_account_id = $1 OR to_account_id = $1) AND ($2::text IS NULL OR type = $2)`

	var typeFilter *string
	if filters.Type != nil {
		s := string(*filters.Type)
		typeFilter = &s
	}

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE `+where,
		accountID, typeFilter,
	).Scan(&total)
	if err != nil {
		return nil, err
	}

	offset := (filters.Page - 1) * filters.PageSize
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE `+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		accountID, typeFilter, filters.PageSize, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		data = append(data, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32(total / int64(filters.PageSize))
	if total%int64(filters.PageSize) != 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       data,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Reference, &t.Type, &t.Status, &t.FromAccountID, &t.ToAccountID,
		&t.AmountMinor, &t.Currency, &t.Note, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
