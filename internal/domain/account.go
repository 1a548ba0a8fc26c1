package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account balances are stored as integer minor units (paise, cents). The
// balance is only ever mutated inside a ledger atomic unit and never goes
// negative.
type Account struct {
	ID           int64     `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	Number       string    `json:"number"`
	Currency     string    `json:"currency"`
	BalanceMinor int64     `json:"balanceMinor"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayAmount renders minor units as an exact two-decimal string ("4432"
// becomes "44.32").
func DisplayAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(id int64) (*Account, error)
	// GetByIDForUser returns ErrAccountNotFound when the account exists but
	// belongs to a different user.
	GetByIDForUser(userID uuid.UUID, id int64) (*Account, error)
	GetByNumber(number string) (*Account, error)
	GetAllByUser(userID uuid.UUID) ([]*Account, error)
}
