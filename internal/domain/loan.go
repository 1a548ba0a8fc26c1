package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLoanNotFound         = errors.New("loan not found")
	ErrLoanAlreadyDecided   = errors.New("loan has already been decided")
	ErrLoanPrincipalInvalid = errors.New("loan principal must be positive")
	ErrLoanRateInvalid      = errors.New("interest rate must be between 0 and 100000 basis points")
	ErrLoanTermInvalid      = errors.New("loan term must be between 1 and 600 months")
	ErrLoanDecisionInvalid  = errors.New("decision must be approved or rejected")
)

type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusRejected LoanStatus = "rejected"
)

const (
	MaxInterestRateBps = 100000
	MaxTermMonths      = 600
)

// Loan transitions pending -> approved|rejected exactly once. Decision
// metadata is set together with the status inside the same atomic unit.
type Loan struct {
	ID              int64      `json:"id"`
	UserID          uuid.UUID  `json:"userId"`
	AccountID       int64      `json:"accountId"`
	PrincipalMinor  int64      `json:"principalMinor"`
	Currency        string     `json:"currency"`
	InterestRateBps int32      `json:"interestRateBps"`
	TermMonths      int32      `json:"termMonths"`
	Status          LoanStatus `json:"status"`
	DecisionNote    *string    `json:"decisionNote,omitempty"`
	DecidedByUserID *uuid.UUID `json:"decidedByUserId,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (l *Loan) Validate() error {
	if l.PrincipalMinor <= 0 {
		return ErrLoanPrincipalInvalid
	}
	if l.InterestRateBps < 0 || l.InterestRateBps > MaxInterestRateBps {
		return ErrLoanRateInvalid
	}
	if l.TermMonths < 1 || l.TermMonths > MaxTermMonths {
		return ErrLoanTermInvalid
	}
	return nil
}

type LoanRepository interface {
	Create(loan *Loan) (*Loan, error)
	GetByID(id int64) (*Loan, error)
	GetByIDForUser(userID uuid.UUID, id int64) (*Loan, error)
	GetAllByUser(userID uuid.UUID) ([]*Loan, error)
	GetPending() ([]*Loan, error)
}
