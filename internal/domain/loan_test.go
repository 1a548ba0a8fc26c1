package domain

import (
	"errors"
	"testing"
)

func TestLoanValidate(t *testing.T) {
	valid := Loan{PrincipalMinor: 50000, InterestRateBps: 1200, TermMonths: 12}

	tests := []struct {
		name    string
		mutate  func(l *Loan)
		wantErr error
	}{
		{"valid", func(l *Loan) {}, nil},
		{"zero principal", func(l *Loan) { l.PrincipalMinor = 0 }, ErrLoanPrincipalInvalid},
		{"negative principal", func(l *Loan) { l.PrincipalMinor = -1 }, ErrLoanPrincipalInvalid},
		{"negative rate", func(l *Loan) { l.InterestRateBps = -1 }, ErrLoanRateInvalid},
		{"zero rate ok", func(l *Loan) { l.InterestRateBps = 0 }, nil},
		{"rate at cap", func(l *Loan) { l.InterestRateBps = MaxInterestRateBps }, nil},
		{"rate above cap", func(l *Loan) { l.InterestRateBps = MaxInterestRateBps + 1 }, ErrLoanRateInvalid},
		{"zero term", func(l *Loan) { l.TermMonths = 0 }, ErrLoanTermInvalid},
		{"term at cap", func(l *Loan) { l.TermMonths = MaxTermMonths }, nil},
		{"term above cap", func(l *Loan) { l.TermMonths = MaxTermMonths + 1 }, ErrLoanTermInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := valid
			tt.mutate(&loan)
			err := loan.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoanStatusValuesMatchDatabaseConstraints(t *testing.T) {
	// These values must match the CHECK constraint in the database:
	// CHECK (status IN ('pending', 'approved', 'rejected'))
	tests := []struct {
		status   LoanStatus
		expected string
	}{
		{LoanStatusPending, "pending"},
		{LoanStatusApproved, "approved"},
		{LoanStatusRejected, "rejected"},
	}

	for _, tt := range tests {
		if string(tt.status) != tt.expected {
			t.Errorf("LoanStatus %s, want %s", tt.status, tt.expected)
		}
	}
}
