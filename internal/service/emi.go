package service

import (
	"math"

	"github.com/paisabank/paisabank-backend/internal/domain"
)

// ComputeEmiSchedule builds a deterministic month-by-month amortization
// schedule from a principal in minor units, an annual rate in basis points and
// a term in months. Stored amounts are integer minor units; intermediate math
// uses float64 and rounds to the nearest minor unit.
//
// The final installment absorbs all accumulated rounding drift in both
// branches: cumulative principal always equals the original principal exactly
// and the remaining balance ends at exactly zero. Without that absorption the
// per-month rounding would leave a nonzero tail balance.
func ComputeEmiSchedule(principalMinor int64, annualRateBps int32, termMonths int32) (*domain.EmiSchedule, error) {
	if principalMinor <= 0 {
		return nil, domain.ErrLoanPrincipalInvalid
	}
	if termMonths <= 0 {
		return nil, domain.ErrLoanTermInvalid
	}
	if annualRateBps < 0 || annualRateBps > domain.MaxInterestRateBps {
		return nil, domain.ErrLoanRateInvalid
	}

	monthlyRate := float64(annualRateBps) / 10000.0 / 12.0
	if monthlyRate == 0 {
		return zeroInterestSchedule(principalMinor, termMonths), nil
	}
	return annuitySchedule(principalMinor, monthlyRate, termMonths), nil
}

// zeroInterestSchedule splits the principal evenly; the last month takes the
// entire remaining balance so the division remainder never leaks.
func zeroInterestSchedule(principalMinor int64, termMonths int32) *domain.EmiSchedule {
	basePayment := principalMinor / int64(termMonths)
	rows := make([]domain.EmiRow, 0, termMonths)
	remaining := principalMinor

	for month := int32(1); month <= termMonths; month++ {
		principalPart := basePayment
		if month == termMonths {
			principalPart = remaining
		}
		remaining -= principalPart
		rows = append(rows, domain.EmiRow{
			Month:                   month,
			PaymentMinor:            principalPart,
			PrincipalMinor:          principalPart,
			InterestMinor:           0,
			RemainingPrincipalMinor: remaining,
		})
	}

	return &domain.EmiSchedule{
		MonthlyPaymentMinor: rows[0].PaymentMinor,
		TotalPayableMinor:   principalMinor,
		TotalInterestMinor:  0,
		Rows:                rows,
	}
}

// annuitySchedule applies the standard annuity formula
// payment = P * r * (1+r)^n / ((1+r)^n - 1), then walks the balance down
// month by month.
func annuitySchedule(principalMinor int64, monthlyRate float64, termMonths int32) *domain.EmiSchedule {
	n := float64(termMonths)
	factor := math.Pow(1+monthlyRate, n)
	payment := int64(math.Round(float64(principalMinor) * monthlyRate * factor / (factor - 1)))

	rows := make([]domain.EmiRow, 0, termMonths)
	remaining := principalMinor
	var totalInterest int64

	for month := int32(1); month <= termMonths; month++ {
		interest := int64(math.Round(float64(remaining) * monthlyRate))
		principalPart := payment - interest
		if principalPart > remaining {
			// A rounded-up payment must not push the balance negative.
			principalPart = remaining
		}
		if month == termMonths {
			// Absorb rounding drift: clear the balance exactly.
			principalPart = remaining
		}
		remaining -= principalPart
		if remaining < 0 {
			remaining = 0
		}
		totalInterest += interest
		rows = append(rows, domain.EmiRow{
			Month:                   month,
			PaymentMinor:            principalPart + interest,
			PrincipalMinor:          principalPart,
			InterestMinor:           interest,
			RemainingPrincipalMinor: remaining,
		})
	}

	return &domain.EmiSchedule{
		MonthlyPaymentMinor: payment,
		TotalPayableMinor:   principalMinor + totalInterest,
		TotalInterestMinor:  totalInterest,
		Rows:                rows,
	}
}
