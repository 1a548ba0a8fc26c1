package domain

// EmiRow is one month of an amortization schedule. All amounts are integer
// minor units.
type EmiRow struct {
	Month                   int32 `json:"month"`
	PaymentMinor            int64 `json:"paymentMinor"`
	PrincipalMinor          int64 `json:"principalMinor"`
	InterestMinor           int64 `json:"interestMinor"`
	RemainingPrincipalMinor int64 `json:"remainingPrincipalMinor"`
}

// EmiSchedule is derived from a loan's principal, rate and term on demand and
// never persisted, so it cannot drift from the loan record.
type EmiSchedule struct {
	MonthlyPaymentMinor int64    `json:"monthlyPaymentMinor"`
	TotalPayableMinor   int64    `json:"totalPayableMinor"`
	TotalInterestMinor  int64    `json:"totalInterestMinor"`
	Rows                []EmiRow `json:"rows"`
}
