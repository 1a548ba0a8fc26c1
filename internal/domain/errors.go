package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternalError = errors.New("internal error")

	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds covers both a balance shortfall and a missing or
	// foreign source account: the conditional debit cannot tell them apart
	// without a second read outside the atomic unit.
	ErrInsufficientFunds     = errors.New("insufficient funds or invalid source account")
	ErrDestinationNotFound   = errors.New("destination account not found")
	ErrCurrencyMismatch      = errors.New("source and destination currencies differ")
	ErrTransferAmountInvalid = errors.New("transfer amount must be positive")

	ErrOtpInvalid = errors.New("invalid or expired OTP")

	ErrDocumentNotFound        = errors.New("document not found")
	ErrDocumentAlreadyReviewed = errors.New("document already reviewed")
)

// Validation constants
const (
	MaxNoteLength     = 500
	MaxCurrencyLength = 3
)
