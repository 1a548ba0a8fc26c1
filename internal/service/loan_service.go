package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/websocket"
)

// LoanService handles loan origination, the admin decision and installment
// payments. Disbursement and payment money movement happens inside the ledger
// repository's atomic units.
type LoanService struct {
	loanRepo       domain.LoanRepository
	accountRepo    domain.AccountRepository
	ledgerRepo     domain.LedgerRepository
	eventPublisher websocket.EventPublisher
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo domain.LoanRepository, accountRepo domain.AccountRepository, ledgerRepo domain.LedgerRepository) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// SetEventPublisher sets the publisher for push notifications
func (s *LoanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyLoanInput contains input for a loan application
type ApplyLoanInput struct {
	AccountID       int64
	PrincipalMinor  int64
	InterestRateBps int32
	TermMonths      int32
}

// ApplyLoan validates the funding account belongs to the user, creates a
// pending loan in the account's currency and returns it together with the
// derived EMI schedule. No balance effect happens until approval.
func (s *LoanService) ApplyLoan(userID uuid.UUID, input ApplyLoanInput) (*domain.Loan, *domain.EmiSchedule, error) {
	account, err := s.accountRepo.GetByIDForUser(userID, input.AccountID)
	if err != nil {
		return nil, nil, err
	}

	loan := &domain.Loan{
		UserID:          userID,
		AccountID:       account.ID,
		PrincipalMinor:  input.PrincipalMinor,
		Currency:        account.Currency,
		InterestRateBps: input.InterestRateBps,
		TermMonths:      input.TermMonths,
		Status:          domain.LoanStatusPending,
	}
	if err := loan.Validate(); err != nil {
		return nil, nil, err
	}

	schedule, err := ComputeEmiSchedule(loan.PrincipalMinor, loan.InterestRateBps, loan.TermMonths)
	if err != nil {
		return nil, nil, err
	}

	created, err := s.loanRepo.Create(loan)
	if err != nil {
		return nil, nil, err
	}

	return created, schedule, nil
}

// PreviewSchedule computes an EMI schedule without touching any state
func (s *LoanService) PreviewSchedule(principalMinor int64, interestRateBps int32, termMonths int32) (*domain.EmiSchedule, error) {
	return ComputeEmiSchedule(principalMinor, interestRateBps, termMonths)
}

// GetLoans retrieves all loans for a user
func (s *LoanService) GetLoans(userID uuid.UUID) ([]*domain.Loan, error) {
	return s.loanRepo.GetAllByUser(userID)
}

// GetLoanByID retrieves one of the user's loans together with its schedule
func (s *LoanService) GetLoanByID(userID uuid.UUID, id int64) (*domain.Loan, *domain.EmiSchedule, error) {
	loan, err := s.loanRepo.GetByIDForUser(userID, id)
	if err != nil {
		return nil, nil, err
	}
	schedule, err := ComputeEmiSchedule(loan.PrincipalMinor, loan.InterestRateBps, loan.TermMonths)
	if err != nil {
		return nil, nil, err
	}
	return loan, schedule, nil
}

// GetPendingLoans retrieves the admin decision queue
func (s *LoanService) GetPendingLoans() ([]*domain.Loan, error) {
	return s.loanRepo.GetPending()
}

// DecideLoan applies the admin decision to a pending loan. Approval credits
// the funding account and records the loan_disbursement entry in the same
// atomic unit as the status flip; a loan can be decided exactly once.
func (s *LoanService) DecideLoan(adminUserID uuid.UUID, loanID int64, decision domain.LoanStatus, decisionNote *string) (*domain.Loan, *domain.Transaction, error) {
	if decision != domain.LoanStatusApproved && decision != domain.LoanStatusRejected {
		return nil, nil, domain.ErrLoanDecisionInvalid
	}
	if decisionNote != nil && len(*decisionNote) > domain.MaxNoteLength {
		return nil, nil, domain.ErrInvalidInput
	}

	note := "Loan approved"
	if decision == domain.LoanStatusRejected {
		note = "Loan rejected"
	}
	if decisionNote != nil && strings.TrimSpace(*decisionNote) != "" {
		note = note + ": " + *decisionNote
	}

	loan, tx, err := s.ledgerRepo.DecideLoan(domain.DecisionParams{
		LoanID:          loanID,
		DecidedByUserID: adminUserID,
		Approve:         decision == domain.LoanStatusApproved,
		DecisionNote:    decisionNote,
		Reference:       NewReference("LND"),
		Note:            note,
	})
	if err != nil {
		return nil, nil, err
	}

	if s.eventPublisher != nil {
		if loan.Status == domain.LoanStatusApproved {
			s.eventPublisher.Publish(loan.UserID, websocket.LoanApproved(loan))
		} else {
			s.eventPublisher.Publish(loan.UserID, websocket.LoanRejected(loan))
		}
	}

	return loan, tx, nil
}

// PayInstallment debits one monthly installment from the loan's funding
// account and records a loan_payment entry. The loan must be approved and
// belong to the caller.
func (s *LoanService) PayInstallment(userID uuid.UUID, loanID int64) (*domain.Transaction, error) {
	loan, err := s.loanRepo.GetByIDForUser(userID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusApproved {
		return nil, domain.ErrLoanNotFound
	}

	schedule, err := ComputeEmiSchedule(loan.PrincipalMinor, loan.InterestRateBps, loan.TermMonths)
	if err != nil {
		return nil, err
	}

	note := "EMI payment"
	tx, err := s.ledgerRepo.RecordLoanPayment(domain.LoanPaymentParams{
		UserID:      userID,
		LoanID:      loan.ID,
		AccountID:   loan.AccountID,
		AmountMinor: schedule.MonthlyPaymentMinor,
		Reference:   NewReference("EMI"),
		Note:        &note,
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, websocket.LoanPaymentCompleted(tx))
	}

	return tx, nil
}
