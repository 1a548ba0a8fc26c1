package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// TransferService moves money between internal accounts. The balance
// mutations themselves happen inside the ledger repository's atomic unit;
// this layer validates input, generates the reference and fires
// notifications.
type TransferService struct {
	ledgerRepo     domain.LedgerRepository
	accountRepo    domain.AccountRepository
	eventPublisher websocket.EventPublisher
}

// NewTransferService creates a new TransferService
func NewTransferService(ledgerRepo domain.LedgerRepository, accountRepo domain.AccountRepository) *TransferService {
	return &TransferService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
}

// SetEventPublisher sets the publisher for push notifications
func (s *TransferService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// TransferInput contains input for a transfer
type TransferInput struct {
	FromAccountID   int64
	ToAccountNumber string
	AmountMinor     int64
	Note            *string
}

// Transfer atomically debits the caller's account and credits the destination
// identified by account number, recording exactly one transfer ledger entry.
// On any failure nothing is debited, credited or recorded.
func (s *TransferService) Transfer(userID uuid.UUID, input TransferInput) (*domain.Transaction, error) {
	if input.AmountMinor <= 0 {
		return nil, domain.ErrTransferAmountInvalid
	}
	toNumber := strings.TrimSpace(input.ToAccountNumber)
	if toNumber == "" {
		return nil, domain.ErrDestinationNotFound
	}
	if input.Note != nil && len(*input.Note) > domain.MaxNoteLength {
		return nil, domain.ErrInvalidInput
	}

	tx, err := s.ledgerRepo.Transfer(domain.TransferParams{
		UserID:          userID,
		FromAccountID:   input.FromAccountID,
		ToAccountNumber: toNumber,
		AmountMinor:     input.AmountMinor,
		Reference:       NewReference("TXN"),
		Note:            input.Note,
	})
	if err != nil {
		return nil, err
	}

	s.notify(userID, tx)

	return tx, nil
}

// notify pushes transfer events to both parties, best-effort. Failures are
// logged and discarded; the transfer has already committed.
func (s *TransferService) notify(senderID uuid.UUID, tx *domain.Transaction) {
	if s.eventPublisher == nil {
		return
	}
	s.eventPublisher.Publish(senderID, websocket.TransferCompleted(tx))

	if tx.ToAccountID == nil {
		return
	}
	dest, err := s.accountRepo.GetByID(*tx.ToAccountID)
	if err != nil {
		log.Warn().Err(err).Str("reference", tx.Reference).Msg("Could not resolve transfer recipient for notification")
		return
	}
	s.eventPublisher.Publish(dest.UserID, websocket.TransferReceived(tx))
}

// NewReference generates a sortable transaction reference: millisecond
// timestamp plus a random suffix. Uniqueness is best-effort; the storage
// layer's unique constraint on reference turns an astronomically rare
// collision into a failed (fully rolled back) operation instead of a
// duplicate entry.
func NewReference(prefix string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}
