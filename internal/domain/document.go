package domain

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

type DocumentKind string

const (
	DocumentKindIDProof      DocumentKind = "id_proof"
	DocumentKindAddressProof DocumentKind = "address_proof"
)

// KycDocument is the metadata row for an uploaded identity document; the
// image itself lives in object storage.
type KycDocument struct {
	ID           int64          `json:"id"`
	UserID       uuid.UUID      `json:"userId"`
	Kind         DocumentKind   `json:"kind"`
	ImageURL     string         `json:"imageUrl"`
	ThumbnailURL string         `json:"thumbnailUrl"`
	Status       DocumentStatus `json:"status"`
	ReviewNote   *string        `json:"reviewNote,omitempty"`
	ReviewedBy   *uuid.UUID     `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type DocumentRepository interface {
	Create(doc *KycDocument) (*KycDocument, error)
	GetByID(id int64) (*KycDocument, error)
	GetAllByUser(userID uuid.UUID) ([]*KycDocument, error)
	// Review sets the status and review metadata; it only applies to pending
	// documents and returns ErrDocumentAlreadyReviewed otherwise.
	Review(id int64, status DocumentStatus, reviewedBy uuid.UUID, note *string) (*KycDocument, error)
}
