package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/repository/storage"
	"github.com/paisabank/paisabank-backend/internal/websocket"
)

const (
	// MaxDocumentWidth bounds the stored rendition
	MaxDocumentWidth = 1600
	// ThumbnailWidth is the width of the review thumbnail
	ThumbnailWidth = 200
	// MaxUploadBytes bounds the accepted upload size
	MaxUploadBytes = 10 << 20
)

// DocumentService handles KYC document uploads and admin review. Images are
// normalized (bounded width, JPEG) and stored in object storage; only
// metadata lives in the database.
type DocumentService struct {
	documentRepo   domain.DocumentRepository
	store          storage.DocumentStore
	eventPublisher websocket.EventPublisher
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(documentRepo domain.DocumentRepository, store storage.DocumentStore) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		store:        store,
	}
}

// SetEventPublisher sets the publisher for push notifications
func (s *DocumentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// Upload decodes the image, produces a bounded rendition plus a thumbnail,
// uploads both and records a pending document row.
func (s *DocumentService) Upload(ctx context.Context, userID uuid.UUID, kind domain.DocumentKind, r io.Reader) (*domain.KycDocument, error) {
	if kind != domain.DocumentKindIDProof && kind != domain.DocumentKindAddressProof {
		return nil, domain.ErrInvalidInput
	}

	img, _, err := image.Decode(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"full", MaxDocumentWidth},
		{"thumb", ThumbnailWidth},
	}

	urls := make(map[string]string, len(variants))
	for _, variant := range variants {
		processed := img
		if img.Bounds().Dx() > variant.maxWidth {
			// Resize maintaining aspect ratio
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, processed, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
			return nil, fmt.Errorf("encode %s variant: %w", variant.name, err)
		}

		objectPath := storage.NewObjectPath(userID, string(kind), variant.name)
		url, err := s.store.Upload(ctx, objectPath, &buf, "image/jpeg", int64(buf.Len()))
		if err != nil {
			return nil, fmt.Errorf("upload %s variant: %w", variant.name, err)
		}
		urls[variant.name] = url
	}

	return s.documentRepo.Create(&domain.KycDocument{
		UserID:       userID,
		Kind:         kind,
		ImageURL:     urls["full"],
		ThumbnailURL: urls["thumb"],
		Status:       domain.DocumentStatusPending,
	})
}

// GetDocuments lists the user's documents
func (s *DocumentService) GetDocuments(userID uuid.UUID) ([]*domain.KycDocument, error) {
	return s.documentRepo.GetAllByUser(userID)
}

// Review records an admin verdict on a pending document
func (s *DocumentService) Review(adminUserID uuid.UUID, documentID int64, verdict domain.DocumentStatus, note *string) (*domain.KycDocument, error) {
	if verdict != domain.DocumentStatusVerified && verdict != domain.DocumentStatusRejected {
		return nil, domain.ErrInvalidInput
	}

	doc, err := s.documentRepo.Review(documentID, verdict, adminUserID, note)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		eventType := websocket.EventTypeApproved
		if verdict == domain.DocumentStatusRejected {
			eventType = websocket.EventTypeRejected
		}
		s.eventPublisher.Publish(doc.UserID, websocket.DocumentReviewed(eventType, doc))
	}

	return doc, nil
}
