package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// DocumentStore defines the interface for document object storage
type DocumentStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// NewObjectPath creates a unique object path for a document variant
func NewObjectPath(userID uuid.UUID, kind string, variant string) string {
	filename := fmt.Sprintf("%s_%s.jpg", uuid.New().String(), variant)
	return path.Join(userID.String(), kind, filename)
}
