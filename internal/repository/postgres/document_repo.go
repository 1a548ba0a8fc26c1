package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisabank/paisabank-backend/internal/domain"
)

// DocumentRepository implements domain.DocumentRepository using PostgreSQL
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const documentColumns = `id, user_id, kind, image_url, thumbnail_url, status, review_note, reviewed_by, reviewed_at, created_at`

// Create inserts a new pending document row
func (r *DocumentRepository) Create(doc *domain.KycDocument) (*domain.KycDocument, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO kyc_documents (user_id, kind, image_url, thumbnail_url, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING `+documentColumns,
		doc.UserID, doc.Kind, doc.ImageURL, doc.ThumbnailURL,
	)
	return scanDocument(row)
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(id int64) (*domain.KycDocument, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM kyc_documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// GetAllByUser lists a user's documents, newest first
func (r *DocumentRepository) GetAllByUser(userID uuid.UUID) ([]*domain.KycDocument, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM kyc_documents WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*domain.KycDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Review records a verdict on a pending document. The status predicate makes
// the review single-shot.
func (r *DocumentRepository) Review(id int64, status domain.DocumentStatus, reviewedBy uuid.UUID, note *string) (*domain.KycDocument, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx,
		`UPDATE kyc_documents
		 SET status = $2, review_note = $3, reviewed_by = $4, reviewed_at = now()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+documentColumns,
		id, status, note, reviewedBy,
	)
	doc, err := scanDocument(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			var exists bool
			checkErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM kyc_documents WHERE id = $1)`, id,
			).Scan(&exists)
			if checkErr != nil {
				return nil, checkErr
			}
			if exists {
				return nil, domain.ErrDocumentAlreadyReviewed
			}
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func scanDocument(row pgx.Row) (*domain.KycDocument, error) {
	doc := &domain.KycDocument{}
	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.Kind, &doc.ImageURL, &doc.ThumbnailURL,
		&doc.Status, &doc.ReviewNote, &doc.ReviewedBy, &doc.ReviewedAt, &doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
