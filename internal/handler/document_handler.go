package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/middleware"
	"github.com/paisabank/paisabank-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// DocumentHandler handles KYC document HTTP requests
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// ReviewDocumentRequest represents the admin review request body
type ReviewDocumentRequest struct {
	Verdict string  `json:"verdict"`
	Note    *string `json:"note,omitempty"`
}

// DocumentResponse represents a KYC document in API responses
type DocumentResponse struct {
	ID           int64   `json:"id"`
	UserID       string  `json:"userId"`
	Kind         string  `json:"kind"`
	ImageURL     string  `json:"imageUrl"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	Status       string  `json:"status"`
	ReviewNote   *string `json:"reviewNote,omitempty"`
	ReviewedAt   *string `json:"reviewedAt,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

// UploadDocument handles POST /api/v1/documents
func (h *DocumentHandler) UploadDocument(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if h.documentService == nil {
		return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
			Type:     ErrorTypeInternal,
			Title:    "Service Unavailable",
			Status:   http.StatusServiceUnavailable,
			Detail:   "Document uploads are disabled (storage not configured)",
			Instance: c.Request().URL.Path,
		})
	}

	kind := domain.DocumentKind(c.FormValue("kind"))

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	doc, err := h.documentService.Upload(c.Request().Context(), userID, kind, src)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Must be a valid image with kind 'id_proof' or 'address_proof'"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to upload document")
		return NewInternalError(c, "Failed to upload document")
	}

	log.Info().Str("user_id", userID.String()).Int64("document_id", doc.ID).Str("kind", string(doc.Kind)).Msg("Document uploaded")

	return c.JSON(http.StatusCreated, toDocumentResponse(doc))
}

// GetDocuments handles GET /api/v1/documents
func (h *DocumentHandler) GetDocuments(c echo.Context) error {
	userID := middleware.GetUserID(c)

	docs, err := h.documentService.GetDocuments(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get documents")
		return NewInternalError(c, "Failed to get documents")
	}

	response := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		response[i] = toDocumentResponse(doc)
	}
	return c.JSON(http.StatusOK, response)
}

// ReviewDocument handles POST /api/v1/admin/documents/:id/review
func (h *DocumentHandler) ReviewDocument(c echo.Context) error {
	adminID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid document ID", nil)
	}

	var req ReviewDocumentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	doc, err := h.documentService.Review(adminID, id, domain.DocumentStatus(req.Verdict), req.Note)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "verdict", Message: "Must be 'verified' or 'rejected'"},
			})
		case errors.Is(err, domain.ErrDocumentNotFound):
			return NewNotFoundError(c, "Document not found")
		case errors.Is(err, domain.ErrDocumentAlreadyReviewed):
			return NewConflictError(c, "Document has already been reviewed")
		}
		log.Error().Err(err).Str("admin_id", adminID.String()).Int64("document_id", id).Msg("Failed to review document")
		return NewInternalError(c, "Failed to review document")
	}

	log.Info().Str("admin_id", adminID.String()).Int64("document_id", doc.ID).Str("status", string(doc.Status)).Msg("Document reviewed")

	return c.JSON(http.StatusOK, toDocumentResponse(doc))
}

func toDocumentResponse(doc *domain.KycDocument) DocumentResponse {
	resp := DocumentResponse{
		ID:           doc.ID,
		UserID:       doc.UserID.String(),
		Kind:         string(doc.Kind),
		ImageURL:     doc.ImageURL,
		ThumbnailURL: doc.ThumbnailURL,
		Status:       string(doc.Status),
		ReviewNote:   doc.ReviewNote,
		CreatedAt:    doc.CreatedAt.Format(time.RFC3339),
	}
	if doc.ReviewedAt != nil {
		reviewedAt := doc.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewedAt
	}
	return resp
}
