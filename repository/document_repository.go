package repository

import (
	"context"
	"errors"

	"lexaudit-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDocumentNotFound is returned when a source document does not exist
var ErrDocumentNotFound = errors.New("source document not found")

// DocumentRepository handles database operations for archived source
// documents.
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create records an archived source document
func (r *DocumentRepository) Create(ctx context.Context, doc *models.SourceDocument) error {
	query := `
		INSERT INTO source_documents (
			id, file_name, mime_type, size, storage_path, doc_type, jurisdiction
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.FileName,
		doc.MimeType,
		doc.Size,
		doc.StoragePath,
		doc.DocType,
		nullIfEmpty(doc.Jurisdiction),
	).Scan(&doc.CreatedAt)

	return err
}

// GetByID retrieves a source document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SourceDocument, error) {
	doc := &models.SourceDocument{}
	query := `
		SELECT id, file_name, mime_type, size, storage_path, doc_type, COALESCE(jurisdiction, ''), created_at
		FROM source_documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.FileName,
		&doc.MimeType,
		&doc.Size,
		&doc.StoragePath,
		&doc.DocType,
		&doc.Jurisdiction,
		&doc.CreatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	return doc, nil
}

// List retrieves archived documents newest-first
func (r *DocumentRepository) List(ctx context.Context, limit int) ([]*models.SourceDocument, error) {
	query := `
		SELECT id, file_name, mime_type, size, storage_path, doc_type, COALESCE(jurisdiction, ''), created_at
		FROM source_documents
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.SourceDocument
	for rows.Next() {
		doc := &models.SourceDocument{}
		err := rows.Scan(
			&doc.ID,
			&doc.FileName,
			&doc.MimeType,
			&doc.Size,
			&doc.StoragePath,
			&doc.DocType,
			&doc.Jurisdiction,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
