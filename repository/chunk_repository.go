package repository

import (
	"context"
	"fmt"
	"strings"

	"lexaudit-backend/hashing"
	"lexaudit-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChunkRepository handles database operations for document chunks
// (contracts and internal compliance documents).
type ChunkRepository struct {
	db *pgxpool.Pool
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Insert stores a chunk if its identity key (file_name, chunk_index,
// content_hash) does not already exist. The uniqueness constraint resolves
// concurrent inserts of the same chunk into a no-op, so the check-then-act
// race lives in the database, not here. Returns true if a row was written.
func (r *ChunkRepository) Insert(ctx context.Context, chunk *models.Chunk) (bool, error) {
	if len(chunk.Embedding) != 768 {
		return false, fmt.Errorf("embedding must be 768 dimensions, got %d", len(chunk.Embedding))
	}
	if chunk.ContentHash == "" {
		chunk.ContentHash = hashing.ContentHash(chunk.Text)
	}

	query := `
		INSERT INTO document_chunks (
			file_name, page, chunk_index, chunk_text, content_hash,
			doc_type, jurisdiction, embedding, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector, $9)
		ON CONFLICT (file_name, chunk_index, content_hash) DO NOTHING
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		chunk.FileName,
		chunk.Page,
		chunk.ChunkIndex,
		chunk.Text,
		chunk.ContentHash,
		chunk.DocType,
		nullIfEmpty(chunk.Jurisdiction),
		formatVector(chunk.Embedding),
		chunk.Metadata,
	).Scan(&chunk.ID, &chunk.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			// Conflict: the chunk already exists. Idempotent outcome, not an error.
			return false, nil
		}
		return false, fmt.Errorf("failed to insert chunk: %w", err)
	}

	return true, nil
}

// SearchSimilar over-fetches the nearest chunks to the query embedding using
// the pgvector cosine distance operator. Filtering (threshold, dedup,
// jurisdiction) and final ordering happen in the ranker; this only supplies
// the candidate set, which is why limit is the caller's top_k multiplied by
// the over-fetch factor.
func (r *ChunkRepository) SearchSimilar(ctx context.Context, embedding []float64, limit int) ([]models.Chunk, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id,
			file_name,
			page,
			chunk_index,
			chunk_text,
			content_hash,
			doc_type,
			COALESCE(jurisdiction, ''),
			metadata,
			created_at,
			embedding <=> $1::vector AS distance
		FROM document_chunks
		ORDER BY embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query document chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.FileName,
			&chunk.Page,
			&chunk.ChunkIndex,
			&chunk.Text,
			&chunk.ContentHash,
			&chunk.DocType,
			&chunk.Jurisdiction,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document chunks: %w", err)
	}

	return chunks, nil
}

// ListWithEmbeddings retrieves all document chunks including embeddings,
// used by gap detection to compare every organizational chunk against a
// regulation chunk.
func (r *ChunkRepository) ListWithEmbeddings(ctx context.Context) ([]models.Chunk, error) {
	query := `
		SELECT id, file_name, page, chunk_index, chunk_text, content_hash,
			doc_type, COALESCE(jurisdiction, ''), embedding::text, metadata, created_at
		FROM document_chunks`

	return r.scanChunksWithEmbeddings(ctx, query)
}

// ListByFileName retrieves the chunks of one source document, including
// embeddings, in chunk order.
func (r *ChunkRepository) ListByFileName(ctx context.Context, fileName string) ([]models.Chunk, error) {
	query := `
		SELECT id, file_name, page, chunk_index, chunk_text, content_hash,
			doc_type, COALESCE(jurisdiction, ''), embedding::text, metadata, created_at
		FROM document_chunks
		WHERE file_name = $1
		ORDER BY chunk_index`

	return r.scanChunksWithEmbeddings(ctx, query, fileName)
}

// SampleTexts returns up to limit chunk texts, used as the calibration corpus
func (r *ChunkRepository) SampleTexts(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT chunk_text FROM document_chunks LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan sample text: %w", err)
		}
		texts = append(texts, text)
	}

	return texts, rows.Err()
}

func (r *ChunkRepository) scanChunksWithEmbeddings(ctx context.Context, query string, args ...interface{}) ([]models.Chunk, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query document chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		var embeddingStr string
		err := rows.Scan(
			&chunk.ID,
			&chunk.FileName,
			&chunk.Page,
			&chunk.ChunkIndex,
			&chunk.Text,
			&chunk.ContentHash,
			&chunk.DocType,
			&chunk.Jurisdiction,
			&embeddingStr,
			&chunk.Metadata,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document chunk: %w", err)
		}
		chunk.Embedding, err = parseVector(embeddingStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedding for chunk %s: %w", chunk.ID, err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document chunks: %w", err)
	}

	return chunks, nil
}
