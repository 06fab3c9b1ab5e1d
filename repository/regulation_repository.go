package repository

import (
	"context"
	"fmt"

	"lexaudit-backend/hashing"
	"lexaudit-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RegulationRepository handles database operations for regulation chunks.
// Regulations live in their own table so gap detection can sweep them
// independently of organizational documents.
type RegulationRepository struct {
	db *pgxpool.Pool
}

// NewRegulationRepository creates a new regulation repository
func NewRegulationRepository(db *pgxpool.Pool) *RegulationRepository {
	return &RegulationRepository{db: db}
}

// Insert stores a regulation chunk if its identity key does not already
// exist. Same idempotent contract as ChunkRepository.Insert.
func (r *RegulationRepository) Insert(ctx context.Context, chunk *models.Chunk) (bool, error) {
	if len(chunk.Embedding) != 768 {
		return false, fmt.Errorf("embedding must be 768 dimensions, got %d", len(chunk.Embedding))
	}
	if chunk.Jurisdiction == "" {
		return false, fmt.Errorf("jurisdiction is required for regulation chunks")
	}
	if chunk.ContentHash == "" {
		chunk.ContentHash = hashing.ContentHash(chunk.Text)
	}

	query := `
		INSERT INTO regulations (
			file_name, page, chunk_index, chunk_text, content_hash,
			jurisdiction, embedding, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7::vector, $8)
		ON CONFLICT (file_name, chunk_index, content_hash) DO NOTHING
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		chunk.FileName,
		chunk.Page,
		chunk.ChunkIndex,
		chunk.Text,
		chunk.ContentHash,
		chunk.Jurisdiction,
		formatVector(chunk.Embedding),
		chunk.Metadata,
	).Scan(&chunk.ID, &chunk.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert regulation chunk: %w", err)
	}

	return true, nil
}

// ListWithEmbeddings retrieves all regulation chunks including embeddings,
// used by contract evaluation to rank regulations against each clause.
func (r *RegulationRepository) ListWithEmbeddings(ctx context.Context) ([]models.Chunk, error) {
	query := `
		SELECT id, file_name, page, chunk_index, chunk_text, content_hash,
			jurisdiction, embedding::text, metadata, created_at
		FROM regulations`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query regulations: %w", err)
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
			&chunk.Jurisdiction,
			&embeddingStr,
			&chunk.Metadata,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan regulation chunk: %w", err)
		}
		chunk.DocType = models.DocTypeRegulation
		chunk.Embedding, err = parseVector(embeddingStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedding for regulation %s: %w", chunk.ID, err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regulations: %w", err)
	}

	return chunks, nil
}

// SearchSimilar over-fetches the nearest regulation chunks to the query
// embedding, optionally hard-filtered to one jurisdiction.
func (r *RegulationRepository) SearchSimilar(ctx context.Context, embedding []float64, jurisdiction string, limit int) ([]models.Chunk, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id, file_name, page, chunk_index, chunk_text, content_hash,
			jurisdiction, metadata, created_at,
			embedding <=> $1::vector AS distance
		FROM regulations
		WHERE ($2::text IS NULL OR jurisdiction = $2)
		ORDER BY embedding <=> $1::vector
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, vectorStr, nullIfEmpty(jurisdiction), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query regulations: %w", err)
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
			&chunk.Jurisdiction,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan regulation chunk: %w", err)
		}
		chunk.DocType = models.DocTypeRegulation
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regulations: %w", err)
	}

	return chunks, nil
}
