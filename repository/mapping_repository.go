package repository

import (
	"context"
	"fmt"

	"lexaudit-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MappingRepository handles database operations for clause-regulation
// mappings.
type MappingRepository struct {
	db *pgxpool.Pool
}

// NewMappingRepository creates a new mapping repository
func NewMappingRepository(db *pgxpool.Pool) *MappingRepository {
	return &MappingRepository{db: db}
}

// StoreBatch persists the mappings produced for one clause
func (r *MappingRepository) StoreBatch(ctx context.Context, mappings []models.ClauseRegulationMapping) error {
	query := `
		INSERT INTO clause_regulation_mapping
			(clause_id, regulation_name, article_ref, status, explanation, similarity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for i := range mappings {
		m := &mappings[i]
		_, err := r.db.Exec(ctx, query,
			m.ClauseID,
			m.RegulationName,
			m.ArticleRef,
			m.Status,
			m.Explanation,
			m.Similarity,
		)
		if err != nil {
			return fmt.Errorf("failed to store clause mapping: %w", err)
		}
	}

	return nil
}

// ListByClauseID retrieves all mappings recorded for a clause
func (r *MappingRepository) ListByClauseID(ctx context.Context, clauseID uuid.UUID) ([]models.ClauseRegulationMapping, error) {
	query := `
		SELECT id, clause_id, regulation_name, article_ref, status, explanation, similarity, created_at
		FROM clause_regulation_mapping
		WHERE clause_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, clauseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clause mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.ClauseRegulationMapping
	for rows.Next() {
		var m models.ClauseRegulationMapping
		err := rows.Scan(
			&m.ID,
			&m.ClauseID,
			&m.RegulationName,
			&m.ArticleRef,
			&m.Status,
			&m.Explanation,
			&m.Similarity,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clause mapping: %w", err)
		}
		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}
