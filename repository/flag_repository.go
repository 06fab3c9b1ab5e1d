package repository

import (
	"context"
	"errors"
	"fmt"

	"lexaudit-backend/hashing"
	"lexaudit-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrFlagNotFound is returned when a compliance flag does not exist
var ErrFlagNotFound = errors.New("compliance flag not found")

// FlagRepository handles database operations for compliance flags. It is the
// sole writer of compliance_flags rows; every other component goes through
// Store.
type FlagRepository struct {
	db *pgxpool.Pool
}

// NewFlagRepository creates a new flag repository
func NewFlagRepository(db *pgxpool.Pool) *FlagRepository {
	return &FlagRepository{db: db}
}

const flagColumns = `id, regulation_ref, clause_text, evidence_text, confidence,
	action_steps, explanation, severity, status, page_reference,
	COALESCE(doc_reference, ''), identity_hash, created_at, updated_at`

// Store persists a flag exactly once per identity hash. A second call with
// identical semantic content returns the existing flag's id: the unique
// index on identity_hash turns the concurrent-insert race into a no-op and
// the existing row is looked up instead. Default status is open; severity
// defaults to high when the caller leaves it empty.
func (r *FlagRepository) Store(ctx context.Context, flag *models.ComplianceFlag) (uuid.UUID, error) {
	if flag.IdentityHash == "" {
		flag.IdentityHash = hashing.FlagIdentityHash(flag.ClauseText, flag.EvidenceText, flag.ActionSteps)
	}
	if flag.Severity == "" {
		flag.Severity = models.SeverityHigh
	}
	if !flag.Severity.Valid() {
		return uuid.Nil, fmt.Errorf("invalid severity %q", flag.Severity)
	}
	if flag.Status == "" {
		flag.Status = models.FlagStatusOpen
	}

	query := `
		INSERT INTO compliance_flags (
			regulation_ref, clause_text, evidence_text, confidence,
			action_steps, explanation, severity, status,
			page_reference, doc_reference, identity_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (identity_hash) DO NOTHING
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		flag.RegulationRef,
		flag.ClauseText,
		flag.EvidenceText,
		flag.Confidence,
		flag.ActionSteps,
		flag.Explanation,
		flag.Severity,
		flag.Status,
		flag.PageReference,
		nullIfEmpty(flag.DocReference),
		flag.IdentityHash,
	).Scan(&flag.ID, &flag.CreatedAt, &flag.UpdatedAt)

	if err == nil {
		return flag.ID, nil
	}
	if !isNoRows(err) {
		return uuid.Nil, fmt.Errorf("failed to store compliance flag: %w", err)
	}

	// Conflict: a flag with this identity already exists. Return its id.
	err = r.db.QueryRow(ctx,
		`SELECT id FROM compliance_flags WHERE identity_hash = $1`,
		flag.IdentityHash,
	).Scan(&flag.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up existing flag: %w", err)
	}

	return flag.ID, nil
}

// GetByID retrieves a compliance flag by ID
func (r *FlagRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceFlag, error) {
	flag := &models.ComplianceFlag{}
	query := `SELECT ` + flagColumns + ` FROM compliance_flags WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&flag.ID,
		&flag.RegulationRef,
		&flag.ClauseText,
		&flag.EvidenceText,
		&flag.Confidence,
		&flag.ActionSteps,
		&flag.Explanation,
		&flag.Severity,
		&flag.Status,
		&flag.PageReference,
		&flag.DocReference,
		&flag.IdentityHash,
		&flag.CreatedAt,
		&flag.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrFlagNotFound
		}
		return nil, err
	}

	return flag, nil
}

// List retrieves flags newest-first, optionally filtered by status
func (r *FlagRepository) List(ctx context.Context, status *models.FlagStatus, limit int) ([]*models.ComplianceFlag, error) {
	query := `SELECT ` + flagColumns + ` FROM compliance_flags`

	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []*models.ComplianceFlag
	for rows.Next() {
		flag := &models.ComplianceFlag{}
		err := rows.Scan(
			&flag.ID,
			&flag.RegulationRef,
			&flag.ClauseText,
			&flag.EvidenceText,
			&flag.Confidence,
			&flag.ActionSteps,
			&flag.Explanation,
			&flag.Severity,
			&flag.Status,
			&flag.PageReference,
			&flag.DocReference,
			&flag.IdentityHash,
			&flag.CreatedAt,
			&flag.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		flags = append(flags, flag)
	}

	return flags, rows.Err()
}
