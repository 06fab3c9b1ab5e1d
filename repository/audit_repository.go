package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexaudit-backend/hashing"
	"lexaudit-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMissingIdentityHash means a flag row exists without an identity hash.
// Every flag gets its hash at creation, so hitting this indicates a software
// defect or manual tampering, not a recoverable condition.
var ErrMissingIdentityHash = errors.New("compliance flag has no identity hash")

// AuditRepository handles the append-only, hash-chained audit_actions table
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append adds a hash-chained audit action for a flag.
//
// The flag row is locked with SELECT ... FOR UPDATE for the duration of the
// transaction, so "read last hash" and "insert entry linking to it" are
// serialized per flag: two concurrent appends on the same flag commit in
// some order and each links to the hash the previous one produced. Appends
// on different flags lock different rows and do not block each other.
//
// Approve and reject actions also transition the flag's status inside the
// same transaction; status is never mutated anywhere else.
func (r *AuditRepository) Append(ctx context.Context, flagID uuid.UUID, actionType models.AuditActionType, actor string, comment *string) (*models.AuditAction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var identityHash *string
	err = tx.QueryRow(ctx,
		`SELECT identity_hash FROM compliance_flags WHERE id = $1 FOR UPDATE`,
		flagID,
	).Scan(&identityHash)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrFlagNotFound
		}
		return nil, fmt.Errorf("failed to lock flag row: %w", err)
	}

	var previousHash string
	err = tx.QueryRow(ctx,
		`SELECT current_hash FROM audit_actions WHERE flag_id = $1 ORDER BY id DESC LIMIT 1`,
		flagID,
	).Scan(&previousHash)
	if err != nil {
		if !isNoRows(err) {
			return nil, fmt.Errorf("failed to read last audit action: %w", err)
		}
		// First action on this flag: the chain is rooted at the flag's own
		// identity hash. A flag without one is an invariant violation.
		if identityHash == nil || *identityHash == "" {
			return nil, ErrMissingIdentityHash
		}
		previousHash = *identityHash
	}

	timestamp := hashing.ChainTimestamp(time.Now())
	commentText := ""
	if comment != nil {
		commentText = *comment
	}
	currentHash := hashing.ChainHash(previousHash, flagID, string(actionType), actor, timestamp, commentText)

	action := &models.AuditAction{
		FlagID:       flagID,
		ActionType:   actionType,
		Actor:        actor,
		Timestamp:    timestamp,
		Comment:      comment,
		PreviousHash: previousHash,
		CurrentHash:  currentHash,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO audit_actions (flag_id, action_type, actor, timestamp, comment, previous_hash, current_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		action.FlagID,
		action.ActionType,
		action.Actor,
		action.Timestamp,
		action.Comment,
		action.PreviousHash,
		action.CurrentHash,
	).Scan(&action.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert audit action: %w", err)
	}

	if next, ok := statusTransition(actionType); ok {
		_, err = tx.Exec(ctx,
			`UPDATE compliance_flags SET status = $2, updated_at = NOW() WHERE id = $1`,
			flagID, next,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update flag status: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit audit action: %w", err)
	}

	return action, nil
}

// statusTransition maps an audit action to the flag status it implies.
// Comments leave the status untouched.
func statusTransition(actionType models.AuditActionType) (models.FlagStatus, bool) {
	switch actionType {
	case models.ActionApprove:
		return models.FlagStatusApproved, true
	case models.ActionReject:
		return models.FlagStatusRejected, true
	}
	return "", false
}

// ListByFlagID retrieves a flag's full action history in insertion order
func (r *AuditRepository) ListByFlagID(ctx context.Context, flagID uuid.UUID) ([]models.AuditAction, error) {
	query := `
		SELECT id, flag_id, action_type, actor, timestamp, comment, previous_hash, current_hash
		FROM audit_actions
		WHERE flag_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, flagID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit actions: %w", err)
	}
	defer rows.Close()

	var actions []models.AuditAction
	for rows.Next() {
		var action models.AuditAction
		err := rows.Scan(
			&action.ID,
			&action.FlagID,
			&action.ActionType,
			&action.Actor,
			&action.Timestamp,
			&action.Comment,
			&action.PreviousHash,
			&action.CurrentHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit action: %w", err)
		}
		actions = append(actions, action)
	}

	return actions, rows.Err()
}
