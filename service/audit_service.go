package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lexaudit-backend/hashing"
	"lexaudit-backend/models"
	"lexaudit-backend/repository"

	"github.com/google/uuid"
)

// ErrInvalidActionType is returned for unrecognized audit action types
var ErrInvalidActionType = errors.New("invalid action type")

// ErrChainIntegrity is returned when an audit chain fails verification.
// Callers must surface it differently from a missing flag: a broken chain
// means stored data was altered, not that the caller asked for the wrong id.
var ErrChainIntegrity = errors.New("audit chain integrity violation")

// AuditService records reviewer actions and verifies audit chains
type AuditService struct {
	flagRepo  *repository.FlagRepository
	auditRepo *repository.AuditRepository
}

// AuditServiceOption is a functional option for AuditService
type AuditServiceOption func(*AuditService)

// AuditWithFlagRepository sets the flag repository
func AuditWithFlagRepository(repo *repository.FlagRepository) AuditServiceOption {
	return func(s *AuditService) {
		s.flagRepo = repo
	}
}

// AuditWithAuditRepository sets the audit repository
func AuditWithAuditRepository(repo *repository.AuditRepository) AuditServiceOption {
	return func(s *AuditService) {
		s.auditRepo = repo
	}
}

// NewAuditService creates a new audit service
func NewAuditService(opts ...AuditServiceOption) *AuditService {
	s := &AuditService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordActionRequest represents a request to record a reviewer action
type RecordActionRequest struct {
	FlagID     uuid.UUID
	ActionType string
	Actor      string
	Comment    *string
}

// RecordAction validates and appends a reviewer action to a flag's chain
func (s *AuditService) RecordAction(ctx context.Context, req RecordActionRequest) (*models.AuditAction, error) {
	actionType := models.AuditActionType(strings.ToLower(strings.TrimSpace(req.ActionType)))
	if !actionType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidActionType, req.ActionType)
	}
	if strings.TrimSpace(req.Actor) == "" {
		return nil, errors.New("actor is required")
	}

	return s.auditRepo.Append(ctx, req.FlagID, actionType, req.Actor, req.Comment)
}

// GetAuditTrail returns a flag's complete action history in chain order.
// The flag is looked up first so a missing flag and an empty history are
// distinguishable.
func (s *AuditService) GetAuditTrail(ctx context.Context, flagID uuid.UUID) ([]models.AuditAction, error) {
	if _, err := s.flagRepo.GetByID(ctx, flagID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByFlagID(ctx, flagID)
}

// VerifyResult reports the outcome of a chain verification
type VerifyResult struct {
	FlagID  uuid.UUID `json:"flag_id"`
	Entries int       `json:"entries"`
	Valid   bool      `json:"valid"`
	Detail  string    `json:"detail,omitempty"`
}

// VerifyChain recomputes a flag's full audit chain from stored fields and
// compares it against the stored hashes. An empty chain is trivially valid.
func (s *AuditService) VerifyChain(ctx context.Context, flagID uuid.UUID) (*VerifyResult, error) {
	flag, err := s.flagRepo.GetByID(ctx, flagID)
	if err != nil {
		return nil, err
	}

	actions, err := s.auditRepo.ListByFlagID(ctx, flagID)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{FlagID: flagID, Entries: len(actions), Valid: true}
	if err := VerifyActions(flag.IdentityHash, actions); err != nil {
		result.Valid = false
		result.Detail = err.Error()
	}
	return result, nil
}

// VerifyActions checks a chain of audit actions against the flag's identity
// hash. Pure function over already-loaded data.
//
// Every entry must link to its predecessor's current hash (the identity hash
// for the first entry), and every stored current hash must equal the hash
// recomputed from the entry's own fields. Any mismatch wraps
// ErrChainIntegrity.
func VerifyActions(identityHash string, actions []models.AuditAction) error {
	if len(actions) == 0 {
		return nil
	}
	if identityHash == "" {
		return fmt.Errorf("%w: flag has no identity hash to root the chain", ErrChainIntegrity)
	}

	expectedPrevious := identityHash
	for i, action := range actions {
		if action.PreviousHash != expectedPrevious {
			return fmt.Errorf("%w: entry %d links to %s, expected %s",
				ErrChainIntegrity, i, action.PreviousHash, expectedPrevious)
		}

		comment := ""
		if action.Comment != nil {
			comment = *action.Comment
		}
		recomputed := hashing.ChainHash(action.PreviousHash, action.FlagID, string(action.ActionType), action.Actor, action.Timestamp, comment)
		if recomputed != action.CurrentHash {
			return fmt.Errorf("%w: entry %d hash mismatch, recomputed %s, stored %s",
				ErrChainIntegrity, i, recomputed, action.CurrentHash)
		}

		expectedPrevious = action.CurrentHash
	}
	return nil
}
