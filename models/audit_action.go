package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditActionType is a recognized audit action. Anything else is rejected
// at validation, never coerced.
type AuditActionType string

const (
	ActionApprove AuditActionType = "approve"
	ActionReject  AuditActionType = "reject"
	ActionComment AuditActionType = "comment"
)

// Valid reports whether the action type is one of the recognized values
func (a AuditActionType) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionComment:
		return true
	}
	return false
}

// AuditAction is one hash-chained entry in a flag's append-only history.
// ID is a BIGSERIAL, so ascending ID order is insertion order. PreviousHash
// equals the flag's identity hash for the first entry, and the preceding
// entry's CurrentHash for every later one.
type AuditAction struct {
	ID           int64           `json:"id"`
	FlagID       uuid.UUID       `json:"flag_id"`
	ActionType   AuditActionType `json:"action_type"`
	Actor        string          `json:"actor"`
	Timestamp    time.Time       `json:"timestamp"`
	Comment      *string         `json:"comment,omitempty"`
	PreviousHash string          `json:"previous_hash"`
	CurrentHash  string          `json:"current_hash"`
}
