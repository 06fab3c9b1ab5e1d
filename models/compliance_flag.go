package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Severity classifies how serious a compliance flag is
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether the severity is one of the recognized values
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// FlagStatus is the lifecycle state of a compliance flag. Flags are never
// deleted, only status-transitioned through audit actions.
type FlagStatus string

const (
	FlagStatusOpen     FlagStatus = "open"
	FlagStatusApproved FlagStatus = "approved"
	FlagStatusRejected FlagStatus = "rejected"
)

// ActionSteps is the ordered list of remediation steps attached to a flag
type ActionSteps []string

// Value implements driver.Valuer for JSONB
func (a ActionSteps) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(ActionSteps{})
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *ActionSteps) Scan(value interface{}) error {
	if value == nil {
		*a = make(ActionSteps, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*a = make(ActionSteps, 0)
		return nil
	}

	if len(bytes) == 0 {
		*a = make(ActionSteps, 0)
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// ComplianceFlag represents a detected gap between a regulation clause and an
// organizational document. IdentityHash is the dedup key: the store never
// persists two flags with the same identity, and the audit chain for the
// flag is rooted at it.
type ComplianceFlag struct {
	ID            uuid.UUID   `json:"id"`
	RegulationRef string      `json:"regulation_ref"`
	ClauseText    string      `json:"clause_text"`
	EvidenceText  string      `json:"evidence_text"`
	Confidence    float64     `json:"confidence"`
	ActionSteps   ActionSteps `json:"action_steps"`
	Explanation   string      `json:"explanation"`
	Severity      Severity    `json:"severity"`
	Status        FlagStatus  `json:"status"`
	PageReference *int        `json:"page_reference,omitempty"`
	DocReference  string      `json:"doc_reference"`
	IdentityHash  string      `json:"identity_hash"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
