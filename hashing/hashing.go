// Package hashing provides the deterministic fingerprints used for chunk
// deduplication, compliance flag identity, and the audit hash chain.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeText collapses runs of whitespace so that layout differences in
// extracted text do not produce distinct content hashes.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// ContentHash returns the hex SHA-256 of the normalized text. Combined with
// (file_name, chunk_index) it forms the chunk identity key.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// FlagIdentityHash fingerprints a compliance finding over its semantic
// fields: clause text, evidence text, and the JSON-serialized action steps.
// Two findings with identical content always hash to the same value, which
// the flag store uses as its uniqueness key and the audit ledger uses as the
// root of the flag's hash chain.
func FlagIdentityHash(clauseText, evidenceText string, actionSteps []string) string {
	if actionSteps == nil {
		actionSteps = []string{}
	}
	steps, _ := json.Marshal(actionSteps)
	sum := sha256.Sum256([]byte(clauseText + evidenceText + string(steps)))
	return hex.EncodeToString(sum[:])
}

// ChainTimestamp truncates to microseconds so a timestamp read back from
// Postgres (which stores microsecond precision) reproduces the exact hash
// input used at append time.
func ChainTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// ChainHash computes an audit action's current_hash from its stored fields.
// The input is pipe-joined: previous_hash|flag_id|action_type|actor|
// timestamp|comment. Recomputing from the persisted row must reproduce the
// persisted hash; any divergence means the row was altered.
func ChainHash(previousHash string, flagID uuid.UUID, actionType, actor string, timestamp time.Time, comment string) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		previousHash,
		flagID,
		actionType,
		actor,
		ChainTimestamp(timestamp).Format(time.RFC3339Nano),
		comment,
	)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
