package service

import (
	"context"
	"testing"
	"time"

	"lexaudit-backend/hashing"
	"lexaudit-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildChain constructs a valid chain of actions rooted at identityHash,
// the same way the repository does at append time.
func buildChain(flagID uuid.UUID, identityHash string, entries []struct {
	action  models.AuditActionType
	actor   string
	comment string
}) []models.AuditAction {
	actions := make([]models.AuditAction, 0, len(entries))
	previous := identityHash
	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	for i, e := range entries {
		ts := hashing.ChainTimestamp(base.Add(time.Duration(i) * time.Minute))
		comment := e.comment
		current := hashing.ChainHash(previous, flagID, string(e.action), e.actor, ts, comment)
		actions = append(actions, models.AuditAction{
			ID:           int64(i + 1),
			FlagID:       flagID,
			ActionType:   e.action,
			Actor:        e.actor,
			Timestamp:    ts,
			Comment:      &comment,
			PreviousHash: previous,
			CurrentHash:  current,
		})
		previous = current
	}
	return actions
}

func TestVerifyActionsValidChain(t *testing.T) {
	flagID := uuid.New()
	identityHash := hashing.FlagIdentityHash("clause", "evidence", []string{"step"})

	actions := buildChain(flagID, identityHash, []struct {
		action  models.AuditActionType
		actor   string
		comment string
	}{
		{models.ActionComment, "dana", "needs review"},
		{models.ActionApprove, "alex", "confirmed"},
	})

	assert.NoError(t, VerifyActions(identityHash, actions))
}

func TestVerifyActionsEmptyChain(t *testing.T) {
	assert.NoError(t, VerifyActions("anything", nil))
}

func TestVerifyActionsTamperedComment(t *testing.T) {
	flagID := uuid.New()
	identityHash := hashing.FlagIdentityHash("clause", "evidence", []string{"step"})

	actions := buildChain(flagID, identityHash, []struct {
		action  models.AuditActionType
		actor   string
		comment string
	}{
		{models.ActionComment, "dana", "original comment"},
		{models.ActionReject, "alex", "rejected"},
	})

	edited := "edited comment"
	actions[0].Comment = &edited

	err := VerifyActions(identityHash, actions)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainIntegrity)
	assert.Contains(t, err.Error(), "entry 0")
}

func TestVerifyActionsBrokenLink(t *testing.T) {
	flagID := uuid.New()
	identityHash := hashing.FlagIdentityHash("clause", "evidence", nil)

	actions := buildChain(flagID, identityHash, []struct {
		action  models.AuditActionType
		actor   string
		comment string
	}{
		{models.ActionComment, "dana", "first"},
		{models.ActionComment, "dana", "second"},
	})

	// Relinking the second entry to a forged predecessor breaks the chain
	actions[1].PreviousHash = "0000000000000000000000000000000000000000000000000000000000000000"

	err := VerifyActions(identityHash, actions)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainIntegrity)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestVerifyActionsWrongRoot(t *testing.T) {
	flagID := uuid.New()
	identityHash := hashing.FlagIdentityHash("clause", "evidence", nil)

	actions := buildChain(flagID, identityHash, []struct {
		action  models.AuditActionType
		actor   string
		comment string
	}{
		{models.ActionApprove, "alex", "ok"},
	})

	err := VerifyActions("differentroot", actions)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainIntegrity)
}

func TestVerifyActionsMissingIdentityHash(t *testing.T) {
	flagID := uuid.New()
	actions := buildChain(flagID, "root", []struct {
		action  models.AuditActionType
		actor   string
		comment string
	}{
		{models.ActionComment, "dana", "note"},
	})

	err := VerifyActions("", actions)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainIntegrity)
}

func TestRecordActionRejectsUnknownType(t *testing.T) {
	s := NewAuditService()

	_, err := s.RecordAction(context.Background(), RecordActionRequest{
		FlagID:     uuid.New(),
		ActionType: "delete",
		Actor:      "dana",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidActionType)
}

func TestRecordActionNormalizesType(t *testing.T) {
	s := NewAuditService()

	// Validation happens before any repository access, so a nil repository
	// only matters for valid requests.
	_, err := s.RecordAction(context.Background(), RecordActionRequest{
		FlagID:     uuid.New(),
		ActionType: "  Approve ",
		Actor:      "",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidActionType)
	assert.Contains(t, err.Error(), "actor")
}
