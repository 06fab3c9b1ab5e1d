package hashing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "data retained 5 years", NormalizeText("  data \t retained\n\n5   years "))
	assert.Equal(t, "", NormalizeText("   \n\t  "))
}

func TestContentHashIgnoresLayout(t *testing.T) {
	a := ContentHash("Personal data must remain within the EU.")
	b := ContentHash("Personal  data\nmust remain   within the EU.")
	assert.Equal(t, a, b)

	c := ContentHash("Personal data must remain within the US.")
	assert.NotEqual(t, a, c)
}

func TestFlagIdentityHash(t *testing.T) {
	steps := []string{"Move your database to an EU region."}

	a := FlagIdentityHash("clause", "evidence", steps)
	b := FlagIdentityHash("clause", "evidence", []string{"Move your database to an EU region."})
	assert.Equal(t, a, b)

	// Different action steps produce a different identity
	c := FlagIdentityHash("clause", "evidence", []string{"Enable encryption at rest."})
	assert.NotEqual(t, a, c)

	// Nil steps hash like an empty list, not like a missing field
	assert.Equal(t, FlagIdentityHash("c", "e", nil), FlagIdentityHash("c", "e", []string{}))
}

func TestChainTimestampTruncation(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	truncated := ChainTimestamp(ts)
	assert.Equal(t, 589793000, truncated.Nanosecond())
	assert.Equal(t, time.UTC, truncated.Location())
}

func TestChainHashReproducible(t *testing.T) {
	flagID := uuid.MustParse("5de7c296-3ea2-43a8-b3f5-08cb818afbc1")
	ts := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)

	first := ChainHash("rootidentityhash", flagID, "approve", "alex", ts, "looks good")
	require.Len(t, first, 64)

	// Recomputing from the microsecond-truncated timestamp (what a
	// timestamptz round-trip returns) must reproduce the stored hash.
	second := ChainHash("rootidentityhash", flagID, "approve", "alex", ChainTimestamp(ts), "looks good")
	assert.Equal(t, first, second)
}

func TestChainHashSensitivity(t *testing.T) {
	flagID := uuid.New()
	ts := time.Now()
	base := ChainHash("prev", flagID, "comment", "dana", ts, "note")

	assert.NotEqual(t, base, ChainHash("other", flagID, "comment", "dana", ts, "note"))
	assert.NotEqual(t, base, ChainHash("prev", flagID, "approve", "dana", ts, "note"))
	assert.NotEqual(t, base, ChainHash("prev", flagID, "comment", "sam", ts, "note"))
	assert.NotEqual(t, base, ChainHash("prev", flagID, "comment", "dana", ts, "edited"))
	assert.NotEqual(t, base, ChainHash("prev", flagID, "comment", "dana", ts.Add(time.Microsecond), "note"))
}
