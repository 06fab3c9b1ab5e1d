package service

import (
	"testing"

	"lexaudit-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUUID(s string) uuid.UUID {
	return uuid.MustParse(s)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)

	// Zero-norm vectors compare as fully dissimilar instead of NaN
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}))
}

func TestRankCandidatesJurisdictionBeatsDistance(t *testing.T) {
	candidates := []models.Chunk{
		{ContentHash: "b", Jurisdiction: "international", Distance: 0.05},
		{ContentHash: "a", Jurisdiction: "local", Distance: 0.10},
	}

	results := RankCandidates(nil, candidates, RankOptions{Threshold: 0.5, TopK: 10})
	require.Len(t, results, 2)
	// Local outranks international despite the larger distance
	assert.Equal(t, "a", results[0].ContentHash)
	assert.Equal(t, "b", results[1].ContentHash)
}

func TestRankCandidatesThreshold(t *testing.T) {
	candidates := []models.Chunk{
		{ContentHash: "near", Jurisdiction: "local", Distance: 0.2},
		{ContentHash: "far", Jurisdiction: "local", Distance: 0.9},
	}

	results := RankCandidates(nil, candidates, RankOptions{Threshold: 0.5, TopK: 10})
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].ContentHash)

	// Loosening the threshold only ever adds results
	loose := RankCandidates(nil, candidates, RankOptions{Threshold: 1.0, TopK: 10})
	assert.Len(t, loose, 2)
}

func TestRankCandidatesDedup(t *testing.T) {
	candidates := []models.Chunk{
		{ID: mustUUID("11111111-1111-1111-1111-111111111111"), ContentHash: "same", Jurisdiction: "local", Distance: 0.3},
		{ID: mustUUID("22222222-2222-2222-2222-222222222222"), ContentHash: "same", Jurisdiction: "local", Distance: 0.1},
		{ContentHash: "other", Jurisdiction: "local", Distance: 0.2},
	}

	results := RankCandidates(nil, candidates, RankOptions{Threshold: 1.0, TopK: 10})
	require.Len(t, results, 2)
	// The lowest-distance occurrence survives
	assert.Equal(t, "same", results[0].ContentHash)
	assert.Equal(t, mustUUID("22222222-2222-2222-2222-222222222222"), results[0].ID)
}

func TestRankCandidatesJurisdictionFilter(t *testing.T) {
	candidates := []models.Chunk{
		{ContentHash: "a", Jurisdiction: "local", Distance: 0.1},
		{ContentHash: "b", Jurisdiction: "international", Distance: 0.05},
	}

	results := RankCandidates(nil, candidates, RankOptions{Threshold: 1.0, TopK: 10, Jurisdiction: "international"})
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ContentHash)
}

func TestRankCandidatesDeterministicTieBreak(t *testing.T) {
	candidates := []models.Chunk{
		{ContentHash: "first", Jurisdiction: "local", Distance: 0.2},
		{ContentHash: "second", Jurisdiction: "local", Distance: 0.2},
	}

	for i := 0; i < 10; i++ {
		results := RankCandidates(nil, candidates, RankOptions{Threshold: 1.0, TopK: 10})
		require.Len(t, results, 2)
		// Equal distance and jurisdiction: retrieval order decides
		assert.Equal(t, "first", results[0].ContentHash)
		assert.Equal(t, "second", results[1].ContentHash)
	}
}

func TestRankCandidatesTopKCap(t *testing.T) {
	candidates := []models.Chunk{
		{ContentHash: "a", Jurisdiction: "local", Distance: 0.1},
		{ContentHash: "b", Jurisdiction: "local", Distance: 0.2},
		{ContentHash: "c", Jurisdiction: "local", Distance: 0.3},
	}

	results := RankCandidates(nil, candidates, RankOptions{Threshold: 1.0, TopK: 2})
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ContentHash)
	assert.Equal(t, "b", results[1].ContentHash)
}

func TestRankCandidatesComputesDistanceFromEmbeddings(t *testing.T) {
	query := []float64{1, 0}
	candidates := []models.Chunk{
		{ContentHash: "orthogonal", Jurisdiction: "local", Embedding: []float64{0, 1}},
		{ContentHash: "aligned", Jurisdiction: "local", Embedding: []float64{1, 0}},
	}

	results := RankCandidates(query, candidates, RankOptions{Threshold: 0.5, TopK: 10})
	require.Len(t, results, 1)
	assert.Equal(t, "aligned", results[0].ContentHash)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-9)
}
