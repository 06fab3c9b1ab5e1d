package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lexaudit-backend/config"
	"lexaudit-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSuggester struct {
	text string
	err  error
}

func (f *fakeSuggester) SuggestMapping(ctx context.Context, clauseText string) (string, error) {
	return f.text, f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.Load(filepath.Join(t.TempDir(), "config.json"))
}

func TestMapClauseRanksMatches(t *testing.T) {
	cfg := testConfig(t)
	cfg.TopKRegulations = 2
	s := NewMappingService(MappingWithConfig(cfg))

	clause := models.Chunk{ID: uuid.New(), Text: "data residency clause", Embedding: []float64{1, 0}}
	regulations := []models.Chunk{
		{FileName: "gdpr.pdf", ChunkIndex: 3, Embedding: []float64{0.95, 0.05}},
		{FileName: "ccpa.pdf", ChunkIndex: 1, Embedding: []float64{1, 0}},
		{FileName: "unrelated.pdf", ChunkIndex: 0, Embedding: []float64{0, 1}},
	}

	mappings := s.mapClause(context.Background(), clause, regulations, cfg.DistanceThreshold())
	require.Len(t, mappings, 2)

	// Best match first
	assert.Equal(t, "ccpa.pdf", mappings[0].RegulationName)
	assert.Equal(t, "1", mappings[0].ArticleRef)
	assert.Equal(t, models.MappingStatusMapped, mappings[0].Status)
	assert.InDelta(t, 1.0, mappings[0].Similarity, 1e-9)

	assert.Equal(t, "gdpr.pdf", mappings[1].RegulationName)
	for _, m := range mappings {
		assert.Equal(t, clause.ID, m.ClauseID)
	}
}

func TestMapClauseFallsBackToSuggestion(t *testing.T) {
	cfg := testConfig(t)
	s := NewMappingService(
		MappingWithConfig(cfg),
		MappingWithSuggester(&fakeSuggester{text: "Likely governed by GDPR Article 44."}),
	)

	clause := models.Chunk{ID: uuid.New(), Text: "exotic clause", Embedding: []float64{1, 0}}
	regulations := []models.Chunk{
		{FileName: "unrelated.pdf", Embedding: []float64{0, 1}},
	}

	mappings := s.mapClause(context.Background(), clause, regulations, cfg.DistanceThreshold())
	require.Len(t, mappings, 1)
	assert.Equal(t, "LLM_Suggested", mappings[0].RegulationName)
	assert.Equal(t, models.MappingStatusSuggested, mappings[0].Status)
	assert.Equal(t, "Likely governed by GDPR Article 44.", mappings[0].Explanation)
	assert.Equal(t, "-", mappings[0].ArticleRef)
}

func TestMapClauseSuggesterFailureUsesPlaceholder(t *testing.T) {
	cfg := testConfig(t)
	s := NewMappingService(
		MappingWithConfig(cfg),
		MappingWithSuggester(&fakeSuggester{err: errors.New("quota exceeded")}),
	)

	clause := models.Chunk{ID: uuid.New(), Text: "exotic clause", Embedding: []float64{1, 0}}
	mappings := s.mapClause(context.Background(), clause, nil, cfg.DistanceThreshold())
	require.Len(t, mappings, 1)
	assert.Equal(t, FallbackSuggestion, mappings[0].Explanation)
	assert.Equal(t, models.MappingStatusSuggested, mappings[0].Status)
}
