package service

import (
	"context"
	"errors"
	"fmt"

	"lexaudit-backend/config"
	"lexaudit-backend/models"
	"lexaudit-backend/repository"
)

// SearchScope selects which corpus a query runs against
type SearchScope string

const (
	ScopeDocuments   SearchScope = "documents"
	ScopeRegulations SearchScope = "regulations"
)

// Valid reports whether the scope is one of the recognized values
func (s SearchScope) Valid() bool {
	switch s {
	case ScopeDocuments, ScopeRegulations:
		return true
	}
	return false
}

// SearchService answers similarity queries over the stored chunks
type SearchService struct {
	chunkRepo *repository.ChunkRepository
	regRepo   *repository.RegulationRepository
	embedder  Embedder
	cfg       *config.Config
}

// SearchServiceOption is a functional option for SearchService
type SearchServiceOption func(*SearchService)

// SearchWithChunkRepository sets the chunk repository
func SearchWithChunkRepository(repo *repository.ChunkRepository) SearchServiceOption {
	return func(s *SearchService) {
		s.chunkRepo = repo
	}
}

// SearchWithRegulationRepository sets the regulation repository
func SearchWithRegulationRepository(repo *repository.RegulationRepository) SearchServiceOption {
	return func(s *SearchService) {
		s.regRepo = repo
	}
}

// SearchWithEmbedder sets the embedding client
func SearchWithEmbedder(embedder Embedder) SearchServiceOption {
	return func(s *SearchService) {
		s.embedder = embedder
	}
}

// SearchWithConfig sets the search configuration
func SearchWithConfig(cfg *config.Config) SearchServiceOption {
	return func(s *SearchService) {
		s.cfg = cfg
	}
}

// NewSearchService creates a new search service
func NewSearchService(opts ...SearchServiceOption) *SearchService {
	s := &SearchService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchRequest represents a similarity search request
type SearchRequest struct {
	Query        string
	TopK         int
	Jurisdiction string
	Scope        SearchScope
}

// SearchResult represents ranked similarity search results
type SearchResult struct {
	Results   []models.Chunk
	Threshold float64
}

// Search embeds the query, retrieves an overfetched candidate set from the
// store, and ranks it. Overfetching leaves the ranker enough material to
// return TopK results even after dedup and jurisdiction filtering.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if s.chunkRepo == nil {
		return nil, errors.New("chunk repository not set")
	}
	if s.embedder == nil {
		return nil, errors.New("embedder not set")
	}
	if s.cfg == nil {
		return nil, errors.New("config not set")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopKRegulations
	}

	scope := req.Scope
	if scope == "" {
		scope = ScopeDocuments
	}
	if !scope.Valid() {
		return nil, fmt.Errorf("unknown search scope %q", req.Scope)
	}

	queryEmbedding, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := topK * s.cfg.OverfetchMultiplier
	var candidates []models.Chunk
	if scope == ScopeRegulations {
		if s.regRepo == nil {
			return nil, errors.New("regulation repository not set")
		}
		candidates, err = s.regRepo.SearchSimilar(ctx, queryEmbedding, req.Jurisdiction, limit)
	} else {
		candidates, err = s.chunkRepo.SearchSimilar(ctx, queryEmbedding, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	threshold := s.cfg.DistanceThreshold()
	ranked := RankCandidates(queryEmbedding, candidates, RankOptions{
		Threshold:    threshold,
		TopK:         topK,
		Jurisdiction: req.Jurisdiction,
	})

	return &SearchResult{Results: ranked, Threshold: threshold}, nil
}
