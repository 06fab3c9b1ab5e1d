package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"lexaudit-backend/config"
	"lexaudit-backend/models"
	"lexaudit-backend/repository"

	"github.com/google/uuid"
)

// GapService compares regulation chunks against stored organizational
// documents and records compliance flags for detected gaps.
type GapService struct {
	chunkRepo *repository.ChunkRepository
	flagRepo  *repository.FlagRepository
	embedder  Embedder
	explainer Explainer
	detectors []GapDetector
	cfg       *config.Config
}

// GapServiceOption is a functional option for GapService
type GapServiceOption func(*GapService)

// GapWithChunkRepository sets the chunk repository
func GapWithChunkRepository(repo *repository.ChunkRepository) GapServiceOption {
	return func(s *GapService) {
		s.chunkRepo = repo
	}
}

// GapWithFlagRepository sets the flag repository
func GapWithFlagRepository(repo *repository.FlagRepository) GapServiceOption {
	return func(s *GapService) {
		s.flagRepo = repo
	}
}

// GapWithEmbedder sets the embedding client
func GapWithEmbedder(embedder Embedder) GapServiceOption {
	return func(s *GapService) {
		s.embedder = embedder
	}
}

// GapWithExplainer sets the explanation client
func GapWithExplainer(explainer Explainer) GapServiceOption {
	return func(s *GapService) {
		s.explainer = explainer
	}
}

// GapWithDetectors overrides the detector registry
func GapWithDetectors(detectors []GapDetector) GapServiceOption {
	return func(s *GapService) {
		s.detectors = detectors
	}
}

// GapWithConfig sets the search configuration
func GapWithConfig(cfg *config.Config) GapServiceOption {
	return func(s *GapService) {
		s.cfg = cfg
	}
}

// NewGapService creates a new gap detection service
func NewGapService(opts ...GapServiceOption) *GapService {
	s := &GapService{
		detectors: DefaultDetectors(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegulationChunkInput is one regulation chunk submitted for gap detection.
// Embedding is optional; when absent the embedding service computes it.
type RegulationChunkInput struct {
	Text      string    `json:"text"`
	Page      *int      `json:"page,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// GapSuggestion is one detected gap, persisted as a compliance flag
type GapSuggestion struct {
	FlagID              uuid.UUID          `json:"flag_id"`
	RegulationRef       string             `json:"regulation_ref"`
	Clause              string             `json:"clause"`
	Evidence            string             `json:"evidence"`
	Confidence          float64            `json:"confidence"`
	FlagsRaised         []string           `json:"flags_raised"`
	ActionSteps         models.ActionSteps `json:"action_steps"`
	Explanation         string             `json:"explanation"`
	FallbackExplanation bool               `json:"fallback_explanation"`
	PageReference       *int               `json:"page_reference,omitempty"`
	DocReference        string             `json:"doc_reference"`
}

// DetectGapsRequest represents a request to detect gaps for regulation chunks
type DetectGapsRequest struct {
	Chunks []RegulationChunkInput
}

// DetectGapsResult represents the result of gap detection. Suggestions holds
// every finding recorded so far even when some chunks failed mid-batch;
// Errors lists what went wrong for the chunks that could not be evaluated.
type DetectGapsResult struct {
	Suggestions []GapSuggestion
	Errors      []string
}

// DetectGaps compares each regulation chunk against all stored organizational
// chunks. A pair is evaluated only when its cosine similarity clears the
// configured threshold; the detector registry then decides whether the pair
// is an actual gap. Qualifying findings are stored idempotently and returned
// with their flag ids.
func (s *GapService) DetectGaps(ctx context.Context, req DetectGapsRequest) (*DetectGapsResult, error) {
	if s.chunkRepo == nil {
		return nil, errors.New("chunk repository not set")
	}
	if s.flagRepo == nil {
		return nil, errors.New("flag repository not set")
	}
	if s.cfg == nil {
		return nil, errors.New("config not set")
	}

	documents, err := s.chunkRepo.ListWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load document chunks: %w", err)
	}

	threshold := s.cfg.DistanceThreshold()
	result := &DetectGapsResult{}

	for _, regChunk := range req.Chunks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		regEmbedding := regChunk.Embedding
		if len(regEmbedding) == 0 {
			if s.embedder == nil {
				result.Errors = append(result.Errors, "no embedding supplied and no embedder configured")
				continue
			}
			regEmbedding, err = s.embedder.Embed(ctx, regChunk.Text)
			if err != nil {
				// Dependency failure for one chunk must not abort the batch.
				result.Errors = append(result.Errors, fmt.Sprintf("embedding failed for %q: %v", regChunk.FileName, err))
				continue
			}
		}

		for _, doc := range documents {
			similarity := CosineSimilarity(regEmbedding, doc.Embedding)
			if similarity < threshold {
				continue
			}

			finding := RunDetectors(s.detectors, regChunk.Text, doc.Text)
			if finding == nil {
				continue
			}

			suggestion, err := s.recordFinding(ctx, regChunk, doc, similarity, finding)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				result.Errors = append(result.Errors, fmt.Sprintf("failed to store flag for %q: %v", doc.FileName, err))
				continue
			}
			result.Suggestions = append(result.Suggestions, *suggestion)
		}
	}

	return result, nil
}

// recordFinding requests an explanation (falling back on failure) and stores
// the flag. The flag store deduplicates by identity hash, so re-running
// detection over the same corpus never creates duplicate flags.
func (s *GapService) recordFinding(ctx context.Context, regChunk RegulationChunkInput, doc models.Chunk, similarity float64, finding *Finding) (*GapSuggestion, error) {
	explanation := FallbackExplanation
	fallback := true
	if s.explainer != nil {
		if text, err := s.explainer.Explain(ctx, regChunk.Text, doc.Text, finding.ActionSteps); err == nil {
			explanation = text
			fallback = false
		} else {
			log.Printf("Warning: explanation unavailable, using fallback: %v", err)
		}
	}

	regulationRef := "UNKNOWN_REG"
	if regChunk.FileName != "" {
		regulationRef = regChunk.FileName + "_REG"
	}

	flag := &models.ComplianceFlag{
		RegulationRef: regulationRef,
		ClauseText:    regChunk.Text,
		EvidenceText:  doc.Text,
		Confidence:    similarity,
		ActionSteps:   finding.ActionSteps,
		Explanation:   explanation,
		Severity:      models.SeverityHigh,
		PageReference: regChunk.Page,
		DocReference:  doc.FileName,
	}

	flagID, err := s.flagRepo.Store(ctx, flag)
	if err != nil {
		return nil, err
	}

	return &GapSuggestion{
		FlagID:              flagID,
		RegulationRef:       regulationRef,
		Clause:              regChunk.Text,
		Evidence:            doc.Text,
		Confidence:          similarity,
		FlagsRaised:         finding.FlagsRaised,
		ActionSteps:         finding.ActionSteps,
		Explanation:         explanation,
		FallbackExplanation: fallback,
		PageReference:       regChunk.Page,
		DocReference:        doc.FileName,
	}, nil
}
