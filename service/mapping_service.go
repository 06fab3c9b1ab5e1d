package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"lexaudit-backend/config"
	"lexaudit-backend/models"
	"lexaudit-backend/repository"

	"github.com/google/generative-ai-go/genai"
)

// ErrContractNotFound is returned when a contract has no stored clauses
var ErrContractNotFound = errors.New("contract not found")

// FallbackSuggestion is recorded when the suggestion service fails
const FallbackSuggestion = "LLM unavailable. No explanation generated."

// suggestedRegulationName marks mappings produced by the language model
// rather than by similarity ranking.
const suggestedRegulationName = "LLM_Suggested"

// MappingSuggester proposes likely regulations for a clause that no stored
// regulation matched.
type MappingSuggester interface {
	SuggestMapping(ctx context.Context, clauseText string) (string, error)
}

// SuggestMapping implements MappingSuggester on the Gemini explainer
func (e *GeminiExplainer) SuggestMapping(ctx context.Context, clauseText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	model := e.client.GenerativeModel(e.model)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(180)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text("You are a compliance assistant mapping contract clauses to regulations.")},
	}

	prompt := fmt.Sprintf("Which regulations most likely govern this contract clause? Answer briefly.\nClause: %s", clauseText)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("suggestion request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("suggestion response has no candidates")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	suggestion := strings.TrimSpace(builder.String())
	if suggestion == "" {
		return "", fmt.Errorf("suggestion response is empty")
	}
	return suggestion, nil
}

// MappingService maps contract clauses to the regulations that govern them
type MappingService struct {
	chunkRepo   *repository.ChunkRepository
	regRepo     *repository.RegulationRepository
	mappingRepo *repository.MappingRepository
	suggester   MappingSuggester
	cfg         *config.Config
}

// MappingServiceOption is a functional option for MappingService
type MappingServiceOption func(*MappingService)

// MappingWithChunkRepository sets the chunk repository
func MappingWithChunkRepository(repo *repository.ChunkRepository) MappingServiceOption {
	return func(s *MappingService) {
		s.chunkRepo = repo
	}
}

// MappingWithRegulationRepository sets the regulation repository
func MappingWithRegulationRepository(repo *repository.RegulationRepository) MappingServiceOption {
	return func(s *MappingService) {
		s.regRepo = repo
	}
}

// MappingWithMappingRepository sets the mapping repository
func MappingWithMappingRepository(repo *repository.MappingRepository) MappingServiceOption {
	return func(s *MappingService) {
		s.mappingRepo = repo
	}
}

// MappingWithSuggester sets the fallback suggestion client
func MappingWithSuggester(suggester MappingSuggester) MappingServiceOption {
	return func(s *MappingService) {
		s.suggester = suggester
	}
}

// MappingWithConfig sets the search configuration
func MappingWithConfig(cfg *config.Config) MappingServiceOption {
	return func(s *MappingService) {
		s.cfg = cfg
	}
}

// NewMappingService creates a new mapping service
func NewMappingService(opts ...MappingServiceOption) *MappingService {
	s := &MappingService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EvaluateContractResult summarizes a contract evaluation run
type EvaluateContractResult struct {
	FileName         string                           `json:"file_name"`
	ClausesEvaluated int                              `json:"clauses_evaluated"`
	Mappings         []models.ClauseRegulationMapping `json:"mappings"`
}

// EvaluateContract ranks every stored regulation against each clause of the
// named contract. Clauses whose best matches clear the similarity threshold
// get mapped entries for the top matches; clauses with no qualifying match
// get a single suggested entry from the language model, falling back to a
// placeholder when the model is unavailable.
func (s *MappingService) EvaluateContract(ctx context.Context, fileName string) (*EvaluateContractResult, error) {
	chunks, err := s.chunkRepo.ListByFileName(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract chunks: %w", err)
	}

	var clauses []models.Chunk
	for _, chunk := range chunks {
		if chunk.DocType == models.DocTypeContract {
			clauses = append(clauses, chunk)
		}
	}
	if len(clauses) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, fileName)
	}

	regulations, err := s.regRepo.ListWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load regulations: %w", err)
	}

	threshold := s.cfg.DistanceThreshold()
	result := &EvaluateContractResult{FileName: fileName}

	for _, clause := range clauses {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if strings.TrimSpace(clause.Text) == "" {
			continue
		}
		result.ClausesEvaluated++

		mappings := s.mapClause(ctx, clause, regulations, threshold)
		if err := s.mappingRepo.StoreBatch(ctx, mappings); err != nil {
			return result, fmt.Errorf("failed to store mappings for clause %s: %w", clause.ID, err)
		}
		result.Mappings = append(result.Mappings, mappings...)
	}

	return result, nil
}

// mapClause ranks regulations for one clause. Matches at or above the
// similarity threshold become mapped entries, capped at the configured top
// K; otherwise one suggested entry is produced.
func (s *MappingService) mapClause(ctx context.Context, clause models.Chunk, regulations []models.Chunk, threshold float64) []models.ClauseRegulationMapping {
	type scored struct {
		regulation models.Chunk
		similarity float64
	}

	var matches []scored
	for _, reg := range regulations {
		similarity := CosineSimilarity(clause.Embedding, reg.Embedding)
		if similarity >= threshold {
			matches = append(matches, scored{regulation: reg, similarity: similarity})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	if len(matches) > s.cfg.TopKRegulations {
		matches = matches[:s.cfg.TopKRegulations]
	}

	if len(matches) > 0 {
		mappings := make([]models.ClauseRegulationMapping, 0, len(matches))
		for _, match := range matches {
			mappings = append(mappings, models.ClauseRegulationMapping{
				ClauseID:       clause.ID,
				RegulationName: match.regulation.FileName,
				ArticleRef:     strconv.Itoa(match.regulation.ChunkIndex),
				Status:         models.MappingStatusMapped,
				Similarity:     match.similarity,
			})
		}
		return mappings
	}

	explanation := FallbackSuggestion
	if s.suggester != nil {
		if text, err := s.suggester.SuggestMapping(ctx, clause.Text); err == nil {
			explanation = text
		} else {
			log.Printf("Warning: mapping suggestion unavailable, using fallback: %v", err)
		}
	}

	return []models.ClauseRegulationMapping{{
		ClauseID:       clause.ID,
		RegulationName: suggestedRegulationName,
		ArticleRef:     "-",
		Status:         models.MappingStatusSuggested,
		Explanation:    explanation,
	}}
}
