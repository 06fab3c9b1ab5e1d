package service

import (
	"context"
	"errors"
	"fmt"

	"lexaudit-backend/config"
	"lexaudit-backend/repository"
)

// ErrNoSampleData is returned when calibration finds no chunks to sample
var ErrNoSampleData = errors.New("no chunk data available for calibration")

const (
	calibrationGridMin  = 0.60
	calibrationGridMax  = 0.90
	calibrationGridStep = 0.01
	// calibrationLabelCutoff is the reference similarity that labels a pair
	// as a true match during grid search.
	calibrationLabelCutoff = 0.85
)

// CalibrationService tunes the similarity distance threshold against a
// sample of the stored corpus.
type CalibrationService struct {
	chunkRepo *repository.ChunkRepository
	embedder  Embedder
	cfg       *config.Config
}

// CalibrationServiceOption is a functional option for CalibrationService
type CalibrationServiceOption func(*CalibrationService)

// CalibrationWithChunkRepository sets the chunk repository
func CalibrationWithChunkRepository(repo *repository.ChunkRepository) CalibrationServiceOption {
	return func(s *CalibrationService) {
		s.chunkRepo = repo
	}
}

// CalibrationWithEmbedder sets the embedding client
func CalibrationWithEmbedder(embedder Embedder) CalibrationServiceOption {
	return func(s *CalibrationService) {
		s.embedder = embedder
	}
}

// CalibrationWithConfig sets the tunable configuration
func CalibrationWithConfig(cfg *config.Config) CalibrationServiceOption {
	return func(s *CalibrationService) {
		s.cfg = cfg
	}
}

// NewCalibrationService creates a new calibration service
func NewCalibrationService(opts ...CalibrationServiceOption) *CalibrationService {
	s := &CalibrationService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CalibrationResult reports the tuned threshold and how it scored
type CalibrationResult struct {
	Threshold  float64 `json:"threshold"`
	Accuracy   float64 `json:"accuracy"`
	SampleSize int     `json:"sample_size"`
}

// Calibrate samples chunk texts, embeds them, and grid-searches the
// similarity threshold that best reproduces the reference labeling of the
// sample's pairwise similarities. The winning threshold is persisted; any
// failure leaves the active threshold unchanged.
func (s *CalibrationService) Calibrate(ctx context.Context) (*CalibrationResult, error) {
	texts, err := s.chunkRepo.SampleTexts(ctx, s.cfg.SampleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample chunks: %w", err)
	}
	if len(texts) == 0 {
		return nil, ErrNoSampleData
	}

	embeddings := make([][]float64, 0, len(texts))
	for _, text := range texts {
		embedding, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed calibration sample: %w", err)
		}
		embeddings = append(embeddings, embedding)
	}

	threshold, accuracy := CalibrateThreshold(embeddings)

	if err := s.cfg.SetDistanceThreshold(threshold); err != nil {
		return nil, fmt.Errorf("failed to persist threshold: %w", err)
	}

	return &CalibrationResult{
		Threshold:  threshold,
		Accuracy:   accuracy,
		SampleSize: len(texts),
	}, nil
}

// CalibrateThreshold grid-searches candidate thresholds over the pairwise
// cosine similarities of the sample embeddings. Each pair is labeled a match
// when its similarity exceeds the reference cutoff; a candidate's accuracy
// is the fraction of pairs whose predicted label agrees. Ties keep the
// lowest candidate. Pure function.
func CalibrateThreshold(embeddings [][]float64) (threshold, accuracy float64) {
	n := len(embeddings)
	similarities := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				similarities = append(similarities, 1.0)
				continue
			}
			similarities = append(similarities, CosineSimilarity(embeddings[i], embeddings[j]))
		}
	}

	labels := make([]bool, len(similarities))
	for i, sim := range similarities {
		labels[i] = sim > calibrationLabelCutoff
	}

	steps := int((calibrationGridMax-calibrationGridMin)/calibrationGridStep) + 1
	bestThreshold := calibrationGridMin
	bestAccuracy := -1.0
	for step := 0; step < steps; step++ {
		candidate := calibrationGridMin + calibrationGridStep*float64(step)
		correct := 0
		for i, sim := range similarities {
			if (sim > candidate) == labels[i] {
				correct++
			}
		}
		acc := float64(correct) / float64(len(similarities))
		if acc > bestAccuracy {
			bestAccuracy = acc
			bestThreshold = candidate
		}
	}

	return bestThreshold, bestAccuracy
}
