package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// unit returns a normalized 2D vector at the given angle
func unit(angle float64) []float64 {
	return []float64{math.Cos(angle), math.Sin(angle)}
}

func TestCalibrateThresholdSeparatesClusters(t *testing.T) {
	// Two tight clusters: within-cluster similarity near 1, cross-cluster
	// similarity near 0. Any threshold in the grid labels these perfectly,
	// and ties resolve to the lowest candidate.
	embeddings := [][]float64{
		unit(0.00),
		unit(0.02),
		unit(math.Pi / 2),
		unit(math.Pi/2 + 0.02),
	}

	threshold, accuracy := CalibrateThreshold(embeddings)
	assert.InDelta(t, 1.0, accuracy, 1e-9)
	assert.InDelta(t, 0.60, threshold, 1e-9)
}

func TestCalibrateThresholdStaysOnGrid(t *testing.T) {
	// Spread of similarities across the grid range
	embeddings := [][]float64{
		unit(0.0),
		unit(0.3),
		unit(0.6),
		unit(0.9),
	}

	threshold, accuracy := CalibrateThreshold(embeddings)
	assert.GreaterOrEqual(t, threshold, 0.60)
	assert.LessOrEqual(t, threshold, 0.90+1e-9)
	assert.Greater(t, accuracy, 0.0)
	assert.LessOrEqual(t, accuracy, 1.0)
}

func TestCalibrateThresholdSingleEmbedding(t *testing.T) {
	// One sample yields only the diagonal pair, which every candidate
	// labels correctly.
	threshold, accuracy := CalibrateThreshold([][]float64{unit(0.5)})
	assert.InDelta(t, 1.0, accuracy, 1e-9)
	assert.InDelta(t, 0.60, threshold, 1e-9)
}
