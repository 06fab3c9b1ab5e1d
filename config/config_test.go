package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "config.json"))

	assert.Equal(t, DefaultDistanceThreshold, cfg.DistanceThreshold())
	assert.Equal(t, DefaultTopKRegulations, cfg.TopKRegulations)
	assert.Equal(t, DefaultOverfetchMultiplier, cfg.OverfetchMultiplier)
	assert.Equal(t, DefaultSampleLimit, cfg.SampleLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TOP_K_REGULATIONS", "7")
	t.Setenv("SEARCH_OVERFETCH_MULTIPLIER", "10")
	t.Setenv("CALIBRATION_SAMPLE_LIMIT", "50")

	cfg := Load(filepath.Join(t.TempDir(), "config.json"))
	assert.Equal(t, 7, cfg.TopKRegulations)
	assert.Equal(t, 10, cfg.OverfetchMultiplier)
	assert.Equal(t, 50, cfg.SampleLimit)
}

func TestLoadIgnoresInvalidEnv(t *testing.T) {
	t.Setenv("SEARCH_OVERFETCH_MULTIPLIER", "not-a-number")

	cfg := Load(filepath.Join(t.TempDir(), "config.json"))
	assert.Equal(t, DefaultOverfetchMultiplier, cfg.OverfetchMultiplier)
}

func TestThresholdPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Load(path)
	require.NoError(t, cfg.SetDistanceThreshold(0.73))
	assert.Equal(t, 0.73, cfg.DistanceThreshold())

	reloaded := Load(path)
	assert.Equal(t, 0.73, reloaded.DistanceThreshold())

	// No temp file left behind after the atomic rename
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadWithCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg := Load(path)
	assert.Equal(t, DefaultDistanceThreshold, cfg.DistanceThreshold())
}
