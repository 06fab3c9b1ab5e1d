// Package config holds the tunable similarity-search parameters. Static
// settings come from the environment; the distance threshold additionally
// persists to a JSON file so the calibrator can update it across restarts.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

const (
	// DefaultDistanceThreshold is used until calibration tunes a better value
	DefaultDistanceThreshold = 0.8
	// DefaultTopKRegulations caps regulation matches per clause
	DefaultTopKRegulations = 3
	// DefaultOverfetchMultiplier controls how many extra candidates the
	// store retrieves before dedup and filtering trim the set.
	DefaultOverfetchMultiplier = 5
	// DefaultSampleLimit bounds the calibration corpus
	DefaultSampleLimit = 20
)

type fileSettings struct {
	DistanceThreshold float64 `json:"distance_threshold"`
}

// Config holds search parameters. The distance threshold is guarded by a
// mutex because the calibrator may update it while request handlers read it.
type Config struct {
	mu                  sync.RWMutex
	distanceThreshold   float64
	TopKRegulations     int
	OverfetchMultiplier int
	SampleLimit         int
	path                string
}

// Load builds a Config from environment variables, overlaying the persisted
// threshold from path when the file exists. A missing or unreadable file is
// not an error; defaults apply.
func Load(path string) *Config {
	cfg := &Config{
		distanceThreshold:   DefaultDistanceThreshold,
		TopKRegulations:     intFromEnv("TOP_K_REGULATIONS", DefaultTopKRegulations),
		OverfetchMultiplier: intFromEnv("SEARCH_OVERFETCH_MULTIPLIER", DefaultOverfetchMultiplier),
		SampleLimit:         intFromEnv("CALIBRATION_SAMPLE_LIMIT", DefaultSampleLimit),
		path:                path,
	}

	if data, err := os.ReadFile(path); err == nil {
		var settings fileSettings
		if err := json.Unmarshal(data, &settings); err == nil && settings.DistanceThreshold > 0 {
			cfg.distanceThreshold = settings.DistanceThreshold
		}
	}

	return cfg
}

// DistanceThreshold returns the current similarity distance threshold
func (c *Config) DistanceThreshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.distanceThreshold
}

// SetDistanceThreshold updates the threshold and persists it. The write is
// atomic (temp file + rename) so a crash never leaves a torn config file.
func (c *Config) SetDistanceThreshold(threshold float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(fileSettings{DistanceThreshold: threshold})
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	c.distanceThreshold = threshold
	return nil
}

func intFromEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
