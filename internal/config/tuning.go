// Package config loads tuning parameters for the scanning pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Fallback defaults used when a field is omitted from the JSON file.
const (
	defaultCooldownSeconds = 2.0
	defaultDedupRadiusM    = 0.5
	defaultMaxHypotheses   = 10
	defaultMinConfidence   = 0.0
)

// TuningConfig represents the tuning parameters for the hypothesis
// lifecycle policy. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
type TuningConfig struct {
	CooldownSeconds *float64 `json:"cooldown_seconds,omitempty"`
	DedupRadiusM    *float64 `json:"dedup_radius_m,omitempty"`
	MaxHypotheses   *int     `json:"max_hypotheses,omitempty"`
	MinConfidence   *float64 `json:"min_confidence,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset; every
// Get* accessor falls back to its default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and be under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all set fields are in range.
func (c *TuningConfig) Validate() error {
	if c.CooldownSeconds != nil && *c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown_seconds must be >= 0, got %v", *c.CooldownSeconds)
	}
	if c.DedupRadiusM != nil && *c.DedupRadiusM <= 0 {
		return fmt.Errorf("dedup_radius_m must be > 0, got %v", *c.DedupRadiusM)
	}
	if c.MaxHypotheses != nil && *c.MaxHypotheses <= 0 {
		return fmt.Errorf("max_hypotheses must be > 0, got %v", *c.MaxHypotheses)
	}
	if c.MinConfidence != nil && (*c.MinConfidence < 0 || *c.MinConfidence > 1) {
		return fmt.Errorf("min_confidence must be in [0, 1], got %v", *c.MinConfidence)
	}
	return nil
}

// GetCooldown returns the accept cooldown as a duration.
func (c *TuningConfig) GetCooldown() time.Duration {
	secs := defaultCooldownSeconds
	if c.CooldownSeconds != nil {
		secs = *c.CooldownSeconds
	}
	return time.Duration(secs * float64(time.Second))
}

// GetDedupRadiusM returns the spatial dedup radius in meters.
func (c *TuningConfig) GetDedupRadiusM() float64 {
	if c.DedupRadiusM != nil {
		return *c.DedupRadiusM
	}
	return defaultDedupRadiusM
}

// GetMaxHypotheses returns the capacity cap for the accepted set.
func (c *TuningConfig) GetMaxHypotheses() int {
	if c.MaxHypotheses != nil {
		return *c.MaxHypotheses
	}
	return defaultMaxHypotheses
}

// GetMinConfidence returns the confidence floor applied before offers.
func (c *TuningConfig) GetMinConfidence() float64 {
	if c.MinConfidence != nil {
		return *c.MinConfidence
	}
	return defaultMinConfidence
}
