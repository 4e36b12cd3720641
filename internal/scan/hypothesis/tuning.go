package hypothesis

import "github.com/banshee-data/roomscan/internal/config"

// TrackerConfigFromTuning builds a TrackerConfig from a loaded
// TuningConfig. Use this in binaries where the TuningConfig is already
// loaded and validated.
func TrackerConfigFromTuning(cfg *config.TuningConfig) TrackerConfig {
	return TrackerConfig{
		Cooldown:      cfg.GetCooldown(),
		DedupRadius:   cfg.GetDedupRadiusM(),
		MaxHypotheses: cfg.GetMaxHypotheses(),
	}
}
