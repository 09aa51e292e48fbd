package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds drive the tier classifier. Values are overridable from a
// YAML file so operators can tune reprocessing priority without a
// redeploy.
type Thresholds struct {
	HighAvgPlays       float64 `yaml:"high_avg_plays"`
	LowAvgPlays        float64 `yaml:"low_avg_plays"`
	MinQualifyingPosts int     `yaml:"min_qualifying_posts"`
	SnoozeCooldownDays int     `yaml:"snooze_cooldown_days"`
	TrailingPosts      int     `yaml:"trailing_posts"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HighAvgPlays:       500000,
		LowAvgPlays:        50000,
		MinQualifyingPosts: 3,
		SnoozeCooldownDays: 7,
		TrailingPosts:      20,
	}
}

// LoadThresholds reads overrides from path; an empty path keeps the
// defaults. Unset fields fall back to their defaults.
func LoadThresholds(path string) (Thresholds, error) {
	th := DefaultThresholds()
	if path == "" {
		return th, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(content, &th); err != nil {
		return th, fmt.Errorf("parse thresholds file: %w", err)
	}
	if th.TrailingPosts <= 0 {
		th.TrailingPosts = 20
	}
	return th, nil
}
