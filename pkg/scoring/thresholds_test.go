package scoring

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadThresholdsEmptyPathKeepsDefaults(t *testing.T) {
	th, err := LoadThresholds("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if th != DefaultThresholds() {
		t.Fatalf("expected defaults, got %+v", th)
	}
}

func TestLoadThresholdsPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := "high_avg_plays: 250000\nsnooze_cooldown_days: 14\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	th, err := LoadThresholds(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if th.HighAvgPlays != 250000 || th.SnoozeCooldownDays != 14 {
		t.Fatalf("overrides not applied: %+v", th)
	}
	if th.LowAvgPlays != DefaultThresholds().LowAvgPlays {
		t.Fatalf("unset field lost its default: %+v", th)
	}
}

func TestLoadThresholdsMissingFile(t *testing.T) {
	if _, err := LoadThresholds("/nonexistent/thresholds.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadThresholdsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("high_avg_plays: [not a number"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadThresholds(path); err == nil {
		t.Fatal("expected parse error")
	}
}
