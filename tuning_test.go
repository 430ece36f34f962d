package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuningValues(t *testing.T) {
	tuning := DefaultTuning()

	if tuning.Engine.TickPeriodMS != 100 || tuning.Engine.ComboWindowMS != 2000 {
		t.Fatalf("engine timing defaults: %+v", tuning.Engine)
	}
	if tuning.Engine.FrenzyDurationSeconds != 77 || tuning.Engine.PrestigeThreshold != 1e9 {
		t.Fatalf("engine gameplay defaults: %+v", tuning.Engine)
	}
	if tuning.AutoClick.MinSamples != 10 || tuning.AutoClick.CooldownSeconds != 10 {
		t.Fatalf("detector defaults: %+v", tuning.AutoClick)
	}
	if tuning.Validator.ClicksPerHourCeiling != 50000 || tuning.Validator.MaxBestCombo != 1000 {
		t.Fatalf("validator defaults: %+v", tuning.Validator)
	}
}

func TestLoadTuningNoPath(t *testing.T) {
	tuning, err := LoadTuning("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if tuning.Engine.TickPeriodMS != 100 {
		t.Fatal("empty path should return defaults")
	}
}

func TestLoadTuningMissingFile(t *testing.T) {
	tuning, err := LoadTuning(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if tuning.Engine.PrestigeThreshold != 1e9 {
		t.Fatal("missing file should return defaults")
	}
}

func TestLoadTuningPartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	content := "engine:\n  tick_period_ms: 50\n  prestige_threshold: 5.0e8\nvalidator:\n  clicks_per_hour_ceiling: 80000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("overlay load: %v", err)
	}
	if tuning.Engine.TickPeriodMS != 50 {
		t.Fatalf("tick override lost: %d", tuning.Engine.TickPeriodMS)
	}
	if tuning.Engine.PrestigeThreshold != 5e8 {
		t.Fatalf("threshold override lost: %v", tuning.Engine.PrestigeThreshold)
	}
	if tuning.Validator.ClicksPerHourCeiling != 80000 {
		t.Fatalf("validator override lost: %v", tuning.Validator.ClicksPerHourCeiling)
	}

	// Untouched keys keep their defaults.
	if tuning.Engine.ComboWindowMS != 2000 {
		t.Fatalf("unset combo window should stay 2000: %d", tuning.Engine.ComboWindowMS)
	}
	if tuning.AutoClick.MinSamples != 10 {
		t.Fatalf("unset detector should keep defaults: %+v", tuning.AutoClick)
	}
}

func TestLoadTuningMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("engine: [not: a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Fatal("malformed yaml must error")
	}
}
