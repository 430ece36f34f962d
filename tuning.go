package main

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

/* ======================
   Tuning
   ====================== */

// Tuning carries every threshold that is a judgment call rather than a rule.
// The anti-cheat numbers in particular are statistical, tuned by example,
// and deployments with unusual input hardware may need to loosen them, so
// they load from an optional YAML file instead of being buried in code.
type Tuning struct {
	Engine    EngineTuning    `yaml:"engine"`
	AutoClick AutoClickTuning `yaml:"auto_click"`
	Validator ValidatorTuning `yaml:"validator"`
}

type EngineTuning struct {
	TickPeriodMS           int     `yaml:"tick_period_ms"`
	ComboWindowMS          int     `yaml:"combo_window_ms"`
	FrenzyDurationSeconds  int     `yaml:"frenzy_duration_seconds"`
	GoldenCheckSeconds     int     `yaml:"golden_check_seconds"`
	GoldenSpawnChance      float64 `yaml:"golden_spawn_chance"`
	GoldenLifetimeSeconds  int     `yaml:"golden_lifetime_seconds"`
	PrestigeThreshold      float64 `yaml:"prestige_threshold"`
	SaveDebounceSeconds    int     `yaml:"save_debounce_seconds"`
	BaseClickPower         float64 `yaml:"base_click_power"`
	NotifyComboMilestones  []int   `yaml:"notify_combo_milestones"`
	GoldenBonusClickFactor float64 `yaml:"golden_bonus_click_factor"`
}

type AutoClickTuning struct {
	SampleWindow        int     `yaml:"sample_window"`
	MinSamples          int     `yaml:"min_samples"`
	IntervalWindow      int     `yaml:"interval_window"`
	MeanThresholdMS     float64 `yaml:"mean_threshold_ms"`
	DeviationThreshold  float64 `yaml:"deviation_threshold_ms"`
	HardMeanThresholdMS float64 `yaml:"hard_mean_threshold_ms"`
	CooldownSeconds     int     `yaml:"cooldown_seconds"`
}

type ValidatorTuning struct {
	MaxDisplayNameLen       int     `yaml:"max_display_name_len"`
	MaxProjectNameLen       int     `yaml:"max_project_name_len"`
	MaxProjectURLLen        int     `yaml:"max_project_url_len"`
	MaxPrestigeLevel        int64   `yaml:"max_prestige_level"`
	MaxPrestigeTokens       int64   `yaml:"max_prestige_tokens"`
	EarningsPerClickCeiling float64 `yaml:"earnings_per_click_ceiling"`
	ClicksPerHourCeiling    float64 `yaml:"clicks_per_hour_ceiling"`
	MaxBestCombo            int64   `yaml:"max_best_combo"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Engine: EngineTuning{
			TickPeriodMS:           100,
			ComboWindowMS:          2000,
			FrenzyDurationSeconds:  77,
			GoldenCheckSeconds:     5,
			GoldenSpawnChance:      0.05,
			GoldenLifetimeSeconds:  13,
			PrestigeThreshold:      1e9,
			SaveDebounceSeconds:    5,
			BaseClickPower:         1,
			NotifyComboMilestones:  []int{10, 50, 100},
			GoldenBonusClickFactor: 13,
		},
		AutoClick: AutoClickTuning{
			SampleWindow:        20,
			MinSamples:          10,
			IntervalWindow:      10,
			MeanThresholdMS:     100,
			DeviationThreshold:  5,
			HardMeanThresholdMS: 30,
			CooldownSeconds:     10,
		},
		Validator: ValidatorTuning{
			MaxDisplayNameLen:       50,
			MaxProjectNameLen:       100,
			MaxProjectURLLen:        500,
			MaxPrestigeLevel:        10000,
			MaxPrestigeTokens:       1000000,
			EarningsPerClickCeiling: 10000,
			ClicksPerHourCeiling:    50000,
			MaxBestCombo:            1000,
		},
	}
}

// LoadTuning overlays the YAML file at path (if any) onto the defaults.
// A missing path is not an error; a malformed file is.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return tuning, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Println("Tuning file not found, using defaults:", path)
			return tuning, nil
		}
		return tuning, err
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return tuning, err
	}
	return tuning, nil
}
