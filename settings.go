package main

import (
	"database/sql"
	"strconv"
	"strings"
	"sync"
	"time"
)

/* ======================
   Runtime Settings
   ====================== */

// RuntimeSettings are the operator-adjustable knobs: the validator ceilings
// (the thresholds most likely to need loosening after a false-positive
// wave) and the retention windows for the background pruners. The YAML
// tuning file sets the base values; global_settings rows override them
// without a restart.
type RuntimeSettings struct {
	Validator               ValidatorTuning
	ReviewLogRetentionHours int
	TelemetryRetentionHours int
}

var (
	settingsMu     sync.RWMutex
	cachedSettings = RuntimeSettings{
		Validator:               DefaultTuning().Validator,
		ReviewLogRetentionHours: 24 * 14,
		TelemetryRetentionHours: 48,
	}
)

// SeedRuntimeSettings installs the tuning-file baseline before any DB
// overrides are loaded.
func SeedRuntimeSettings(tuning Tuning) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	cachedSettings.Validator = tuning.Validator
}

func LoadRuntimeSettings(db *sql.DB) error {
	rows, err := db.Query(`
		SELECT key, value
		FROM global_settings
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	settingsMu.Lock()
	defer settingsMu.Unlock()

	for rows.Next() {
		var key string
		var value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		applySetting(&cachedSettings, key, value)
	}
	return rows.Err()
}

func GetRuntimeSettings() RuntimeSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return cachedSettings
}

func UpdateRuntimeSettings(db *sql.DB, updates map[string]string) (RuntimeSettings, error) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	for key, value := range updates {
		applySetting(&cachedSettings, key, value)
		_, err := db.Exec(`
			INSERT INTO global_settings (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, key, value)
		if err != nil {
			return cachedSettings, err
		}
	}
	return cachedSettings, nil
}

func applySetting(target *RuntimeSettings, key string, value string) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "earnings_per_click_ceiling":
		if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
			target.Validator.EarningsPerClickCeiling = v
		}
	case "clicks_per_hour_ceiling":
		if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
			target.Validator.ClicksPerHourCeiling = v
		}
	case "max_prestige_level":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil && v > 0 {
			target.Validator.MaxPrestigeLevel = v
		}
	case "max_prestige_tokens":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil && v > 0 {
			target.Validator.MaxPrestigeTokens = v
		}
	case "max_best_combo":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil && v > 0 {
			target.Validator.MaxBestCombo = v
		}
	case "max_display_name_len":
		if v, err := strconv.Atoi(value); err == nil && v > 0 {
			target.Validator.MaxDisplayNameLen = v
		}
	case "review_log_retention_hours":
		if v, err := strconv.Atoi(value); err == nil && v > 0 {
			target.ReviewLogRetentionHours = v
		}
	case "telemetry_retention_hours":
		if v, err := strconv.Atoi(value); err == nil && v > 0 {
			target.TelemetryRetentionHours = v
		}
	}
}

func ReviewLogRetention() time.Duration {
	settings := GetRuntimeSettings()
	return time.Duration(settings.ReviewLogRetentionHours) * time.Hour
}

func TelemetryRetention() time.Duration {
	settings := GetRuntimeSettings()
	return time.Duration(settings.TelemetryRetentionHours) * time.Hour
}
