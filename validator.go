package main

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
	"time"
)

/* ======================
   Save Validator
   ====================== */

// Rejection categories. Callers react differently: validation failures are
// malformed input, anti-cheat failures surface as "suspicious activity" and
// land in the review log.
const (
	RejectCategoryValidation = "validation"
	RejectCategoryAntiCheat  = "anti_cheat"
)

const (
	RejectInvalidProjectURL = "INVALID_PROJECT_URL"
	RejectMoneyRange        = "MONEY_OUT_OF_RANGE"
	RejectPrestigeLevel     = "PRESTIGE_LEVEL_OUT_OF_RANGE"
	RejectPrestigeTokens    = "PRESTIGE_TOKENS_OUT_OF_RANGE"
	RejectEarningsPerClick  = "EARNINGS_PER_CLICK_IMPLAUSIBLE"
	RejectClickRate         = "CLICK_RATE_IMPLAUSIBLE"
	RejectPrestigeRollback  = "PRESTIGE_ROLLBACK"
)

// maxSafeNumber is the largest integer a JSON client can represent without
// precision loss (2^53 - 1); money above it is unconditionally forged.
const maxSafeNumber = float64(1<<53 - 1)

type SaveRejection struct {
	Reason   string
	Category string
	Detail   string
}

type SaveRequest struct {
	PlayerID    string      `json:"playerId"`
	DisplayName string      `json:"displayName"`
	ProjectName string      `json:"projectName,omitempty"`
	ProjectURL  string      `json:"projectUrl,omitempty"`
	State       PlayerState `json:"playerState"`
}

// SaveVerdict is the outcome of one save attempt. Created distinguishes a
// first save from an update; Rejection is nil when Accepted.
type SaveVerdict struct {
	Accepted  bool
	Created   bool
	Rejection *SaveRejection
}

// sanitizeIdentity trims and length-clamps the display fields in place.
// Clamping repairs rather than rejects; only the URL can fail the save.
func sanitizeIdentity(req *SaveRequest, tuning ValidatorTuning) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.DisplayName = clampString(strings.TrimSpace(req.DisplayName), tuning.MaxDisplayNameLen)
	if req.DisplayName == "" {
		req.DisplayName = "Anonymous"
	}
	req.ProjectName = clampString(strings.TrimSpace(req.ProjectName), tuning.MaxProjectNameLen)
	req.ProjectURL = clampString(strings.TrimSpace(req.ProjectURL), tuning.MaxProjectURLLen)
}

func clampString(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}

// ValidateSave runs the plausibility pipeline against the incoming state
// and the prior record (nil for a new player). First failure wins; an
// accepted save returns nil. Pure function, exercised directly by tests.
func ValidateSave(req *SaveRequest, prior *StoredSave, now time.Time, tuning ValidatorTuning) *SaveRejection {
	sanitizeIdentity(req, tuning)

	if req.ProjectURL != "" {
		parsed, err := url.Parse(req.ProjectURL)
		if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return &SaveRejection{
				Reason:   RejectInvalidProjectURL,
				Category: RejectCategoryValidation,
				Detail:   "project URL must be absolute http or https",
			}
		}
	}

	// Range checks run against the raw payload, before any repair: a
	// negative balance or prestige count is a forged save to reject, never
	// a field to clamp. Normalization waits until the range gate passes.
	state := &req.State
	if state.Money < 0 || state.Money > maxSafeNumber {
		return &SaveRejection{
			Reason:   RejectMoneyRange,
			Category: RejectCategoryValidation,
			Detail:   fmt.Sprintf("money %.0f outside [0, 2^53-1]", state.Money),
		}
	}
	if state.PrestigeLevel < 0 || state.PrestigeLevel > tuning.MaxPrestigeLevel {
		return &SaveRejection{
			Reason:   RejectPrestigeLevel,
			Category: RejectCategoryValidation,
			Detail:   fmt.Sprintf("prestige level %d outside [0, %d]", state.PrestigeLevel, tuning.MaxPrestigeLevel),
		}
	}
	if state.PrestigeTokens < 0 || state.PrestigeTokens > tuning.MaxPrestigeTokens {
		return &SaveRejection{
			Reason:   RejectPrestigeTokens,
			Category: RejectCategoryValidation,
			Detail:   fmt.Sprintf("prestige tokens %d outside [0, %d]", state.PrestigeTokens, tuning.MaxPrestigeTokens),
		}
	}

	state.Normalize()
	if state.BestCombo > tuning.MaxBestCombo {
		state.BestCombo = tuning.MaxBestCombo
	}

	if state.TotalClicks > 0 {
		perClick := state.LifetimeEarned / float64(state.TotalClicks)
		ceiling := tuning.EarningsPerClickCeiling * float64(maxInt64(1, state.PrestigeLevel))
		if perClick > ceiling {
			return &SaveRejection{
				Reason:   RejectEarningsPerClick,
				Category: RejectCategoryAntiCheat,
				Detail:   fmt.Sprintf("%.2f per click exceeds ceiling %.2f", perClick, ceiling),
			}
		}
	}

	if prior != nil {
		clickDelta := state.TotalClicks - prior.State.TotalClicks
		if clickDelta > 0 {
			hours := now.Sub(prior.LastSavedAt).Hours()
			if hours <= 0 {
				hours = 1.0 / 3600 // racing saves within the same second
			}
			rate := float64(clickDelta) / hours
			if rate > tuning.ClicksPerHourCeiling {
				return &SaveRejection{
					Reason:   RejectClickRate,
					Category: RejectCategoryAntiCheat,
					Detail:   fmt.Sprintf("%.0f clicks/hour exceeds ceiling %.0f", rate, tuning.ClicksPerHourCeiling),
				}
			}
		}

		if state.PrestigeLevel < prior.State.PrestigeLevel || state.PrestigeTokens < prior.State.PrestigeTokens {
			return &SaveRejection{
				Reason:   RejectPrestigeRollback,
				Category: RejectCategoryAntiCheat,
				Detail:   "prestige progress decreased against stored save",
			}
		}
	}

	return nil
}

// CommitSave validates and persists a save in one serialized unit. A
// per-player transaction-scoped advisory lock makes the prior-record read
// and the upsert atomic against a racing save for the same player, so the
// click-rate check can never run against a stale prior snapshot.
func CommitSave(db *sql.DB, req *SaveRequest, now time.Time, tuning ValidatorTuning) (SaveVerdict, error) {
	tx, err := db.Begin()
	if err != nil {
		return SaveVerdict{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock($1)`, playerLockKey(req.PlayerID)); err != nil {
		return SaveVerdict{}, err
	}

	prior, err := scanStoredSave(tx.QueryRow(`
		SELECT player_id, display_name, COALESCE(project_name, ''), COALESCE(project_url, ''), state, created_at, last_saved_at
		FROM game_saves
		WHERE player_id = $1
	`, req.PlayerID))
	if err != nil {
		return SaveVerdict{}, err
	}

	if rej := ValidateSave(req, prior, now, tuning); rej != nil {
		// Reject without touching the stored record; the review log keeps
		// the evidence.
		logRejectedSave(db, req.PlayerID, rej, req.State)
		return SaveVerdict{Rejection: rej}, nil
	}

	created, err := upsertSave(tx, &StoredSave{
		PlayerID:    req.PlayerID,
		DisplayName: req.DisplayName,
		ProjectName: req.ProjectName,
		ProjectURL:  req.ProjectURL,
		State:       req.State,
	}, now)
	if err != nil {
		return SaveVerdict{}, err
	}
	if err := tx.Commit(); err != nil {
		return SaveVerdict{}, err
	}
	return SaveVerdict{Accepted: true, Created: created}, nil
}

func playerLockKey(playerID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(playerID))
	return int64(h.Sum64())
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
