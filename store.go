package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

/* ======================
   Persistence
   ====================== */

// StoredSave is one row of game_saves: the JSONB player state plus the
// identity fields and the numeric columns denormalized for leaderboard SQL.
type StoredSave struct {
	PlayerID    string
	DisplayName string
	ProjectName string
	ProjectURL  string
	State       PlayerState
	CreatedAt   time.Time
	LastSavedAt time.Time
}

func ensureSchema(db *sql.DB) error {

	// 1️⃣ game_saves table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS game_saves (
			player_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			project_name TEXT,
			project_url TEXT,
			state JSONB NOT NULL,
			money DOUBLE PRECISION NOT NULL DEFAULT 0,
			lifetime_earned DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_clicks BIGINT NOT NULL DEFAULT 0,
			best_combo BIGINT NOT NULL DEFAULT 0,
			prestige_level BIGINT NOT NULL DEFAULT 0,
			prestige_tokens BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			last_saved_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_game_saves_score
		ON game_saves (prestige_level DESC, prestige_tokens DESC, lifetime_earned DESC);
	`)
	if err != nil {
		return err
	}

	// 2️⃣ save_review_log table: every rejected save, kept for manual
	// review so false positives from the plausibility checks are visible.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS save_review_log (
			id BIGSERIAL PRIMARY KEY,
			player_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			category TEXT NOT NULL,
			detail TEXT,
			payload JSONB,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_save_review_log_player
		ON save_review_log (player_id, created_at DESC);
	`)
	if err != nil {
		return err
	}

	// 3️⃣ global_settings table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS global_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// 4️⃣ player_telemetry table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS player_telemetry (
			id BIGSERIAL PRIMARY KEY,
			player_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	return nil
}

// LoadGame fetches a player's stored save. A missing row is not an error; a
// new player simply has no save yet.
func LoadGame(db *sql.DB, playerID string) (*StoredSave, error) {
	row := db.QueryRow(`
		SELECT player_id, display_name, COALESCE(project_name, ''), COALESCE(project_url, ''), state, created_at, last_saved_at
		FROM game_saves
		WHERE player_id = $1
	`, playerID)
	return scanStoredSave(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStoredSave(row rowScanner) (*StoredSave, error) {
	var save StoredSave
	var raw []byte
	err := row.Scan(&save.PlayerID, &save.DisplayName, &save.ProjectName, &save.ProjectURL, &raw, &save.CreatedAt, &save.LastSavedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &save.State); err != nil {
		return nil, err
	}
	save.State.Normalize()
	return &save, nil
}

// DeleteGame removes a save and reports whether one existed.
func DeleteGame(db *sql.DB, playerID string) (bool, error) {
	result, err := db.Exec(`DELETE FROM game_saves WHERE player_id = $1`, playerID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// upsertSave writes the full record inside the caller's transaction and
// reports whether a new row was created.
func upsertSave(tx *sql.Tx, save *StoredSave, now time.Time) (created bool, err error) {
	raw, err := json.Marshal(save.State)
	if err != nil {
		return false, err
	}
	err = tx.QueryRow(`
		INSERT INTO game_saves (
			player_id,
			display_name,
			project_name,
			project_url,
			state,
			money,
			lifetime_earned,
			total_clicks,
			best_combo,
			prestige_level,
			prestige_tokens,
			created_at,
			last_saved_at
		)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (player_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			project_name = EXCLUDED.project_name,
			project_url = EXCLUDED.project_url,
			state = EXCLUDED.state,
			money = EXCLUDED.money,
			lifetime_earned = EXCLUDED.lifetime_earned,
			total_clicks = EXCLUDED.total_clicks,
			best_combo = EXCLUDED.best_combo,
			prestige_level = EXCLUDED.prestige_level,
			prestige_tokens = EXCLUDED.prestige_tokens,
			last_saved_at = EXCLUDED.last_saved_at
		RETURNING (xmax = 0)
	`,
		save.PlayerID,
		save.DisplayName,
		save.ProjectName,
		save.ProjectURL,
		raw,
		save.State.Money,
		save.State.LifetimeEarned,
		save.State.TotalClicks,
		save.State.BestCombo,
		save.State.PrestigeLevel,
		save.State.PrestigeTokens,
		now,
	).Scan(&created)
	return created, err
}

// logRejectedSave records a rejected payload for review. Best effort; a
// logging failure never blocks the rejection itself.
func logRejectedSave(db *sql.DB, playerID string, rej *SaveRejection, state PlayerState) {
	payload, err := json.Marshal(state)
	if err != nil {
		payload = nil
	}
	if _, err := db.Exec(`
		INSERT INTO save_review_log (player_id, reason, category, detail, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, playerID, rej.Reason, rej.Category, rej.Detail, payload); err != nil {
		log.Println("save review log insert failed:", err)
	}
}

func pruneReviewLog(db *sql.DB, retention time.Duration) {
	cutoff := time.Now().UTC().Add(-retention)
	if _, err := db.Exec(`
		DELETE FROM save_review_log WHERE created_at < $1
	`, cutoff); err != nil {
		log.Println("review log prune failed:", err)
	}
}

func pruneTelemetry(db *sql.DB, retention time.Duration) {
	cutoff := time.Now().UTC().Add(-retention)
	if _, err := db.Exec(`
		DELETE FROM player_telemetry WHERE created_at < $1
	`, cutoff); err != nil {
		log.Println("telemetry prune failed:", err)
	}
}
