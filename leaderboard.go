package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
)

/* ======================
   Leaderboard
   ====================== */

const (
	leaderboardDefaultLimit = 100
	leaderboardMaxLimit     = 100
)

// leaderboardScoreSQL is the ranking formula: prestige level dominates
// token count, which dominates lifetime earnings. The 0.01 earnings factor
// keeps raw currency from ever outranking a prestige level by itself.
const leaderboardScoreSQL = `prestige_level * 10000000 + prestige_tokens * 100000 + lifetime_earned * 0.01`

type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	DisplayName    string  `json:"displayName"`
	ProjectName    string  `json:"projectName,omitempty"`
	ProjectURL     string  `json:"projectUrl,omitempty"`
	LifetimeEarned float64 `json:"lifetimeEarned"`
	PrestigeLevel  int64   `json:"prestigeLevel"`
	PrestigeTokens int64   `json:"prestigeTokens"`
	BestCombo      int64   `json:"bestCombo"`
	TotalClicks    int64   `json:"totalClicks"`
}

type LeaderboardResponse struct {
	OK      bool               `json:"ok"`
	Error   string             `json:"error,omitempty"`
	Results []LeaderboardEntry `json:"results"`
}

// QueryLeaderboard returns the top saves ordered by score with dense
// 1-based ranks: tied scores share a rank and the next distinct score takes
// the next rank with no gap. Row order stays deterministic across ties via
// save time then player id. Limit is clamped to [1, 100].
func QueryLeaderboard(db *sql.DB, limit int) ([]LeaderboardEntry, error) {
	limit = clampLeaderboardLimit(limit)

	rows, err := db.Query(`
		SELECT
			display_name,
			COALESCE(project_name, ''),
			COALESCE(project_url, ''),
			lifetime_earned,
			prestige_level,
			prestige_tokens,
			best_combo,
			total_clicks,
			`+leaderboardScoreSQL+` AS score
		FROM game_saves
		ORDER BY score DESC, last_saved_at ASC, player_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []LeaderboardEntry{}
	scores := []float64{}
	for rows.Next() {
		var entry LeaderboardEntry
		var score float64
		if err := rows.Scan(
			&entry.DisplayName,
			&entry.ProjectName,
			&entry.ProjectURL,
			&entry.LifetimeEarned,
			&entry.PrestigeLevel,
			&entry.PrestigeTokens,
			&entry.BestCombo,
			&entry.TotalClicks,
			&score,
		); err != nil {
			continue
		}
		results = append(results, entry)
		scores = append(scores, score)
	}
	for i, rank := range denseRanks(scores) {
		results[i].Rank = rank
	}
	return results, rows.Err()
}

// denseRanks assigns 1-based ranks to a score list already sorted
// descending. Equal scores share a rank; the next distinct score takes the
// next rank, so the sequence never has gaps.
func denseRanks(scores []float64) []int {
	ranks := make([]int, len(scores))
	for i := range scores {
		switch {
		case i == 0:
			ranks[i] = 1
		case scores[i] == scores[i-1]:
			ranks[i] = ranks[i-1]
		default:
			ranks[i] = ranks[i-1] + 1
		}
	}
	return ranks
}

// LeaderboardScore mirrors the SQL formula for in-process callers (tests,
// simulation assertions). The two must agree exactly.
func LeaderboardScore(prestigeLevel, prestigeTokens int64, lifetimeEarned float64) float64 {
	return float64(prestigeLevel)*10000000 + float64(prestigeTokens)*100000 + lifetimeEarned*0.01
}

func clampLeaderboardLimit(limit int) int {
	if limit < 1 {
		return leaderboardDefaultLimit
	}
	if limit > leaderboardMaxLimit {
		return leaderboardMaxLimit
	}
	return limit
}

func leaderboardHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !featureFlags.Leaderboard {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		limit := leaderboardDefaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}

		results, err := QueryLeaderboard(db, limit)
		if err != nil {
			json.NewEncoder(w).Encode(LeaderboardResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		json.NewEncoder(w).Encode(LeaderboardResponse{OK: true, Results: results})
	}
}
