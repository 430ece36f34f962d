package main

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

/* ======================
   HTTP Handlers
   ====================== */

type SimpleResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type SaveResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Category string `json:"category,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Accepted bool   `json:"accepted"`
	Created  bool   `json:"created,omitempty"`
}

type LoadResponse struct {
	OK          bool         `json:"ok"`
	Error       string       `json:"error,omitempty"`
	Found       bool         `json:"found"`
	DisplayName string       `json:"displayName,omitempty"`
	ProjectName string       `json:"projectName,omitempty"`
	ProjectURL  string       `json:"projectUrl,omitempty"`
	PlayerState *PlayerState `json:"playerState,omitempty"`
	LastSavedAt int64        `json:"lastSavedAt,omitempty"`
}

type EventsResponse struct {
	OK         bool    `json:"ok"`
	Active     bool    `json:"active"`
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name,omitempty"`
	Multiplier float64 `json:"multiplier"`
}

type AdminDeleteRequest struct {
	PlayerID string `json:"playerId"`
}

type AdminDeleteResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Removed bool   `json:"removed"`
}

type ReviewLogEntry struct {
	ID        int64           `json:"id"`
	PlayerID  string          `json:"playerId"`
	Reason    string          `json:"reason"`
	Category  string          `json:"category"`
	Detail    string          `json:"detail,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ReviewLogResponse struct {
	OK      bool             `json:"ok"`
	Error   string           `json:"error,omitempty"`
	Entries []ReviewLogEntry `json:"entries"`
}

type AdminSettingsResponse struct {
	OK       bool            `json:"ok"`
	Error    string          `json:"error,omitempty"`
	Settings RuntimeSettings `json:"settings"`
}

type TelemetryEventRequest struct {
	PlayerID  string          `json:"playerId"`
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "DATABASE_UNAVAILABLE"})
			return
		}
		json.NewEncoder(w).Encode(SimpleResponse{OK: true})
	}
}

func saveHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SaveResponse{OK: false, Error: "INVALID_JSON"})
			return
		}
		if strings.TrimSpace(req.PlayerID) == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SaveResponse{OK: false, Error: "EMPTY_PLAYER_ID"})
			return
		}

		verdict, err := CommitSave(db, &req, time.Now().UTC(), GetRuntimeSettings().Validator)
		if err != nil {
			log.Println("save commit failed:", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(SaveResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		if verdict.Rejection != nil {
			json.NewEncoder(w).Encode(SaveResponse{
				OK:       false,
				Error:    verdict.Rejection.Reason,
				Category: verdict.Rejection.Category,
				Detail:   verdict.Rejection.Detail,
			})
			return
		}
		json.NewEncoder(w).Encode(SaveResponse{OK: true, Accepted: true, Created: verdict.Created})
	}
}

func loadHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		playerID := strings.TrimSpace(r.URL.Query().Get("playerId"))
		if playerID == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "EMPTY_PLAYER_ID"})
			return
		}

		save, err := LoadGame(db, playerID)
		if err != nil {
			log.Println("load failed:", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		if save == nil {
			// A new player has no save yet; not an error.
			json.NewEncoder(w).Encode(LoadResponse{OK: true, Found: false})
			return
		}
		json.NewEncoder(w).Encode(LoadResponse{
			OK:          true,
			Found:       true,
			DisplayName: save.DisplayName,
			ProjectName: save.ProjectName,
			ProjectURL:  save.ProjectURL,
			PlayerState: &save.State,
			LastSavedAt: save.LastSavedAt.UnixMilli(),
		})
	}
}

func eventsHandler(events EventProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		now := time.Now().UTC()
		if ev, ok := events.ActiveEvent(now); ok {
			json.NewEncoder(w).Encode(EventsResponse{OK: true, Active: true, ID: ev.ID, Name: ev.Name, Multiplier: ev.Multiplier})
			return
		}
		json.NewEncoder(w).Encode(EventsResponse{OK: true, Active: false, Multiplier: 1})
	}
}

func telemetryHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !featureFlags.Telemetry {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req TelemetryEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.EventType == "" || strings.TrimSpace(req.PlayerID) == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		_, _ = db.Exec(`
			INSERT INTO player_telemetry (player_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, NOW())
		`, strings.TrimSpace(req.PlayerID), req.EventType, req.Payload)

		w.WriteHeader(http.StatusNoContent)
	}
}

/* ----- admin ----- */

// requireAdmin gates the administrative surface on the X-Admin-Key header.
// With no ADMIN_KEY configured the surface is closed, not open.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	expected := strings.TrimSpace(os.Getenv("ADMIN_KEY"))
	if expected == "" {
		w.WriteHeader(http.StatusNotFound)
		return false
	}
	provided := strings.TrimSpace(r.Header.Get("X-Admin-Key"))
	if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "FORBIDDEN"})
		return false
	}
	return true
}

func adminDeleteHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !requireAdmin(w, r) {
			return
		}

		var req AdminDeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.PlayerID) == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "EMPTY_PLAYER_ID"})
			return
		}

		removed, err := DeleteGame(db, strings.TrimSpace(req.PlayerID))
		if err != nil {
			log.Println("delete failed:", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		json.NewEncoder(w).Encode(AdminDeleteResponse{OK: true, Removed: removed})
	}
}

func adminReviewLogHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !requireAdmin(w, r) {
			return
		}

		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}
		playerID := strings.TrimSpace(r.URL.Query().Get("playerId"))

		query := `
			SELECT id, player_id, reason, category, COALESCE(detail, ''), payload, created_at
			FROM save_review_log
		`
		args := []interface{}{}
		if playerID != "" {
			query += ` WHERE player_id = $1 ORDER BY created_at DESC LIMIT $2`
			args = append(args, playerID, limit)
		} else {
			query += ` ORDER BY created_at DESC LIMIT $1`
			args = append(args, limit)
		}

		rows, err := db.Query(query, args...)
		if err != nil {
			json.NewEncoder(w).Encode(ReviewLogResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		defer rows.Close()

		entries := []ReviewLogEntry{}
		for rows.Next() {
			var entry ReviewLogEntry
			var payload sql.NullString
			if err := rows.Scan(&entry.ID, &entry.PlayerID, &entry.Reason, &entry.Category, &entry.Detail, &payload, &entry.CreatedAt); err != nil {
				continue
			}
			if payload.Valid {
				entry.Payload = json.RawMessage(payload.String)
			}
			entries = append(entries, entry)
		}
		json.NewEncoder(w).Encode(ReviewLogResponse{OK: true, Entries: entries})
	}
}

func adminSettingsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(AdminSettingsResponse{OK: true, Settings: GetRuntimeSettings()})
		case http.MethodPost:
			var updates map[string]string
			if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INVALID_JSON"})
				return
			}
			settings, err := UpdateRuntimeSettings(db, updates)
			if err != nil {
				log.Println("settings update failed:", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: "INTERNAL_ERROR"})
				return
			}
			json.NewEncoder(w).Encode(AdminSettingsResponse{OK: true, Settings: settings})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}
