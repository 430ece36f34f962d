package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
)

/* ======================
   main()
   ====================== */

func main() {
	// Environment
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	log.Println("App environment:", env)

	devMode := os.Getenv("DEV_MODE") == "true"
	if devMode {
		log.Println("⚠️  DEV MODE ENABLED")
	}

	tuning, err := LoadTuning(os.Getenv("TUNING_PATH"))
	if err != nil {
		log.Fatal("failed to load tuning:", err)
	}
	SeedRuntimeSettings(tuning)

	if os.Getenv("ADMIN_KEY") == "" {
		log.Println("ADMIN_KEY not set; admin endpoints disabled")
	}

	// Database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("failed to open database:", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database:", err)
	}
	log.Println("Connected to PostgreSQL")

	if err := ensureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}
	if err := LoadRuntimeSettings(db); err != nil {
		log.Println("Failed to load runtime settings:", err)
	}

	startPruners(db)

	// HTTP server
	mux := http.NewServeMux()
	registerRoutes(mux, db, tuning)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := "0.0.0.0:" + port
	log.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("server failed:", err)
	}
}

/* ======================
   Routes
   ====================== */

func registerRoutes(mux *http.ServeMux, db *sql.DB, tuning Tuning) {
	events := NewEventProvider()

	mux.HandleFunc("/health", healthHandler(db))
	mux.HandleFunc("/save", saveHandler(db))
	mux.HandleFunc("/load", loadHandler(db))
	mux.HandleFunc("/leaderboard", leaderboardHandler(db))
	mux.HandleFunc("/events", eventsHandler(events))
	mux.HandleFunc("/telemetry", telemetryHandler(db))

	mux.HandleFunc("/admin/delete", adminDeleteHandler(db))
	mux.HandleFunc("/admin/review-log", adminReviewLogHandler(db))
	mux.HandleFunc("/admin/settings", adminSettingsHandler(db))
	mux.HandleFunc("/admin/simulation", adminSimulationHandler(tuning))
}

/* ======================
   Background Workers
   ====================== */

func startPruners(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			pruneReviewLog(db, ReviewLogRetention())
			pruneTelemetry(db, TelemetryRetention())
		}
	}()
}
