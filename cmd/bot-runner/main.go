package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// bot-runner plays a short session against a running server: load the save,
// click and buy like a casual player, push the result through /save, then
// print the leaderboard. Useful for smoke-testing the validator end to end
// with traffic shaped like a real client.

type BotIdentity struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	ProjectName string `json:"projectName,omitempty"`
	ProjectURL  string `json:"projectUrl,omitempty"`
}

type PlayerState struct {
	Money          float64                  `json:"money"`
	LifetimeEarned float64                  `json:"lifetimeEarned"`
	AllTimeEarned  float64                  `json:"allTimeEarned"`
	ClickPower     float64                  `json:"clickPower"`
	TotalClicks    int64                    `json:"totalClicks"`
	Buildings      map[string]int           `json:"buildings"`
	Upgrades       []string                 `json:"upgrades"`
	Challenges     []map[string]interface{} `json:"challenges"`
	Achievements   []map[string]interface{} `json:"achievements"`
	PrestigeLevel  int64                    `json:"prestigeLevel"`
	PrestigeTokens int64                    `json:"prestigeTokens"`
	FrenzyCount    int64                    `json:"frenzyActivations"`
	GoldenClicks   int64                    `json:"goldenBonusClicks"`
	BestCombo      int64                    `json:"bestCombo"`
}

type LoadResponse struct {
	OK          bool         `json:"ok"`
	Found       bool         `json:"found"`
	PlayerState *PlayerState `json:"playerState"`
}

type SaveRequest struct {
	PlayerID    string      `json:"playerId"`
	DisplayName string      `json:"displayName"`
	ProjectName string      `json:"projectName,omitempty"`
	ProjectURL  string      `json:"projectUrl,omitempty"`
	State       PlayerState `json:"playerState"`
}

type SaveResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Category string `json:"category,omitempty"`
	Accepted bool   `json:"accepted"`
	Created  bool   `json:"created,omitempty"`
}

type LeaderboardResponse struct {
	OK      bool `json:"ok"`
	Results []struct {
		Rank           int     `json:"rank"`
		DisplayName    string  `json:"displayName"`
		LifetimeEarned float64 `json:"lifetimeEarned"`
		PrestigeLevel  int64   `json:"prestigeLevel"`
	} `json:"results"`
}

func main() {
	baseURL := strings.TrimSpace(os.Getenv("API_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	duration := time.Duration(parseEnvInt("BOT_DURATION_SECONDS", 30)) * time.Second

	identity, err := loadIdentity()
	if err != nil {
		log.Fatal("failed to load bot identity:", err)
	}
	log.Println("playing as", identity.DisplayName, "("+identity.PlayerID+")")

	client := &http.Client{Timeout: 15 * time.Second}

	state, err := loadGame(client, baseURL, identity.PlayerID)
	if err != nil {
		log.Fatal("load failed:", err)
	}
	log.Println("starting money:", humanize.CommafWithDigits(state.Money, 2))

	playSession(state, duration)

	verdict, err := saveGame(client, baseURL, identity, state)
	if err != nil {
		log.Fatal("save failed:", err)
	}
	if !verdict.Accepted {
		log.Printf("save rejected: %s (%s)", verdict.Error, verdict.Category)
		os.Exit(1)
	}
	log.Printf("saved: money=%s clicks=%s created=%v",
		humanize.CommafWithDigits(state.Money, 2),
		humanize.Comma(state.TotalClicks),
		verdict.Created)

	printLeaderboard(client, baseURL)
}

// playSession mutates the state the way the real client would: paced
// clicks with jitter, greedy building purchases. Intervals stay far above
// the auto-click thresholds so the save passes the rate checks.
func playSession(state *PlayerState, duration time.Duration) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if state.Buildings == nil {
		state.Buildings = map[string]int{}
	}
	if state.ClickPower <= 0 {
		state.ClickPower = 1
	}

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		earnings := state.ClickPower * (1 + float64(state.PrestigeTokens)*0.1)
		state.Money += earnings
		state.LifetimeEarned += earnings
		state.AllTimeEarned += earnings
		state.TotalClicks++

		maybeBuy(state)

		time.Sleep(time.Duration(200+rng.Intn(250)) * time.Millisecond)
	}
}

var buildingCosts = []struct {
	Key  string
	Cost float64
}{
	{"cursor", 15},
	{"grandma", 100},
	{"farm", 1100},
	{"mine", 12000},
}

func maybeBuy(state *PlayerState) {
	for _, b := range buildingCosts {
		owned := state.Buildings[b.Key]
		cost := b.Cost
		for i := 0; i < owned; i++ {
			cost *= 1.15
		}
		if state.Money >= cost {
			state.Money -= cost
			state.Buildings[b.Key] = owned + 1
			return
		}
	}
}

func loadIdentity() (BotIdentity, error) {
	path := strings.TrimSpace(os.Getenv("BOT_IDENTITY_PATH"))
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return BotIdentity{}, err
		}
		path = filepath.Join(home, ".ship-code-bot.json")
	}

	if data, err := os.ReadFile(path); err == nil {
		var identity BotIdentity
		if err := json.Unmarshal(data, &identity); err == nil && identity.PlayerID != "" {
			return identity, nil
		}
	}

	identity := BotIdentity{
		PlayerID:    uuid.NewString(),
		DisplayName: "bot-" + uuid.NewString()[:8],
	}
	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return BotIdentity{}, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return BotIdentity{}, err
	}
	return identity, nil
}

func loadGame(client *http.Client, baseURL, playerID string) (*PlayerState, error) {
	resp, err := client.Get(baseURL + "/load?playerId=" + playerID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var loaded LoadResponse
	if err := json.NewDecoder(resp.Body).Decode(&loaded); err != nil {
		return nil, err
	}
	if loaded.Found && loaded.PlayerState != nil {
		return loaded.PlayerState, nil
	}
	return &PlayerState{ClickPower: 1, Buildings: map[string]int{}, Upgrades: []string{}}, nil
}

func saveGame(client *http.Client, baseURL string, identity BotIdentity, state *PlayerState) (SaveResponse, error) {
	body, err := json.Marshal(SaveRequest{
		PlayerID:    identity.PlayerID,
		DisplayName: identity.DisplayName,
		ProjectName: identity.ProjectName,
		ProjectURL:  identity.ProjectURL,
		State:       *state,
	})
	if err != nil {
		return SaveResponse{}, err
	}

	resp, err := client.Post(baseURL+"/save", "application/json", bytes.NewReader(body))
	if err != nil {
		return SaveResponse{}, err
	}
	defer resp.Body.Close()

	var verdict SaveResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return SaveResponse{}, err
	}
	return verdict, nil
}

func printLeaderboard(client *http.Client, baseURL string) {
	resp, err := client.Get(baseURL + "/leaderboard?limit=10")
	if err != nil {
		log.Println("leaderboard fetch failed:", err)
		return
	}
	defer resp.Body.Close()

	var board LeaderboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		log.Println("leaderboard decode failed:", err)
		return
	}

	fmt.Println("--- leaderboard ---")
	for _, entry := range board.Results {
		fmt.Printf("%2d. %-20s P%d  $%s\n",
			entry.Rank,
			entry.DisplayName,
			entry.PrestigeLevel,
			humanize.CommafWithDigits(entry.LifetimeEarned, 0))
	}
}

func parseEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
