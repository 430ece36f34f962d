package main

import (
	"log"
	"sync"
	"time"
)

/* ======================
   Session Notifications
   ====================== */

const (
	NotifyKindCombo       = "combo"
	NotifyKindMilestone   = "milestone"
	NotifyKindAchievement = "achievement"
	NotifyKindChallenge   = "challenge"
	NotifyKindFrenzy      = "frenzy"
	NotifyKindGolden      = "golden"
	NotifyKindPrestige    = "prestige"
	NotifyKindDetector    = "detector"
)

type Notification struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives session events as they happen. Implementations must not
// call back into the session; they run under its lock.
type Notifier interface {
	Notify(n Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

func NopNotifier() Notifier {
	return nopNotifier{}
}

type logNotifier struct {
	prefix string
}

// LogNotifier writes notifications to the process log, prefixed so several
// concurrent sessions stay distinguishable.
func LogNotifier(prefix string) Notifier {
	return logNotifier{prefix: prefix}
}

func (n logNotifier) Notify(note Notification) {
	log.Printf("[%s] %s: %s", n.prefix, note.Kind, note.Message)
}

// BufferNotifier keeps the most recent notifications for later inspection.
// Used by the simulation endpoint and the bot runner.
type BufferNotifier struct {
	mu    sync.Mutex
	limit int
	notes []Notification
}

func NewBufferNotifier(limit int) *BufferNotifier {
	if limit <= 0 {
		limit = 100
	}
	return &BufferNotifier{limit: limit}
}

func (b *BufferNotifier) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append(b.notes, n)
	if len(b.notes) > b.limit {
		b.notes = b.notes[len(b.notes)-b.limit:]
	}
}

func (b *BufferNotifier) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notes
	b.notes = nil
	return out
}

func (b *BufferNotifier) CountKind(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.notes {
		if n.Kind == kind {
			total++
		}
	}
	return total
}

// moneyMilestones are the one-time lifetime-earnings toasts. They key off
// lifetime earned, which never resets, so each fires at most once per player.
var moneyMilestones = []struct {
	Amount  float64
	Message string
}{
	{100, "First coffee money!"},
	{1000, "Domain name acquired!"},
	{10000, "Ramen profitable!"},
	{100000, "Quit your day job money!"},
	{1000000, "First million!"},
	{10000000, "Living the laptop lifestyle!"},
	{100000000, "Buy a sports car with revenue?"},
	{1000000000, "Unicorn territory! (But bootstrapped)"},
}
