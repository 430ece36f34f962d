package main

import "testing"

func TestLeaderboardScoreOrdering(t *testing.T) {
	// Tokens banked without spending a level on them still dominate raw
	// earnings: B at level 0 with 5 tokens and 1e12 earned must outrank A
	// at level 1 with nothing banked and 2e9 earned.
	scoreA := LeaderboardScore(1, 0, 2e9)
	scoreB := LeaderboardScore(0, 5, 1e12)
	if scoreB <= scoreA {
		t.Fatalf("score(B)=%v must exceed score(A)=%v", scoreB, scoreA)
	}

	// A prestige level beats any single token.
	if LeaderboardScore(1, 0, 0) <= LeaderboardScore(0, 1, 0) {
		t.Fatal("one level must outrank one token")
	}

	// A token beats earnings below 1e7 (0.01 factor).
	if LeaderboardScore(0, 1, 0) <= LeaderboardScore(0, 0, 9e6) {
		t.Fatal("one token must outrank 9e6 earned")
	}
}

func TestLeaderboardScoreComponents(t *testing.T) {
	if got := LeaderboardScore(2, 3, 100); got != 2*1e7+3*1e5+1 {
		t.Fatalf("score = %v, want %v", got, 2*1e7+3*1e5+1.0)
	}
	if got := LeaderboardScore(0, 0, 0); got != 0 {
		t.Fatalf("zero score = %v", got)
	}
}

func TestDenseRanks(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		want   []int
	}{
		{"empty", []float64{}, []int{}},
		{"single", []float64{100}, []int{1}},
		{"distinct", []float64{300, 200, 100}, []int{1, 2, 3}},
		{"ties share rank without gaps", []float64{100, 100, 90, 90, 80}, []int{1, 1, 2, 2, 3}},
		{"all tied", []float64{50, 50, 50}, []int{1, 1, 1}},
		{"tie at the top", []float64{200, 200, 100}, []int{1, 1, 2}},
	}
	for _, c := range cases {
		got := denseRanks(c.scores)
		if len(got) != len(c.want) {
			t.Errorf("%s: rank count = %d, want %d", c.name, len(got), len(c.want))
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s: ranks = %v, want %v", c.name, got, c.want)
				break
			}
		}
	}
}

func TestClampLeaderboardLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 100},
		{-5, 100},
		{1, 1},
		{50, 50},
		{100, 100},
		{101, 100},
		{100000, 100},
	}
	for _, c := range cases {
		if got := clampLeaderboardLimit(c.in); got != c.want {
			t.Errorf("clampLeaderboardLimit(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
