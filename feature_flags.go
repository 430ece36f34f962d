package main

import "os"

type FeatureFlags struct {
	Telemetry   bool
	Leaderboard bool
	Simulation  bool
}

var featureFlags = loadFeatureFlags()

func loadFeatureFlags() FeatureFlags {
	return FeatureFlags{
		Telemetry:   envFlag("ENABLE_TELEMETRY", true),
		Leaderboard: envFlag("ENABLE_LEADERBOARD", true),
		Simulation:  envFlag("ENABLE_SIMULATION", true),
	}
}

func envFlag(name string, fallback bool) bool {
	val := os.Getenv(name)
	if val == "" {
		return fallback
	}
	return val == "true" || val == "1" || val == "yes"
}
