package config

import (
	"fmt"
	"os"
	"time"
)

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return ":8080"
	}
	return port
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return d, nil
}

// TickInterval is how long one unit of a game's time limit lasts.
func TickInterval() (time.Duration, error) {
	return durationEnv("TICK_INTERVAL", time.Second)
}

// SessionTTL is how long an idle or finished game is kept around.
func SessionTTL() (time.Duration, error) {
	return durationEnv("SESSION_TTL", 30*time.Minute)
}
