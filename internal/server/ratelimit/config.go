package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults used when neither the caller nor the environment sets a value.
const (
	DefaultRPS             = 5.0
	DefaultBurst           = 10
	DefaultCleanupInterval = 5 * time.Minute
	DefaultIdleTTL         = time.Hour
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// RPS and Burst apply to every limited route.
	RPS   float64
	Burst int
	// EditRPS and EditBurst apply to POST routes ending in /edits, which may
	// call the generator. Zero falls back to RPS and Burst.
	EditRPS         float64
	EditBurst       int
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
}

// LoadConfig builds a configuration from the given base rate and the
// RATE_LIMIT_* environment variables.
func LoadConfig(rps float64, burst int) *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}
	if rps <= 0 {
		rps = DefaultRPS
	}
	if burst <= 0 {
		burst = DefaultBurst
	}

	editRPS := getEnvFloat("RATE_LIMIT_EDIT_RPS", rps/5)
	editBurst := getEnvInt("RATE_LIMIT_EDIT_BURST", max(1, burst/5))

	return &Config{
		Enabled:         true,
		RPS:             rps,
		Burst:           burst,
		EditRPS:         editRPS,
		EditBurst:       editBurst,
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", DefaultCleanupInterval),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", DefaultIdleTTL),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
