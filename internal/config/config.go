// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/parqueo/backend/internal/domain"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// CapacityGroups are the admission pools. Defaults: "autos" (sedan + SUV,
	// ceiling 30, override with CAPACITY_AUTOS) and "motos" (motorcycle,
	// ceiling 15, override with CAPACITY_MOTOS).
	CapacityGroups []domain.CapacityGroup

	// EmergencyPerMinuteRate is charged when a trip has no resolvable tariff
	// at exit time — neither its snapshot nor any active tariff for its
	// category. Documented fallback, never silently zero.
	// Defaults to 100. Override with EMERGENCY_RATE_PER_MINUTE.
	EmergencyPerMinuteRate float64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// describing the first malformed numeric override.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	autos, err := getEnvInt("CAPACITY_AUTOS", 30)
	if err != nil {
		return Config{}, err
	}
	motos, err := getEnvInt("CAPACITY_MOTOS", 15)
	if err != nil {
		return Config{}, err
	}
	cfg.CapacityGroups = []domain.CapacityGroup{
		{Name: "autos", CategoryIDs: []int64{domain.CategorySedan, domain.CategorySUV}, Ceiling: autos},
		{Name: "motos", CategoryIDs: []int64{domain.CategoryMotorcycle}, Ceiling: motos},
	}

	cfg.EmergencyPerMinuteRate, err = getEnvFloat("EMERGENCY_RATE_PER_MINUTE", 100)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer environment variable, returning fallback when unset.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// getEnvFloat parses a float environment variable, returning fallback when unset.
func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
