package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds runtime settings shared by the CLI and the web server.
type Config struct {
	Addr           string
	MaxUploadMB    int
	LayoutFile     string
	Debug          bool
	MetricsEnabled bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Addr:           getEnv("APPLECARD_ADDR", ":8080"),
		MaxUploadMB:    getEnvAsInt("APPLECARD_MAX_UPLOAD_MB", 32),
		LayoutFile:     getEnv("APPLECARD_LAYOUT_FILE", ""),
		Debug:          getEnvAsBool("APPLECARD_DEBUG", false),
		MetricsEnabled: getEnvAsBool("APPLECARD_METRICS", true),
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("APPLECARD_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
