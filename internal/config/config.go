package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env               string
	ListenAddr        string
	DatabaseURL       string
	URLScanAPIKey     string
	URLScanBaseURL    string
	URLScanVisibility string
	PhishStatsBaseURL string
	BackendURL        string
	CountsFile        string
	RedisURL          string
	LogLevel          string
	HTTPTimeout       time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after merging a .env file from the working
// directory when present. The returned error lists missing optional settings;
// callers decide whether it is fatal.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:               getenv("APP_ENV", "development"),
		ListenAddr:        getenv("LISTEN_ADDR", listenFromPort()),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		URLScanAPIKey:     os.Getenv("URLSCAN_API_KEY"),
		URLScanBaseURL:    getenv("URLSCAN_BASE_URL", "https://urlscan.io"),
		URLScanVisibility: getenv("URLSCAN_VISIBILITY", "public"),
		PhishStatsBaseURL: getenv("PHISHSTATS_BASE_URL", "https://api.phishstats.info"),
		BackendURL:        os.Getenv("BACKEND_URL"),
		CountsFile:        getenv("COUNTS_FILE", defaultCountsFile()),
		RedisURL:          os.Getenv("REDIS_URL"),
		LogLevel:          getenv("LOG_LEVEL", "INFO"),
		HTTPTimeout:       getenvDuration("HTTP_TIMEOUT", 15*time.Second),
	}

	var errs []error
	if cfg.DatabaseURL == "" {
		// Not fatal: history falls back to memory.
		errs = append(errs, fmt.Errorf("DATABASE_URL not set"))
	}
	if cfg.URLScanAPIKey == "" && cfg.BackendURL == "" {
		errs = append(errs, fmt.Errorf("URLSCAN_API_KEY missing"))
	}
	return cfg, errors.Join(errs...)
}

func listenFromPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":8080"
}

func defaultCountsFile() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ".riskscan", "counts.json")
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
