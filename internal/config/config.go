package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string   `json:"serverAddress"`
	DatabasePath  string   `json:"databasePath"`
	DatabaseURL   string   `json:"databaseUrl"`
	DataDir       string   `json:"dataDir"`
	MediaRoots    []string `json:"mediaRoots"`
	Uploader      Uploader `json:"uploader"`
	Security      Security `json:"security"`
}

// Uploader configuration for the sync engine
type Uploader struct {
	// Manual selections larger than SpoolThreshold are handed off
	// through a temp file instead of inline, to keep trigger payloads
	// bounded.
	SpoolThreshold int    `json:"spoolThreshold"`
	TempDir        string `json:"tempDir"`
}

// Security configuration
type Security struct {
	APIKey       string `json:"apiKey"`
	APIKeyHeader string `json:"apiKeyHeader"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// SettingsPath is where the user settings store lives
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "settings.json")
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5600",
		DatabasePath:  "teledrop.db",
		DataDir:       "./data",
		MediaRoots:    []string{},
		Uploader: Uploader{
			SpoolThreshold: 200,
		},
		Security: Security{
			APIKey:       "CHANGE_THIS_TO_A_SECURE_API_KEY_AT_LEAST_32_CHARS",
			APIKeyHeader: "X-API-Key",
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if roots := os.Getenv("MEDIA_ROOTS"); roots != "" {
		cfg.MediaRoots = splitList(roots)
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Security.APIKey = apiKey
	}
	if threshold := os.Getenv("SPOOL_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil && n > 0 {
			cfg.Uploader.SpoolThreshold = n
		}
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = absDataDir

	if cfg.Uploader.TempDir == "" {
		cfg.Uploader.TempDir = filepath.Join(cfg.DataDir, "tmp")
	}
	if err := os.MkdirAll(cfg.Uploader.TempDir, 0755); err != nil {
		return nil, err
	}

	// Make media roots absolute
	for i, root := range cfg.MediaRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		cfg.MediaRoots[i] = abs
	}

	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
