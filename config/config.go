package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. Values may come from an
// optional YAML file; environment variables always take precedence so the
// service can run with nothing but env vars in a hosted deployment.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// AdminToken gates mutating endpoints. Empty means nothing authenticates.
	AdminToken string `yaml:"admin_token"`

	// AllowedOrigin is the CORS origin, "*" to allow any.
	AllowedOrigin string `yaml:"allowed_origin"`

	// CalendarID is the Google calendar events are read from and written to.
	CalendarID string `yaml:"calendar_id"`

	// RedisURL selects the Redis-backed media store when non-empty.
	RedisURL string `yaml:"redis_url"`

	// BlobToken authorizes uploads to the blob store.
	BlobToken string `yaml:"blob_token"`

	// GitHub settings for the PR-based upload path.
	GitHubToken  string `yaml:"github_token"`
	GitHubRepo   string `yaml:"github_repo"` // "owner/name"
	GitHubBranch string `yaml:"github_branch"`

	// Media limits.
	MaxFiles     int   `yaml:"max_files"`
	MaxFileSize  int64 `yaml:"max_file_size"`
	MaxTotalSize int64 `yaml:"max_total_size"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "0.0.0.0:8080",
		AllowedOrigin: "*",
		CalendarID:    "primary",
		GitHubBranch:  "main",
		MaxFiles:      10,
		MaxFileSize:   25 * 1024 * 1024,
		MaxTotalSize:  100 * 1024 * 1024,
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.AllowedOrigin == "" {
		c.AllowedOrigin = def.AllowedOrigin
	}
	if c.CalendarID == "" {
		c.CalendarID = def.CalendarID
	}
	if c.GitHubBranch == "" {
		c.GitHubBranch = def.GitHubBranch
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = def.MaxFiles
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = def.MaxFileSize
	}
	if c.MaxTotalSize <= 0 {
		c.MaxTotalSize = def.MaxTotalSize
	}
}

// Load reads configuration from the given YAML path (missing file is fine),
// then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		case errors.Is(err, fs.ErrNotExist):
			// No file: env-only configuration.
		default:
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Listen, "LISTEN_ADDR")
	setString(&c.AdminToken, "ADMIN_TOKEN")
	setString(&c.AllowedOrigin, "ALLOWED_ORIGIN")
	setString(&c.CalendarID, "GOOGLE_CALENDAR_ID")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.BlobToken, "BLOB_READ_WRITE_TOKEN")
	setString(&c.GitHubToken, "GITHUB_TOKEN")
	setString(&c.GitHubRepo, "GITHUB_REPO")
	setString(&c.GitHubBranch, "GITHUB_BRANCH")
	setInt(&c.MaxFiles, "MEDIA_MAX_FILES")
	setInt64(&c.MaxFileSize, "MEDIA_MAX_FILE_SIZE")
	setInt64(&c.MaxTotalSize, "MEDIA_MAX_TOTAL_SIZE")

	if port := os.Getenv("PORT"); port != "" {
		c.Listen = "0.0.0.0:" + port
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
