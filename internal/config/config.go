package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alorle/iptv-zapper/internal/logging"
)

// Favorites backends
const (
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	// Playlist acquisition settings
	Playlist struct {
		URL                string        `yaml:"url"`
		CacheFile          string        `yaml:"cache_file"`
		BundlePath         string        `yaml:"bundle_path"`
		DefaultGroup       string        `yaml:"default_group"`
		FetchTimeout       time.Duration `yaml:"fetch_timeout"`
		UserAgent          string        `yaml:"user_agent"`
		InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
		MaxRedirects       int           `yaml:"max_redirects"`
	} `yaml:"playlist"`

	// Favorites persistence
	Favorites struct {
		Backend  string `yaml:"backend"`
		DBPath   string `yaml:"db_path"`
		RedisURL string `yaml:"redis_url"`
		Label    string `yaml:"label"`
	} `yaml:"favorites"`

	// External player. An empty command selects the headless sink.
	Playback struct {
		Command   string   `yaml:"command"`
		Args      []string `yaml:"args"`
		UserAgent string   `yaml:"user_agent"`
	} `yaml:"playback"`

	Remote struct {
		ExitWindow time.Duration `yaml:"exit_window"`
	} `yaml:"remote"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Resilience ResilienceConfig `yaml:"resilience"`
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTP.Address == "" {
		errors = append(errors, "HTTP address is required")
	}
	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}

	if c.Playlist.URL == "" {
		errors = append(errors, "Playlist URL is required")
	} else if !strings.HasPrefix(c.Playlist.URL, "http://") && !strings.HasPrefix(c.Playlist.URL, "https://") {
		errors = append(errors, "Playlist URL must use http or https")
	}
	if c.Playlist.CacheFile == "" {
		errors = append(errors, "Playlist cache file is required")
	}
	if c.Playlist.DefaultGroup == "" {
		errors = append(errors, "Playlist default group is required")
	}
	if c.Playlist.FetchTimeout <= 0 {
		errors = append(errors, "Playlist fetch timeout must be positive")
	}
	if c.Playlist.MaxRedirects < 0 {
		errors = append(errors, "Playlist max redirects must not be negative")
	}

	switch c.Favorites.Backend {
	case BackendBolt:
		if c.Favorites.DBPath == "" {
			errors = append(errors, "Favorites db path is required for the bolt backend")
		}
	case BackendRedis:
		if c.Favorites.RedisURL == "" {
			errors = append(errors, "Favorites redis URL is required for the redis backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("Favorites backend must be one of: %s, %s", BackendBolt, BackendRedis))
	}
	if strings.TrimSpace(c.Favorites.Label) == "" {
		errors = append(errors, "Favorites label is required")
	}

	if c.Remote.ExitWindow <= 0 {
		errors = append(errors, "Remote exit window must be positive")
	}

	if !logging.ValidLevel(c.Log.Level) {
		errors = append(errors, "Log level must be one of: DEBUG, INFO, WARN, ERROR")
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		errors = append(errors, "Log format must be json or text")
	}

	if err := c.Resilience.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("Resilience config: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.HTTP.Address = "127.0.0.1"
	cfg.HTTP.Port = "8080"

	cfg.Playlist.URL = "https://tinyurl.com/yuwjrwbx"
	// The revision suffix lets a new release ignore a stale cache.
	cfg.Playlist.CacheFile = "playlist_cache_v3.m3u"
	cfg.Playlist.BundlePath = ""
	cfg.Playlist.DefaultGroup = "Other"
	cfg.Playlist.FetchTimeout = 30 * time.Second
	cfg.Playlist.UserAgent = "VLC/3.0.18 LibVLC/3.0.18"
	cfg.Playlist.InsecureSkipVerify = true
	cfg.Playlist.MaxRedirects = 10

	cfg.Favorites.Backend = BackendBolt
	cfg.Favorites.DBPath = "iptv-zapper.db"
	cfg.Favorites.Label = "⭐ FAVORITES"

	cfg.Playback.Args = []string{"--http-user-agent={user_agent}", "{url}"}
	cfg.Playback.UserAgent = "VLC/3.0.18 LibVLC/3.0.18"

	cfg.Remote.ExitWindow = 2 * time.Second

	cfg.Log.Level = "INFO"
	cfg.Log.Format = "json"

	cfg.Resilience = *DefaultResilienceConfig()

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if present) and applies environment variable overrides
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	p := &envParser{}

	p.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	p.parseString("HTTP_PORT", &cfg.HTTP.Port)

	p.parseString("PLAYLIST_URL", &cfg.Playlist.URL)
	p.parsePath("PLAYLIST_CACHE_FILE", &cfg.Playlist.CacheFile)
	p.parsePath("PLAYLIST_BUNDLE_PATH", &cfg.Playlist.BundlePath)
	p.parseString("PLAYLIST_DEFAULT_GROUP", &cfg.Playlist.DefaultGroup)
	p.parseDuration("PLAYLIST_FETCH_TIMEOUT", &cfg.Playlist.FetchTimeout)
	p.parseString("PLAYLIST_USER_AGENT", &cfg.Playlist.UserAgent)
	p.parseBool("PLAYLIST_INSECURE_SKIP_VERIFY", &cfg.Playlist.InsecureSkipVerify)
	p.parseInt("PLAYLIST_MAX_REDIRECTS", &cfg.Playlist.MaxRedirects)

	p.parseEnum("FAVORITES_BACKEND", &cfg.Favorites.Backend, map[string]bool{
		BackendBolt:  true,
		BackendRedis: true,
	})
	p.parsePath("DB_PATH", &cfg.Favorites.DBPath)
	p.parseString("REDIS_URL", &cfg.Favorites.RedisURL)
	p.parseString("FAVORITES_LABEL", &cfg.Favorites.Label)

	p.parseString("PLAYER_COMMAND", &cfg.Playback.Command)
	p.parseString("PLAYER_USER_AGENT", &cfg.Playback.UserAgent)

	p.parseDuration("REMOTE_EXIT_WINDOW", &cfg.Remote.ExitWindow)

	p.parseEnum("LOG_LEVEL", &cfg.Log.Level, map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	})
	p.parseEnum("LOG_FORMAT", &cfg.Log.Format, map[string]bool{
		"json": true,
		"text": true,
	})

	p.parseInt("CB_FAILURE_THRESHOLD", &cfg.Resilience.CBFailureThreshold)
	p.parseDuration("CB_TIMEOUT", &cfg.Resilience.CBTimeout)
	p.parseInt("CB_HALF_OPEN_REQUESTS", &cfg.Resilience.CBHalfOpenRequests)

	return p.err()
}

// resolvePath normalizes a file path to an absolute one
func resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return abs, nil
}
