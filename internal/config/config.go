// Package config handles application configuration from environment
// variables and an optional YAML sources file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source types.
const (
	SourceNewsAPI = "newsapi"
	SourceRSS     = "rss"
)

// DefaultNewsAPIURL is the top-headlines endpoint used when a newsapi
// source does not set its own URL.
const DefaultNewsAPIURL = "https://newsapi.org/v2/top-headlines"

// Source is one place articles are fetched from.
type Source struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	URL      string `yaml:"url,omitempty"`
	Category string `yaml:"category,omitempty"`
	Country  string `yaml:"country,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	HTTPAddr         string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64
	RefreshInterval  time.Duration
	NotifyInterval   time.Duration
	SearchDebounce   time.Duration
	NotifyQueueLimit int
	Sources          []Source
}

// Load reads configuration from environment variables.
// Sources come from the YAML file named by SOURCES_FILE, or default to a
// single NewsAPI top-headlines source when NEWSAPI_KEY is set.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		HTTPAddr:         os.Getenv("HTTP_ADDR"),
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/news.db"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RefreshInterval, err = durationEnv("REFRESH_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.NotifyInterval, err = durationEnv("NOTIFY_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = durationEnv("SEARCH_DEBOUNCE", 300*time.Millisecond); err != nil {
		return nil, err
	}

	if raw := os.Getenv("NOTIFY_MAX_QUEUE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid NOTIFY_MAX_QUEUE %q: must be a non-negative integer", raw)
		}
		cfg.NotifyQueueLimit = n
	}

	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, uid)
		}
	}

	sources, err := loadSources()
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources

	return cfg, nil
}

func loadSources() ([]Source, error) {
	apiKey := os.Getenv("NEWSAPI_KEY")
	apiURL := envOrDefault("NEWSAPI_URL", DefaultNewsAPIURL)

	var sources []Source
	if path := os.Getenv("SOURCES_FILE"); path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read sources file: %w", err)
		}
		var f sourcesFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse sources file %s: %w", path, err)
		}
		sources = f.Sources
	} else if apiKey != "" {
		sources = []Source{{
			Name:    "NewsAPI",
			Type:    SourceNewsAPI,
			Country: envOrDefault("NEWSAPI_COUNTRY", "us"),
		}}
	}

	if len(sources) == 0 {
		return nil, errors.New("no article sources: set NEWSAPI_KEY or SOURCES_FILE")
	}

	for i := range sources {
		s := &sources[i]
		if s.Type == SourceNewsAPI {
			if s.URL == "" {
				s.URL = apiURL
			}
			if s.APIKey == "" {
				s.APIKey = apiKey
			}
		}
	}

	if err := validateSources(sources); err != nil {
		return nil, err
	}
	return sources, nil
}

func validateSources(sources []Source) error {
	for i, s := range sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.Type != SourceNewsAPI && s.Type != SourceRSS {
			return fmt.Errorf("source %q: unknown type %q (valid: %s, %s)", s.Name, s.Type, SourceNewsAPI, SourceRSS)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if s.Type == SourceNewsAPI && s.APIKey == "" {
			return fmt.Errorf("source %q: api key is required (api_key or NEWSAPI_KEY)", s.Name)
		}
	}
	return nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, raw)
	}
	return d, nil
}
