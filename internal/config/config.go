// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Search is one monitored view over the shared base listing URL. Order of
// locations matters: they get selected in this order.
type Search struct {
	Key       string   `yaml:"key"`
	Label     string   `yaml:"label"`
	Locations []string `yaml:"locations"`
}

type Config struct {
	// BaseURL already carries any non-location filters in its query string.
	BaseURL  string   `yaml:"base_url" env:"JOBWATCH_BASE_URL"`
	Searches []Search `yaml:"searches"`

	//Paths
	StateDir       string `yaml:"state_dir"`
	DiagnosticsDir string `yaml:"diagnostics_dir"`
	CookiesPath    string `yaml:"cookies_path"`

	//Browser
	UserAgent    string  `yaml:"user_agent"`
	Headless     *bool   `yaml:"headless"`
	NavTimeoutMs float64 `yaml:"nav_timeout_ms"`

	//Optional notification channel
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	//Override with env vars
	if base := os.Getenv("JOBWATCH_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.StateDir == "" {
		c.StateDir = ".state"
	}
	if c.DiagnosticsDir == "" {
		c.DiagnosticsDir = "logs/diagnostics"
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Headless == nil {
		headless := true
		c.Headless = &headless
	}
	if c.NavTimeoutMs <= 0 {
		c.NavTimeoutMs = 90000
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := c.Origin(); err != nil {
		return err
	}
	if len(c.Searches) == 0 {
		return fmt.Errorf("at least one search is required")
	}

	keys := make(map[string]bool, len(c.Searches))
	for _, s := range c.Searches {
		if s.Key == "" {
			return fmt.Errorf("search with label %q has no key", s.Label)
		}
		if keys[s.Key] {
			return fmt.Errorf("duplicate search key %q", s.Key)
		}
		keys[s.Key] = true
		if len(s.Locations) == 0 {
			return fmt.Errorf("search %q has no locations", s.Key)
		}
	}
	return nil
}

// Origin returns the scheme://host part of the base URL, used to resolve
// relative job links.
func (c *Config) Origin() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base_url %q must be absolute", c.BaseURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
