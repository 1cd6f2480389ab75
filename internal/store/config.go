package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"backend"`
	Provider  string `yaml:"provider"`
	APIKeyEnv string `yaml:"api_key_env"`
	Form      struct {
		Symbol    string `yaml:"symbol"`
		Base      string `yaml:"base"`
		Quote     string `yaml:"quote"`
		Timeframe string `yaml:"timeframe"`
		Period    string `yaml:"period"`
	} `yaml:"form"`
	News struct {
		CacheMinutes   int  `yaml:"cache_minutes"`
		MaxArticles    int  `yaml:"max_articles"`
		ScrapeFallback bool `yaml:"scrape_fallback"`
	} `yaml:"news"`
	History struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"history"`
}

func DefaultConfig() *Config {
	var c Config
	c.Backend.BaseURL = "http://localhost:8000"
	c.Backend.TimeoutSeconds = 30
	c.Provider = "yahoo"
	c.APIKeyEnv = "ALPHAVANTAGE_API_KEY"
	c.Form.Symbol = "BTC-USD"
	c.Form.Base = "BTC"
	c.Form.Quote = "USD"
	c.News.CacheMinutes = 15
	c.News.MaxArticles = 10
	c.News.ScrapeFallback = true
	return &c
}

func (c *Config) Validate() error {
	if c.Provider != "alpha" && c.Provider != "yahoo" {
		return fmt.Errorf("invalid provider '%s': must be 'alpha' or 'yahoo'", c.Provider)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url cannot be empty")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be positive, got %d", c.Backend.TimeoutSeconds)
	}
	if c.News.MaxArticles <= 0 {
		return fmt.Errorf("news.max_articles must be positive, got %d", c.News.MaxArticles)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path cannot be empty when history.enabled is true")
	}
	return nil
}

// APIKey resolves the alpha-variant key from the environment variable named
// in api_key_env. An empty result is valid; the form can supply the key.
func (c *Config) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 30
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 15
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return c, nil
}
