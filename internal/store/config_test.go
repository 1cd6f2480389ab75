package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if err := c.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
	if c.Provider != "yahoo" {
		t.Errorf("Expected default provider yahoo, got %s", c.Provider)
	}
	if c.Backend.TimeoutSeconds != 30 {
		t.Errorf("Expected default timeout 30s, got %d", c.Backend.TimeoutSeconds)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: https://forecast.example.com
  timeout_seconds: 10
provider: alpha
form:
  base: ETH
  quote: EUR
  timeframe: weekly
  period: "90"
news:
  max_articles: 5
`)

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	if c.Backend.BaseURL != "https://forecast.example.com" {
		t.Errorf("Expected base_url override, got %s", c.Backend.BaseURL)
	}
	if c.Backend.TimeoutSeconds != 10 {
		t.Errorf("Expected timeout override 10, got %d", c.Backend.TimeoutSeconds)
	}
	if c.Provider != "alpha" {
		t.Errorf("Expected provider alpha, got %s", c.Provider)
	}
	if c.Form.Base != "ETH" || c.Form.Quote != "EUR" {
		t.Errorf("Expected form pair ETH/EUR, got %s/%s", c.Form.Base, c.Form.Quote)
	}
	if c.News.MaxArticles != 5 {
		t.Errorf("Expected max_articles 5, got %d", c.News.MaxArticles)
	}

	// Fields absent from the file keep their defaults.
	if c.News.CacheMinutes != 15 {
		t.Errorf("Expected default cache_minutes 15, got %d", c.News.CacheMinutes)
	}
	if c.APIKeyEnv != "ALPHAVANTAGE_API_KEY" {
		t.Errorf("Expected default api_key_env, got %s", c.APIKeyEnv)
	}
}

func TestLoadConfig_InvalidProvider(t *testing.T) {
	path := writeConfig(t, "provider: binance\n")

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected validation error for unknown provider")
	}
}

func TestLoadConfig_HistoryNeedsPath(t *testing.T) {
	path := writeConfig(t, `
history:
  enabled: true
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected validation error for history without path")
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	c := DefaultConfig()
	c.APIKeyEnv = "TEST_FORECAST_KEY"

	t.Setenv("TEST_FORECAST_KEY", "secret-key")
	if got := c.APIKey(); got != "secret-key" {
		t.Errorf("Expected key from env, got %q", got)
	}

	c.APIKeyEnv = ""
	if got := c.APIKey(); got != "" {
		t.Errorf("Expected empty key without env name, got %q", got)
	}
}
