package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/mirrordash?sslmode=disable")
}

func TestLoad_RequiredMissing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("DATABASE_URL未設定時はエラーが返されるべき")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("FETCH_TIMEOUT", "")
	t.Setenv("DEFAULT_LOCATION", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("RATE_LIMIT_GENERAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load がエラーを返した: %v", err)
	}

	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.FetchTimeout)
	}
	if cfg.DefaultLocation != "New York" {
		t.Errorf("DefaultLocation = %q, want %q", cfg.DefaultLocation, "New York")
	}
	if cfg.DefaultNewsCategory != "general" {
		t.Errorf("DefaultNewsCategory = %q, want %q", cfg.DefaultNewsCategory, "general")
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
}

func TestLoad_MissingAPIKeysAreNotErrors(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("NEWS_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("APIキー未設定はエラーにならないべき: %v", err)
	}
	if cfg.OpenWeatherAPIKey != "" {
		t.Errorf("OpenWeatherAPIKey = %q, want empty", cfg.OpenWeatherAPIKey)
	}
	if cfg.NewsAPIKey != "" {
		t.Errorf("NewsAPIKey = %q, want empty", cfg.NewsAPIKey)
	}
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("DEFAULT_LOCATION", "Tokyo")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load がエラーを返した: %v", err)
	}

	if cfg.OpenWeatherAPIKey != "ow-key" {
		t.Errorf("OpenWeatherAPIKey = %q, want %q", cfg.OpenWeatherAPIKey, "ow-key")
	}
	if cfg.NewsAPIKey != "news-key" {
		t.Errorf("NewsAPIKey = %q, want %q", cfg.NewsAPIKey, "news-key")
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", cfg.FetchTimeout)
	}
	if cfg.DefaultLocation != "Tokyo" {
		t.Errorf("DefaultLocation = %q, want %q", cfg.DefaultLocation, "Tokyo")
	}
	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9000")
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load がエラーを返した: %v", err)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("不正なdurationはデフォルトにフォールバックするべき: %v", cfg.FetchTimeout)
	}
}
