package config

import (
	"testing"
	"time"
)

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GROQ_API_KEY", "DATABASE_PATH",
		"BACKEND_TIMEOUT_SECONDS", "LOG_LEVEL",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_ALLOWED_USER_IDS", "ADMIN_TELEGRAM_ID",
	} {
		t.Setenv(key, "")
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("minimal config with defaults", func(t *testing.T) {
		setEnv(t, map[string]string{"GEMINI_API_KEY": "test-key"})

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.GeminiAPIKey != "test-key" {
			t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
		}
		if cfg.DatabasePath != "data/can-eat-not.db" {
			t.Errorf("DatabasePath = %q", cfg.DatabasePath)
		}
		if cfg.BackendTimeout != 30*time.Second {
			t.Errorf("BackendTimeout = %v", cfg.BackendTimeout)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q", cfg.LogLevel)
		}
	})

	t.Run("missing gemini key", func(t *testing.T) {
		setEnv(t, nil)
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("expected error for missing GEMINI_API_KEY")
		}
	})

	t.Run("full config", func(t *testing.T) {
		setEnv(t, map[string]string{
			"GEMINI_API_KEY":            "g-key",
			"GROQ_API_KEY":              "q-key",
			"DATABASE_PATH":             "/tmp/test.db",
			"BACKEND_TIMEOUT_SECONDS":   "10",
			"LOG_LEVEL":                 "debug",
			"TELEGRAM_BOT_TOKEN":        "bot-token",
			"TELEGRAM_ALLOWED_USER_IDS": "123, 456,789",
			"ADMIN_TELEGRAM_ID":         "123",
		})

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.GroqAPIKey != "q-key" {
			t.Errorf("GroqAPIKey = %q", cfg.GroqAPIKey)
		}
		if cfg.DatabasePath != "/tmp/test.db" {
			t.Errorf("DatabasePath = %q", cfg.DatabasePath)
		}
		if cfg.BackendTimeout != 10*time.Second {
			t.Errorf("BackendTimeout = %v", cfg.BackendTimeout)
		}
		if len(cfg.TelegramAllowedUserIDs) != 3 || cfg.TelegramAllowedUserIDs[1] != 456 {
			t.Errorf("TelegramAllowedUserIDs = %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 123 {
			t.Errorf("AdminTelegramID = %d", cfg.AdminTelegramID)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		for _, bad := range []string{"abc", "0", "-5"} {
			setEnv(t, map[string]string{
				"GEMINI_API_KEY":          "k",
				"BACKEND_TIMEOUT_SECONDS": bad,
			})
			if _, err := NewFromEnv(); err == nil {
				t.Errorf("BACKEND_TIMEOUT_SECONDS=%q: expected error", bad)
			}
		}
	})

	t.Run("invalid allowed user id", func(t *testing.T) {
		setEnv(t, map[string]string{
			"GEMINI_API_KEY":            "k",
			"TELEGRAM_ALLOWED_USER_IDS": "123,abc",
		})
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("expected error for invalid user id")
		}
	})
}
