package config_test

import (
	"linksum/internal/config"
	"log/slog"
	"os"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "ALLOWED_USERS", "LOG_LEVEL", "SUMMARIZER",
		"TRANSCRIPT_LANGUAGES", "TRANSCRIPT_TRANSLATE", "HTTP_TIMEOUT",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Summarizer != config.SummarizerOpenAI {
		t.Fatalf("unexpected summarizer: %q", cfg.Summarizer)
	}

	if !slices.Equal(cfg.TranscriptLanguages, []string{"ru", "ru_auto", "en", "en_auto"}) {
		t.Fatalf("unexpected transcript languages: %v", cfg.TranscriptLanguages)
	}

	if cfg.TranscriptTranslate != "ru" || cfg.HTTPTimeout != 30*time.Second || cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	if err = cfg.ValidateBot(); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("ALLOWED_USERS", "1,2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SUMMARIZER", " Gemini ")
	t.Setenv("TRANSCRIPT_LANGUAGES", "en,de")
	t.Setenv("TRANSCRIPT_TRANSLATE", "en")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(cfg.AllowedUsers, []int64{1, 2}) {
		t.Fatalf("unexpected allowed users: %v", cfg.AllowedUsers)
	}

	if cfg.Summarizer != config.SummarizerGemini || cfg.LogLevel != slog.LevelDebug || cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if !slices.Equal(cfg.TranscriptLanguages, []string{"en", "de"}) || cfg.TranscriptTranslate != "en" {
		t.Fatalf("unexpected transcript settings: %+v", cfg)
	}

	if err = cfg.ValidateBot(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownSummarizer(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUMMARIZER", "markov")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unknown summarizer")
	}
}

func TestLoadRejectsBadAllowedUsers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ALLOWED_USERS", "1,abc")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for malformed ALLOWED_USERS")
	}
}
