package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	SummarizerOpenAI      = "openai"
	SummarizerGemini      = "gemini"
	SummarizerHuggingFace = "huggingface"
)

type Config struct {
	Token        string     `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers []int64    `env:"ALLOWED_USERS"`
	LogLevel     slog.Level `env:"LOG_LEVEL"            envDefault:"info"`

	Summarizer   string `env:"SUMMARIZER"     envDefault:"openai"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL"`
	HFAPIToken   string `env:"HF_API_TOKEN"`
	HFModel      string `env:"HF_MODEL"`
	HFBaseURL    string `env:"HF_BASE_URL"`

	YouTubeAPIKey       string   `env:"YOUTUBE_API_KEY"`
	TranscriptLanguages []string `env:"TRANSCRIPT_LANGUAGES" envDefault:"ru,ru_auto,en,en_auto"`
	TranscriptTranslate string   `env:"TRANSCRIPT_TRANSLATE" envDefault:"ru"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Summarizer = strings.ToLower(strings.TrimSpace(cfg.Summarizer))

	switch cfg.Summarizer {
	case SummarizerOpenAI, SummarizerGemini, SummarizerHuggingFace:
	default:
		return Config{}, fmt.Errorf("unknown SUMMARIZER %q", cfg.Summarizer)
	}

	if cfg.HTTPTimeout <= 0 {
		return Config{}, errors.New("HTTP_TIMEOUT must be positive")
	}

	return cfg, nil
}

// ValidateBot checks the settings only the Telegram bot needs.
func (c Config) ValidateBot() error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}
