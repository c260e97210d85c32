package main

import (
	"context"
	"fmt"
	"io"
	"linksum/internal/config"
	"linksum/internal/pipeline"
	"linksum/internal/source"
	"linksum/internal/summarizer"
	"linksum/internal/youtube"
	"log/slog"
	"net/http"
	"time"
)

const minSummarizerTimeout = 2 * time.Minute

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	return log
}

func newPipeline(
	ctx context.Context,
	cfg config.Config,
	httpClient *http.Client,
	log *slog.Logger,
) (*pipeline.Pipeline, error) {
	loader, err := youtube.NewLoader(ctx, httpClient, cfg.YouTubeAPIKey, log)
	if err != nil {
		return nil, fmt.Errorf("create video loader: %w", err)
	}

	s, err := newSummarizer(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}

	extractors := source.Extractors{
		Video:   source.NewVideoExtractor(loader, cfg.TranscriptLanguages, cfg.TranscriptTranslate, log),
		Article: source.NewArticleExtractor(httpClient, log),
	}
	processor := summarizer.NewProcessor(s, summarizer.NewLanguageDetector(), log)

	log.InfoContext(ctx, "Pipeline is initialized",
		"summarizer", cfg.Summarizer,
		"youtubeDataAPI", cfg.YouTubeAPIKey != "",
		"transcriptLanguages", cfg.TranscriptLanguages,
		"transcriptTranslate", cfg.TranscriptTranslate,
		"httpTimeout", cfg.HTTPTimeout)

	return pipeline.New(extractors, processor, log), nil
}

func newSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) (summarizer.Summarizer, error) {
	switch cfg.Summarizer {
	case config.SummarizerGemini:
		return summarizer.NewGeminiSummarizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.SummarizerHuggingFace:
		client := &http.Client{Timeout: max(cfg.HTTPTimeout, minSummarizerTimeout)}
		return summarizer.NewHuggingFaceSummarizer(client, cfg.HFBaseURL, cfg.HFModel, cfg.HFAPIToken, log)
	default:
		return summarizer.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
}
