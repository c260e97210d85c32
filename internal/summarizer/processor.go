package summarizer

import (
	"context"
	"fmt"
	"linksum/internal/domain"
	"log/slog"
	"strings"

	"github.com/pemistahl/lingua-go"
)

const (
	ChunkSize = 1024
	MaxLength = 130
	MinLength = 30

	languageSampleRunes = 2000

	noTextMessage = "TextProcessor: No text for processing."
)

// Processor summarizes extracted content chunk by chunk.
type Processor struct {
	summarizer Summarizer
	detector   lingua.LanguageDetector
	chunkSize  int
	log        *slog.Logger
}

// NewProcessor builds a processor. A nil detector disables language hints.
func NewProcessor(s Summarizer, detector lingua.LanguageDetector, log *slog.Logger) *Processor {
	return &Processor{
		summarizer: s,
		detector:   detector,
		chunkSize:  ChunkSize,
		log:        log,
	}
}

// NewLanguageDetector covers the languages transcripts are requested in plus a few common ones.
func NewLanguageDetector() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Russian,
			lingua.Ukrainian,
			lingua.German,
			lingua.French,
			lingua.Spanish,
		).
		Build()
}

func (p *Processor) Process(ctx context.Context, content domain.Content) domain.SummaryResult {
	if content.Failed() {
		return domain.SummaryFailed(content.ErrorMessage)
	}

	if strings.TrimSpace(content.Text) == "" {
		p.log.WarnContext(ctx, "No text to summarize",
			"url", content.SourceURL,
			"sourceType", content.SourceType)

		return domain.SummaryFailed(noTextMessage)
	}

	chunks := splitChunks(content.Text, p.chunkSize)
	language := p.detectLanguage(content.Text)

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		summary, err := p.summarizer.Summarize(ctx, Input{
			Text:          chunk,
			SourceURL:     content.SourceURL,
			Language:      language,
			MaxLength:     MaxLength,
			MinLength:     MinLength,
			Deterministic: true,
		})
		if err != nil {
			p.log.ErrorContext(ctx, "Failed to summarize chunk",
				"error", err,
				"url", content.SourceURL,
				"chunk", i+1,
				"chunks", len(chunks))

			return domain.SummaryFailed(fmt.Sprintf("Error on summarizing: %v", err))
		}

		summaries = append(summaries, summary)
	}

	p.log.InfoContext(ctx, "Content is summarized",
		"url", content.SourceURL,
		"sourceType", content.SourceType,
		"chunks", len(chunks),
		"language", language)

	return domain.Summarized(strings.Join(summaries, " "))
}

func (p *Processor) detectLanguage(text string) string {
	if p.detector == nil {
		return ""
	}

	sample := text
	if runes := []rune(text); len(runes) > languageSampleRunes {
		sample = string(runes[:languageSampleRunes])
	}

	language, ok := p.detector.DetectLanguageOf(sample)
	if !ok {
		return ""
	}

	return language.String()
}

// splitChunks slices text into contiguous pieces of size characters.
// Words and sentences may be cut in the middle. Process skips pieces that are only whitespace.
func splitChunks(text string, size int) []string {
	runes := []rune(text)
	if size <= 0 || len(runes) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
