package pipeline

import (
	"context"
	"linksum/internal/domain"
	"linksum/internal/source"
	"log/slog"
	"time"
)

type Processor interface {
	Process(ctx context.Context, content domain.Content) domain.SummaryResult
}

type Result struct {
	Content domain.Content
	Summary domain.SummaryResult
}

// ErrorMessage returns the message of the first failed stage, if any.
func (r Result) ErrorMessage() string {
	if r.Content.Failed() {
		return r.Content.ErrorMessage
	}

	if r.Summary.Failed() {
		return r.Summary.ErrorMessage()
	}

	return ""
}

// Pipeline runs a link through resolution, extraction and summarization.
type Pipeline struct {
	extractors source.Extractors
	processor  Processor
	log        *slog.Logger
}

func New(extractors source.Extractors, processor Processor, log *slog.Logger) *Pipeline {
	return &Pipeline{
		extractors: extractors,
		processor:  processor,
		log:        log,
	}
}

// Run returns an error only when the input cannot be resolved to a source.
// Extraction and summarization failures are reported inside Result.
func (p *Pipeline) Run(ctx context.Context, input string) (Result, error) {
	start := time.Now()

	handle, err := source.Resolve(input)
	if err != nil {
		return Result{}, err
	}

	extractor, err := p.extractors.For(handle)
	if err != nil {
		return Result{}, err
	}

	content := extractor.Extract(ctx, handle.URL)
	summary := p.processor.Process(ctx, content)
	result := Result{Content: content, Summary: summary}

	p.log.InfoContext(ctx, "Pipeline is finished",
		"url", handle.URL,
		"sourceType", handle.Type,
		"textLen", len(content.Text),
		"hasImage", content.ImageURL != "",
		"failed", result.ErrorMessage() != "",
		"durationSeconds", time.Since(start).Seconds())

	return result, nil
}
