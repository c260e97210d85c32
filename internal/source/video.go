package source

import (
	"context"
	"fmt"
	"linksum/internal/domain"
	"linksum/internal/youtube"
	"log/slog"
	"strings"
)

type VideoLoader interface {
	Details(ctx context.Context, rawURL string) (*youtube.Details, error)
	Transcript(
		ctx context.Context,
		details *youtube.Details,
		languages []string,
		translateTo string,
	) ([]youtube.Fragment, error)
}

type VideoExtractor struct {
	loader      VideoLoader
	languages   []string
	translateTo string
	log         *slog.Logger
}

// NewVideoExtractor takes transcript languages from highest priority to lowest
// and the language to translate to when none of them is available.
func NewVideoExtractor(
	loader VideoLoader,
	languages []string,
	translateTo string,
	log *slog.Logger,
) *VideoExtractor {
	return &VideoExtractor{
		loader:      loader,
		languages:   languages,
		translateTo: translateTo,
		log:         log,
	}
}

func (e *VideoExtractor) Extract(ctx context.Context, rawURL string) domain.Content {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		e.log.ErrorContext(ctx, "Invalid YouTube URL",
			"url", rawURL)

		return domain.ContentFailed(domain.SourceVideo, rawURL, fmt.Sprintf("Invalid YouTube URL: %s", rawURL))
	}

	details, err := e.loader.Details(ctx, rawURL)
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to get video details",
			"error", err,
			"url", rawURL)

		return domain.ContentFailed(domain.SourceVideo, rawURL, fmt.Sprintf("Error YouTube: %v", err))
	}

	if details == nil {
		e.log.WarnContext(ctx, "Video details are missing",
			"url", rawURL)

		return domain.ContentFailed(domain.SourceVideo, rawURL, "Failed to get video details")
	}

	fragments, err := e.loader.Transcript(ctx, details, e.languages, e.translateTo)
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to get transcript",
			"error", err,
			"url", rawURL,
			"languages", e.languages,
			"translateTo", e.translateTo)

		return domain.ContentFailed(domain.SourceVideo, rawURL, "Subtitles could not be downloaded")
	}

	if len(fragments) == 0 {
		e.log.WarnContext(ctx, "Transcript is empty",
			"url", rawURL)

		return domain.ContentFailed(domain.SourceVideo, rawURL, "Subtitles could not be downloaded")
	}

	var text strings.Builder
	skipped := 0

	for _, f := range fragments {
		fragment := strings.TrimSpace(f.Text)
		if fragment == "" {
			skipped++
			continue
		}

		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(fragment)
	}

	if skipped > 0 {
		e.log.DebugContext(ctx, "Skipped empty transcript fragments",
			"url", rawURL,
			"skipped", skipped,
			"total", len(fragments))
	}

	if text.Len() == 0 {
		return domain.ContentFailed(domain.SourceVideo, rawURL, "Subtitles could not be downloaded")
	}

	return domain.Content{
		Text:       text.String(),
		SourceType: domain.SourceVideo,
		SourceURL:  rawURL,
		ImageURL:   strings.TrimSpace(details.ThumbnailURL),
		Title:      strings.TrimSpace(details.Title),
	}
}
