package source

import (
	"context"
	"fmt"
	"linksum/internal/domain"
)

// Extractor turns a resolved URL into Content. Failures are reported
// through Content.ErrorMessage, never as a Go error or a panic.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) domain.Content
}

type Extractors struct {
	Video   Extractor
	Article Extractor
}

func (e Extractors) For(h Handle) (Extractor, error) {
	var ex Extractor

	switch h.Type {
	case domain.SourceVideo:
		ex = e.Video
	case domain.SourceArticle:
		ex = e.Article
	}

	if ex == nil {
		return nil, fmt.Errorf("no extractor (source type = %q): %w", h.Type, domain.ErrUnsupportedSource)
	}

	return ex, nil
}
