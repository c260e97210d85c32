package source_test

import (
	"context"
	"errors"
	"linksum/internal/domain"
	"linksum/internal/source"
	"linksum/internal/youtube"
	"log/slog"
	"slices"
	"testing"
)

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type stubLoader struct {
	details       *youtube.Details
	detailsErr    error
	fragments     []youtube.Fragment
	transcriptErr error

	transcriptCalls int
	gotDetails      *youtube.Details
	gotLanguages    []string
	gotTranslateTo  string
}

func (s *stubLoader) Details(_ context.Context, _ string) (*youtube.Details, error) {
	return s.details, s.detailsErr
}

func (s *stubLoader) Transcript(
	_ context.Context,
	details *youtube.Details,
	languages []string,
	translateTo string,
) ([]youtube.Fragment, error) {
	s.transcriptCalls++
	s.gotDetails = details
	s.gotLanguages = languages
	s.gotTranslateTo = translateTo

	return s.fragments, s.transcriptErr
}

func newVideoExtractor(loader *stubLoader) *source.VideoExtractor {
	return source.NewVideoExtractor(loader, []string{"ru", "ru_auto", "en", "en_auto"}, "ru", slog.Default())
}

func TestVideoExtractSuccess(t *testing.T) {
	loader := &stubLoader{
		details: &youtube.Details{Title: " Title ", ThumbnailURL: "https://i.ytimg.com/vi/x/maxres.jpg"},
		fragments: []youtube.Fragment{
			{Text: "first"},
			{Text: "   "},
			{Text: "second"},
		},
	}

	c := newVideoExtractor(loader).Extract(context.Background(), videoURL)
	if c.Failed() {
		t.Fatalf("unexpected error: %s", c.ErrorMessage)
	}

	if c.Text != "first second" {
		t.Fatalf("text mismatch: got %q", c.Text)
	}

	if c.ImageURL != "https://i.ytimg.com/vi/x/maxres.jpg" || c.Title != "Title" {
		t.Fatalf("unexpected metadata: %+v", c)
	}

	if c.SourceType != domain.SourceVideo || c.SourceURL != videoURL {
		t.Fatalf("unexpected source: %+v", c)
	}

	if !slices.Equal(loader.gotLanguages, []string{"ru", "ru_auto", "en", "en_auto"}) || loader.gotTranslateTo != "ru" {
		t.Fatalf("unexpected transcript preferences: %v %q", loader.gotLanguages, loader.gotTranslateTo)
	}

	if loader.gotDetails != loader.details {
		t.Fatalf("expected transcript to reuse the loaded details")
	}
}

func TestVideoExtractBlankURL(t *testing.T) {
	loader := &stubLoader{}

	c := newVideoExtractor(loader).Extract(context.Background(), "  ")
	if !c.Failed() {
		t.Fatalf("expected error for blank URL")
	}

	if loader.transcriptCalls != 0 {
		t.Fatalf("expected loader not to be called")
	}
}

func TestVideoExtractDetailsError(t *testing.T) {
	loader := &stubLoader{detailsErr: errors.New("video unavailable")}

	c := newVideoExtractor(loader).Extract(context.Background(), videoURL)
	if c.ErrorMessage != "Error YouTube: video unavailable" {
		t.Fatalf("unexpected error message: %q", c.ErrorMessage)
	}

	if loader.transcriptCalls != 0 {
		t.Fatalf("expected transcript not to be requested")
	}
}

func TestVideoExtractMissingDetails(t *testing.T) {
	c := newVideoExtractor(&stubLoader{}).Extract(context.Background(), videoURL)
	if c.ErrorMessage != "Failed to get video details" {
		t.Fatalf("unexpected error message: %q", c.ErrorMessage)
	}
}

func TestVideoExtractTranscriptFailures(t *testing.T) {
	tests := []struct {
		name   string
		loader *stubLoader
	}{
		{
			"error",
			&stubLoader{details: &youtube.Details{}, transcriptErr: youtube.ErrNoTranscript},
		},
		{
			"empty",
			&stubLoader{details: &youtube.Details{}},
		},
		{
			"only blank fragments",
			&stubLoader{details: &youtube.Details{}, fragments: []youtube.Fragment{{Text: " "}, {}}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := newVideoExtractor(test.loader).Extract(context.Background(), videoURL)
			if c.ErrorMessage != "Subtitles could not be downloaded" {
				t.Fatalf("unexpected error message: %q", c.ErrorMessage)
			}

			if c.SourceType != domain.SourceVideo {
				t.Fatalf("expected video source type on error, got %q", c.SourceType)
			}
		})
	}
}

func TestExtractorsFor(t *testing.T) {
	video := newVideoExtractor(&stubLoader{})
	article := source.NewArticleExtractor(nil, slog.Default())
	extractors := source.Extractors{Video: video, Article: article}

	ex, err := extractors.For(source.Handle{Type: domain.SourceVideo})
	if err != nil || ex != video {
		t.Fatalf("expected video extractor, got %v (err = %v)", ex, err)
	}

	ex, err = extractors.For(source.Handle{Type: domain.SourceArticle})
	if err != nil || ex != article {
		t.Fatalf("expected article extractor, got %v (err = %v)", ex, err)
	}

	if _, err = extractors.For(source.Handle{Type: "podcast"}); !errors.Is(err, domain.ErrUnsupportedSource) {
		t.Fatalf("expected unsupported source error, got %v", err)
	}
}
