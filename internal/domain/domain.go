package domain

import (
	"errors"
	"strings"
)

type SourceType string

const (
	SourceVideo   SourceType = "video"
	SourceArticle SourceType = "article"
)

var ErrUnsupportedSource = errors.New("not supported source")

// Content is what an extractor managed to get out of a source.
// When ErrorMessage is set the rest of the fields must not be used.
type Content struct {
	Text string
	// AudioPath is reserved; no extractor sets it.
	AudioPath    string
	SourceType   SourceType
	SourceURL    string
	ImageURL     string
	Title        string
	ErrorMessage string
}

func ContentFailed(sourceType SourceType, sourceURL string, message string) Content {
	return Content{
		SourceType:   sourceType,
		SourceURL:    sourceURL,
		ErrorMessage: message,
	}
}

func (c Content) Failed() bool {
	return c.ErrorMessage != ""
}

const (
	emptySummaryMessage = "Summary is empty."
	unknownErrorMessage = "Unknown error."
)

// SummaryResult holds either a summary or an error message, never both and never neither.
type SummaryResult struct {
	summary      string
	errorMessage string
}

func Summarized(summary string) SummaryResult {
	if strings.TrimSpace(summary) == "" {
		return SummaryResult{errorMessage: emptySummaryMessage}
	}

	return SummaryResult{summary: summary}
}

func SummaryFailed(message string) SummaryResult {
	if strings.TrimSpace(message) == "" {
		message = unknownErrorMessage
	}

	return SummaryResult{errorMessage: message}
}

func (r SummaryResult) Summary() string {
	return r.summary
}

func (r SummaryResult) ErrorMessage() string {
	return r.errorMessage
}

func (r SummaryResult) Failed() bool {
	return r.errorMessage != "" || r.summary == ""
}
