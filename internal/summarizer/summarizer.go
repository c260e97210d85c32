package summarizer

import (
	"context"
	"fmt"
	"strings"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the chunk of plain text to summarise.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
	// Language is an optional hint (e.g. "Russian") detected from the whole text.
	Language string
	// MaxLength and MinLength bound the summary length in tokens.
	// Prompt-based backends ask for about three words per four tokens.
	MaxLength int
	MinLength int
	// Deterministic disables sampling.
	Deterministic bool
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

const systemPrompt = `Summarize the text you are given.

Rules:
- Length between %d and %d words.
- Keep the core ideas and critical context (dates, numbers, names).
- Neutral tone, plain prose, no lists, no preface like "This text".
- Write in the same language as the input.`

func instructions(input Input) string {
	return fmt.Sprintf(systemPrompt, tokensToWords(input.MinLength), tokensToWords(input.MaxLength))
}

func tokensToWords(tokens int) int {
	return max(tokens*3/4, 1)
}

func userPrompt(input Input) string {
	var b strings.Builder

	if sourceURL := strings.TrimSpace(input.SourceURL); sourceURL != "" {
		b.WriteString("Source:\n")
		b.WriteString(sourceURL)
		b.WriteString("\n")
	}

	if language := strings.TrimSpace(input.Language); language != "" {
		b.WriteString("Language:\n")
		b.WriteString(language)
		b.WriteString("\n")
	}

	b.WriteString("Content:\n")
	b.WriteString(strings.TrimSpace(input.Text))

	return b.String()
}
