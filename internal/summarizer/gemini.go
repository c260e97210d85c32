package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"

	geminiMaxOutputTokens int32 = 1024
)

// GeminiSummarizer calls Gemini's GenerateContent API to produce summaries.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

func NewGeminiSummarizer(ctx context.Context, apiKey string, model string) (*GeminiSummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &GeminiSummarizer{client: client, model: model}, nil
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", errors.New("input is empty")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions(input), genai.RoleUser),
		MaxOutputTokens:   geminiMaxOutputTokens,
	}
	if input.Deterministic {
		config.Temperature = genai.Ptr[float32](0)
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(userPrompt(input)), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	summary := strings.TrimSpace(result.Text())
	if summary == "" {
		return "", errors.New("empty response from Gemini")
	}

	return summary, nil
}
