package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	DefaultHuggingFaceModel   = "facebook/bart-large-cnn"
	DefaultHuggingFaceBaseURL = "https://router.huggingface.co/hf-inference/models"

	maxHuggingFaceResponseBytes = 1 << 20
)

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	MaxLength int  `json:"max_length,omitempty"`
	MinLength int  `json:"min_length,omitempty"`
	DoSample  bool `json:"do_sample"`
}

// HuggingFaceSummarizer runs a summarization model on the Hugging Face Inference API.
// The model gets the length bounds as generation parameters, not as a prompt.
type HuggingFaceSummarizer struct {
	client  *http.Client
	baseURL string
	model   string
	token   string
	log     *slog.Logger
}

func NewHuggingFaceSummarizer(
	client *http.Client,
	baseURL string,
	model string,
	token string,
	log *slog.Logger,
) (*HuggingFaceSummarizer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("API token is empty")
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}

	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		model = DefaultHuggingFaceModel
	}

	return &HuggingFaceSummarizer{
		client:  client,
		baseURL: baseURL,
		model:   model,
		token:   token,
		log:     log,
	}, nil
}

func (s *HuggingFaceSummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", errors.New("input is empty")
	}

	payload, err := json.Marshal(huggingFaceRequest{
		Inputs: input.Text,
		Parameters: huggingFaceParameters{
			MaxLength: input.MaxLength,
			MinLength: input.MinLength,
			DoSample:  !input.Deterministic,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := s.baseURL + "/" + s.model

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			s.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"model", s.model,
				"operation", "huggingFaceSummarize")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHuggingFaceResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if message := gjson.GetBytes(body, "error").String(); message != "" {
			return "", fmt.Errorf("do request: unexpected status: %d: %s", resp.StatusCode, message)
		}
		return "", fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	summary := strings.TrimSpace(gjson.GetBytes(body, "0.summary_text").String())
	if summary == "" {
		return "", fmt.Errorf("summary_text is missing (model = %s)", s.model)
	}

	return summary, nil
}
