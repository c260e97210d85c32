package summarizer_test

import (
	"context"
	"io"
	"linksum/internal/summarizer"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestHuggingFaceSummarize(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)

		_, _ = w.Write([]byte(`[{"summary_text":" Short summary. "}]`))
	}))
	defer srv.Close()

	s, err := summarizer.NewHuggingFaceSummarizer(srv.Client(), srv.URL+"/models/", "", "secret", slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := s.Summarize(context.Background(), summarizer.Input{
		Text:          "Long text",
		MaxLength:     130,
		MinLength:     30,
		Deterministic: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "Short summary." {
		t.Fatalf("unexpected summary: %q", summary)
	}

	if gotPath != "/models/facebook/bart-large-cnn" {
		t.Fatalf("unexpected path: %q", gotPath)
	}

	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}

	if got := gjson.GetBytes(gotBody, "inputs").String(); got != "Long text" {
		t.Fatalf("unexpected inputs: %q", got)
	}

	if got := gjson.GetBytes(gotBody, "parameters.max_length").Int(); got != 130 {
		t.Fatalf("unexpected max_length: %d", got)
	}

	if got := gjson.GetBytes(gotBody, "parameters.min_length").Int(); got != 30 {
		t.Fatalf("unexpected min_length: %d", got)
	}

	doSample := gjson.GetBytes(gotBody, "parameters.do_sample")
	if !doSample.Exists() || doSample.Bool() {
		t.Fatalf("expected do_sample=false, got %s", doSample.Raw)
	}
}

func TestHuggingFaceSummarizeErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	s, err := summarizer.NewHuggingFaceSummarizer(srv.Client(), srv.URL, "some/model", "secret", slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = s.Summarize(context.Background(), summarizer.Input{Text: "text"})
	if err == nil {
		t.Fatalf("expected error")
	}

	if !strings.Contains(err.Error(), "Model is currently loading") || !strings.Contains(err.Error(), "503") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHuggingFaceSummarizeMissingSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	s, err := summarizer.NewHuggingFaceSummarizer(srv.Client(), srv.URL, "", "secret", slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err = s.Summarize(context.Background(), summarizer.Input{Text: "text"}); err == nil {
		t.Fatalf("expected error for missing summary_text")
	}
}

func TestNewHuggingFaceSummarizerRequiresToken(t *testing.T) {
	if _, err := summarizer.NewHuggingFaceSummarizer(http.DefaultClient, "", "", "  ", slog.Default()); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
