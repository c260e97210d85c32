package main

import (
	"bytes"
	"linksum/internal/domain"
	"linksum/internal/pipeline"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

func testResult() pipeline.Result {
	return pipeline.Result{
		Content: domain.Content{
			Text:       "text",
			SourceType: domain.SourceArticle,
			SourceURL:  "https://example.com/a",
			Title:      "Title",
		},
		Summary: domain.Summarized("Summary."),
	}
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResult(&buf, formatJSON, testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.Bytes()
	if got := gjson.GetBytes(out, "source_type").String(); got != "article" {
		t.Fatalf("unexpected source_type: %q", got)
	}

	if got := gjson.GetBytes(out, "summary").String(); got != "Summary." {
		t.Fatalf("unexpected summary: %q", got)
	}

	if gjson.GetBytes(out, "error").Exists() || gjson.GetBytes(out, "image_url").Exists() {
		t.Fatalf("expected empty fields to be omitted: %s", out)
	}
}

func TestWriteResultYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResult(&buf, formatYAML, testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out summaryOutput
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.URL != "https://example.com/a" || out.Title != "Title" || out.Summary != "Summary." {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestWriteResultText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResult(&buf, formatText, testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := buf.String(); got != "Title\n\nSummary.\n" {
		t.Fatalf("unexpected text output: %q", got)
	}
}

func TestWriteResultTextError(t *testing.T) {
	result := pipeline.Result{
		Content: domain.ContentFailed(domain.SourceVideo, "https://youtu.be/x", "Failed to get video details"),
		Summary: domain.SummaryFailed("Failed to get video details"),
	}

	var buf bytes.Buffer
	if err := writeResult(&buf, formatText, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "Error: Failed to get video details") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}
}
