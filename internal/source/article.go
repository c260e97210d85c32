package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"linksum/internal/domain"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	maxArticleBytes = 10 << 20
)

type ArticleExtractor struct {
	client *http.Client
	log    *slog.Logger
}

func NewArticleExtractor(client *http.Client, log *slog.Logger) *ArticleExtractor {
	return &ArticleExtractor{
		client: client,
		log:    log,
	}
}

func (e *ArticleExtractor) Extract(ctx context.Context, rawURL string) domain.Content {
	rawURL = strings.TrimSpace(rawURL)

	pageURL, body, err := e.fetch(ctx, rawURL)
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to load the article",
			"error", err,
			"url", rawURL)

		return domain.ContentFailed(domain.SourceArticle, rawURL, fmt.Sprintf("Error loading the article: %v", err))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to parse the article",
			"error", err,
			"url", rawURL,
			"bodyLen", len(body))

		return domain.ContentFailed(
			domain.SourceArticle,
			rawURL,
			fmt.Sprintf("Error when extracting the text of the article: %v", err),
		)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})

	imageURL := ""
	if src, ok := firstImageSource(doc); ok {
		imageURL = resolveImageURL(pageURL, src)
	}

	return domain.Content{
		Text:       strings.Join(paragraphs, "\n"),
		SourceType: domain.SourceArticle,
		SourceURL:  rawURL,
		ImageURL:   imageURL,
		Title:      e.title(ctx, pageURL, body, doc),
	}
}

func (e *ArticleExtractor) fetch(ctx context.Context, rawURL string) (*url.URL, []byte, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req) //nolint:gosec // URL comes from the user on purpose
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			e.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", "fetchArticle")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	return pageURL, body, nil
}

func (e *ArticleExtractor) title(
	ctx context.Context,
	pageURL *url.URL,
	body []byte,
	doc *goquery.Document,
) string {
	parser := readability.NewParser()

	article, err := parser.Parse(bytes.NewReader(body), pageURL)
	if err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title
		}
	} else {
		e.log.DebugContext(ctx, "Readability failed so meta title will be used",
			"error", err,
			"url", pageURL.String())
	}

	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}

func firstImageSource(doc *goquery.Document) (string, bool) {
	var src string

	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src = strings.TrimSpace(s.AttrOr("src", ""))
		return src == ""
	})

	return src, src != ""
}

// resolveImageURL makes a relative image address absolute against the page origin.
func resolveImageURL(pageURL *url.URL, src string) string {
	ref, err := url.Parse(src)
	if err != nil || ref.IsAbs() {
		return src
	}

	origin := &url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host, Path: "/"}

	return origin.ResolveReference(ref).String()
}
