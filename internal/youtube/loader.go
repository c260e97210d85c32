package youtube

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	ytlib "github.com/kkdai/youtube/v2"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	autoLanguageSuffix = "_auto"
	asrTrackKind       = "asr"
)

var ErrNoTranscript = errors.New("no suitable transcript")

// Details carries the caption tracks when they were read from the watch page
// so Transcript does not fetch it again.
type Details struct {
	ID           string
	Title        string
	ThumbnailURL string

	tracks       []captionTrack
	tracksLoaded bool
}

type Fragment struct {
	Text     string
	Start    float64
	Duration float64
}

type captionTrack struct {
	baseURL      string
	languageCode string
	asr          bool
	translatable bool
}

// Loader reads video metadata and caption tracks from YouTube.
type Loader struct {
	client     *ytlib.Client
	dataAPI    *ytapi.Service
	httpClient *http.Client
	log        *slog.Logger
}

// NewLoader builds a loader. An empty apiKey keeps metadata on the watch page scraper.
func NewLoader(
	ctx context.Context,
	httpClient *http.Client,
	apiKey string,
	log *slog.Logger,
) (*Loader, error) {
	l := &Loader{
		client:     &ytlib.Client{HTTPClient: httpClient},
		httpClient: httpClient,
		log:        log,
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return l, nil
	}

	service, err := ytapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create YouTube Data API service: %w", err)
	}
	l.dataAPI = service

	return l, nil
}

func (l *Loader) Details(ctx context.Context, rawURL string) (*Details, error) {
	if l.dataAPI != nil {
		details, err := l.detailsFromDataAPI(ctx, rawURL)
		if err == nil {
			return details, nil
		}

		l.log.WarnContext(ctx, "Failed to get details from Data API so watch page will be used",
			"error", err,
			"url", rawURL)
	}

	video, err := l.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}

	if video == nil {
		return nil, nil
	}

	return &Details{
		ID:           video.ID,
		Title:        strings.TrimSpace(video.Title),
		ThumbnailURL: bestThumbnail(video.Thumbnails),
		tracks:       captionTracks(video),
		tracksLoaded: true,
	}, nil
}

func (l *Loader) detailsFromDataAPI(ctx context.Context, rawURL string) (*Details, error) {
	videoID, err := ytlib.ExtractVideoID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("extract video ID: %w", err)
	}

	resp, err := l.dataAPI.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, fmt.Errorf("video is not found (ID = %s)", videoID)
	}

	snippet := resp.Items[0].Snippet

	return &Details{
		ID:           videoID,
		Title:        strings.TrimSpace(snippet.Title),
		ThumbnailURL: bestAPIThumbnail(snippet.Thumbnails),
	}, nil
}

// Transcript returns caption fragments of the first track matching languages.
// A language with the "_auto" suffix matches an auto-generated track.
// When nothing matches, the first translatable track is translated to translateTo.
func (l *Loader) Transcript(
	ctx context.Context,
	details *Details,
	languages []string,
	translateTo string,
) ([]Fragment, error) {
	if details == nil {
		return nil, errors.New("video details are missing")
	}

	tracks := details.tracks
	if !details.tracksLoaded {
		video, err := l.client.GetVideoContext(ctx, details.ID)
		if err != nil {
			return nil, fmt.Errorf("get video: %w", err)
		}
		tracks = captionTracks(video)
	}

	track, tlang, ok := selectTrack(tracks, languages, translateTo)
	if !ok {
		return nil, fmt.Errorf("%w (tracks = %d)", ErrNoTranscript, len(tracks))
	}

	l.log.DebugContext(ctx, "Caption track is selected",
		"videoID", details.ID,
		"languageCode", track.languageCode,
		"asr", track.asr,
		"translateTo", tlang)

	return l.fetchTimedText(ctx, track.baseURL, tlang)
}

func captionTracks(video *ytlib.Video) []captionTrack {
	tracks := make([]captionTrack, 0, len(video.CaptionTracks))
	for _, t := range video.CaptionTracks {
		tracks = append(tracks, captionTrack{
			baseURL:      t.BaseURL,
			languageCode: t.LanguageCode,
			asr:          t.Kind == asrTrackKind,
			translatable: t.IsTranslatable,
		})
	}

	return tracks
}

func selectTrack(
	tracks []captionTrack,
	languages []string,
	translateTo string,
) (captionTrack, string, bool) {
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		code, auto := strings.CutSuffix(lang, autoLanguageSuffix)
		if code == "" {
			continue
		}

		for _, t := range tracks {
			if strings.EqualFold(t.languageCode, code) && t.asr == auto {
				return t, "", true
			}
		}
	}

	translateTo = strings.TrimSpace(translateTo)
	if translateTo == "" {
		return captionTrack{}, "", false
	}

	for _, t := range tracks {
		if t.translatable {
			return t, translateTo, true
		}
	}

	return captionTrack{}, "", false
}

func (l *Loader) fetchTimedText(
	ctx context.Context,
	baseURL string,
	tlang string,
) ([]Fragment, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse track URL: %w", err)
	}

	q := u.Query()
	q.Del("fmt")
	if tlang != "" {
		q.Set("tlang", tlang)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := l.httpClient.Do(req) //nolint:gosec // YouTube caption URL
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			l.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"operation", "fetchTimedText")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}

	return parseTimedText(doc), nil
}

// parseTimedText reads both the legacy <text start dur> format and srv3 <p t d>.
func parseTimedText(doc *goquery.Document) []Fragment {
	var fragments []Fragment

	doc.Find("text").Each(func(_ int, s *goquery.Selection) {
		fragments = append(fragments, Fragment{
			Text:     cleanCaption(s.Text()),
			Start:    parseSeconds(s.AttrOr("start", "")),
			Duration: parseSeconds(s.AttrOr("dur", "")),
		})
	})

	if len(fragments) > 0 {
		return fragments
	}

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		fragments = append(fragments, Fragment{
			Text:     cleanCaption(s.Text()),
			Start:    parseMillis(s.AttrOr("t", "")),
			Duration: parseMillis(s.AttrOr("d", "")),
		})
	})

	return fragments
}

func cleanCaption(raw string) string {
	// Caption XML is escaped twice.
	text := html.UnescapeString(raw)
	return strings.Join(strings.Fields(text), " ")
}

func parseSeconds(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseMillis(raw string) float64 {
	return parseSeconds(raw) / 1000
}

func bestThumbnail(thumbnails ytlib.Thumbnails) string {
	var (
		best  string
		width uint
	)

	for _, t := range thumbnails {
		if t.URL != "" && (best == "" || t.Width > width) {
			best = t.URL
			width = t.Width
		}
	}

	return best
}

func bestAPIThumbnail(details *ytapi.ThumbnailDetails) string {
	if details == nil {
		return ""
	}

	for _, t := range []*ytapi.Thumbnail{
		details.Maxres,
		details.Standard,
		details.High,
		details.Medium,
		details.Default,
	} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}

	return ""
}
