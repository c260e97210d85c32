package source

import (
	"errors"
	"fmt"
	"linksum/internal/domain"
	"net/url"
	"strings"
)

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var videoHosts = map[string]struct{}{
	"www.youtube.com": {},
	"youtu.be":        {},
}

// Handle is a classified source ready for extraction.
type Handle struct {
	Type domain.SourceType
	URL  string
}

func Resolve(input string) (Handle, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Handle{}, fmt.Errorf("cannot determine source type: %w", errors.Join(
			domain.ErrUnsupportedSource,
			errors.New("input is empty"),
		))
	}

	u, err := url.Parse(input)
	if err != nil {
		return Handle{}, fmt.Errorf("cannot determine source type: %w", errors.Join(domain.ErrUnsupportedSource, err))
	}

	if _, ok := videoHosts[strings.ToLower(u.Host)]; ok {
		return Handle{Type: domain.SourceVideo, URL: input}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return Handle{}, fmt.Errorf("cannot determine source type: %w (host is empty)", domain.ErrUnsupportedSource)
		}

		return Handle{Type: domain.SourceArticle, URL: input}, nil
	default:
		return Handle{}, fmt.Errorf("cannot determine source type: %w", domain.ErrUnsupportedSource)
	}
}
