package scribblehub

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	apperrors "scribblehub-to-epub/pkg/errors"
)

var (
	chapterMatch = regexp.MustCompile(`^(https?://[^/]+)/read/(\d+)-([^/]*?)/chapter/(\d+)`)
	storyMatch   = regexp.MustCompile(`^(https?://[^/]+)/series/(\d+)(?:/([a-z0-9-]*))?`)
	idMatch      = regexp.MustCompile(`^\d+$`)
)

// CanHandleURL reports whether url is a Scribble Hub series or chapter URL.
func CanHandleURL(url string) bool {
	url = strings.TrimSpace(url)
	return storyMatch.MatchString(url) || chapterMatch.MatchString(url)
}

// ResolveSeriesURL maps a series URL, a chapter URL or a bare story id to
// the series URL. Series URLs are returned unchanged.
func ResolveSeriesURL(input, baseURL string) (string, error) {
	input = strings.TrimSpace(input)
	switch {
	case storyMatch.MatchString(input):
		return input, nil
	case chapterMatch.MatchString(input):
		m := chapterMatch.FindStringSubmatch(input)
		return fmt.Sprintf("%s/series/%s/%s/", m[1], m[2], m[3]), nil
	case idMatch.MatchString(input):
		return fmt.Sprintf("%s/series/%s/", strings.TrimRight(baseURL, "/"), input), nil
	default:
		return "", apperrors.NewParsing(input, "not a Scribble Hub series URL, chapter URL or story id", nil)
	}
}

// seriesID extracts the numeric story id and slug from a series URL.
func seriesID(seriesURL string) (int, string) {
	m := storyMatch.FindStringSubmatch(seriesURL)
	if m == nil {
		return 0, ""
	}
	id, _ := strconv.Atoi(m[2])
	return id, m[3]
}

// tocPageURL returns the URL of the n-th table of contents page.
func tocPageURL(seriesURL string, n int) (string, error) {
	u, err := url.Parse(seriesURL)
	if err != nil {
		return "", apperrors.NewParsing(seriesURL, "invalid series URL", err)
	}
	q := u.Query()
	q.Set("toc", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
