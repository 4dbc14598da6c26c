package model

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
	"time"
)

// Work is a serialized story with everything needed to build an EPUB.
type Work struct {
	ID          int
	Slug        string
	URL         string
	Title       string
	Author      string
	Description string
	Publisher   string
	Rights      string
	Language    string
	CoverURL    string
	Cover       *Asset
	Updated     *time.Time
	Genres      []string
	Tags        []string
	// Rating is nil when the work is unrated
	Rating      *float64
	RatingCount int
	Chapters    []*Chapter
	Assets      []*Asset
}

type Chapter struct {
	Index     int
	URL       string
	Title     string
	Published *time.Time
	Content   string
}

// Asset is a binary resource embedded in the book.
type Asset struct {
	SourceURL string
	Name      string
	MediaType string
	Data      []byte
}

// Subjects returns genres followed by tags, without duplicates.
func (w *Work) Subjects() []string {
	all := make([]string, 0, len(w.Genres)+len(w.Tags))
	all = append(all, w.Genres...)
	all = append(all, w.Tags...)
	return Dedup(all)
}

// AddAsset appends a unless an asset with the same source URL exists.
func (w *Work) AddAsset(a *Asset) bool {
	for _, existing := range w.Assets {
		if existing.SourceURL == a.SourceURL {
			return false
		}
	}
	w.Assets = append(w.Assets, a)
	return true
}

// HasAsset reports whether an asset for sourceURL was already added.
func (w *Work) HasAsset(sourceURL string) bool {
	for _, existing := range w.Assets {
		if existing.SourceURL == sourceURL {
			return true
		}
	}
	return false
}

// Modified is the last update time of the work: Updated when known,
// otherwise the newest chapter publication date, otherwise the Unix epoch.
func (w *Work) Modified() time.Time {
	if w.Updated != nil {
		return w.Updated.UTC()
	}
	var latest time.Time
	for _, c := range w.Chapters {
		if c.Published != nil && c.Published.After(latest) {
			latest = *c.Published
		}
	}
	if latest.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return latest.UTC()
}

// Dedup trims items and drops empty and repeated ones, keeping first
// occurrences in order. Comparison ignores case.
func Dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// ImageExt returns the file extension for an image, preferring the one in
// its URL and falling back to its media type.
func ImageExt(sourceURL, mediaType string) string {
	if u, err := url.Parse(sourceURL); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		if _, ok := imageExtensions[ext]; ok {
			return ext
		}
	}
	switch strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0])) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".jpg"
	}
}

// ImageMediaType returns the media type for an image file extension.
func ImageMediaType(ext string) string {
	if mt, ok := imageExtensions[strings.ToLower(ext)]; ok {
		return mt
	}
	return "image/jpeg"
}

// AssetName is the file name an image gets inside the book:
// the hex SHA-1 of its source URL plus its extension.
func AssetName(sourceURL, ext string) string {
	sum := sha1.Sum([]byte(sourceURL))
	return hex.EncodeToString(sum[:]) + ext
}
