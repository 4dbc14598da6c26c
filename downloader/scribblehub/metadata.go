package scribblehub

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scribblehub-to-epub/logger"
	"scribblehub-to-epub/model"
	apperrors "scribblehub-to-epub/pkg/errors"
	"scribblehub-to-epub/utils"
)

const (
	defaultPublisher = "Scribble Hub"
	defaultLanguage  = "en"
	lastUpdatedTitle = "Last updated: "
)

var siteTimeLayouts = []string{
	"Jan 2, 2006 03:04 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
}

type ParseOptions struct {
	StraightenQuotes bool
}

func (o ParseOptions) fix(s string) string {
	return utils.FixText(strings.TrimSpace(s), o.StraightenQuotes)
}

// structuredWork holds the fields read from application/ld+json.
type structuredWork struct {
	name        string
	author      string
	description string
	image       string
	genres      []string
	keywords    []string
	modified    *time.Time
	rating      *float64
	ratingCount int
}

// ParseWork extracts work metadata from a series page. seriesURL becomes
// the work URL unchanged.
func ParseWork(seriesURL, body string, opts ParseOptions) (*model.Work, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, apperrors.NewParsing(seriesURL, "failed to parse html", err)
	}

	sd, err := parseStructuredData(seriesURL, doc)
	if err != nil {
		return nil, err
	}

	work := &model.Work{
		URL:       seriesURL,
		Publisher: defaultPublisher,
		Language:  defaultLanguage,
	}
	work.ID, work.Slug = seriesID(seriesURL)

	if ogURL := metaProperty(doc, "og:url"); ogURL != "" && ogURL != seriesURL {
		logger.ForComponent("scribblehub").Warn().
			Str("url", seriesURL).Str("og_url", ogURL).
			Msg("metadata URL mismatch")
	}

	work.Title = opts.fix(firstNonEmpty(
		metaProperty(doc, "og:title"),
		sd.name,
		doc.Find(".fic_title").First().Text(),
	))
	if work.Title == "" {
		return nil, apperrors.NewParsing(seriesURL, "work title not found", nil)
	}

	work.Author = opts.fix(firstNonEmpty(
		metaName(doc, "twitter:creator"),
		sd.author,
		doc.Find(".auth_name_fic").First().Text(),
	))
	work.Description = opts.fix(firstNonEmpty(
		doc.Find(".wi_fic_desc").First().Text(),
		sd.description,
		metaProperty(doc, "og:description"),
	))
	work.CoverURL = firstNonEmpty(metaProperty(doc, "og:image"), sd.image)
	if work.CoverURL != "" {
		if abs, err := resolveURL(seriesURL, work.CoverURL); err == nil {
			work.CoverURL = abs
		}
	}
	if site := strings.TrimSpace(metaProperty(doc, "og:site_name")); site != "" {
		work.Publisher = opts.fix(site)
	}
	if lang := strings.TrimSpace(doc.Find("html").AttrOr("lang", "")); lang != "" {
		work.Language = lang
	}

	genres := sd.genres
	if len(genres) == 0 {
		genres = selectionTexts(doc.Find(".fic_genre"))
	}
	tags := sd.keywords
	if len(tags) == 0 {
		tags = selectionTexts(doc.Find(".stag"))
	}
	work.Genres = fixAll(model.Dedup(genres), opts)
	work.Tags = fixAll(model.Dedup(tags), opts)

	work.Updated = parseLastUpdated(doc)
	if work.Updated == nil {
		work.Updated = sd.modified
	}

	work.Rights = opts.fix(parseRights(doc))
	work.Rating = sd.rating
	work.RatingCount = sd.ratingCount

	return work, nil
}

func parseStructuredData(pageURL string, doc *goquery.Document) (structuredWork, error) {
	var nodes []map[string]any
	var parseErr error
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			parseErr = apperrors.NewParsing(pageURL, fmt.Sprintf("malformed structured data block %d", i), err)
			return false
		}
		nodes = append(nodes, flattenNodes(v)...)
		return true
	})
	if parseErr != nil {
		return structuredWork{}, parseErr
	}

	node := pickWorkNode(nodes)
	if node == nil {
		return structuredWork{}, nil
	}

	sd := structuredWork{
		name:        stringField(node["name"]),
		author:      nameField(node["author"]),
		description: stringField(node["description"]),
		image:       urlField(node["image"]),
		genres:      listField(node["genre"]),
		keywords:    listField(node["keywords"]),
	}
	if t, ok := parseISOTime(stringField(node["dateModified"])); ok {
		sd.modified = &t
	}
	if agg, ok := node["aggregateRating"].(map[string]any); ok {
		if v, ok := numberField(agg["ratingValue"]); ok {
			sd.rating = &v
		}
		if v, ok := numberField(agg["ratingCount"]); ok {
			sd.ratingCount = int(v)
		} else if v, ok := numberField(agg["reviewCount"]); ok {
			sd.ratingCount = int(v)
		}
	}
	return sd, nil
}

// flattenNodes returns every object in v, expanding top-level arrays and
// @graph lists.
func flattenNodes(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var out []map[string]any
		for _, item := range t {
			out = append(out, flattenNodes(item)...)
		}
		return out
	case map[string]any:
		out := []map[string]any{t}
		if graph, ok := t["@graph"]; ok {
			out = append(out, flattenNodes(graph)...)
		}
		return out
	default:
		return nil
	}
}

var workTypes = map[string]bool{
	"Book":               true,
	"BookSeries":         true,
	"CreativeWork":       true,
	"CreativeWorkSeries": true,
	"Novel":              true,
}

// pickWorkNode prefers a node carrying a rating, then any node typed as a
// book or creative work.
func pickWorkNode(nodes []map[string]any) map[string]any {
	for _, n := range nodes {
		if _, ok := n["aggregateRating"]; ok {
			return n
		}
	}
	for _, n := range nodes {
		for _, t := range listField(n["@type"]) {
			if workTypes[t] {
				return n
			}
		}
	}
	return nil
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// nameField reads a person or organization given as a string, an object
// with a name, or a list of either.
func nameField(v any) string {
	switch t := v.(type) {
	case map[string]any:
		return stringField(t["name"])
	case []any:
		for _, item := range t {
			if s := nameField(item); s != "" {
				return s
			}
		}
		return ""
	default:
		return stringField(v)
	}
}

func urlField(v any) string {
	switch t := v.(type) {
	case map[string]any:
		return stringField(t["url"])
	case []any:
		for _, item := range t {
			if s := urlField(item); s != "" {
				return s
			}
		}
		return ""
	default:
		return stringField(v)
	}
}

// listField reads a comma separated string or a list of strings.
func listField(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	case []any:
		for _, item := range t {
			if s := nameField(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func numberField(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func parseISOTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseSiteTime(s string) *time.Time {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range siteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func parseLastUpdated(doc *goquery.Document) *time.Time {
	title := doc.Find(fmt.Sprintf(`span[title^=%q]`, lastUpdatedTitle)).First().AttrOr("title", "")
	if title == "" {
		return nil
	}
	return parseSiteTime(strings.TrimPrefix(title, lastUpdatedTitle))
}

// parseRights reads the text following the copyright icon in the sidebar.
func parseRights(doc *goquery.Document) string {
	rights := ""
	doc.Find(".sb_content.copyright img").Each(func(i int, s *goquery.Selection) {
		if !hasClassContaining(s, "copy") {
			return
		}
		for n := s.Get(0).NextSibling; n != nil; n = n.NextSibling {
			text := strings.TrimSpace(goquery.NewDocumentFromNode(n).Text())
			if text != "" {
				rights = text
				return
			}
		}
	})
	return rights
}

func hasClassContaining(s *goquery.Selection, part string) bool {
	for _, class := range strings.Fields(s.AttrOr("class", "")) {
		if strings.Contains(class, part) {
			return true
		}
	}
	return false
}

func metaProperty(doc *goquery.Document, property string) string {
	return strings.TrimSpace(doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().AttrOr("content", ""))
}

func metaName(doc *goquery.Document, name string) string {
	return strings.TrimSpace(doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First().AttrOr("content", ""))
}

func selectionTexts(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(i int, item *goquery.Selection) {
		out = append(out, item.Text())
	})
	return out
}

func fixAll(items []string, opts ParseOptions) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = opts.fix(item)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
