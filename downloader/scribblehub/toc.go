package scribblehub

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	apperrors "scribblehub-to-epub/pkg/errors"
)

// ChapterRef is one entry of the series table of contents.
type ChapterRef struct {
	Index     int
	URL       string
	Title     string
	Published *time.Time
}

// ParseTOC reads the chapter entries of one table of contents page and the
// number of the last page (1 when the list is not paginated).
func ParseTOC(pageURL, body string) ([]ChapterRef, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, 0, apperrors.NewParsing(pageURL, "failed to parse html", err)
	}

	var refs []ChapterRef
	doc.Find("li.toc_w").EachWithBreak(func(i int, s *goquery.Selection) bool {
		link := s.Find("a.toc_a").First()
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		order, convErr := strconv.Atoi(strings.TrimSpace(s.AttrOr("order", "")))
		if convErr != nil {
			err = apperrors.NewParsing(pageURL, "table of contents entry without a numeric order", convErr)
			return false
		}
		abs, resolveErr := resolveURL(pageURL, href)
		if resolveErr != nil {
			err = apperrors.NewParsing(pageURL, "invalid chapter link "+href, resolveErr)
			return false
		}
		refs = append(refs, ChapterRef{
			Index:     order,
			URL:       abs,
			Title:     strings.TrimSpace(link.Text()),
			Published: parseSiteTime(s.Find("span.fic_date_pub").First().AttrOr("title", "")),
		})
		return true
	})
	if err != nil {
		return nil, 0, err
	}

	lastPage := 1
	doc.Find("#pagination-mesh-toc a.page-link").Each(func(i int, s *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(s.Text())); err == nil && n > lastPage {
			lastPage = n
		}
	})

	return refs, lastPage, nil
}

// MergeTOC joins the entries of several pages, drops repeated URLs and
// orders the result by ascending site order.
func MergeTOC(pages ...[]ChapterRef) []ChapterRef {
	seen := make(map[string]struct{})
	var merged []ChapterRef
	for _, page := range pages {
		for _, ref := range page {
			if _, ok := seen[ref.URL]; ok {
				continue
			}
			seen[ref.URL] = struct{}{}
			merged = append(merged, ref)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Index < merged[j].Index
	})
	return merged
}
