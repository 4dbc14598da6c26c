// Package scribblehubtest serves a small fake Scribble Hub for tests.
package scribblehubtest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// PNG is a 1x1 transparent image.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type Chapter struct {
	Order int
	Title string
	// Date uses the site format, e.g. "Feb 3, 2024 10:00 AM"
	Date string
	// Body is the inner HTML of #chp_raw
	Body string
	// Broken pages have no chapter content container
	Broken bool
}

type Site struct {
	StoryID     int
	Slug        string
	Title       string
	Author      string
	Description string
	Genres      []string
	Tags        []string
	Rights      string
	Updated     string
	// LDJSON is written verbatim into a structured data block when set
	LDJSON   string
	Chapters []Chapter
	// PageSize splits the table of contents into pages; 0 keeps one page
	PageSize int
	NoCover  bool
}

// DefaultSite is a three chapter work spread over two TOC pages.
func DefaultSite() Site {
	return Site{
		StoryID:     123456,
		Slug:        "the-test-story",
		Title:       "The Test Story",
		Author:      "Jane Writer",
		Description: "A story about tests.",
		Genres:      []string{"Fantasy", "Romance"},
		Tags:        []string{"Magic", "Slice of Life"},
		Rights:      "All Rights Reserved",
		Updated:     "Mar 1, 2024 09:05 PM",
		LDJSON: `{"@context":"https://schema.org","@type":"Book","name":"The Test Story",` +
			`"author":{"@type":"Person","name":"Jane Writer"},` +
			`"aggregateRating":{"@type":"AggregateRating","ratingValue":"4.5","ratingCount":"12"}}`,
		Chapters: []Chapter{
			{Order: 1, Title: "Prologue", Date: "Jan 5, 2024 08:00 AM", Body: "<p>It begins.</p>"},
			{Order: 2, Title: "The Middle", Date: "Feb 3, 2024 10:00 AM", Body: "<p>It goes on.</p><p><img src=\"/images/map.png\"></p>"},
			{Order: 3, Title: "The End", Date: "Mar 1, 2024 09:05 PM", Body: "<p>It ends.</p>"},
		},
		PageSize: 2,
	}
}

type Server struct {
	*httptest.Server
	Site Site

	mu   sync.Mutex
	hits map[string]int
	// Fail maps a request path to the status code served instead
	Fail map[string]int
}

var chapterPath = regexp.MustCompile(`^/read/\d+-[^/]*/chapter/(\d+)/?$`)

func NewServer(t testing.TB, site Site) *Server {
	t.Helper()
	s := &Server{Site: site, hits: make(map[string]int), Fail: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) SeriesURL() string {
	return fmt.Sprintf("%s/series/%d/%s/", s.URL, s.Site.StoryID, s.Site.Slug)
}

func (s *Server) ChapterURL(order int) string {
	return fmt.Sprintf("%s/read/%d-%s/chapter/%d/", s.URL, s.Site.StoryID, s.Site.Slug, 1000+order)
}

// Hits returns the number of requests served so far.
func (s *Server) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// HitsFor returns the number of requests for a path plus query.
func (s *Server) HitsFor(pathAndQuery string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[pathAndQuery]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.RequestURI()]++
	status, fail := s.Fail[r.URL.Path]
	s.mu.Unlock()

	if fail {
		w.WriteHeader(status)
		return
	}

	seriesPath := fmt.Sprintf("/series/%d/%s/", s.Site.StoryID, s.Site.Slug)
	switch {
	case r.URL.Path == seriesPath, r.URL.Path == fmt.Sprintf("/series/%d/", s.Site.StoryID):
		page, _ := strconv.Atoi(r.URL.Query().Get("toc"))
		if page < 1 {
			page = 1
		}
		writeHTML(w, s.seriesPage(page))
	case chapterPath.MatchString(r.URL.Path):
		id, _ := strconv.Atoi(chapterPath.FindStringSubmatch(r.URL.Path)[1])
		for _, c := range s.Site.Chapters {
			if 1000+c.Order == id {
				writeHTML(w, chapterPage(c))
				return
			}
		}
		http.NotFound(w, r)
	case strings.HasPrefix(r.URL.Path, "/images/"):
		w.Header().Set("Content-Type", "image/png")
		w.Write(PNG)
	default:
		http.NotFound(w, r)
	}
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	w.Write([]byte(body))
}

func (s *Server) tocPages() [][]Chapter {
	chapters := append([]Chapter(nil), s.Site.Chapters...)
	// the site lists newest first
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].Order > chapters[j].Order })
	size := s.Site.PageSize
	if size <= 0 || size >= len(chapters) {
		return [][]Chapter{chapters}
	}
	var pages [][]Chapter
	for len(chapters) > 0 {
		n := size
		if n > len(chapters) {
			n = len(chapters)
		}
		pages = append(pages, chapters[:n])
		chapters = chapters[n:]
	}
	return pages
}

func (s *Server) seriesPage(page int) string {
	site := s.Site
	e := html.EscapeString
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`)
	fmt.Fprintf(&b, `<meta property="og:url" content="%s">`, e(s.SeriesURL()))
	fmt.Fprintf(&b, `<meta property="og:title" content="%s">`, e(site.Title))
	if !site.NoCover {
		fmt.Fprintf(&b, `<meta property="og:image" content="%s/images/cover.png">`, s.URL)
	}
	fmt.Fprintf(&b, `<meta name="twitter:creator" content="%s">`, e(site.Author))
	b.WriteString(`<meta property="og:site_name" content="Scribble Hub">`)
	if site.LDJSON != "" {
		fmt.Fprintf(&b, `<script type="application/ld+json">%s</script>`, site.LDJSON)
	}
	b.WriteString(`</head><body>`)
	fmt.Fprintf(&b, `<div class="fic_title">%s</div>`, e(site.Title))
	fmt.Fprintf(&b, `<div class="wi_fic_desc" property="description"><p>%s</p></div>`, e(site.Description))
	b.WriteString(`<div class="wi_fic_genre">`)
	for _, g := range site.Genres {
		fmt.Fprintf(&b, `<a class="fic_genre" href="#">%s</a>`, e(g))
	}
	b.WriteString(`</div><div class="wi_fic_showtags">`)
	for _, tag := range site.Tags {
		fmt.Fprintf(&b, `<a class="stag" href="#">%s</a>`, e(tag))
	}
	b.WriteString(`</div>`)
	if site.Updated != "" {
		fmt.Fprintf(&b, `<span title="Last updated: %s">1 day ago</span>`, e(site.Updated))
	}
	if site.Rights != "" {
		fmt.Fprintf(&b, `<div class="sb_content copyright"><img class="copy" src="/images/copy.png">%s</div>`, e(site.Rights))
	}

	pages := s.tocPages()
	b.WriteString(`<div class="wi_fic_table toc"><ol class="toc_ol">`)
	if page <= len(pages) {
		for _, c := range pages[page-1] {
			fmt.Fprintf(&b, `<li class="toc_w" order="%d"><a class="toc_a" href="%s">%s</a><span class="fic_date_pub" title="%s">ago</span></li>`,
				c.Order, e(s.ChapterURL(c.Order)), e(c.Title), e(c.Date))
		}
	}
	b.WriteString(`</ol></div>`)
	if len(pages) > 1 {
		b.WriteString(`<div id="pagination-mesh-toc">`)
		for i := range pages {
			fmt.Fprintf(&b, `<a class="page-link" href="?toc=%d#content1">%d</a>`, i+1, i+1)
		}
		b.WriteString(`<a class="page-link next" href="#">»</a></div>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func chapterPage(c Chapter) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"><script>var x = 1;</script></head><body>`)
	fmt.Fprintf(&b, `<div class="chapter-title">%s</div>`, html.EscapeString(c.Title))
	b.WriteString(`<div class="chp-nav">Previous | Next</div>`)
	if !c.Broken {
		fmt.Fprintf(&b, `<div id="chp_contents"><div id="chp_raw" class="chp_raw">%s<div class="wi_ad">ad</div><script>ads();</script></div></div>`, c.Body)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}
