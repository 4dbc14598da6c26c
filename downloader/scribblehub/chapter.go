package scribblehub

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"scribblehub-to-epub/model"
	apperrors "scribblehub-to-epub/pkg/errors"
	"scribblehub-to-epub/utils"
)

// junkSelectors match site chrome and ads inside the chapter body.
const junkSelectors = "script, style, noscript, iframe, ins, form, button, .adsbygoogle, .wi_ad, .chp-nav, .sp-wrap-nav"

type ChapterOptions struct {
	ParseOptions
	Images bool
}

// ParsedChapter is a chapter page reduced to what goes into the book.
type ParsedChapter struct {
	Title   string
	Content string
	// Images are absolute source URLs in document order, without repeats
	Images []string
}

// ParseChapter extracts the title and cleaned XHTML body of a chapter page.
func ParseChapter(chapterURL, body string, opts ChapterOptions) (*ParsedChapter, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, apperrors.NewParsing(chapterURL, "failed to parse html", err)
	}

	content := doc.Find("#chp_raw").First()
	if content.Length() == 0 {
		content = doc.Find(".chp_raw").First()
	}
	if content.Length() == 0 {
		return nil, apperrors.NewParsing(chapterURL, "chapter content not found", nil)
	}

	chapter := &ParsedChapter{
		Title: opts.fix(doc.Find(".chapter-title").First().Text()),
	}

	content.Find(junkSelectors).Remove()
	convertFootnotes(doc, content)
	chapter.Images = rewriteImages(chapterURL, content, opts.Images)

	for _, n := range content.Nodes {
		repairNodeText(n, opts.ParseOptions)
	}

	inner, err := content.Html()
	if err != nil {
		return nil, apperrors.NewParsing(chapterURL, "failed to serialize chapter content", err)
	}
	chapter.Content = strings.TrimSpace(inner)
	return chapter, nil
}

// rewriteImages points embedded images at their packaged copies, or drops
// them when embedding is off.
func rewriteImages(chapterURL string, content *goquery.Selection, embed bool) []string {
	var images []string
	seen := make(map[string]struct{})
	content.Find("img").Each(func(i int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		if !embed || src == "" || strings.HasPrefix(src, "data:") {
			s.Remove()
			return
		}
		abs, err := resolveURL(chapterURL, src)
		if err != nil {
			s.Remove()
			return
		}

		name := model.AssetName(abs, model.ImageExt(abs, ""))
		s.SetAttr("src", "../Images/"+name)
		for _, attr := range []string{"srcset", "sizes", "data-src", "loading", "decoding", "class", "style"} {
			s.RemoveAttr(attr)
		}
		if _, ok := s.Attr("alt"); !ok {
			s.SetAttr("alt", "")
		}

		if _, ok := seen[abs]; !ok {
			seen[abs] = struct{}{}
			images = append(images, abs)
		}
	})
	return images
}

// repairNodeText applies text repair to every text node and to the
// human-readable attributes below n.
func repairNodeText(n *html.Node, opts ParseOptions) {
	switch n.Type {
	case html.TextNode:
		n.Data = fixKeepSpace(n.Data, opts)
	case html.ElementNode:
		for i, attr := range n.Attr {
			if attr.Key == "alt" || attr.Key == "title" {
				n.Attr[i].Val = fixKeepSpace(attr.Val, opts)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		repairNodeText(c, opts)
	}
}

// fixKeepSpace repairs s without trimming it, so inline spacing survives.
func fixKeepSpace(s string, opts ParseOptions) string {
	if strings.TrimSpace(s) == "" {
		return utils.StripInvalidXML(s)
	}
	return utils.FixText(s, opts.StraightenQuotes)
}
