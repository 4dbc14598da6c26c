package scribblehub

import (
	"fmt"
	"html"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var unsafeNoteID = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// convertFootnotes turns Modern Footnotes tooltips into EPUB footnotes:
// each reference becomes a noteref link and each note an aside collected
// under a trailing Footnotes heading.
func convertFootnotes(doc *goquery.Document, content *goquery.Selection) {
	var asides []string
	seen := make(map[string]struct{})

	content.Find(".modern-footnotes-footnote[data-mfn]").Each(func(i int, ref *goquery.Selection) {
		mfn := ref.AttrOr("data-mfn", "")
		id := unsafeNoteID.ReplaceAllString(mfn, "_")
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}

		note := doc.Find(fmt.Sprintf(`.modern-footnotes-footnote__note[data-mfn=%q]`, mfn)).First()
		if note.Length() == 0 {
			return
		}
		seen[id] = struct{}{}

		anchor := ref.Find("a").Last()
		if anchor.Length() == 0 {
			ref.SetHtml("<a>" + html.EscapeString(mfn) + "</a>")
			anchor = ref.Find("a").Last()
		}
		for _, attr := range []string{"role", "aria-pressed", "aria-describedby"} {
			anchor.RemoveAttr(attr)
		}
		anchor.SetAttr("id", "noteanchor-"+id)
		anchor.SetAttr("href", "#note-"+id)
		anchor.SetAttr("epub:type", "noteref")

		body, err := note.Html()
		if err != nil {
			return
		}
		note.Remove()
		asides = append(asides, fmt.Sprintf(
			`<aside id="note-%s" epub:type="footnote"><a href="#noteanchor-%s">%s.</a> %s</aside>`,
			id, id, html.EscapeString(mfn), body,
		))
	})

	if len(asides) == 0 {
		return
	}
	content.AppendHtml(`<h2 id="footnotes">Footnotes</h2>`)
	for _, aside := range asides {
		content.AppendHtml(aside)
	}
}
