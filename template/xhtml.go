package template

import (
	"strings"

	"github.com/a-h/templ"
)

// xhtmlProlog goes before every content document. templ writes a lower-case
// HTML doctype, which XML readers reject.
const xhtmlProlog = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
`

// NavLink is one entry of the navigation document.
type NavLink struct {
	Href  string
	Title string
}

// Intro is what the introduction page shows about a work.
type Intro struct {
	Title       string
	Author      string
	Description string
	Subjects    []string
	// Rating is preformatted; empty when unrated
	Rating    string
	SourceURL string
}

// emptyElement renders <name attr="value"/>. templ writes void elements
// such as img and link without the closing slash, so they are not XML.
// attrs holds name and value pairs.
func emptyElement(name string, attrs ...string) templ.Component {
	var b strings.Builder
	b.WriteString("<" + name)
	for i := 0; i+1 < len(attrs); i += 2 {
		b.WriteString(" " + attrs[i] + `="` + templ.EscapeString(attrs[i+1]) + `"`)
	}
	b.WriteString("/>")
	return templ.Raw(b.String())
}

func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
