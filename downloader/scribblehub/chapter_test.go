package scribblehub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribblehub-to-epub/model"
	apperrors "scribblehub-to-epub/pkg/errors"
)

const chapterURL = "https://www.scribblehub.com/read/123456-the-test-story/chapter/1001/"

func chapterHTML(inner string) string {
	return `<html><body><div class="chapter-title">Chapter 1: Startâ€™s</div>
<div id="chp_contents"><div id="chp_raw" class="chp_raw">` + inner + `</div></div></body></html>`
}

func TestParseChapterCleansContent(t *testing.T) {
	body := chapterHTML(`<p>First<br>line</p><script>evil()</script><div class="wi_ad">buy</div>` +
		`<ins class="adsbygoogle"></ins><p>Itâ€™s “quoted”</p><hr>`)

	ch, err := ParseChapter(chapterURL, body, ChapterOptions{ParseOptions: ParseOptions{StraightenQuotes: true}})
	require.NoError(t, err)

	assert.Equal(t, "Chapter 1: Start's", ch.Title)
	assert.Equal(t, `<p>First<br/>line</p><p>It&#39;s &#34;quoted&#34;</p><hr/>`, ch.Content)
	assert.Empty(t, ch.Images)
}

func TestParseChapterKeepsCurlyQuotesWhenAsked(t *testing.T) {
	ch, err := ParseChapter(chapterURL, chapterHTML(`<p>“x”</p>`), ChapterOptions{})
	require.NoError(t, err)
	assert.Equal(t, `<p>“x”</p>`, ch.Content)
}

func TestParseChapterMissingContent(t *testing.T) {
	_, err := ParseChapter(chapterURL, `<html><body><div class="chapter-title">T</div></body></html>`, ChapterOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParsing))
}

func TestParseChapterImages(t *testing.T) {
	body := chapterHTML(`<p><img src="/img/a.png" class="big" srcset="x 2x"></p>` +
		`<p><img src="https://cdn.example.com/b.jpg" alt="B"></p><p><img src="/img/a.png"></p><img src="">`)

	ch, err := ParseChapter(chapterURL, body, ChapterOptions{Images: true})
	require.NoError(t, err)

	a := "https://www.scribblehub.com/img/a.png"
	b := "https://cdn.example.com/b.jpg"
	assert.Equal(t, []string{a, b}, ch.Images)
	assert.Contains(t, ch.Content, `<img src="../Images/`+model.AssetName(a, ".png")+`" alt=""/>`)
	assert.Contains(t, ch.Content, `<img src="../Images/`+model.AssetName(b, ".jpg")+`" alt="B"/>`)
	assert.NotContains(t, ch.Content, "srcset")
}

func TestParseChapterDropsImagesWhenDisabled(t *testing.T) {
	ch, err := ParseChapter(chapterURL, chapterHTML(`<p>x<img src="/img/a.png"></p>`), ChapterOptions{})
	require.NoError(t, err)
	assert.Empty(t, ch.Images)
	assert.Equal(t, `<p>x</p>`, ch.Content)
}

func TestParseChapterFootnotes(t *testing.T) {
	body := chapterHTML(`<p>Text<sup class="modern-footnotes-footnote" data-mfn="1">` +
		`<a href="javascript:void(0)" role="button" aria-describedby="mfn-content-1">1</a></sup> more.</p>` +
		`<span class="modern-footnotes-footnote__note" data-mfn="1">A <em>note</em>.</span>`)

	ch, err := ParseChapter(chapterURL, body, ChapterOptions{})
	require.NoError(t, err)

	assert.Contains(t, ch.Content, `<a href="#note-1" id="noteanchor-1" epub:type="noteref">1</a>`)
	assert.Contains(t, ch.Content, `<h2 id="footnotes">Footnotes</h2>`)
	assert.Contains(t, ch.Content, `<aside id="note-1" epub:type="footnote"><a href="#noteanchor-1">1.</a> A <em>note</em>.</aside>`)
	assert.NotContains(t, ch.Content, "modern-footnotes-footnote__note")
	assert.NotContains(t, ch.Content, "javascript")
}

func TestParseChapterFootnoteWithoutNoteIsLeftAlone(t *testing.T) {
	body := chapterHTML(`<p>Text<sup class="modern-footnotes-footnote" data-mfn="2"><a>2</a></sup></p>`)

	ch, err := ParseChapter(chapterURL, body, ChapterOptions{})
	require.NoError(t, err)
	assert.NotContains(t, ch.Content, "Footnotes")
}

func TestParseChapterDropsControlCharacters(t *testing.T) {
	body := `<html><body><div class="chapter-title">Form` + "\x0c" + `feed</div>` +
		`<div id="chp_raw"><p>page` + "\x0c" + `break</p><p>` + "\x0b" + `</p><p title="a` + "\x0b" + `b">x</p></div></body></html>`

	ch, err := ParseChapter(chapterURL, body, ChapterOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Formfeed", ch.Title)
	assert.Equal(t, `<p>pagebreak</p><p></p><p title="ab">x</p>`, ch.Content)
}
