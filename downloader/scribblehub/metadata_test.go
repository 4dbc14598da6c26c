package scribblehub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scribblehub-to-epub/pkg/errors"
)

const seriesURL = "https://www.scribblehub.com/series/123456/the-test-story/"

const seriesPage = `<!DOCTYPE html><html lang="en"><head>
<meta property="og:url" content="https://www.scribblehub.com/series/123456/the-test-story/">
<meta property="og:title" content="The Test Story">
<meta property="og:image" content="https://cdn.scribblehub.com/images/cover.jpg">
<meta name="twitter:creator" content="Jane Writer">
<meta property="og:site_name" content="Scribble Hub">
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
 {"@type":"WebSite","name":"Scribble Hub"},
 {"@type":"Book","name":"The Test Story","genre":["Fantasy","Romance","Fantasy"],
  "keywords":"Magic, Romance, Isekai",
  "aggregateRating":{"@type":"AggregateRating","ratingValue":"4.5","ratingCount":12}}
]}
</script>
</head><body>
<div class="wi_fic_desc"><p>Itâ€™s a story.</p></div>
<a class="fic_genre">Action</a>
<a class="stag">Ignored</a>
<span title="Last updated: Mar 1, 2024 09:05 PM">1 day ago</span>
<div class="sb_content copyright"><img class="copy" src="/c.png"> All Rights Reserved </div>
</body></html>`

func TestParseWork(t *testing.T) {
	work, err := ParseWork(seriesURL, seriesPage, ParseOptions{StraightenQuotes: true})
	require.NoError(t, err)

	assert.Equal(t, seriesURL, work.URL)
	assert.Equal(t, 123456, work.ID)
	assert.Equal(t, "the-test-story", work.Slug)
	assert.Equal(t, "The Test Story", work.Title)
	assert.Equal(t, "Jane Writer", work.Author)
	assert.Equal(t, "It's a story.", work.Description)
	assert.Equal(t, "https://cdn.scribblehub.com/images/cover.jpg", work.CoverURL)
	assert.Equal(t, "Scribble Hub", work.Publisher)
	assert.Equal(t, "en", work.Language)
	assert.Equal(t, "All Rights Reserved", work.Rights)

	// structured data wins over markup
	assert.Equal(t, []string{"Fantasy", "Romance"}, work.Genres)
	assert.Equal(t, []string{"Magic", "Romance", "Isekai"}, work.Tags)

	require.NotNil(t, work.Rating)
	assert.Equal(t, 4.5, *work.Rating)
	assert.Equal(t, 12, work.RatingCount)

	require.NotNil(t, work.Updated)
	assert.Equal(t, time.Date(2024, 3, 1, 21, 5, 0, 0, time.UTC), *work.Updated)
}

func TestParseWorkMarkupFallback(t *testing.T) {
	page := `<html><head><meta property="og:title" content="Plain"></head><body>
<div class="wi_fic_desc">Desc</div>
<a class="fic_genre">Drama</a><a class="fic_genre"> Drama </a><a class="fic_genre">Comedy</a>
<a class="stag">Tag A</a><a class="stag">Tag B</a>
</body></html>`

	work, err := ParseWork(seriesURL, page, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Drama", "Comedy"}, work.Genres)
	assert.Equal(t, []string{"Tag A", "Tag B"}, work.Tags)
	assert.Nil(t, work.Rating)
	assert.Nil(t, work.Updated)
	assert.Equal(t, "Scribble Hub", work.Publisher)
	assert.Equal(t, "", work.Rights)
}

func TestParseWorkRatingAsNumber(t *testing.T) {
	page := `<html><head><meta property="og:title" content="T">
<script type="application/ld+json">{"@type":"Book","aggregateRating":{"ratingValue":3.25,"ratingCount":"7"}}</script>
</head></html>`

	work, err := ParseWork(seriesURL, page, ParseOptions{})
	require.NoError(t, err)
	require.NotNil(t, work.Rating)
	assert.Equal(t, 3.25, *work.Rating)
	assert.Equal(t, 7, work.RatingCount)
}

func TestParseWorkMalformedStructuredData(t *testing.T) {
	page := `<html><head><meta property="og:title" content="T">
<script type="application/ld+json">{"@type":"Book",</script></head></html>`

	_, err := ParseWork(seriesURL, page, ParseOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParsing))
}

func TestParseWorkMissingTitle(t *testing.T) {
	_, err := ParseWork(seriesURL, `<html><body><p>nothing</p></body></html>`, ParseOptions{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParsing))
}

func TestParseWorkTitleFromStructuredData(t *testing.T) {
	page := `<html><head><script type="application/ld+json">[{"@type":"Book","name":"From JSON","author":[{"name":"A. Person"}]}]</script></head></html>`

	work, err := ParseWork(seriesURL, page, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "From JSON", work.Title)
	assert.Equal(t, "A. Person", work.Author)
}

func TestParseSiteTime(t *testing.T) {
	got := parseSiteTime("Jan 5, 2024 8:00 AM")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), *got)
	assert.Nil(t, parseSiteTime("yesterday"))
}
