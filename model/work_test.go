package model

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectsDedupInOrder(t *testing.T) {
	w := &Work{
		Genres: []string{"Fantasy", "Romance", " fantasy "},
		Tags:   []string{"Magic", "Romance", "", "Isekai"},
	}
	assert.Equal(t, []string{"Fantasy", "Romance", "Magic", "Isekai"}, w.Subjects())
}

func TestAddAssetDedupBySourceURL(t *testing.T) {
	w := &Work{}
	assert.True(t, w.AddAsset(&Asset{SourceURL: "https://img/a.png"}))
	assert.False(t, w.AddAsset(&Asset{SourceURL: "https://img/a.png"}))
	assert.True(t, w.AddAsset(&Asset{SourceURL: "https://img/b.png"}))
	assert.Len(t, w.Assets, 2)
	assert.True(t, w.HasAsset("https://img/b.png"))
	assert.False(t, w.HasAsset("https://img/c.png"))
}

func TestModified(t *testing.T) {
	w := &Work{}
	assert.Equal(t, time.Unix(0, 0).UTC(), w.Modified())

	early := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	w.Chapters = []*Chapter{{Published: &late}, {Published: &early}, {}}
	assert.Equal(t, late, w.Modified())

	updated := time.Date(2024, 2, 3, 4, 5, 0, 0, time.FixedZone("X", 3600))
	w.Updated = &updated
	assert.Equal(t, updated.UTC(), w.Modified())
}

func TestImageExtAndAssetName(t *testing.T) {
	assert.Equal(t, ".png", ImageExt("https://cdn.example.com/x/Pic.PNG?w=300", ""))
	assert.Equal(t, ".webp", ImageExt("https://cdn.example.com/img", "image/webp"))
	assert.Equal(t, ".jpg", ImageExt("https://cdn.example.com/img", ""))
	assert.Equal(t, "image/png", ImageMediaType(".png"))
	assert.Equal(t, "image/jpeg", ImageMediaType(".bmp"))

	// sha1("https://example.com/a.png")
	name := AssetName("https://example.com/a.png", ".png")
	assert.Len(t, name, 44)
	assert.Equal(t, name, AssetName("https://example.com/a.png", ".png"))
	assert.NotEqual(t, name, AssetName("https://example.com/b.png", ".png"))
}

func TestMetadataMarshal(t *testing.T) {
	dc := &DublinCoreMetadata{
		Titles:      []DCTitle{{Value: "A & B"}},
		Identifiers: []DCIdentifier{{Value: "https://example.com/series/1/a/", ID: "book-id", Scheme: "URI"}},
		Metas:       []DublinCoreMeta{{Name: "calibre:rating", Content: "4.5"}},
	}
	out, err := dc.Marshal()
	require.NoError(t, err)
	assert.Contains(t, out, `<dc:title>A &amp; B</dc:title>`)
	assert.Contains(t, out, `<dc:identifier id="book-id" opf:scheme="URI">https://example.com/series/1/a/</dc:identifier>`)
	assert.Contains(t, out, `<meta name="calibre:rating" content="4.5"></meta>`)
}

func TestNavMapAdd(t *testing.T) {
	n := &NavMap{}
	n.Add("intro", "Synopsis", "Text/intro.xhtml")
	n.Add("chapter-0001", "One", "Text/chapter-0001.xhtml")

	out, err := xml.Marshal(n)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<navPoint id="chapter-0001" playOrder="2"><navLabel><text>One</text></navLabel><content src="Text/chapter-0001.xhtml"></content></navPoint>`)
}
