package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairMojibake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"apostrophe", "Itâ€™s fine", "It’s fine"},
		{"accent", "cafÃ©", "café"},
		{"em dash", "wait\u00e2\u20ac\u201dwhat", "wait\u2014what"},
		{"ellipsis", "soâ€¦", "so…"},
		{"double encoded", "\u00c3\u00a2\u00e2\u201a\u00ac\u00e2\u201e\u00a2", "\u2019"},
		{"ascii untouched", "plain text", "plain text"},
		{"legit latin", "naïve café résumé", "naïve café résumé"},
		{"legit cjk", "日本語のテキスト", "日本語のテキスト"},
		{"legit quotes", "“quoted”", "“quoted”"},
		{"mixed", "Ã© and é", "é and é"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairMojibake(tt.in))
		})
	}
}

func TestFixText(t *testing.T) {
	assert.Equal(t, "It's \"fine\"", FixText("Itâ€™s “fine”", true))
	assert.Equal(t, "It’s “fine”", FixText("Itâ€™s “fine”", false))

	// combining acute is composed
	assert.Equal(t, "é", FixText("é", true))
	assert.Equal(t, "naïve café", FixText("naïve café", true))
}

func TestStraightenQuotes(t *testing.T) {
	assert.Equal(t, `'a' "b" 'c' "d"`, StraightenQuotes("‘a’ “b” ‚c‛ „d‟"))
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Author - Title", "Author - Title"},
		{`What/If: "Why"?`, "What_If_ _Why__"},
		{"  spaced   out  ", "spaced out"},
		{"trailing dots...", "trailing dots"},
		{"", "_"},
		{"<>", "__"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanFileName(tt.in), tt.in)
	}
}

func TestCleanFileNameTruncatesOnRuneBoundary(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "日本"
	}
	got := CleanFileName(long)
	assert.LessOrEqual(t, len(got), maxFileNameLen)
	assert.Equal(t, 0, len(got)%3)
}

func TestStripInvalidXML(t *testing.T) {
	assert.Equal(t, "pagebreak", StripInvalidXML("page\x0cbreak"))
	assert.Equal(t, "ab", StripInvalidXML("a\x00\x0b\x1fb"))
	assert.Equal(t, "a\tb\nc\r", StripInvalidXML("a\tb\nc\r"))
	assert.Equal(t, "ab", StripInvalidXML("a\uffffb\ufffe"))
	assert.Equal(t, "日本", StripInvalidXML("日本"))

	assert.Equal(t, "It’s done", FixText("Itâ€™s done\x0c", false))
	assert.Equal(t, "Title", FixText("Ti\x0btle", true))
}
