package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

const maxRepairPasses = 3

var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"′", "'", "″", `"`,
)

// FixText repairs mojibake, drops characters XML cannot carry, optionally
// straightens curly quotes, and returns the NFC form of s.
func FixText(s string, straightenQuotes bool) string {
	s = StripInvalidXML(RepairMojibake(s))
	if straightenQuotes {
		s = StraightenQuotes(s)
	}
	return norm.NFC.String(s)
}

// StripInvalidXML removes runes outside the XML 1.0 Char production, such
// as form feeds and vertical tabs pasted in from word processors.
func StripInvalidXML(s string) string {
	if strings.IndexFunc(s, invalidXMLRune) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if invalidXMLRune(r) {
			return -1
		}
		return r
	}, s)
}

func invalidXMLRune(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20:
		return true
	case r >= 0xD800 && r <= 0xDFFF:
		return true
	case r == 0xFFFE || r == 0xFFFF:
		return true
	}
	return false
}

// StraightenQuotes replaces typographic quotes with their ASCII forms.
func StraightenQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// RepairMojibake undoes UTF-8 text that was decoded as Windows-1252 (or
// Latin-1), possibly more than once. Text that does not re-decode to valid
// UTF-8 is left as it is.
func RepairMojibake(s string) string {
	for i := 0; i < maxRepairPasses; i++ {
		fixed := repairOnce(s)
		if fixed == s {
			break
		}
		s = fixed
	}
	return s
}

func repairOnce(s string) string {
	if isASCII(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); {
		if _, ok := legacyByte(runes[i]); !ok {
			b.WriteRune(runes[i])
			i++
			continue
		}

		j := i
		raw := make([]byte, 0, 8)
		for j < len(runes) {
			c, ok := legacyByte(runes[j])
			if !ok {
				break
			}
			raw = append(raw, c)
			j++
		}

		// each rune in the run maps to exactly one byte
		for k := 0; k < len(raw); {
			r, size := utf8.DecodeRune(raw[k:])
			if r != utf8.RuneError && size > 1 {
				b.WriteRune(r)
				k += size
				continue
			}
			b.WriteRune(runes[i+k])
			k++
		}
		i = j
	}
	return b.String()
}

// legacyByte returns the single byte a non-ASCII rune had before it was
// mis-decoded as Windows-1252. C1 controls stand for themselves, which
// covers the Latin-1 case and the bytes Windows-1252 leaves undefined.
func legacyByte(r rune) (byte, bool) {
	if r < utf8.RuneSelf {
		return 0, false
	}
	if r >= 0x80 && r <= 0x9F {
		return byte(r), true
	}
	c, ok := charmap.Windows1252.EncodeRune(r)
	if !ok || c < 0x80 {
		return 0, false
	}
	return c, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
