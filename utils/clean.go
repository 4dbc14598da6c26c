package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)
	repeatedSpaces  = regexp.MustCompile(`\s+`)
)

const maxFileNameLen = 200

// CleanFileName makes input safe to use as a single path component.
func CleanFileName(input string) string {
	cleaned := unsafeNameChars.ReplaceAllString(input, "_")
	cleaned = repeatedSpaces.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " .")

	if len(cleaned) > maxFileNameLen {
		cut := maxFileNameLen
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = strings.TrimSpace(cleaned[:cut])
	}
	if cleaned == "" {
		return "_"
	}
	return cleaned
}

