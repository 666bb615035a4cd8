// Package htmlutils cleans titles that arrive with HTML markup or entities.
package htmlutils

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRegex   = regexp.MustCompile(`<(/?)([a-zA-Z0-9-]+)([^>]*)>`)
	spaceRegex = regexp.MustCompile(`\s+`)
)

// StripHTMLTags removes all HTML tags from text, keeping only the content.
func StripHTMLTags(text string) string {
	result := tagRegex.ReplaceAllString(text, "")
	result = html.UnescapeString(result)

	return strings.TrimSpace(result)
}

// CleanTitle strips tags and entities and collapses runs of whitespace into one space.
func CleanTitle(text string) string {
	return spaceRegex.ReplaceAllString(StripHTMLTags(text), " ")
}
