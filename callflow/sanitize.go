package callflow

import (
	"regexp"
	"strings"
)

var (
	brTags   = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTags = regexp.MustCompile(`<[^>]*>`)
)

// SpeechText converts reply HTML into speakable text: line breaks become
// whitespace, every remaining tag span is removed.
func SpeechText(html string) string {
	text := brTags.ReplaceAllString(html, " ")
	text = htmlTags.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
