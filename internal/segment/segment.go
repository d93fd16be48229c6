package segment

import (
	"regexp"
	"strings"
)

// Sentence boundaries are sentence-final punctuation followed by whitespace.
// The punctuation stays attached to the preceding sentence; the whitespace
// run is consumed. Abbreviations and decimal numbers are not handled, which
// is acceptable for short first-person discussion posts.
var boundary = regexp.MustCompile(`[.!?]\s+`)

// Split returns the ordered sentences of text. An empty or whitespace-only
// document yields no sentences.
func Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var sentences []string
	last := 0
	for _, loc := range boundary.FindAllStringIndex(text, -1) {
		cut := loc[0] + 1
		sentences = append(sentences, text[last:cut])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}
