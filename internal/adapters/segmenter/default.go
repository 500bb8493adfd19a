package segmenter

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/baditaflorin/go_tm_similarity/internal/ports"
)

// DefaultSegmenter implements the default text segmentation strategy.
type DefaultSegmenter struct{}

// NewDefaultSegmenter creates a new default segmenter.
func NewDefaultSegmenter() ports.Segmenter {
	return &DefaultSegmenter{}
}

// Characters splits text into NFC segments: a starter followed by any
// combining marks counts as one character, and decomposed sequences are
// composed first.
func (s *DefaultSegmenter) Characters(text string) []string {
	if text == "" {
		return nil
	}
	chars := make([]string, 0, len(text))
	var it norm.Iter
	it.InitString(norm.NFC, text)
	for !it.Done() {
		chars = append(chars, string(it.Next()))
	}
	return chars
}

// Words splits text into runs of letters, digits and marks. Apostrophes are
// kept inside words (don't, l'homme) but trimmed from the edges.
func (s *DefaultSegmenter) Words(text string) []string {
	fields := strings.FieldsFunc(text, isSeparator)
	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'’")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func isSeparator(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return false
	case r == '\'' || r == '’':
		return false
	}
	return true
}
