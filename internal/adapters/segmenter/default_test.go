package segmenter

import (
	"reflect"
	"testing"
)

func TestCharacters(t *testing.T) {
	seg := NewDefaultSegmenter()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"ascii", "cat", []string{"c", "a", "t"}},
		{"empty", "", nil},
		{"precomposed", "caf\u00e9", []string{"c", "a", "f", "\u00e9"}},
		{"combining mark", "cafe\u0301", []string{"c", "a", "f", "\u00e9"}},
		{"uncomposable mark", "q\u0307x", []string{"q\u0307", "x"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := seg.Characters(tc.text)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestWords(t *testing.T) {
	seg := NewDefaultSegmenter()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"simple", "the quick brown fox", []string{"the", "quick", "brown", "fox"}},
		{"punctuation", "Hello, world!", []string{"Hello", "world"}},
		{"apostrophes", "don't 'quote'", []string{"don't", "quote"}},
		{"hyphen splits", "pre-order", []string{"pre", "order"}},
		{"digits", "version 2 of 10", []string{"version", "2", "of", "10"}},
		{"empty", "", []string{}},
		{"only punctuation", "?!", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := seg.Words(tc.text)
			if len(got) == 0 && len(tc.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestSegmentationIsDeterministic(t *testing.T) {
	seg := NewDefaultSegmenter()
	text := "Ein schöner Tag, nicht wahr?"

	if !reflect.DeepEqual(seg.Characters(text), seg.Characters(text)) {
		t.Error("Characters is not deterministic")
	}
	if !reflect.DeepEqual(seg.Words(text), seg.Words(text)) {
		t.Error("Words is not deterministic")
	}
}
