package tmsimilarity

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"kitten sitting", "kitten", "sitting", 100 - 300.0/7},
		{"identical", "The printer is out of paper.", "The printer is out of paper.", 100},
		{"length bound", "cat", "catalogues", 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Similarity(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestSimilarityWithStopRejectsInvalid(t *testing.T) {
	if _, err := SimilarityWithStop("a", "b", -0.5); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestTermSimilarity(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want func(float64) bool
	}{
		{"literal", "the quick brown fox", "quick", func(s float64) bool { return s > 0 && s <= 100 }},
		{"absent", "xyz", "quick", func(s float64) bool { return s == 0 }},
		{"plural", "categories of items", "category", func(s float64) bool { return s == 80 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TermSimilarity(tc.text, tc.term)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.want(got) {
				t.Errorf("unexpected score %v", got)
			}
		})
	}
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := Similarity("kitten", "sitting")
				if err != nil || math.Abs(got-(100-300.0/7)) > 1e-9 {
					t.Errorf("unexpected result %v, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
