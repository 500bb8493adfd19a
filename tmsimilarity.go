// tmsimilarity.go
// Package tmsimilarity ranks translation memory candidates and glossary terms.
//
// Similarity blends three Levenshtein measurements of two texts (raw runes,
// user-perceived characters and words) into a score from 0 to 100:
//
//	score = 100 - distance / len(longer) * 100
//
// The distance computation stops as soon as a candidate is proven to fall
// below the stop percentage, so scores under the threshold are approximate.
// TermSimilarity reports whether a glossary term, or a simple inflected form
// of it, occurs near the start of a text.
//
// The functions in this package use default comparers built on first use.
// Use pkg/levenshtein, pkg/terminology and pkg/ranking for configuration.
package tmsimilarity

import (
	"sync"

	"github.com/baditaflorin/go_tm_similarity/pkg/levenshtein"
	"github.com/baditaflorin/go_tm_similarity/pkg/terminology"
)

// DefaultStopPercentage is the threshold used by the package-level helpers.
const DefaultStopPercentage = levenshtein.DefaultStopPercentage

// ErrInvalidArgument is wrapped by errors caused by a stop percentage outside
// [0, 100].
var ErrInvalidArgument = levenshtein.ErrInvalidArgument

var (
	defaultsOnce sync.Once
	defaultsErr  error
	defaultLev   *levenshtein.Comparer
	defaultTerm  *terminology.Comparer
)

func defaults() error {
	defaultsOnce.Do(func() {
		lg, err := createDefaultLogger()
		if err != nil {
			defaultsErr = err
			return
		}
		defaultLev, err = levenshtein.New(levenshtein.WithLogger(lg))
		if err != nil {
			defaultsErr = err
			return
		}
		defaultTerm, defaultsErr = terminology.New(terminology.WithLogger(lg))
	})
	return defaultsErr
}

// Similarity scores candidate b against query a with the default stop
// percentage.
func Similarity(a, b string) (float64, error) {
	return SimilarityWithStop(a, b, DefaultStopPercentage)
}

// SimilarityWithStop scores candidate b against query a. It fails with an
// error wrapping ErrInvalidArgument when stopPercentage is outside
// [0, 100].
func SimilarityWithStop(a, b string, stopPercentage float64) (float64, error) {
	if err := defaults(); err != nil {
		return 0, err
	}
	return defaultLev.Similarity(a, b, stopPercentage)
}

// TermSimilarity scores how well term occurs in text.
func TermSimilarity(text, term string) (float64, error) {
	if err := defaults(); err != nil {
		return 0, err
	}
	return defaultTerm.Similarity(text, term, DefaultStopPercentage)
}
