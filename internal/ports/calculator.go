package ports

import (
	"context"

	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
)

// SimilarityCalculator defines the interface for computing similarity between texts
// using the calculator's configured stop percentage.
type SimilarityCalculator interface {
	Compute(ctx context.Context, query, candidate string) domain.Result
}

// Scorer returns a 0-100 similarity score for a pair of texts. Scores below
// stopPercentage are not exact: implementations may give up early and return
// any value under the threshold.
type Scorer interface {
	Similarity(a, b string, stopPercentage float64) (float64, error)
}
