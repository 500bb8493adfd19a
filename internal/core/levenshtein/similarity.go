package levenshtein

import (
	"context"
	"errors"
	"math"
	"unicode/utf8"

	"github.com/baditaflorin/go_tm_similarity/internal/core/distance"
	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
)

// Default configuration values.
const (
	DefaultStopPercentage = 40.0
	DefaultMaxLength      = 200

	// truncationPenalty is subtracted per truncated operand when the
	// compared prefixes turn out identical.
	truncationPenalty = 7.0
)

// SimilarityConfig holds configuration for the Levenshtein similarity calculator.
type SimilarityConfig struct {
	// StopPercentage is the threshold used by Compute.
	StopPercentage float64
	// MaxLength caps the number of units compared per operand.
	MaxLength int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() SimilarityConfig {
	return SimilarityConfig{
		StopPercentage: DefaultStopPercentage,
		MaxLength:      DefaultMaxLength,
	}
}

// Validate checks if the configuration is valid.
func (c SimilarityConfig) Validate() error {
	if err := domain.CheckStopPercentage(c.StopPercentage); err != nil {
		return err
	}
	if c.MaxLength <= 0 {
		return errors.New("maxLength must be greater than 0")
	}
	return nil
}

// Calculator scores translation memory candidates with a composite of raw,
// character-level and word-level Levenshtein similarity.
type Calculator struct {
	config    SimilarityConfig
	logger    ports.Logger
	segmenter ports.Segmenter
}

// NewCalculator creates a new Levenshtein similarity calculator.
func NewCalculator(config SimilarityConfig, logger ports.Logger, segmenter ports.Segmenter) (*Calculator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Calculator{
		config:    config,
		logger:    logger,
		segmenter: segmenter,
	}, nil
}

// Config returns the calculator configuration.
func (c *Calculator) Config() SimilarityConfig {
	return c.config
}

// Similarity returns the mean of up to three measurements: the raw rune
// comparison, the character-level comparison and the word-level comparison.
//
// When character segmentation leaves both lengths unchanged the raw score is
// counted twice instead of recomputing an identical value, so the raw
// measurement weighs double against the word-level one.
func (c *Calculator) Similarity(a, b string, stopPercentage float64) (float64, error) {
	if err := domain.CheckStopPercentage(stopPercentage); err != nil {
		return 0, err
	}
	maxLen := c.config.MaxLength

	score := similarityReal([]rune(a), []rune(b), stopPercentage, maxLen)
	measurements := 1

	chrA := c.segmenter.Characters(a)
	chrB := c.segmenter.Characters(b)
	lengthChange := abs(len(chrA)-utf8.RuneCountInString(a)) + abs(len(chrB)-utf8.RuneCountInString(b))
	if len(chrA) > 0 && len(chrB) > 0 && lengthChange > 0 {
		score += similarityReal(chrA, chrB, stopPercentage, maxLen)
	} else {
		score *= 2
	}
	measurements++

	wrdA := c.segmenter.Words(a)
	wrdB := c.segmenter.Words(b)
	if len(wrdA)+len(wrdB) > 2 {
		// Word sequences are short, so they are always compared exactly.
		score += similarityReal(wrdA, wrdB, 0, maxLen)
		measurements++
	}

	return score / float64(measurements), nil
}

// SimilarityReal scores a single raw rune comparison.
func (c *Calculator) SimilarityReal(a, b string, stopPercentage float64) (float64, error) {
	if err := domain.CheckStopPercentage(stopPercentage); err != nil {
		return 0, err
	}
	return similarityReal([]rune(a), []rune(b), stopPercentage, c.config.MaxLength), nil
}

// Compute calculates the similarity between query and candidate using the
// configured stop percentage.
func (c *Calculator) Compute(ctx context.Context, query, candidate string) domain.Result {
	c.logger.Debug("Starting levenshtein similarity computation",
		"query", query,
		"candidate", candidate,
	)

	details := make(map[string]interface{})

	// Check context cancellation.
	select {
	case <-ctx.Done():
		c.logger.Error("Computation cancelled", "error", ctx.Err())
		details["error"] = "computation cancelled"
		return domain.Result{
			Name:      "levenshtein_similarity",
			Threshold: c.config.StopPercentage,
			Details:   details,
		}
	default:
		// continue
	}

	queryLen := utf8.RuneCountInString(query)
	candidateLen := utf8.RuneCountInString(candidate)

	score, err := c.Similarity(query, candidate, c.config.StopPercentage)
	if err != nil {
		c.logger.Error("Similarity computation failed", "error", err)
		details["error"] = err.Error()
		return domain.Result{
			Name:      "levenshtein_similarity",
			Threshold: c.config.StopPercentage,
			Details:   details,
		}
	}

	passed := score >= c.config.StopPercentage
	details["max_length"] = c.config.MaxLength
	details["truncated"] = queryLen > c.config.MaxLength || candidateLen > c.config.MaxLength

	c.logger.Debug("Computed levenshtein similarity",
		"score", score,
		"passed", passed,
		"details", details,
	)

	return domain.Result{
		Name:            "levenshtein_similarity",
		Score:           score,
		Passed:          passed,
		QueryLength:     queryLen,
		CandidateLength: candidateLen,
		Threshold:       c.config.StopPercentage,
		Details:         details,
	}
}

// similarityReal scores one granularity. stopPercentage must already be
// validated. Results below stopPercentage are not exact: the length bound is
// returned as is, and a failed distance bound returns stopPercentage - 1.
func similarityReal[T comparable](a, b []T, stopPercentage float64, maxLen int) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	l1, l2 := len(a), len(b)
	if l2 == 0 {
		return 100
	}

	// The distance is at least the length difference.
	maxSimilarity := 100 - 100*float64(l2-l1)/float64(l2)
	if maxSimilarity < stopPercentage {
		return maxSimilarity
	}

	penalty := 0.0
	if l2 > maxLen {
		b = b[:maxLen]
		l2 = maxLen
		penalty += truncationPenalty
		if l1 > maxLen {
			a = a[:maxLen]
			penalty += truncationPenalty
		}
	}

	stopValue := int(math.Ceil((100 - stopPercentage) / 100 * float64(l2)))
	d := distance.Distance(a, b, stopValue)
	if d > stopValue {
		return stopPercentage - 1.0
	}
	// A difference inside the compared prefixes stands for the whole
	// string; only identical prefixes leave the tail in doubt.
	if d != 0 {
		penalty = 0
	}
	return 100 - float64(d)/float64(l2)*100 - penalty
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
