package terminology

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/surgebase/porter2"

	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
)

// Default configuration values.
const (
	DefaultStopPercentage = 40.0
	DefaultMaxLength      = 500

	// positionWeight is the number of points a match at the very end of the
	// window loses against a match at position 0.
	positionWeight = 10.0
	variantScore   = 80.0
	minTermLength  = 3
)

// contextPattern matches a trailing disambiguation note such as "file (noun)".
var contextPattern = regexp.MustCompile(`\s+\(.*\)\s*$`)

type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rewriteRules are tried in order against a term that was not found literally.
var rewriteRules = []rewriteRule{
	{regexp.MustCompile(`y\s*$`), "ie"}, // category / categories
	{regexp.MustCompile(`[\s-]+`), ""},  // down time / downtime, pre-order / preorder
	{regexp.MustCompile(`-`), " "},      // pre-order / pre order
	{regexp.MustCompile(` `), "-"},      // pre order / pre-order
}

// SimilarityConfig holds configuration for the terminology calculator.
type SimilarityConfig struct {
	StopPercentage float64
	// MaxLength is the size of the text window searched, in runes.
	MaxLength int
	// Stemming adds a final Porter2 rule matching the stem of the last word.
	Stemming bool
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

// Calculator finds glossary terms, or inflected variants of them, inside a
// text.
type Calculator struct {
	config SimilarityConfig
	logger ports.Logger
}

// NewCalculator creates a new terminology calculator.
func NewCalculator(config SimilarityConfig, logger ports.Logger) (*Calculator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Calculator{
		config: config,
		logger: logger,
	}, nil
}

// Config returns the calculator configuration.
func (c *Calculator) Config() SimilarityConfig {
	return c.config
}

// Similarity scores how well term occurs in the first MaxLength runes of text,
// on the scale documented in pkg/terminology. A rewrite that leaves an empty
// variant never matches. The stop percentage is validated but does not change
// the score.
func (c *Calculator) Similarity(text, term string, stopPercentage float64) (float64, error) {
	if err := domain.CheckStopPercentage(stopPercentage); err != nil {
		return 0, err
	}

	term = contextPattern.ReplaceAllString(term, "")
	if utf8.RuneCountInString(term) < minTermLength {
		return 0, nil
	}

	window, windowLen := truncate(text, c.config.MaxLength)

	if idx := strings.Index(window, term); idx >= 0 {
		pos := utf8.RuneCountInString(window[:idx])
		return 100 - float64(pos)*positionWeight/float64(windowLen), nil
	}

	for _, rule := range rewriteRules {
		variant := rule.pattern.ReplaceAllString(term, rule.replacement)
		if variant != "" && strings.Contains(window, variant) {
			return variantScore, nil
		}
	}

	if c.config.Stemming {
		if variant, ok := stemLastWord(term); ok && strings.Contains(window, variant) {
			return variantScore, nil
		}
	}

	return 0, nil
}

// Compute scores term against text using the configured stop percentage.
func (c *Calculator) Compute(ctx context.Context, text, term string) domain.Result {
	c.logger.Debug("Starting terminology computation",
		"text", text,
		"term", term,
	)

	details := make(map[string]interface{})

	select {
	case <-ctx.Done():
		c.logger.Error("Computation cancelled", "error", ctx.Err())
		details["error"] = "computation cancelled"
		return domain.Result{
			Name:      "terminology_similarity",
			Threshold: c.config.StopPercentage,
			Details:   details,
		}
	default:
	}

	score, err := c.Similarity(text, term, c.config.StopPercentage)
	if err != nil {
		c.logger.Error("Terminology computation failed", "error", err)
		details["error"] = err.Error()
		return domain.Result{
			Name:      "terminology_similarity",
			Threshold: c.config.StopPercentage,
			Details:   details,
		}
	}

	switch {
	case score == variantScore:
		details["match"] = "variant"
	case score > 0:
		details["match"] = "literal"
	default:
		details["match"] = "none"
	}
	passed := score > 0 && score >= c.config.StopPercentage

	c.logger.Debug("Computed terminology similarity",
		"score", score,
		"passed", passed,
	)

	return domain.Result{
		Name:            "terminology_similarity",
		Score:           score,
		Passed:          passed,
		QueryLength:     utf8.RuneCountInString(text),
		CandidateLength: utf8.RuneCountInString(term),
		Threshold:       c.config.StopPercentage,
		Details:         details,
	}
}

// truncate returns the first n runes of s and the rune length of the result.
func truncate(s string, n int) (string, int) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], count
		}
		count++
	}
	return s, count
}

// stemLastWord replaces the last word of a lower-case term by its Porter2 stem.
func stemLastWord(term string) (string, bool) {
	cut := strings.LastIndexAny(term, " -") + 1
	last := term[cut:]
	if last != strings.ToLower(last) {
		return "", false
	}
	stem := porter2.Stem(last)
	if stem == last || utf8.RuneCountInString(stem) < minTermLength {
		return "", false
	}
	return term[:cut] + stem, true
}
