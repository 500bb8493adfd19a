// Package terminology detects glossary terms, including simple inflected
// variants, inside a text.
//
// Scores use three bands:
//
//	(90, 100]  literal match; 100 at position 0, losing up to 10 points
//	           linearly with the rune position inside the search window
//	80         a rewritten variant (category/categories, pre-order/preorder,
//	           or the stemmed last word when stemming is enabled)
//	0          no match, or a term shorter than 3 runes
//
// A trailing note in parentheses, as in "file (noun)", is ignored.
package terminology

import (
	"context"

	"github.com/baditaflorin/l"

	"github.com/baditaflorin/go_tm_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
	"github.com/baditaflorin/go_tm_similarity/internal/core/terminology"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
)

// Default configuration values.
const (
	DefaultStopPercentage = terminology.DefaultStopPercentage
	DefaultMaxLength      = terminology.DefaultMaxLength
)

// ErrInvalidArgument is wrapped by errors caused by a stop percentage outside
// [0, 100]. Test for it with errors.Is.
var ErrInvalidArgument = domain.ErrInvalidArgument

// Comparer scores term occurrences in a text.
type Comparer struct {
	calculator *terminology.Calculator
	logger     ports.Logger
}

// Option defines a functional option for configuring Comparer.
type Option func(*comparerConfig)

type comparerConfig struct {
	StopPercentage float64
	MaxLength      int
	Stemming       bool
	Logger         ports.Logger
}

// WithStopPercentage sets the threshold used by Compute.
func WithStopPercentage(p float64) Option {
	return func(cfg *comparerConfig) {
		cfg.StopPercentage = p
	}
}

// WithMaxLength sets the size of the searched text window in runes.
func WithMaxLength(n int) Option {
	return func(cfg *comparerConfig) {
		cfg.MaxLength = n
	}
}

// WithStemming enables the Porter2 stem rule after the rewrite rules.
func WithStemming(enable bool) Option {
	return func(cfg *comparerConfig) {
		cfg.Stemming = enable
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *comparerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithPortLogger sets a logger that already implements ports.Logger.
func WithPortLogger(lg ports.Logger) Option {
	return func(cfg *comparerConfig) {
		cfg.Logger = lg
	}
}

// New creates a new Comparer.
func New(opts ...Option) (*Comparer, error) {
	defaultConfig := terminology.DefaultConfig()

	config := &comparerConfig{
		StopPercentage: defaultConfig.StopPercentage,
		MaxLength:      defaultConfig.MaxLength,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	calculator, err := terminology.NewCalculator(terminology.SimilarityConfig{
		StopPercentage: config.StopPercentage,
		MaxLength:      config.MaxLength,
		Stemming:       config.Stemming,
	}, config.Logger)
	if err != nil {
		return nil, err
	}

	return &Comparer{
		calculator: calculator,
		logger:     config.Logger,
	}, nil
}

// Similarity scores term in text on the package scale. It returns an error
// wrapping ErrInvalidArgument when stopPercentage is outside [0, 100].
func (c *Comparer) Similarity(text, term string, stopPercentage float64) (float64, error) {
	return c.calculator.Similarity(text, term, stopPercentage)
}

// Compute scores term against text using the configured stop percentage.
func (c *Comparer) Compute(ctx context.Context, text, term string) domain.Result {
	return c.calculator.Compute(ctx, text, term)
}

// StopPercentage returns the configured stop percentage.
func (c *Comparer) StopPercentage() float64 {
	return c.calculator.Config().StopPercentage
}

// Close releases the logger.
func (c *Comparer) Close() error {
	return c.logger.Close()
}
