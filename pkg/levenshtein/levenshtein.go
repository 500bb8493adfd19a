// Package levenshtein scores translation memory candidates against a query
// with a bounded, early-terminating Levenshtein similarity.
package levenshtein

import (
	"context"

	"github.com/baditaflorin/l"

	"github.com/baditaflorin/go_tm_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_tm_similarity/internal/adapters/segmenter"
	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
	"github.com/baditaflorin/go_tm_similarity/internal/core/levenshtein"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
	"github.com/baditaflorin/go_tm_similarity/internal/warmup"
)

// Default configuration values.
const (
	DefaultStopPercentage = levenshtein.DefaultStopPercentage
	DefaultMaxLength      = levenshtein.DefaultMaxLength
)

// ErrInvalidArgument is wrapped by errors caused by a stop percentage outside
// [0, 100]. Test for it with errors.Is.
var ErrInvalidArgument = domain.ErrInvalidArgument

// Comparer computes the composite Levenshtein similarity of two texts.
type Comparer struct {
	calculator *levenshtein.Calculator
	logger     ports.Logger
	segmenter  ports.Segmenter
	warmed     bool
}

// Option defines a functional option for configuring Comparer.
type Option func(*comparerConfig)

type comparerConfig struct {
	StopPercentage float64
	MaxLength      int
	Logger         ports.Logger
	Segmenter      ports.Segmenter
	WarmUp         bool
	WarmUpConfig   warmup.WarmupConfig
}

// WithStopPercentage sets the threshold used by Compute.
func WithStopPercentage(p float64) Option {
	return func(cfg *comparerConfig) {
		cfg.StopPercentage = p
	}
}

// WithMaxLength sets how many units of each operand are compared.
func WithMaxLength(n int) Option {
	return func(cfg *comparerConfig) {
		cfg.MaxLength = n
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

// WithSegmenter sets the character and word segmentation collaborator.
func WithSegmenter(seg ports.Segmenter) Option {
	return func(cfg *comparerConfig) {
		cfg.Segmenter = seg
	}
}

// WithWarmUp enables warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *comparerConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) Option {
	return func(cfg *comparerConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Comparer.
func New(opts ...Option) (*Comparer, error) {
	defaultConfig := levenshtein.DefaultConfig()

	config := &comparerConfig{
		StopPercentage: defaultConfig.StopPercentage,
		MaxLength:      defaultConfig.MaxLength,
		WarmUpConfig:   warmup.DefaultWarmupConfig(),
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

	if config.Segmenter == nil {
		config.Segmenter = segmenter.NewDefaultSegmenter()
	}

	coreConfig := levenshtein.SimilarityConfig{
		StopPercentage: config.StopPercentage,
		MaxLength:      config.MaxLength,
	}
	calculator, err := levenshtein.NewCalculator(coreConfig, config.Logger, config.Segmenter)
	if err != nil {
		return nil, err
	}

	c := &Comparer{
		calculator: calculator,
		logger:     config.Logger,
		segmenter:  config.Segmenter,
	}

	if config.WarmUp {
		c.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return c, nil
}

// Similarity returns the composite similarity score of a and b. Scores below
// stopPercentage may be approximate. It returns an error wrapping
// ErrInvalidArgument when stopPercentage is outside [0, 100].
func (c *Comparer) Similarity(a, b string, stopPercentage float64) (float64, error) {
	return c.calculator.Similarity(a, b, stopPercentage)
}

// Compute scores query against candidate using the configured stop percentage.
func (c *Comparer) Compute(ctx context.Context, query, candidate string) domain.Result {
	return c.calculator.Compute(ctx, query, candidate)
}

// StopPercentage returns the configured stop percentage.
func (c *Comparer) StopPercentage() float64 {
	return c.calculator.Config().StopPercentage
}

// Close releases the logger.
func (c *Comparer) Close() error {
	return c.logger.Close()
}

// WarmUp primes pools and tables by running sample comparisons.
func (c *Comparer) WarmUp(ctx context.Context, config warmup.WarmupConfig) {
	if c.warmed {
		c.logger.Debug("Comparer already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(c.logger, config)
	warmupMgr.RegisterCalculator(c.calculator)
	warmupMgr.RegisterSegmenter(c.segmenter)

	warmupMgr.WarmUp(ctx)
	c.warmed = true
}
