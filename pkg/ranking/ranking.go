// Package ranking orders many candidates against one query in parallel.
package ranking

import (
	"context"
	"errors"

	"github.com/baditaflorin/l"

	"github.com/baditaflorin/go_tm_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_tm_similarity/internal/adapters/ranker"
	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
	"github.com/baditaflorin/go_tm_similarity/pkg/terminology"
)

// ErrInvalidArgument is wrapped by Rank errors caused by a stop percentage
// outside [0, 100].
var ErrInvalidArgument = domain.ErrInvalidArgument

// Match is a ranked candidate.
type Match = domain.Match

// Ranker scores candidates with a levenshtein or terminology Comparer.
type Ranker struct {
	ranker *ranker.Ranker
	logger ports.Logger
}

// Option defines a functional option for configuring Ranker.
type Option func(*rankerConfig)

type rankerConfig struct {
	ranker.Config
	Logger ports.Logger
}

// WithWorkers bounds concurrent comparisons. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(cfg *rankerConfig) {
		cfg.Workers = n
	}
}

// WithCacheSize sets the number of memoized scores; negative disables the cache.
func WithCacheSize(n int) Option {
	return func(cfg *rankerConfig) {
		cfg.CacheSize = n
	}
}

// WithLimit caps the number of returned matches.
func WithLimit(n int) Option {
	return func(cfg *rankerConfig) {
		cfg.Limit = n
	}
}

// WithRequireMatch drops candidates scoring 0 regardless of the stop
// percentage. It defaults to true for a *terminology.Comparer, whose 0 means
// the term was not found.
func WithRequireMatch(enable bool) Option {
	return func(cfg *rankerConfig) {
		cfg.RequireMatch = enable
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *rankerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithPortLogger sets a logger that already implements ports.Logger.
func WithPortLogger(lg ports.Logger) Option {
	return func(cfg *rankerConfig) {
		cfg.Logger = lg
	}
}

// New creates a Ranker around scorer, typically a *levenshtein.Comparer or a
// *terminology.Comparer.
func New(scorer ports.Scorer, opts ...Option) (*Ranker, error) {
	if scorer == nil {
		return nil, errors.New("scorer must not be nil")
	}

	config := &rankerConfig{Config: ranker.DefaultConfig()}
	if _, ok := scorer.(*terminology.Comparer); ok {
		config.RequireMatch = true
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.Workers < 0 || config.Limit < 0 {
		return nil, errors.New("workers and limit must not be negative")
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	return &Ranker{
		ranker: ranker.NewRanker(scorer, config.Config, config.Logger),
		logger: config.Logger,
	}, nil
}

// Rank returns the candidates scoring at least stopPercentage, best first.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []string, stopPercentage float64) ([]Match, error) {
	return r.ranker.Rank(ctx, query, candidates, stopPercentage)
}

// Close releases the logger.
func (r *Ranker) Close() error {
	return r.logger.Close()
}
