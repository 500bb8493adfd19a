package ranker

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baditaflorin/go_tm_similarity/internal/cache"
	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
)

// Config holds configuration for a Ranker.
type Config struct {
	// Workers bounds concurrent comparisons. 0 means GOMAXPROCS.
	Workers int
	// CacheSize is the number of memoized scores. 0 means cache.DefaultSize,
	// a negative value disables memoization.
	CacheSize int
	// Limit caps the number of returned matches. 0 means no limit.
	Limit int
	// RequireMatch drops candidates scoring 0 even when the stop percentage
	// is 0. Scorers for which 0 means "not found" set it.
	RequireMatch bool
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		CacheSize: cache.DefaultSize,
	}
}

// Ranker scores many candidates against one query in parallel and returns
// the ones meeting the stop percentage, best first.
type Ranker struct {
	scorer  ports.Scorer
	logger  ports.Logger
	cache   *cache.LRU
	workers      int
	limit        int
	requireMatch bool
}

// NewRanker creates a ranker around scorer.
func NewRanker(scorer ports.Scorer, config Config, logger ports.Logger) *Ranker {
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	r := &Ranker{
		scorer:  scorer,
		logger:  logger,
		workers:      workers,
		limit:        config.Limit,
		requireMatch: config.RequireMatch,
	}
	if config.CacheSize >= 0 {
		r.cache = cache.NewLRU(config.CacheSize)
	}
	return r
}

// Rank scores every candidate against query. Candidates scoring below
// stopPercentage are dropped; ties keep their input order.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []string, stopPercentage float64) ([]domain.Match, error) {
	if err := domain.CheckStopPercentage(stopPercentage); err != nil {
		return nil, err
	}

	startTime := time.Now()
	r.logger.Debug("Ranking candidates",
		"candidates", len(candidates),
		"workers", r.workers,
		"stop_percentage", stopPercentage,
	)

	scores := make([]float64, len(candidates))
	stopKey := strconv.FormatFloat(stopPercentage, 'g', -1, 64)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, candidate := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score, err := r.score(query, candidate, stopPercentage, stopKey)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("Ranking failed", "error", err)
		return nil, err
	}

	matches := make([]domain.Match, 0, len(candidates))
	for i, score := range scores {
		if r.passes(score, stopPercentage) {
			matches = append(matches, domain.Match{
				Candidate: candidates[i],
				Index:     i,
				Score:     score,
			})
		}
	}
	slices.SortStableFunc(matches, func(a, b domain.Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if r.limit > 0 && len(matches) > r.limit {
		matches = matches[:r.limit]
	}

	r.logger.Debug("Ranked candidates",
		"matches", len(matches),
		"duration", time.Since(startTime),
	)
	return matches, nil
}

func (r *Ranker) passes(score, stopPercentage float64) bool {
	if r.requireMatch && score <= 0 {
		return false
	}
	return score >= stopPercentage
}

func (r *Ranker) score(query, candidate string, stopPercentage float64, stopKey string) (float64, error) {
	if r.cache == nil {
		return r.scorer.Similarity(query, candidate, stopPercentage)
	}

	key := cache.Key(query, candidate, stopKey)
	if score, ok := r.cache.Get(key); ok {
		return score, nil
	}
	score, err := r.scorer.Similarity(query, candidate, stopPercentage)
	if err != nil {
		return 0, err
	}
	r.cache.Set(key, score)
	return score, nil
}
