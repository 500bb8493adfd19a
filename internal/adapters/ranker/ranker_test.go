package ranker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/baditaflorin/go_tm_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_tm_similarity/internal/adapters/segmenter"
	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
	"github.com/baditaflorin/go_tm_similarity/internal/core/levenshtein"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
)

type stubScorer struct {
	calls  atomic.Int64
	scores map[string]float64
	err    error
}

func (s *stubScorer) Similarity(_, candidate string, _ float64) (float64, error) {
	s.calls.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[candidate], nil
}

func newTestLogger(t *testing.T) ports.Logger {
	t.Helper()
	log, err := logger.NewDiscardLogger()
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestRankOrdersAndFilters(t *testing.T) {
	log := newTestLogger(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	scorer := &stubScorer{scores: map[string]float64{
		"low":    10,
		"high":   95,
		"middle": 60,
		"tie":    60,
	}}
	r := NewRanker(scorer, Config{Workers: 2}, log)

	matches, err := r.Rank(context.Background(), "query", []string{"low", "middle", "high", "tie"}, 40)
	require.NoError(t, err)

	assert.Equal(t, []domain.Match{
		{Candidate: "high", Index: 2, Score: 95},
		{Candidate: "middle", Index: 1, Score: 60},
		{Candidate: "tie", Index: 3, Score: 60},
	}, matches)
}

func TestRankLimit(t *testing.T) {
	log := newTestLogger(t)
	scorer := &stubScorer{scores: map[string]float64{"a": 50, "b": 70, "c": 90}}
	r := NewRanker(scorer, Config{Limit: 2}, log)

	matches, err := r.Rank(context.Background(), "q", []string{"a", "b", "c"}, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "c", matches[0].Candidate)
	assert.Equal(t, "b", matches[1].Candidate)
}

func TestRankCachesScores(t *testing.T) {
	log := newTestLogger(t)
	scorer := &stubScorer{scores: map[string]float64{"a": 50, "b": 70}}
	r := NewRanker(scorer, DefaultConfig(), log)

	for i := 0; i < 3; i++ {
		_, err := r.Rank(context.Background(), "q", []string{"a", "b"}, 40)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), scorer.calls.Load())

	// A different threshold is a different lookup.
	_, err := r.Rank(context.Background(), "q", []string{"a", "b"}, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(4), scorer.calls.Load())
}

func TestRankWithoutCache(t *testing.T) {
	log := newTestLogger(t)
	scorer := &stubScorer{scores: map[string]float64{"a": 50}}
	r := NewRanker(scorer, Config{CacheSize: -1}, log)

	for i := 0; i < 3; i++ {
		_, err := r.Rank(context.Background(), "q", []string{"a"}, 40)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), scorer.calls.Load())
}

func TestRankPropagatesErrors(t *testing.T) {
	log := newTestLogger(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	boom := errors.New("boom")
	r := NewRanker(&stubScorer{err: boom}, Config{Workers: 4}, log)

	_, err := r.Rank(context.Background(), "q", []string{"a", "b", "c"}, 40)
	assert.ErrorIs(t, err, boom)
}

func TestRankCancelled(t *testing.T) {
	log := newTestLogger(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRanker(&stubScorer{}, Config{}, log)
	_, err := r.Rank(ctx, "q", []string{"a", "b"}, 40)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRankRequireMatchAtZeroStop(t *testing.T) {
	log := newTestLogger(t)
	scorer := &stubScorer{scores: map[string]float64{"quick": 97.5, "zebra": 0, "ab": 0}}
	candidates := []string{"quick", "zebra", "ab"}

	r := NewRanker(scorer, Config{RequireMatch: true}, log)
	matches, err := r.Rank(context.Background(), "the quick brown fox", candidates, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.Match{{Candidate: "quick", Index: 0, Score: 97.5}}, matches)

	r = NewRanker(scorer, Config{}, log)
	matches, err = r.Rank(context.Background(), "the quick brown fox", candidates, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestRankInvalidStopPercentage(t *testing.T) {
	log := newTestLogger(t)
	r := NewRanker(&stubScorer{}, Config{}, log)

	_, err := r.Rank(context.Background(), "q", []string{"a"}, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRankTranslationMemory(t *testing.T) {
	log := newTestLogger(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	calc, err := levenshtein.NewCalculator(levenshtein.DefaultConfig(), log, segmenter.NewDefaultSegmenter())
	require.NoError(t, err)
	r := NewRanker(calc, DefaultConfig(), log)

	tm := []string{
		"Save the file before closing",
		"Open the file",
		"Save the files before closing",
		"Printer not found",
	}
	matches, err := r.Rank(context.Background(), "Save the file before closing", tm, 40)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(matches), 2)
	assert.Equal(t, 0, matches[0].Index)
	assert.Equal(t, 100.0, matches[0].Score)
	assert.Equal(t, 2, matches[1].Index)
	for _, m := range matches {
		assert.NotEqual(t, "Printer not found", m.Candidate)
	}
}
