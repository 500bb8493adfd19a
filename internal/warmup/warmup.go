package warmup

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_tm_similarity/internal/ports"
)

// WarmupConfig defines configuration for warming up the comparers
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Sample text size in bytes; keep it near the comparer's max length
	SampleTextSize int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency:    runtime.NumCPU(),
		Iterations:     200,
		SampleTextSize: 200,
		Duration:       2 * time.Second,
		ForceGC:        true,
	}
}

// Manager primes row pools, compiled tables and segmentation tables by
// running sample comparisons before real traffic arrives.
type Manager struct {
	logger      ports.Logger
	calculators []ports.SimilarityCalculator
	segmenters  []ports.Segmenter
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterCalculator adds a calculator to be warmed up
func (wm *Manager) RegisterCalculator(calc ports.SimilarityCalculator) {
	wm.calculators = append(wm.calculators, calc)
}

// RegisterSegmenter adds a segmenter to be warmed up
func (wm *Manager) RegisterSegmenter(seg ports.Segmenter) {
	wm.segmenters = append(wm.segmenters, seg)
}

// WarmUp runs the warmup process for all registered components and returns
// the number of comparisons performed.
func (wm *Manager) WarmUp(ctx context.Context) int {
	startTime := time.Now()
	wm.logger.Info("Starting warmup",
		"components", len(wm.calculators)+len(wm.segmenters),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	original := generateSampleText(wm.config.SampleTextSize)
	similar := generateSimilarText(original, 0.1)   // 10% difference
	different := generateSimilarText(original, 0.5) // 50% difference

	var (
		mu          sync.Mutex
		comparisons int
	)

	wm.run(ctx, func(j int) {
		for _, seg := range wm.segmenters {
			_ = seg.Characters(original)
			_ = seg.Words(original)
		}

		// Alternate between similarity levels so both the exact and the
		// early-exit paths get exercised.
		for _, calculator := range wm.calculators {
			switch j % 3 {
			case 0:
				_ = calculator.Compute(ctx, original, original)
			case 1:
				_ = calculator.Compute(ctx, original, similar)
			default:
				_ = calculator.Compute(ctx, original, different)
			}
		}

		mu.Lock()
		comparisons += len(wm.calculators)
		mu.Unlock()
	})

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("Warmup completed",
		"duration", time.Since(startTime),
		"comparisons", comparisons,
	)
	return comparisons
}

// run calls step Iterations times on each of Concurrency goroutines,
// stopping early when ctx is done.
func (wm *Manager) run(ctx context.Context, step func(iteration int)) {
	concurrency := wm.config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				step(j)
			}
		}()
	}

	wg.Wait()
}

// generateSampleText creates sample text of the specified size
func generateSampleText(size int) string {
	words := []string{
		"save", "the", "file", "before", "closing", "window", "open",
		"printer", "settings", "category", "download", "update", "cancel",
		"übersetzung", "café", "naïve", "résumé",
	}

	var sb strings.Builder
	for i := 0; sb.Len() < size; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(words[i%len(words)])
	}
	return sb.String()
}

// generateSimilarText replaces the first diffRatio share of the words
func generateSimilarText(original string, diffRatio float64) string {
	words := strings.Fields(original)
	changeCount := int(float64(len(words)) * diffRatio)

	replacements := []string{
		"replaced", "modified", "changed", "altered", "updated",
	}

	newWords := make([]string, len(words))
	copy(newWords, words)
	for i := 0; i < changeCount && i < len(newWords); i++ {
		newWords[i] = replacements[i%len(replacements)]
	}

	return strings.Join(newWords, " ")
}
