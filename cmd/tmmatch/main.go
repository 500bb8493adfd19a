package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/l"
	"github.com/urfave/cli/v2"

	"github.com/baditaflorin/go_tm_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_tm_similarity/internal/adapters/stream"
	"github.com/baditaflorin/go_tm_similarity/internal/config"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
	"github.com/baditaflorin/go_tm_similarity/pkg/levenshtein"
	"github.com/baditaflorin/go_tm_similarity/pkg/ranking"
	"github.com/baditaflorin/go_tm_similarity/pkg/terminology"
)

// Version is set at build time
var Version = "dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func stopFlag() cli.Flag {
	return &cli.Float64Flag{
		Name:    "stop",
		Aliases: []string{"s"},
		Usage:   "Stop percentage (0-100); defaults to the config value",
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:                   "tmmatch",
		Usage:                  "Score translation memory candidates and glossary terms",
		Version:                Version,
		UseShortOptionHandling: true,
		Writer:                 out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file path",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log computation steps to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "compare",
				Usage:     "Levenshtein similarity of a TM candidate to a query",
				ArgsUsage: "QUERY CANDIDATE",
				Flags:     []cli.Flag{stopFlag()},
				Action:    compareAction,
			},
			{
				Name:      "term",
				Usage:     "Score a glossary term inside a text",
				ArgsUsage: "TEXT TERM",
				Flags:     []cli.Flag{stopFlag()},
				Action:    termAction,
			},
			{
				Name:      "rank",
				Usage:     "Rank candidates from FILE (one per line, - for stdin) against QUERY",
				ArgsUsage: "QUERY FILE",
				Flags: []cli.Flag{
					stopFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of matches (0 = config value)",
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "levenshtein or terminology",
						Value:   "levenshtein",
					},
				},
				Action: rankAction,
			},
		},
	}
}

// session bundles what every command needs
type session struct {
	cfg    config.Config
	logger ports.Logger
	out    io.Writer
	json   bool
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	var log ports.Logger
	if c.Bool("verbose") {
		log, err = logger.NewCustomStdLogger(l.Config{
			Output:     os.Stderr,
			JsonFormat: false,
			AddSource:  false,
		})
	} else {
		log, err = logger.NewDiscardLogger()
	}
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, logger: log, out: c.App.Writer, json: c.Bool("json")}, nil
}

func (s *session) stop(c *cli.Context) float64 {
	if c.IsSet("stop") {
		return c.Float64("stop")
	}
	return s.cfg.Matching.StopPercentage
}

func (s *session) levenshtein() (*levenshtein.Comparer, error) {
	return levenshtein.New(
		levenshtein.WithPortLogger(s.logger),
		levenshtein.WithStopPercentage(s.cfg.Matching.StopPercentage),
		levenshtein.WithMaxLength(s.cfg.Matching.MaxLength),
	)
}

func (s *session) terminology() (*terminology.Comparer, error) {
	return terminology.New(
		terminology.WithPortLogger(s.logger),
		terminology.WithStopPercentage(s.cfg.Matching.StopPercentage),
		terminology.WithMaxLength(s.cfg.Matching.TermMaxLength),
		terminology.WithStemming(s.cfg.Matching.Stemming),
	)
}

func (s *session) printScore(score, stop float64) error {
	if s.json {
		return json.NewEncoder(s.out).Encode(map[string]interface{}{
			"score":           score,
			"stop_percentage": stop,
			"passed":          score >= stop,
		})
	}
	_, err := fmt.Fprintf(s.out, "%.2f\n", score)
	return err
}

func compareAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("compare needs QUERY and CANDIDATE")
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.logger.Close()

	lev, err := s.levenshtein()
	if err != nil {
		return err
	}
	stop := s.stop(c)
	score, err := lev.Similarity(c.Args().Get(0), c.Args().Get(1), stop)
	if err != nil {
		return err
	}
	return s.printScore(score, stop)
}

func termAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("term needs TEXT and TERM")
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.logger.Close()

	term, err := s.terminology()
	if err != nil {
		return err
	}
	stop := s.stop(c)
	score, err := term.Similarity(c.Args().Get(0), c.Args().Get(1), stop)
	if err != nil {
		return err
	}
	return s.printScore(score, stop)
}

func rankAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("rank needs QUERY and FILE")
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.logger.Close()

	candidates, err := readCandidates(c.Context, c.Args().Get(1), c.App.Reader, s.logger)
	if err != nil {
		return err
	}

	var scorer ports.Scorer
	switch c.String("mode") {
	case "levenshtein":
		scorer, err = s.levenshtein()
	case "terminology":
		scorer, err = s.terminology()
	default:
		return fmt.Errorf("unknown mode %q", c.String("mode"))
	}
	if err != nil {
		return err
	}

	limit := s.cfg.Ranking.Limit
	if c.Int("limit") > 0 {
		limit = c.Int("limit")
	}
	r, err := ranking.New(scorer,
		ranking.WithPortLogger(s.logger),
		ranking.WithWorkers(s.cfg.Ranking.Workers),
		ranking.WithCacheSize(-1),
		ranking.WithLimit(limit),
	)
	if err != nil {
		return err
	}

	matches, err := r.Rank(c.Context, c.Args().Get(0), candidates, s.stop(c))
	if err != nil {
		return err
	}

	if s.json {
		return json.NewEncoder(s.out).Encode(matches)
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(s.out, "%6.2f\t%d\t%s\n", m.Score, m.Index+1, m.Candidate); err != nil {
			return err
		}
	}
	return nil
}

// readCandidates reads one candidate per non-blank line from path, or from
// stdin when path is "-".
func readCandidates(ctx context.Context, path string, stdin io.Reader, log ports.Logger) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	candidates, err := stream.NewSegmentReader(log, stream.ReaderConfig{SkipBlank: true}).ReadSegments(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	return candidates, nil
}
