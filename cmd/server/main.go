package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_tm_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_tm_similarity/internal/config"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
	"github.com/baditaflorin/go_tm_similarity/internal/warmup"
	"github.com/baditaflorin/go_tm_similarity/pkg/levenshtein"
	"github.com/baditaflorin/go_tm_similarity/pkg/ranking"
	"github.com/baditaflorin/go_tm_similarity/pkg/terminology"
)

// DefaultRankTimeout bounds a single /rank request
const DefaultRankTimeout = 30 * time.Second

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	lg, err := createLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.FromExisting(lg)
	defer log.Close()

	log.Info("Starting TM similarity HTTP server",
		"port", cfg.Server.Port,
		"read_timeout", cfg.Server.ReadTimeout.Duration,
		"write_timeout", cfg.Server.WriteTimeout.Duration,
		"max_request_size", cfg.Server.MaxRequestSize,
		"concurrency", cfg.Server.Concurrency,
	)

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error("Failed to initialize comparers", "error", err)
		os.Exit(1)
	}

	server := &fasthttp.Server{
		Handler:               a.requestHandler,
		ReadTimeout:           cfg.Server.ReadTimeout.Duration,
		WriteTimeout:          cfg.Server.WriteTimeout.Duration,
		MaxRequestBodySize:    cfg.Server.MaxRequestSize,
		Concurrency:           cfg.Server.Concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Server listening", "address", addr)
	if err := server.ListenAndServe(addr); err != nil {
		log.Error("Server error", "error", err)
		return
	}

	<-idleConnsClosed
	log.Info("Server stopped")
}

// parseConfig loads the -config file and applies explicitly set flags on top.
// The merged configuration is validated again.
func parseConfig(args []string) (config.Config, error) {
	defaults := config.Default()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML configuration file")
	port := fs.Int("port", defaults.Server.Port, "HTTP server port")
	readTimeout := fs.Duration("read-timeout", defaults.Server.ReadTimeout.Duration, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", defaults.Server.WriteTimeout.Duration, "HTTP write timeout")
	maxRequestSize := fs.Int("max-request-size", defaults.Server.MaxRequestSize, "Maximum request size in bytes")
	concurrency := fs.Int("concurrency", defaults.Server.Concurrency, "Maximum number of concurrent requests (0 = fasthttp default)")
	warmUp := fs.Bool("warm-up", defaults.Server.WarmUp, "Perform warm-up on startup")
	logFile := fs.String("log-file", defaults.Log.File, "Log file path (empty = stdout)")
	if err := fs.Parse(args); err != nil {
		return defaults, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, err
	}

	// Explicit flags win over the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "read-timeout":
			cfg.Server.ReadTimeout.Duration = *readTimeout
		case "write-timeout":
			cfg.Server.WriteTimeout.Duration = *writeTimeout
		case "max-request-size":
			cfg.Server.MaxRequestSize = *maxRequestSize
		case "concurrency":
			cfg.Server.Concurrency = *concurrency
		case "warm-up":
			cfg.Server.WarmUp = *warmUp
		case "log-file":
			cfg.Log.File = *logFile
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// newApp builds the comparers and rankers described by cfg
func newApp(cfg config.Config, log ports.Logger) (*app, error) {
	lev, err := levenshtein.New(
		levenshtein.WithPortLogger(log),
		levenshtein.WithStopPercentage(cfg.Matching.StopPercentage),
		levenshtein.WithMaxLength(cfg.Matching.MaxLength),
	)
	if err != nil {
		return nil, fmt.Errorf("levenshtein comparer: %w", err)
	}

	term, err := terminology.New(
		terminology.WithPortLogger(log),
		terminology.WithStopPercentage(cfg.Matching.StopPercentage),
		terminology.WithMaxLength(cfg.Matching.TermMaxLength),
		terminology.WithStemming(cfg.Matching.Stemming),
	)
	if err != nil {
		return nil, fmt.Errorf("terminology comparer: %w", err)
	}

	rankOpts := []ranking.Option{
		ranking.WithPortLogger(log),
		ranking.WithWorkers(cfg.Ranking.Workers),
		ranking.WithCacheSize(cfg.Ranking.CacheSize),
		ranking.WithLimit(cfg.Ranking.Limit),
	}
	tmRanker, err := ranking.New(lev, rankOpts...)
	if err != nil {
		return nil, fmt.Errorf("tm ranker: %w", err)
	}
	termRanker, err := ranking.New(term, rankOpts...)
	if err != nil {
		return nil, fmt.Errorf("term ranker: %w", err)
	}

	if cfg.Server.WarmUp {
		lev.WarmUp(context.Background(), warmup.DefaultWarmupConfig())
	}

	log.Info("Comparers initialized successfully",
		"warm_up", cfg.Server.WarmUp,
		"cpus", runtime.NumCPU(),
	)

	return &app{
		logger:      log,
		levenshtein: lev,
		terminology: term,
		tmRanker:    tmRanker,
		termRanker:  termRanker,
		timeout:     DefaultRankTimeout,
	}, nil
}

// createLogger creates and configures a logger
func createLogger(cfg config.Log) (l.Logger, error) {
	factory := l.NewStandardFactory()

	var output io.Writer = os.Stdout
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  cfg.JSON,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
