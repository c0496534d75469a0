package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"finchwire.dev/newsvet/internal/cli"
	"finchwire.dev/newsvet/internal/config"
	"finchwire.dev/newsvet/internal/db"
	"finchwire.dev/newsvet/internal/logging"
)

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Query timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("stats failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	fpStats, err := pool.QueryFingerprintStats(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("query fingerprint stats failed")
		fmt.Fprintf(os.Stderr, "Failed to query fingerprint stats: %v\n", err)
		return 1
	}

	fmt.Printf("fingerprints total=%d", fpStats.TotalFingerprints)
	if fpStats.OldestPublishedAt != nil {
		fmt.Printf(" oldest=%s", fpStats.OldestPublishedAt.UTC().Format(time.RFC3339))
	}
	if fpStats.NewestPublishedAt != nil {
		fmt.Printf(" newest=%s", fpStats.NewestPublishedAt.UTC().Format(time.RFC3339))
	}
	fmt.Println()

	metric, err := pool.LatestQualityMetrics(ctx)
	if err != nil {
		if db.IsNoRows(err) {
			fmt.Println("quality no rollup yet")
			return 0
		}
		logger.Error().Err(err).Msg("query quality metrics failed")
		fmt.Fprintf(os.Stderr, "Failed to query quality metrics: %v\n", err)
		return 1
	}

	fmt.Printf(
		"quality date=%s total=%d unique=%d duplicates=%d avg_score=%.2f sources=%d last_24h=%d last_7d=%d\n",
		metric.MetricDate.Format("2006-01-02"),
		metric.TotalNews,
		metric.UniqueNews,
		metric.DuplicateNews,
		metric.AvgQualityScore,
		metric.SourcesActive,
		metric.NewsLast24h,
		metric.NewsLast7d,
	)
	return 0
}
