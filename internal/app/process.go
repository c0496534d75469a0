package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"finchwire.dev/newsvet/internal/cli"
	"finchwire.dev/newsvet/internal/config"
	"finchwire.dev/newsvet/internal/db"
	"finchwire.dev/newsvet/internal/dedup"
	"finchwire.dev/newsvet/internal/logging"
	"finchwire.dev/newsvet/internal/news"
	"finchwire.dev/newsvet/internal/rules"
	"finchwire.dev/newsvet/internal/validation"
	payloadschema "finchwire.dev/newsvet/schema"
)

// runProcess is the batch pipeline: read raw item JSON files, reject
// duplicates, score the survivors, persist the valid ones, and refresh the
// daily quality rollup.
func runProcess(args []string) int {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	dir := fs.String("dir", "testdata/news_items", "Directory containing .json news item files")
	recursive := fs.Bool("recursive", true, "Recursively scan subdirectories")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall batch timeout")
	skipRollup := fs.Bool("skip-rollup", false, "Skip the quality metrics rollup after saving")

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

	items, skipped, err := loadRawItems(strings.TrimSpace(*dir), *recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load items: %v\n", err)
		return 1
	}
	if len(items) == 0 {
		fmt.Fprintf(os.Stderr, "No valid news item payloads found under %s\n", strings.TrimSpace(*dir))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("process failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	orch := validation.New(
		dedup.NewDetector(dedup.StoreWithTimeout(pool, cfg.StoreTimeout), logger),
		rules.NewEngine(pool, logger),
		logger,
	)

	started := time.Now()
	results := orch.ValidateBatch(ctx, items)

	stats, err := pool.SaveProcessedBatch(ctx, results)
	if err != nil {
		logger.Error().Err(err).Msg("batch save failed")
		fmt.Fprintf(os.Stderr, "Batch save failed: %v\n", err)
		return 1
	}

	if !*skipRollup {
		if err := pool.UpsertQualityMetrics(ctx); err != nil {
			logger.Warn().Err(err).Msg("quality metrics rollup failed")
		}
	}

	logger.Info().
		Int("items", len(items)).
		Int("skipped_payloads", skipped).
		Int("saved", stats.Saved).
		Int("duplicates", stats.Duplicates).
		Int("rejected", stats.Rejected).
		Dur("elapsed", time.Since(started)).
		Msg("batch processed")

	fmt.Printf(
		"process items=%d skipped_payloads=%d saved=%d duplicates=%d rejected=%d\n",
		len(items), skipped, stats.Saved, stats.Duplicates, stats.Rejected,
	)
	return 0
}

// loadRawItems reads every .json file under dir and converts the valid
// payloads. Files that fail payload validation are reported and skipped,
// not fatal: one bad scrape must not block the batch.
func loadRawItems(dir string, recursive bool) ([]news.RawItem, int, error) {
	files, err := collectJSONFiles(dir, recursive)
	if err != nil {
		return nil, 0, err
	}

	items := make([]news.RawItem, 0, len(files))
	skipped := 0
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			skipped++
			fmt.Fprintf(os.Stderr, "SKIP %s: read failed: %v\n", path, err)
			continue
		}

		item, err := payloadschema.ValidateItemPayload(json.RawMessage(raw))
		if err != nil {
			skipped++
			fmt.Fprintf(os.Stderr, "SKIP %s: %v\n", path, err)
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}
