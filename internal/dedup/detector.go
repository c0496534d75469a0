// Package dedup decides whether an incoming news item repeats something the
// store has already seen. Detection is an ordered, short-circuiting cascade
// of strategies from strongest signal (canonical URL identity) to weakest
// (lexical similarity of contents).
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"finchwire.dev/newsvet/internal/globaltime"
	"finchwire.dev/newsvet/internal/news"
)

const (
	titleSourceWindow = 24 * time.Hour
	titleWindow       = 48 * time.Hour
	contentWindow     = 72 * time.Hour
	similarityWindow  = 24 * time.Hour

	similarityThreshold   = 0.85
	similarityCandidates  = 20
	minSubstantiveContent = 100
)

// Strategy identifies which cascade step flagged a duplicate.
type Strategy string

const (
	StrategyNone        Strategy = ""
	StrategyURL         Strategy = "exact_url"
	StrategyTitleSource Strategy = "title_source_24h"
	StrategyTitle       Strategy = "title_48h"
	StrategyContent     Strategy = "content_72h"
	StrategySimilarity  Strategy = "similarity"
)

// Decision is the detector's verdict for one item. Strategy is set only
// when Duplicate is true; Similarity carries the winning Jaccard score for
// the similarity strategy.
type Decision struct {
	Duplicate  bool
	Strategy   Strategy
	Similarity float64
}

// StoredContent is a similarity candidate: content of a recently stored
// item from another source.
type StoredContent struct {
	Source  string
	Content string
}

// Store is the persistent fingerprint store the cascade reads and writes.
// Implementations must scope every call to the supplied context.
type Store interface {
	HasFingerprintByURL(ctx context.Context, urlHash string) (bool, error)
	HasFingerprintByTitleSource(ctx context.Context, titleHash, source string, from, to time.Time) (bool, error)
	HasFingerprintByTitle(ctx context.Context, titleHash string, since time.Time) (bool, error)
	HasFingerprintByContent(ctx context.Context, contentHash string, since time.Time) (bool, error)
	RecentContents(ctx context.Context, excludeSource string, since time.Time, limit int) ([]StoredContent, error)
	InsertFingerprint(ctx context.Context, fp news.Fingerprint) error
}

type Detector struct {
	store  Store
	logger zerolog.Logger
}

func NewDetector(store Store, logger zerolog.Logger) *Detector {
	return &Detector{
		store:  store,
		logger: logger,
	}
}

// Check runs the cascade. The first matching strategy wins and no later
// strategy is evaluated. A store error is returned as-is: callers decide
// whether to fail closed (the orchestrator treats any error as a
// duplicate) so that tests can still tell a genuine duplicate from an
// infrastructure failure.
func (d *Detector) Check(ctx context.Context, item news.RawItem, fp news.Fingerprint) (Decision, error) {
	if d == nil || d.store == nil {
		return Decision{}, fmt.Errorf("duplicate detector is not initialized")
	}

	now := globaltime.UTC()

	// Strategy 1: same canonical URL, any age, any source.
	found, err := d.store.HasFingerprintByURL(ctx, fp.URLHash)
	if err != nil {
		return Decision{}, fmt.Errorf("url lookup: %w", err)
	}
	if found {
		d.logDuplicate(item, StrategyURL)
		return Decision{Duplicate: true, Strategy: StrategyURL}, nil
	}

	// Strategy 2: same title and source within ±24h of the candidate's own
	// publication time, catching same-day republication with clock skew.
	from := item.PublishedAt.Add(-titleSourceWindow)
	to := item.PublishedAt.Add(titleSourceWindow)
	found, err = d.store.HasFingerprintByTitleSource(ctx, fp.TitleHash, item.Source, from, to)
	if err != nil {
		return Decision{}, fmt.Errorf("title+source lookup: %w", err)
	}
	if found {
		d.logDuplicate(item, StrategyTitleSource)
		return Decision{Duplicate: true, Strategy: StrategyTitleSource}, nil
	}

	// Strategy 3: same title from any source in the last 48h (trailing from
	// now, not from the candidate), catching cross-source reprints.
	found, err = d.store.HasFingerprintByTitle(ctx, fp.TitleHash, now.Add(-titleWindow))
	if err != nil {
		return Decision{}, fmt.Errorf("title lookup: %w", err)
	}
	if found {
		d.logDuplicate(item, StrategyTitle)
		return Decision{Duplicate: true, Strategy: StrategyTitle}, nil
	}

	if fp.ContentHash != "" {
		// Strategy 4: byte-identical content in the last 72h.
		found, err = d.store.HasFingerprintByContent(ctx, fp.ContentHash, now.Add(-contentWindow))
		if err != nil {
			return Decision{}, fmt.Errorf("content lookup: %w", err)
		}
		if found {
			d.logDuplicate(item, StrategyContent)
			return Decision{Duplicate: true, Strategy: StrategyContent}, nil
		}

		// Strategy 5: near-duplicate contents from other sources, scored by
		// Jaccard word-set similarity. O(candidates), so it runs last and
		// only for items with substantive content.
		if len(item.Content) > minSubstantiveContent {
			candidates, err := d.store.RecentContents(ctx, item.Source, now.Add(-similarityWindow), similarityCandidates)
			if err != nil {
				return Decision{}, fmt.Errorf("similarity candidates: %w", err)
			}
			for _, candidate := range candidates {
				score := jaccardSimilarity(item.Content, candidate.Content)
				if score >= similarityThreshold {
					d.logDuplicate(item, StrategySimilarity)
					return Decision{Duplicate: true, Strategy: StrategySimilarity, Similarity: score}, nil
				}
			}
		}
	}

	return Decision{}, nil
}

// Record persists the fingerprint of an item judged unique. The store's
// uniqueness constraint makes this idempotent; a conflicting insert is a
// no-op.
func (d *Detector) Record(ctx context.Context, fp news.Fingerprint) error {
	if d == nil || d.store == nil {
		return fmt.Errorf("duplicate detector is not initialized")
	}
	return d.store.InsertFingerprint(ctx, fp)
}

func (d *Detector) logDuplicate(item news.RawItem, strategy Strategy) {
	duplicatesTotal.WithLabelValues(string(strategy)).Inc()
	d.logger.Debug().
		Str("strategy", string(strategy)).
		Str("source", item.Source).
		Str("title", truncate(item.Title, 60)).
		Msg("duplicate detected")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
