// Package validation ties duplicate detection and the quality rule engine
// together into the single entry point the pipeline calls per item or per
// batch.
package validation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"finchwire.dev/newsvet/internal/dedup"
	"finchwire.dev/newsvet/internal/fingerprint"
	"finchwire.dev/newsvet/internal/news"
	"finchwire.dev/newsvet/internal/rules"
)

// Orchestrator runs the check order that keeps the store load bounded:
// duplicates are rejected before any quality rule runs, and only items that
// survive both stages get their fingerprint recorded.
type Orchestrator struct {
	detector *dedup.Detector
	engine   *rules.Engine
	logger   zerolog.Logger
}

func New(detector *dedup.Detector, engine *rules.Engine, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		detector: detector,
		engine:   engine,
		logger:   logger.With().Str("component", "validation").Logger(),
	}
}

// ValidateItem checks one item: duplicate cascade first, then the rule
// engine, then fingerprint recording for items that pass both. A failing
// duplicate check fails closed: the item is rejected as a duplicate rather
// than let through unverified.
func (o *Orchestrator) ValidateItem(ctx context.Context, item news.RawItem) news.ValidationResult {
	fp := fingerprint.Build(item)

	decision, err := o.detector.Check(ctx, item, fp)
	if err != nil {
		dedup.InfraRejectionsTotal.Inc()
		o.logger.Error().Err(err).
			Str("url", item.URL).
			Str("source", item.Source).
			Msg("duplicate check failed, rejecting fail-closed")
		return o.duplicateResult(item, "duplicate_detection: duplicate check unavailable")
	}
	if decision.Duplicate {
		return o.duplicateResult(item,
			fmt.Sprintf("duplicate_detection: duplicate content detected (%s)", decision.Strategy))
	}

	result := o.engine.Validate(ctx, item)
	if !result.IsValid {
		return result
	}

	if err := o.detector.Record(ctx, fp); err != nil {
		// The item already passed validation; losing one fingerprint is
		// recoverable, losing the item is not.
		dedup.FingerprintWriteFailures.Inc()
		o.logger.Warn().Err(err).
			Str("url", item.URL).
			Msg("fingerprint write failed, keeping item")
	}

	return result
}

// ValidateBatch checks items in input order. Repeats of a title already
// seen earlier in the same batch are rejected without a store round-trip.
func (o *Orchestrator) ValidateBatch(ctx context.Context, items []news.RawItem) []news.ValidationResult {
	results := make([]news.ValidationResult, 0, len(items))
	seenTitles := make(map[string]struct{}, len(items))

	for _, item := range items {
		titleHash := fingerprint.TitleHash(item.Title)
		if _, seen := seenTitles[titleHash]; seen {
			results = append(results, o.duplicateResult(item,
				"duplicate_detection: duplicate title within batch"))
			continue
		}
		seenTitles[titleHash] = struct{}{}
		results = append(results, o.ValidateItem(ctx, item))
	}

	return results
}

func (o *Orchestrator) duplicateResult(item news.RawItem, message string) news.ValidationResult {
	o.logger.Debug().
		Str("url", item.URL).
		Str("source", item.Source).
		Str("reason", message).
		Msg("rejecting duplicate")
	return news.ValidationResult{
		IsValid:      false,
		QualityScore: 0,
		Errors:       []string{message},
		AppliedRules: []string{"duplicate_detection"},
	}
}
