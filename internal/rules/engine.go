package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"finchwire.dev/newsvet/internal/fingerprint"
	"finchwire.dev/newsvet/internal/globaltime"
	"finchwire.dev/newsvet/internal/news"
	"finchwire.dev/newsvet/internal/normalize"
)

// Engine runs the rule catalogue against raw items. The catalogue order is
// fixed; every rule runs on every item so the score and the applied-rule
// list are complete even after a critical failure.
type Engine struct {
	rules  []Rule
	tables Tables
	logger zerolog.Logger
}

// NewEngine builds the engine with the default rule catalogue. store may be
// nil, in which case the title-recency check always passes.
func NewEngine(store RecencyStore, logger zerolog.Logger) *Engine {
	tables := DefaultTables()
	return &Engine{
		rules: []Rule{
			titleLengthRule{},
			titleQualityRule{},
			urlFormatRule{},
			urlShortenerRule{tables: tables},
			sourceReliabilityRule{tables: tables},
			contentQualityRule{},
			dateValidityRule{},
			duplicateRecencyRule{store: store},
			spamDetectionRule{tables: tables},
			financialRelevanceRule{tables: tables},
		},
		tables: tables,
		logger: logger.With().Str("component", "rules").Logger(),
	}
}

// Validate evaluates every rule against the item and returns the verdict
// with a fully enriched working record. The score starts at 1.0, loses each
// failing non-critical rule's penalty, and never drops below 0. Any failing
// critical rule makes the item invalid regardless of score.
func (e *Engine) Validate(ctx context.Context, item news.RawItem) news.ValidationResult {
	work := e.buildWorking(item)

	result := news.ValidationResult{
		IsValid:      true,
		QualityScore: 1.0,
		Processed:    work,
	}

	for _, rule := range e.rules {
		spec := rule.Spec()
		passed, err := rule.Evaluate(ctx, item, work)
		if err != nil {
			// A broken rule must not block the pipeline.
			e.logger.Warn().Err(err).
				Str("rule", spec.Name).
				Str("url", item.URL).
				Msg("rule evaluation failed, treating as pass")
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: evaluation error: %v", spec.Name, err))
			continue
		}
		if passed {
			continue
		}

		result.AppliedRules = append(result.AppliedRules, spec.Name)
		message := fmt.Sprintf("%s: %s", spec.Name, spec.Description)
		if spec.Critical {
			// Critical failures reject outright; only non-critical
			// failures erode the score.
			result.IsValid = false
			result.Errors = append(result.Errors, message)
		} else {
			result.QualityScore -= spec.Penalty
			result.Warnings = append(result.Warnings, message)
		}
	}

	if result.QualityScore < 0 {
		result.QualityScore = 0
	}

	work.QualityScore = result.QualityScore
	if result.IsValid {
		work.Status = news.StatusProcessed
	} else {
		work.Status = news.StatusRejected
	}

	if !result.IsValid {
		e.logger.Debug().
			Str("url", item.URL).
			Str("source", item.Source).
			Float64("score", result.QualityScore).
			Strs("failed_rules", result.AppliedRules).
			Msg("item rejected by quality rules")
	}

	return result
}

// buildWorking enriches the raw item into its persistable form before any
// rule runs, so rules can rely on the derived fields.
func (e *Engine) buildWorking(item news.RawItem) *news.ProcessedItem {
	fp := fingerprint.Build(item)
	now := globaltime.UTC()
	return &news.ProcessedItem{
		Title:           strings.TrimSpace(item.Title),
		URL:             item.URL,
		Source:          item.Source,
		Content:         item.Content,
		PublishedAt:     item.PublishedAt,
		TitleHash:       fp.TitleHash,
		URLHash:         fp.URLHash,
		NormalizedTitle: normalize.Title(item.Title),
		NormalizedURL:   normalize.URL(item.URL),
		Status:          news.StatusRaw,
		MarketHours:     news.MarketHoursFor(item.PublishedAt),
		DuplicateCount:  1,
		Keywords:        e.tables.ExtractKeywords(item.Title),
		ScrapedAt:       now,
	}
}
