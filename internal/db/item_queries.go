package db

import (
	"context"
	"encoding/json"
	"fmt"

	"finchwire.dev/newsvet/internal/news"
)

// SaveStats reports the outcome of persisting one validated batch.
type SaveStats struct {
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
}

// SaveProcessedBatch persists the processed records of valid results inside
// one transaction. A record whose (title, publication day) already exists
// bumps that row's duplicate_count instead of inserting. Invalid results
// are only counted, split into duplicates and rule rejections.
func (p *Pool) SaveProcessedBatch(ctx context.Context, results []news.ValidationResult) (SaveStats, error) {
	var stats SaveStats

	tx, err := p.BeginTx(ctx)
	if err != nil {
		return stats, fmt.Errorf("begin save tx: %w", err)
	}

	for _, result := range results {
		if !result.IsValid || result.Processed == nil {
			if isDuplicateResult(result) {
				stats.Duplicates++
			} else {
				stats.Rejected++
			}
			continue
		}

		if err := insertProcessedTx(ctx, tx, *result.Processed); err != nil {
			_ = tx.Rollback(ctx)
			return SaveStats{}, err
		}
		stats.Saved++
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return SaveStats{}, fmt.Errorf("commit save tx: %w", err)
	}

	return stats, nil
}

func insertProcessedTx(ctx context.Context, tx Tx, item news.ProcessedItem) error {
	const q = `
INSERT INTO news_items (
	title,
	title_hash,
	url,
	url_hash,
	normalized_title,
	normalized_url,
	source,
	content,
	published_at,
	scraped_at,
	market_hours,
	processing_status,
	duplicate_count,
	data_quality_score,
	keywords,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
ON CONFLICT (title_hash, ((published_at AT TIME ZONE 'utc')::date))
DO UPDATE SET
	duplicate_count = news_items.duplicate_count + 1,
	updated_at = now()
`

	keywords, err := json.Marshal(item.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	var content *string
	if item.Content != "" {
		content = &item.Content
	}

	if _, err := tx.Exec(
		ctx,
		q,
		item.Title,
		item.TitleHash,
		item.URL,
		item.URLHash,
		item.NormalizedTitle,
		item.NormalizedURL,
		item.Source,
		content,
		item.PublishedAt.UTC(),
		item.ScrapedAt.UTC(),
		string(item.MarketHours),
		string(item.Status),
		item.DuplicateCount,
		item.QualityScore,
		json.RawMessage(keywords),
	); err != nil {
		return fmt.Errorf("insert processed item title_hash=%s: %w", item.TitleHash, err)
	}
	return nil
}

func isDuplicateResult(result news.ValidationResult) bool {
	if result.IsValid {
		return false
	}
	for _, name := range result.AppliedRules {
		if name == "duplicate_detection" {
			return true
		}
	}
	return false
}

// UpsertQualityMetrics refreshes today's row in data_quality_metrics from
// the current contents of news_items.
func (p *Pool) UpsertQualityMetrics(ctx context.Context) error {
	const q = `
INSERT INTO data_quality_metrics (
	metric_date, total_news, unique_news, duplicate_news,
	avg_quality_score, sources_active, news_last_24h, news_last_7d, updated_at
)
SELECT
	CURRENT_DATE,
	COUNT(*),
	COUNT(DISTINCT title_hash),
	COUNT(*) - COUNT(DISTINCT title_hash),
	COALESCE(ROUND(AVG(data_quality_score)::numeric, 2), 0),
	COUNT(DISTINCT source),
	COUNT(*) FILTER (WHERE scraped_at >= now() - INTERVAL '24 hours'),
	COUNT(*) FILTER (WHERE scraped_at >= now() - INTERVAL '7 days'),
	now()
FROM news_items
WHERE processing_status <> 'rejected'
ON CONFLICT (metric_date)
DO UPDATE SET
	total_news = EXCLUDED.total_news,
	unique_news = EXCLUDED.unique_news,
	duplicate_news = EXCLUDED.duplicate_news,
	avg_quality_score = EXCLUDED.avg_quality_score,
	sources_active = EXCLUDED.sources_active,
	news_last_24h = EXCLUDED.news_last_24h,
	news_last_7d = EXCLUDED.news_last_7d,
	updated_at = now()
`
	if _, err := p.Exec(ctx, q); err != nil {
		return fmt.Errorf("upsert quality metrics: %w", err)
	}
	return nil
}

// LatestQualityMetrics returns the most recent daily rollup, or ErrNoRows
// when none has been written yet.
func (p *Pool) LatestQualityMetrics(ctx context.Context) (DataQualityMetric, error) {
	const q = `
SELECT
	metric_date, total_news, unique_news, duplicate_news,
	avg_quality_score, sources_active, news_last_24h, news_last_7d, updated_at
FROM data_quality_metrics
ORDER BY metric_date DESC
LIMIT 1
`
	var m DataQualityMetric
	err := p.QueryRow(ctx, q).Scan(
		&m.MetricDate,
		&m.TotalNews,
		&m.UniqueNews,
		&m.DuplicateNews,
		&m.AvgQualityScore,
		&m.SourcesActive,
		&m.NewsLast24h,
		&m.NewsLast7d,
		&m.UpdatedAt,
	)
	if err != nil {
		return DataQualityMetric{}, fmt.Errorf("query latest quality metrics: %w", err)
	}
	return m, nil
}
