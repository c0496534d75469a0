package db

import (
	"context"
	"fmt"
	"time"

	"finchwire.dev/newsvet/internal/dedup"
	"finchwire.dev/newsvet/internal/news"
)

var _ dedup.Store = (*Pool)(nil)

// FingerprintStats summarizes the fingerprint store for operator tooling.
type FingerprintStats struct {
	TotalFingerprints int64      `json:"total_fingerprints"`
	OldestPublishedAt *time.Time `json:"oldest_published_at,omitempty"`
	NewestPublishedAt *time.Time `json:"newest_published_at,omitempty"`
}

// HasFingerprintByURL reports whether any stored fingerprint carries the
// given URL hash, regardless of age or source.
func (p *Pool) HasFingerprintByURL(ctx context.Context, urlHash string) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM news_fingerprints WHERE url_hash = $1
)
`
	var exists bool
	if err := p.QueryRow(ctx, q, urlHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("query fingerprint by url hash: %w", err)
	}
	return exists, nil
}

// HasFingerprintByTitleSource reports whether a fingerprint with the same
// title hash and source was published inside [from, to].
func (p *Pool) HasFingerprintByTitleSource(ctx context.Context, titleHash, source string, from, to time.Time) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM news_fingerprints
	WHERE title_hash = $1
	  AND source = $2
	  AND published_at >= $3
	  AND published_at <= $4
)
`
	var exists bool
	if err := p.QueryRow(ctx, q, titleHash, source, from.UTC(), to.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("query fingerprint by title and source: %w", err)
	}
	return exists, nil
}

// HasFingerprintByTitle reports whether a fingerprint with the same title
// hash, from any source, was published at or after since.
func (p *Pool) HasFingerprintByTitle(ctx context.Context, titleHash string, since time.Time) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM news_fingerprints
	WHERE title_hash = $1
	  AND published_at >= $2
)
`
	var exists bool
	if err := p.QueryRow(ctx, q, titleHash, since.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("query fingerprint by title hash: %w", err)
	}
	return exists, nil
}

// HasFingerprintByContent reports whether a fingerprint with the same
// content hash was published at or after since.
func (p *Pool) HasFingerprintByContent(ctx context.Context, contentHash string, since time.Time) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM news_fingerprints
	WHERE content_hash = $1
	  AND published_at >= $2
)
`
	var exists bool
	if err := p.QueryRow(ctx, q, contentHash, since.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("query fingerprint by content hash: %w", err)
	}
	return exists, nil
}

// RecentContents returns up to limit most-recently-published stored
// contents from sources other than excludeSource, published at or after
// since. Contents come from the processed-item table joined on title hash.
func (p *Pool) RecentContents(ctx context.Context, excludeSource string, since time.Time, limit int) ([]dedup.StoredContent, error) {
	const q = `
SELECT nf.source, ni.content
FROM news_fingerprints nf
JOIN news_items ni
	ON ni.title_hash = nf.title_hash
WHERE nf.published_at >= $1
  AND nf.source <> $2
  AND ni.content IS NOT NULL
ORDER BY nf.published_at DESC
LIMIT $3
`
	rows, err := p.Query(ctx, q, since.UTC(), excludeSource, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent contents: %w", err)
	}
	defer rows.Close()

	out := make([]dedup.StoredContent, 0, limit)
	for rows.Next() {
		var row dedup.StoredContent
		if err := rows.Scan(&row.Source, &row.Content); err != nil {
			return nil, fmt.Errorf("scan recent content row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent content rows: %w", err)
	}
	return out, nil
}

// InsertFingerprint records a fingerprint. Conflicts with the uniqueness
// invariant are a no-op, never an error.
func (p *Pool) InsertFingerprint(ctx context.Context, fp news.Fingerprint) error {
	const q = `
INSERT INTO news_fingerprints (title_hash, content_hash, url_hash, source, published_at, created_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (title_hash, source, ((published_at AT TIME ZONE 'utc')::date)) DO NOTHING
`
	var contentHash *string
	if fp.ContentHash != "" {
		contentHash = &fp.ContentHash
	}
	if _, err := p.Exec(ctx, q, fp.TitleHash, contentHash, fp.URLHash, fp.Source, fp.PublishedAt.UTC()); err != nil {
		return fmt.Errorf("insert fingerprint: %w", err)
	}
	return nil
}

// HasRecentItemTitle reports whether a processed item with the same title
// hash was published at or after since. This backs the secondary
// duplicate_detection quality rule, which penalizes rather than rejects.
func (p *Pool) HasRecentItemTitle(ctx context.Context, titleHash string, since time.Time) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM news_items
	WHERE title_hash = $1
	  AND published_at >= $2
)
`
	var exists bool
	if err := p.QueryRow(ctx, q, titleHash, since.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("query recent item title: %w", err)
	}
	return exists, nil
}

// QueryFingerprintStats returns store-level counts and the publication
// range of stored fingerprints.
func (p *Pool) QueryFingerprintStats(ctx context.Context) (FingerprintStats, error) {
	const q = `
SELECT
	COUNT(*)::BIGINT,
	MIN(published_at),
	MAX(published_at)
FROM news_fingerprints
`
	var stats FingerprintStats
	if err := p.QueryRow(ctx, q).Scan(&stats.TotalFingerprints, &stats.OldestPublishedAt, &stats.NewestPublishedAt); err != nil {
		return FingerprintStats{}, fmt.Errorf("query fingerprint stats: %w", err)
	}
	return stats, nil
}
