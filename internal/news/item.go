package news

import "time"

// ProcessingStatus tracks where an item sits in the pipeline. This core only
// emits raw, processed, and rejected; analyzed and archived are set by
// downstream consumers.
type ProcessingStatus string

const (
	StatusRaw       ProcessingStatus = "raw"
	StatusProcessed ProcessingStatus = "processed"
	StatusAnalyzed  ProcessingStatus = "analyzed"
	StatusRejected  ProcessingStatus = "rejected"
	StatusArchived  ProcessingStatus = "archived"
)

// MarketHours classifies an item's publication time against US equity
// trading sessions (America/New_York).
type MarketHours string

const (
	MarketHoursPre      MarketHours = "pre-market"
	MarketHoursRegular  MarketHours = "market"
	MarketHoursAfter    MarketHours = "after-hours"
	MarketHoursExtended MarketHours = "extended"
)

// RawItem is a scraped news item as delivered by the ingestion layer.
// It is never mutated after receipt.
type RawItem struct {
	Title       string
	URL         string
	Source      string
	Content     string
	PublishedAt time.Time
}

// Fingerprint is the stable hash identity of a news item. ContentHash is
// empty when the item has no content or the content is too short to be a
// meaningful dedup signal.
type Fingerprint struct {
	TitleHash   string
	URLHash     string
	ContentHash string
	Source      string
	PublishedAt time.Time
	CreatedAt   time.Time
}

// ProcessedItem is the enriched, persistable form of a RawItem.
type ProcessedItem struct {
	Title           string
	URL             string
	Source          string
	Content         string
	PublishedAt     time.Time
	TitleHash       string
	URLHash         string
	NormalizedTitle string
	NormalizedURL   string
	QualityScore    float64
	Status          ProcessingStatus
	MarketHours     MarketHours
	DuplicateCount  int
	Keywords        []string
	ScrapedAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidationResult is the per-item outcome of the quality rule engine and
// duplicate detection. QualityScore starts at 1.0 and only decreases;
// AppliedRules lists the names of rules that failed.
type ValidationResult struct {
	IsValid      bool
	QualityScore float64
	Errors       []string
	Warnings     []string
	AppliedRules []string
	Processed    *ProcessedItem
}
