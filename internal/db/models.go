package db

import (
	"encoding/json"
	"time"
)

// NewsFingerprint maps news_fingerprints, the dedup identity table. The
// uniqueness constraint (title_hash, source, publication day) lives in a
// post-migrate expression index; inserts are idempotent via
// ON CONFLICT DO NOTHING.
type NewsFingerprint struct {
	FingerprintID int64     `gorm:"column:fingerprint_id;primaryKey;autoIncrement"`
	TitleHash     string    `gorm:"column:title_hash;type:varchar(64);not null;index"`
	ContentHash   *string   `gorm:"column:content_hash;type:varchar(64);index"`
	URLHash       string    `gorm:"column:url_hash;type:varchar(64);not null;index"`
	Source        string    `gorm:"column:source;type:text;not null"`
	PublishedAt   time.Time `gorm:"column:published_at;type:timestamptz;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (NewsFingerprint) TableName() string { return "news_fingerprints" }

// NewsItem maps news_items, the processed-item table written for every
// accepted item.
type NewsItem struct {
	ItemID          int64           `gorm:"column:item_id;primaryKey;autoIncrement"`
	Title           string          `gorm:"column:title;type:text;not null"`
	TitleHash       string          `gorm:"column:title_hash;type:varchar(64);not null;index"`
	URL             string          `gorm:"column:url;type:text;not null"`
	URLHash         string          `gorm:"column:url_hash;type:varchar(64);not null"`
	NormalizedTitle string          `gorm:"column:normalized_title;type:text;not null"`
	NormalizedURL   string          `gorm:"column:normalized_url;type:text;not null"`
	Source          string          `gorm:"column:source;type:text;not null"`
	Content         *string         `gorm:"column:content;type:text"`
	PublishedAt     time.Time       `gorm:"column:published_at;type:timestamptz;not null;index"`
	ScrapedAt       time.Time       `gorm:"column:scraped_at;type:timestamptz;not null"`
	MarketHours     string          `gorm:"column:market_hours;type:text;not null"`
	Status          string          `gorm:"column:processing_status;type:text;not null;default:raw"`
	DuplicateCount  int             `gorm:"column:duplicate_count;type:integer;not null;default:1"`
	QualityScore    float64         `gorm:"column:data_quality_score;type:double precision;not null"`
	Keywords        json.RawMessage `gorm:"column:keywords;type:jsonb"`
	CreatedAt       time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (NewsItem) TableName() string { return "news_items" }

// DataQualityMetric maps data_quality_metrics, the per-day rollup refreshed
// after each batch save.
type DataQualityMetric struct {
	MetricDate      time.Time `gorm:"column:metric_date;type:date;primaryKey"`
	TotalNews       int64     `gorm:"column:total_news;type:bigint;not null;default:0"`
	UniqueNews      int64     `gorm:"column:unique_news;type:bigint;not null;default:0"`
	DuplicateNews   int64     `gorm:"column:duplicate_news;type:bigint;not null;default:0"`
	AvgQualityScore float64   `gorm:"column:avg_quality_score;type:double precision;not null;default:0"`
	SourcesActive   int64     `gorm:"column:sources_active;type:bigint;not null;default:0"`
	NewsLast24h     int64     `gorm:"column:news_last_24h;type:bigint;not null;default:0"`
	NewsLast7d      int64     `gorm:"column:news_last_7d;type:bigint;not null;default:0"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (DataQualityMetric) TableName() string { return "data_quality_metrics" }

func autoMigrateModels() []any {
	return []any{
		&NewsFingerprint{},
		&NewsItem{},
		&DataQualityMetric{},
	}
}
