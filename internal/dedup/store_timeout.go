package dedup

import (
	"context"
	"time"

	"finchwire.dev/newsvet/internal/news"
)

// StoreWithTimeout wraps a store so every lookup and insert gets its own
// deadline. A slow database then degrades one check, not the whole batch.
// A non-positive timeout returns the store unchanged.
func StoreWithTimeout(inner Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return inner
	}
	return &timeoutStore{inner: inner, timeout: timeout}
}

type timeoutStore struct {
	inner   Store
	timeout time.Duration
}

func (s *timeoutStore) HasFingerprintByURL(ctx context.Context, urlHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.HasFingerprintByURL(ctx, urlHash)
}

func (s *timeoutStore) HasFingerprintByTitleSource(ctx context.Context, titleHash, source string, from, to time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.HasFingerprintByTitleSource(ctx, titleHash, source, from, to)
}

func (s *timeoutStore) HasFingerprintByTitle(ctx context.Context, titleHash string, since time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.HasFingerprintByTitle(ctx, titleHash, since)
}

func (s *timeoutStore) HasFingerprintByContent(ctx context.Context, contentHash string, since time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.HasFingerprintByContent(ctx, contentHash, since)
}

func (s *timeoutStore) RecentContents(ctx context.Context, excludeSource string, since time.Time, limit int) ([]StoredContent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.RecentContents(ctx, excludeSource, since, limit)
}

func (s *timeoutStore) InsertFingerprint(ctx context.Context, fp news.Fingerprint) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.InsertFingerprint(ctx, fp)
}
