package dedup

import (
	"context"
	"testing"
	"time"

	"finchwire.dev/newsvet/internal/news"
)

// blockingStore waits for ctx cancellation on every call.
type blockingStore struct{}

func (blockingStore) HasFingerprintByURL(ctx context.Context, _ string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (blockingStore) HasFingerprintByTitleSource(ctx context.Context, _, _ string, _, _ time.Time) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (blockingStore) HasFingerprintByTitle(ctx context.Context, _ string, _ time.Time) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (blockingStore) HasFingerprintByContent(ctx context.Context, _ string, _ time.Time) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (blockingStore) RecentContents(ctx context.Context, _ string, _ time.Time, _ int) ([]StoredContent, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) InsertFingerprint(ctx context.Context, _ news.Fingerprint) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestStoreWithTimeoutBoundsLookups(t *testing.T) {
	t.Parallel()

	store := StoreWithTimeout(blockingStore{}, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := store.HasFingerprintByURL(context.Background(), "abc")
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a deadline error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lookup did not time out")
	}
}

func TestStoreWithTimeoutDisabled(t *testing.T) {
	t.Parallel()

	inner := blockingStore{}
	if got := StoreWithTimeout(inner, 0); got != Store(inner) {
		t.Fatal("non-positive timeout must return the store unchanged")
	}
}
