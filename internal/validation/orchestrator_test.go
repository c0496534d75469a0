package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"finchwire.dev/newsvet/internal/dedup"
	"finchwire.dev/newsvet/internal/globaltime"
	"finchwire.dev/newsvet/internal/news"
	"finchwire.dev/newsvet/internal/rules"
)

var baseTime = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

type fakeStore struct {
	urlSeen  bool
	failAll  error
	lookups  int
	inserted []news.Fingerprint
}

func (f *fakeStore) HasFingerprintByURL(context.Context, string) (bool, error) {
	f.lookups++
	return f.urlSeen, f.failAll
}

func (f *fakeStore) HasFingerprintByTitleSource(context.Context, string, string, time.Time, time.Time) (bool, error) {
	f.lookups++
	return false, f.failAll
}

func (f *fakeStore) HasFingerprintByTitle(context.Context, string, time.Time) (bool, error) {
	f.lookups++
	return false, f.failAll
}

func (f *fakeStore) HasFingerprintByContent(context.Context, string, time.Time) (bool, error) {
	f.lookups++
	return false, f.failAll
}

func (f *fakeStore) RecentContents(context.Context, string, time.Time, int) ([]dedup.StoredContent, error) {
	f.lookups++
	return nil, f.failAll
}

func (f *fakeStore) InsertFingerprint(_ context.Context, fp news.Fingerprint) error {
	f.inserted = append(f.inserted, fp)
	return f.failAll
}

func newOrchestrator(store dedup.Store) *Orchestrator {
	logger := zerolog.Nop()
	return New(
		dedup.NewDetector(store, logger),
		rules.NewEngine(nil, logger),
		logger,
	)
}

func rawItem(title string) news.RawItem {
	return news.RawItem{
		Title:       title,
		URL:         "https://www.reuters.com/markets/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Source:      "Reuters",
		Content:     "Markets moved sharply on Wednesday as investors weighed the decision and earnings reports from major banks across the economy.",
		PublishedAt: baseTime.Add(-time.Hour),
	}
}

func TestValidateItemAcceptsAndRecordsUnique(t *testing.T) {
	globaltime.SetMockTime(baseTime)
	defer globaltime.ResetTime()

	store := &fakeStore{}
	result := newOrchestrator(store).ValidateItem(context.Background(), rawItem("Fed holds interest rates steady as inflation cools"))

	if !result.IsValid {
		t.Fatalf("expected valid item, got errors %v", result.Errors)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one fingerprint recorded, got %d", len(store.inserted))
	}
	if result.Processed == nil || result.Processed.Status != news.StatusProcessed {
		t.Fatal("expected a processed record")
	}
}

func TestValidateItemRejectsDuplicate(t *testing.T) {
	globaltime.SetMockTime(baseTime)
	defer globaltime.ResetTime()

	store := &fakeStore{urlSeen: true}
	result := newOrchestrator(store).ValidateItem(context.Background(), rawItem("Fed holds interest rates steady as inflation cools"))

	if result.IsValid {
		t.Fatal("expected duplicate to be rejected")
	}
	if len(result.AppliedRules) != 1 || result.AppliedRules[0] != "duplicate_detection" {
		t.Fatalf("expected only duplicate_detection applied, got %v", result.AppliedRules)
	}
	if result.QualityScore != 0 {
		t.Fatalf("expected score 0 for duplicate, got %v", result.QualityScore)
	}
	if len(store.inserted) != 0 {
		t.Fatal("duplicate must not record a fingerprint")
	}
}

func TestValidateItemFailsClosedOnStoreError(t *testing.T) {
	globaltime.SetMockTime(baseTime)
	defer globaltime.ResetTime()

	store := &fakeStore{failAll: errors.New("connection refused")}
	result := newOrchestrator(store).ValidateItem(context.Background(), rawItem("Fed holds interest rates steady as inflation cools"))

	if result.IsValid {
		t.Fatal("a failing store must reject the item")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "unavailable") {
		t.Fatalf("expected an unavailability error, got %v", result.Errors)
	}
}

func TestValidateItemRejectedByRulesNotRecorded(t *testing.T) {
	globaltime.SetMockTime(baseTime)
	defer globaltime.ResetTime()

	store := &fakeStore{}
	item := rawItem("Fed holds interest rates steady as inflation cools")
	item.Title = "BUY NOW!!! SECRET WINNER!!!"

	result := newOrchestrator(store).ValidateItem(context.Background(), item)

	if result.IsValid {
		t.Fatal("expected spam item to be rejected")
	}
	if len(store.inserted) != 0 {
		t.Fatal("rejected item must not record a fingerprint")
	}
}

func TestValidateItemKeepsItemWhenFingerprintWriteFails(t *testing.T) {
	globaltime.SetMockTime(baseTime)
	defer globaltime.ResetTime()

	store := &writeFailStore{}
	result := newOrchestrator(store).ValidateItem(context.Background(), rawItem("Fed holds interest rates steady as inflation cools"))

	if !result.IsValid {
		t.Fatalf("a failed fingerprint write must not reject the item, got errors %v", result.Errors)
	}
}

// writeFailStore passes every lookup but fails the insert.
type writeFailStore struct {
	fakeStore
}

func (w *writeFailStore) InsertFingerprint(context.Context, news.Fingerprint) error {
	return errors.New("disk full")
}

func TestValidateBatchSkipsRepeatedTitlesWithoutStoreCalls(t *testing.T) {
	globaltime.SetMockTime(baseTime)
	defer globaltime.ResetTime()

	store := &fakeStore{}
	orch := newOrchestrator(store)

	items := []news.RawItem{
		rawItem("Fed holds interest rates steady as inflation cools"),
		rawItem("Fed holds interest rates steady as inflation cools"),
	}
	results := orch.ValidateBatch(context.Background(), items)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].IsValid {
		t.Fatalf("first item should be valid, got errors %v", results[0].Errors)
	}
	if results[1].IsValid {
		t.Fatal("repeated title should be rejected in-batch")
	}
	lookupsAfterFirst := store.lookups
	if lookupsAfterFirst == 0 {
		t.Fatal("first item should have hit the store")
	}
	if !strings.Contains(results[1].Errors[0], "within batch") {
		t.Fatalf("expected in-batch duplicate error, got %v", results[1].Errors)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected exactly one fingerprint recorded, got %d", len(store.inserted))
	}
}

func TestValidateBatchPreservesOrder(t *testing.T) {
	globaltime.SetMockTime(baseTime)
	defer globaltime.ResetTime()

	store := &fakeStore{}
	orch := newOrchestrator(store)

	items := []news.RawItem{
		rawItem("Fed holds interest rates steady as inflation cools"),
		rawItem("Tech stocks rally as quarterly earnings beat estimates"),
		rawItem("Oil prices fall on demand concerns across global markets"),
	}
	results := orch.ValidateBatch(context.Background(), items)

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, result := range results {
		if result.Processed == nil {
			t.Fatalf("result %d has no processed record", i)
		}
		if result.Processed.Title != items[i].Title {
			t.Fatalf("result %d out of order: got %q want %q", i, result.Processed.Title, items[i].Title)
		}
	}
}
