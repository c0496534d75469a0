package dedup

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"finchwire.dev/newsvet/internal/fingerprint"
	"finchwire.dev/newsvet/internal/globaltime"
	"finchwire.dev/newsvet/internal/news"
)

type fakeStore struct {
	urlHit         bool
	titleSourceHit bool
	titleHit       bool
	contentHit     bool
	contents       []StoredContent

	failAll bool

	urlCalls         int
	titleSourceCalls int
	titleCalls       int
	contentCalls     int
	similarityCalls  int
	inserted         []news.Fingerprint
}

var errStoreDown = fmt.Errorf("store unavailable")

func (s *fakeStore) HasFingerprintByURL(_ context.Context, _ string) (bool, error) {
	s.urlCalls++
	if s.failAll {
		return false, errStoreDown
	}
	return s.urlHit, nil
}

func (s *fakeStore) HasFingerprintByTitleSource(_ context.Context, _, _ string, _, _ time.Time) (bool, error) {
	s.titleSourceCalls++
	if s.failAll {
		return false, errStoreDown
	}
	return s.titleSourceHit, nil
}

func (s *fakeStore) HasFingerprintByTitle(_ context.Context, _ string, _ time.Time) (bool, error) {
	s.titleCalls++
	if s.failAll {
		return false, errStoreDown
	}
	return s.titleHit, nil
}

func (s *fakeStore) HasFingerprintByContent(_ context.Context, _ string, _ time.Time) (bool, error) {
	s.contentCalls++
	if s.failAll {
		return false, errStoreDown
	}
	return s.contentHit, nil
}

func (s *fakeStore) RecentContents(_ context.Context, _ string, _ time.Time, _ int) ([]StoredContent, error) {
	s.similarityCalls++
	if s.failAll {
		return nil, errStoreDown
	}
	return s.contents, nil
}

func (s *fakeStore) InsertFingerprint(_ context.Context, fp news.Fingerprint) error {
	if s.failAll {
		return errStoreDown
	}
	s.inserted = append(s.inserted, fp)
	return nil
}

func testItem() news.RawItem {
	return news.RawItem{
		Title:       "Treasury yields climb after strong jobs report",
		URL:         "https://example.com/yields-climb",
		Source:      "Reuters",
		Content:     strings.Repeat("treasury yields climbed sharply after the jobs report surprised economists ", 3),
		PublishedAt: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
	}
}

func newTestDetector(store Store) *Detector {
	return NewDetector(store, zerolog.Nop())
}

func TestCheck_UniqueItem(t *testing.T) {
	store := &fakeStore{}
	item := testItem()

	decision, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Duplicate {
		t.Fatalf("expected unique decision, got strategy %q", decision.Strategy)
	}
}

func TestCheck_URLStrategyShortCircuits(t *testing.T) {
	store := &fakeStore{urlHit: true}
	item := testItem()

	decision, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Duplicate || decision.Strategy != StrategyURL {
		t.Fatalf("expected exact_url duplicate, got %+v", decision)
	}
	if store.titleSourceCalls != 0 || store.titleCalls != 0 || store.contentCalls != 0 || store.similarityCalls != 0 {
		t.Fatalf("later strategies must not run after a url match")
	}
}

func TestCheck_TitleSourceStrategy(t *testing.T) {
	store := &fakeStore{titleSourceHit: true}
	item := testItem()

	decision, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Duplicate || decision.Strategy != StrategyTitleSource {
		t.Fatalf("expected title_source_24h duplicate, got %+v", decision)
	}
	if store.urlCalls != 1 || store.titleSourceCalls != 1 {
		t.Fatalf("unexpected earlier-strategy call counts: %+v", store)
	}
	if store.titleCalls != 0 || store.contentCalls != 0 || store.similarityCalls != 0 {
		t.Fatalf("later strategies must not run after a title+source match")
	}
}

func TestCheck_TitleOnlyStrategyShortCircuitsSimilarity(t *testing.T) {
	store := &fakeStore{titleHit: true}
	item := testItem()

	decision, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Duplicate || decision.Strategy != StrategyTitle {
		t.Fatalf("expected title_48h duplicate, got %+v", decision)
	}
	if store.urlCalls != 1 || store.titleSourceCalls != 1 || store.titleCalls != 1 {
		t.Fatalf("unexpected earlier-strategy call counts: %+v", store)
	}
	if store.contentCalls != 0 || store.similarityCalls != 0 {
		t.Fatalf("content and similarity strategies must never run after a title match")
	}
}

func TestCheck_ContentStrategy(t *testing.T) {
	store := &fakeStore{contentHit: true}
	item := testItem()

	decision, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Duplicate || decision.Strategy != StrategyContent {
		t.Fatalf("expected content_72h duplicate, got %+v", decision)
	}
	if store.similarityCalls != 0 {
		t.Fatalf("similarity must not run after an exact content match")
	}
}

func TestCheck_SimilarityStrategy(t *testing.T) {
	item := testItem()
	// Same vocabulary plus one extra word: 10/11 overlap, above threshold.
	nearCopy := item.Content + " analysts"
	store := &fakeStore{contents: []StoredContent{{Source: "Bloomberg", Content: nearCopy}}}

	decision, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Duplicate || decision.Strategy != StrategySimilarity {
		t.Fatalf("expected similarity duplicate, got %+v", decision)
	}
	if decision.Similarity < similarityThreshold {
		t.Fatalf("expected similarity >= %.2f, got %.3f", similarityThreshold, decision.Similarity)
	}
}

func TestCheck_SimilaritySkippedWithoutSubstantiveContent(t *testing.T) {
	item := testItem()
	item.Content = strings.Repeat("x", 80) // above hash threshold, below similarity threshold
	store := &fakeStore{contents: []StoredContent{{Source: "Bloomberg", Content: item.Content}}}

	decision, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Duplicate {
		t.Fatalf("expected unique decision, got %+v", decision)
	}
	if store.similarityCalls != 0 {
		t.Fatalf("similarity must be skipped for short content")
	}
}

func TestCheck_StoreErrorPropagates(t *testing.T) {
	store := &fakeStore{failAll: true}
	item := testItem()

	_, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item))
	if err == nil {
		t.Fatalf("expected store error to propagate")
	}
}

func TestCheck_TitleWindowRelativeToNow(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	store := &fakeStore{}
	item := testItem()

	if _, err := newTestDetector(store).Check(context.Background(), item, fingerprint.Build(item)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.titleCalls != 1 {
		t.Fatalf("expected exactly one title-window lookup")
	}
}

func TestRecord_PersistsFingerprint(t *testing.T) {
	store := &fakeStore{}
	item := testItem()
	fp := fingerprint.Build(item)

	if err := newTestDetector(store).Record(context.Background(), fp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.inserted) != 1 || store.inserted[0].TitleHash != fp.TitleHash {
		t.Fatalf("expected fingerprint to be recorded")
	}
}

func TestJaccardSimilarity(t *testing.T) {
	t.Parallel()

	if got := jaccardSimilarity("alpha beta gamma", "alpha beta gamma"); got != 1 {
		t.Fatalf("identical texts must score 1.0, got %f", got)
	}
	if got := jaccardSimilarity("alpha beta", "gamma delta"); got != 0 {
		t.Fatalf("disjoint texts must score 0.0, got %f", got)
	}
	if got := jaccardSimilarity("", ""); got != 0 {
		t.Fatalf("empty texts must score 0.0, got %f", got)
	}

	partial := jaccardSimilarity("Fed raises rates today", "Fed raises rates tomorrow")
	if partial <= 0.5 || partial >= 1 {
		t.Fatalf("expected partial overlap in (0.5, 1), got %f", partial)
	}
}
