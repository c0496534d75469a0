package rules

import (
	"context"
	"testing"

	"finchwire.dev/newsvet/internal/news"
)

func TestTitleQualityRepeatedWords(t *testing.T) {
	t.Parallel()

	item := news.RawItem{Title: "stocks stocks stocks stocks stocks rise today"}
	passed, err := titleQualityRule{}.Evaluate(context.Background(), item, nil)
	if err != nil {
		t.Fatal(err)
	}
	if passed {
		t.Fatal("expected repeated-word title to fail")
	}
}

func TestTitleLengthCountsRunes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		title string
		want  bool
	}{
		{"six runes twelve bytes", "日経平均上昇", false},
		{"ten runes", "日経平均が大幅に上昇", true},
		{"nine ascii", "Too short", false},
		{"ten ascii", "Quite long", true},
	}
	for _, tc := range cases {
		passed, err := titleLengthRule{}.Evaluate(context.Background(), news.RawItem{Title: tc.title}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if passed != tc.want {
			t.Errorf("title %q: passed = %v, want %v", tc.name, passed, tc.want)
		}
	}
}

func TestURLFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.reuters.com/markets/fed", true},
		{"http://example.com/a", true},
		{"ftp://example.com/a", false},
		{"https://nodot/a", false},
		{"just text", false},
	}
	for _, tc := range cases {
		passed, err := urlFormatRule{}.Evaluate(context.Background(), news.RawItem{URL: tc.url}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if passed != tc.want {
			t.Errorf("url %q: passed = %v, want %v", tc.url, passed, tc.want)
		}
	}
}

func TestURLShortener(t *testing.T) {
	t.Parallel()

	rule := urlShortenerRule{tables: DefaultTables()}
	passed, err := rule.Evaluate(context.Background(), news.RawItem{URL: "https://bit.ly/3xYz"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if passed {
		t.Fatal("expected shortened url to fail")
	}
}

func TestHasCharRun(t *testing.T) {
	t.Parallel()

	if !hasCharRun("soooon", 4) {
		t.Fatal("expected run of 4 to be detected")
	}
	if hasCharRun("soon", 4) {
		t.Fatal("run of 2 must not trigger")
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	keywords := DefaultTables().ExtractKeywords("Tech stocks rally as earnings beat estimates")
	if len(keywords) == 0 {
		t.Fatal("expected keywords from a financial title")
	}
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		if _, dup := seen[kw]; dup {
			t.Fatalf("keyword %q extracted twice", kw)
		}
		seen[kw] = struct{}{}
	}
}
