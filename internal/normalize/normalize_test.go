package normalize

import "testing"

func TestTitle_StripsPunctuationAndCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := Title("  Fed Raises Rates -- by 50bps, amid \"inflation\" fears!  ")
	want := "fed raises rates by 50bps amid inflation fears"
	if got != want {
		t.Fatalf("unexpected normalized title: got %q want %q", got, want)
	}
}

func TestTitle_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := Title(""); got != "" {
		t.Fatalf("expected empty output for empty input, got %q", got)
	}
	if got := Title("   \t\n "); got != "" {
		t.Fatalf("expected empty output for whitespace input, got %q", got)
	}
}

func TestTitle_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Fed Raises Rates by 50bps",
		"ÜBER-Bullish Sentiment im DAX!",
		"",
		"!!!???",
	}
	for _, input := range inputs {
		once := Title(input)
		if twice := Title(once); twice != once {
			t.Fatalf("Title not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestURL_StripsTrackingParams(t *testing.T) {
	t.Parallel()

	with := URL("https://ex.com/a?utm_source=x")
	without := URL("https://ex.com/a")
	if with != without {
		t.Fatalf("tracking params must not affect normalization: %q != %q", with, without)
	}

	kept := URL("https://ex.com/a?id=42&utm_campaign=news&fbclid=abc")
	if kept != "https://ex.com/a?id=42" {
		t.Fatalf("expected only non-tracking params to survive, got %q", kept)
	}
}

func TestURL_MirrorHostEquivalence(t *testing.T) {
	t.Parallel()

	a := URL("https://twitter.com/a/status/1")
	b := URL("https://nitter.net/a/status/1")
	c := URL("https://fxtwitter.com/a/status/1")
	if a != b || b != c {
		t.Fatalf("mirror hosts must normalize identically: %q %q %q", a, b, c)
	}
	if a != "https://x.com/a/status/1" {
		t.Fatalf("unexpected canonical twitter url: %q", a)
	}
}

func TestURL_CollapsesSlashes(t *testing.T) {
	t.Parallel()

	got := URL("http://Example.com//news///markets/")
	if got != "https://example.com/news/markets" {
		t.Fatalf("unexpected normalized url: %q", got)
	}
}

func TestURL_MalformedFallsBackToLexicalCleanup(t *testing.T) {
	t.Parallel()

	got := URL("Not A URL?utm_source=x#frag")
	if got != "not a url" {
		t.Fatalf("unexpected fallback cleanup: %q", got)
	}
}

func TestURL_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://ex.com/a?utm_source=x&b=2&a=1",
		"https://twitter.com/a/status/1",
		"http://ex.com//double//slash/",
		"garbage url",
		"",
	}
	for _, input := range inputs {
		once := URL(input)
		if twice := URL(once); twice != once {
			t.Fatalf("URL not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
