package rules

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"finchwire.dev/newsvet/internal/globaltime"
	"finchwire.dev/newsvet/internal/news"
)

const (
	minTitleLength = 10
	maxTitleLength = 500

	maxTitleUppercaseRatio   = 0.4
	maxTitleSpecialRatio     = 0.2
	minTitleUniqueWordRatio  = 0.7
	minContentLength         = 50
	maxContentUppercaseRatio = 0.3

	maxFutureSkew = time.Hour
	maxItemAge    = 90 * 24 * time.Hour

	recentTitleWindow = 7 * 24 * time.Hour

	maxExclamations = 3
	maxCharRun      = 3
)

var urlPattern = regexp.MustCompile(`^https?://[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}/.*`)

// RecencyStore answers the secondary title-recency check. Distinct from the
// duplicate detector's cascade on purpose: this one only penalizes the
// score, rejection is handled upstream.
type RecencyStore interface {
	HasRecentItemTitle(ctx context.Context, titleHash string, since time.Time) (bool, error)
}

type titleLengthRule struct{}

func (titleLengthRule) Spec() Spec {
	return Spec{
		Name:        "title_length",
		Critical:    true,
		Penalty:     0.4,
		Description: "title must be between 10 and 500 characters",
	}
}

func (titleLengthRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	length := utf8.RuneCountInString(strings.TrimSpace(item.Title))
	return length >= minTitleLength && length <= maxTitleLength, nil
}

type titleQualityRule struct{}

func (titleQualityRule) Spec() Spec {
	return Spec{
		Name:        "title_quality",
		Critical:    false,
		Penalty:     0.3,
		Description: "title must not be mostly uppercase, special characters, or repeated words",
	}
}

func (titleQualityRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return false, nil
	}

	if uppercaseRatio(title) > maxTitleUppercaseRatio {
		return false, nil
	}
	if specialCharRatio(title) > maxTitleSpecialRatio {
		return false, nil
	}

	words := strings.Fields(strings.ToLower(title))
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, word := range words {
			unique[word] = struct{}{}
		}
		if float64(len(unique)) < float64(len(words))*minTitleUniqueWordRatio {
			return false, nil
		}
	}

	return true, nil
}

type urlFormatRule struct{}

func (urlFormatRule) Spec() Spec {
	return Spec{
		Name:        "url_format",
		Critical:    true,
		Penalty:     0.5,
		Description: "url must be a well-formed http(s) link",
	}
}

func (urlFormatRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	return urlPattern.MatchString(strings.TrimSpace(item.URL)), nil
}

type urlShortenerRule struct {
	tables Tables
}

func (urlShortenerRule) Spec() Spec {
	return Spec{
		Name:        "url_shortener",
		Critical:    false,
		Penalty:     0.1,
		Description: "shortened urls hide their destination and are less trustworthy",
	}
}

func (r urlShortenerRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	lowered := strings.ToLower(item.URL)
	for _, shortener := range r.tables.URLShorteners {
		if strings.Contains(lowered, shortener) {
			return false, nil
		}
	}
	return true, nil
}

type sourceReliabilityRule struct {
	tables Tables
}

func (sourceReliabilityRule) Spec() Spec {
	return Spec{
		Name:        "source_reliability",
		Critical:    false,
		Penalty:     0.2,
		Description: "source scores below the reliability threshold",
	}
}

func (r sourceReliabilityRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	if strings.TrimSpace(item.Source) == "" {
		return false, nil
	}
	return r.tables.ReliabilityFor(item.Source) >= 0.6, nil
}

type contentQualityRule struct{}

func (contentQualityRule) Spec() Spec {
	return Spec{
		Name:        "content_quality",
		Critical:    false,
		Penalty:     0.2,
		Description: "content is too short or mostly uppercase",
	}
}

func (contentQualityRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	content := strings.TrimSpace(item.Content)
	if content == "" {
		// Content is optional.
		return true, nil
	}
	if len(content) < minContentLength {
		return false, nil
	}
	return uppercaseRatio(content) <= maxContentUppercaseRatio, nil
}

type dateValidityRule struct{}

func (dateValidityRule) Spec() Spec {
	return Spec{
		Name:        "date_validity",
		Critical:    true,
		Penalty:     0.5,
		Description: "publication date is in the future or older than 90 days",
	}
}

func (dateValidityRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	now := globaltime.UTC()
	if item.PublishedAt.After(now.Add(maxFutureSkew)) {
		return false, nil
	}
	if item.PublishedAt.Before(now.Add(-maxItemAge)) {
		return false, nil
	}
	return true, nil
}

type duplicateRecencyRule struct {
	store RecencyStore
}

func (duplicateRecencyRule) Spec() Spec {
	return Spec{
		Name:        "duplicate_detection",
		Critical:    false,
		Penalty:     0.3,
		Description: "an item with the same title was stored within the last 7 days",
	}
}

func (r duplicateRecencyRule) Evaluate(ctx context.Context, _ news.RawItem, work *news.ProcessedItem) (bool, error) {
	if r.store == nil {
		return true, nil
	}
	since := globaltime.UTC().Add(-recentTitleWindow)
	seen, err := r.store.HasRecentItemTitle(ctx, work.TitleHash, since)
	if err != nil {
		return false, err
	}
	return !seen, nil
}

type spamDetectionRule struct {
	tables Tables
}

func (spamDetectionRule) Spec() Spec {
	return Spec{
		Name:        "spam_detection",
		Critical:    true,
		Penalty:     0.8,
		Description: "title or content matches spam patterns",
	}
}

func (r spamDetectionRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	combined := strings.ToLower(item.Title + " " + item.Content)

	for _, phrase := range r.tables.SpamPhrases {
		if strings.Contains(combined, phrase) {
			return false, nil
		}
	}
	if strings.Count(combined, "!") > maxExclamations {
		return false, nil
	}
	if hasCharRun(combined, maxCharRun+1) {
		return false, nil
	}
	return true, nil
}

type financialRelevanceRule struct {
	tables Tables
}

func (financialRelevanceRule) Spec() Spec {
	return Spec{
		Name:        "financial_relevance",
		Critical:    false,
		Penalty:     0.15,
		Description: "no financial keywords found in title or content",
	}
}

func (r financialRelevanceRule) Evaluate(_ context.Context, item news.RawItem, _ *news.ProcessedItem) (bool, error) {
	text := strings.ToLower(item.Title + " " + item.Content)
	for _, keyword := range r.tables.FinancialKeywords {
		if strings.Contains(text, keyword) {
			return true, nil
		}
	}
	return false, nil
}

func uppercaseRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	upper := 0
	total := 0
	for _, r := range s {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper) / float64(total)
}

// specialCharRatio counts characters outside letters, digits, whitespace,
// and common punctuation (.,!?-).
func specialCharRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	special := 0
	total := 0
	for _, r := range s {
		total++
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
		case r == '.' || r == ',' || r == '!' || r == '?' || r == '-':
		default:
			special++
		}
	}
	return float64(special) / float64(total)
}

// hasCharRun reports whether s contains n identical consecutive runes.
func hasCharRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
