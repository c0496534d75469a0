package rules

import "strings"

// Tables holds the static lookup data the rule catalogue reads. Loaded once
// at startup and passed by reference; never mutated afterwards.
type Tables struct {
	SourceReliability map[string]float64
	FinancialKeywords []string
	SpamPhrases       []string
	URLShorteners     []string
}

// DefaultTables returns the built-in reliability, keyword, spam, and
// shortener lists.
func DefaultTables() Tables {
	return Tables{
		SourceReliability: map[string]float64{
			"ZeroHedge":        0.85,
			"CNBC":             0.9,
			"FinancialJuice":   0.8,
			"Finnhub":          0.95,
			"FRED":             1.0,
			"TradingEconomics": 0.85,
			"Bloomberg":        0.95,
			"Reuters":          0.9,
			"MarketWatch":      0.8,
			"Yahoo Finance":    0.85,
			"Investing.com":    0.75,
			"CBOE":             1.0,
			"Twitter":          0.4,
			"Reddit":           0.3,
			"Social Media":     0.25,
		},
		FinancialKeywords: []string{
			"fed", "federal reserve", "inflation", "cpi", "interest rate",
			"market", "stock", "bond", "commodity", "currency",
			"trading", "investing", "portfolio", "dividend", "earnings",
			"revenue", "profit", "loss", "gdp", "volatility",
			"vix", "sp500", "nasdaq", "dow jones", "bullish",
			"bearish", "rally", "crash", "correction", "economy",
			"recession", "recovery", "unemployment",
		},
		SpamPhrases: []string{
			"click here", "buy now", "limited time", "act fast",
			"guaranteed", "miracle", "secret", "shocking",
			"you won", "congratulations", "winner",
		},
		URLShorteners: []string{
			"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly",
		},
	}
}

// ReliabilityFor looks up a source's trust score; unknown sources score a
// neutral 0.5.
func (t Tables) ReliabilityFor(source string) float64 {
	if score, ok := t.SourceReliability[strings.TrimSpace(source)]; ok {
		return score
	}
	return 0.5
}

// ExtractKeywords returns the financial keywords matched by the title's
// words. Matching is bidirectional substring so that "stocks" hits "stock"
// and "rate" hits "interest rate".
func (t Tables) ExtractKeywords(title string) []string {
	words := strings.Fields(strings.ToLower(title))
	var matched []string
	for _, keyword := range t.FinancialKeywords {
		for _, word := range words {
			if strings.Contains(word, keyword) || strings.Contains(keyword, word) {
				matched = append(matched, keyword)
				break
			}
		}
	}
	return matched
}
