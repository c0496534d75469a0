// Package normalize turns raw titles and URLs into the canonical forms used
// for fingerprinting and duplicate comparison. Both functions are pure and
// total: they never fail, and running them twice yields the same output.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// Query parameters that only track how a link was shared, never what it
// points at. Stripping them is what makes two syndicated copies of the same
// article hash identically.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"ref", "fbclid", "gclid", "msclkid", "twclid", "dclid",
	"mc_cid", "mc_eid", "s_kwcid", "igshid", "share", "source",
	"_ga", "_gid", "trk", "trkCampaign", "sc_campaign", "sc_channel",
}

// Twitter/X mirrors and Nitter instances all serve the same posts; every
// such hostname is rewritten to the single canonical host.
const canonicalTwitterHost = "x.com"

var twitterVariants = []string{
	"twitter.com", "x.com", "nitter.net", "fixupx.com", "vxtwitter.com", "fxtwitter.com",
}

var nitterInstances = []string{
	"nitter.privacydev.net", "nitter.net", "nitter.unixfox.eu", "nitter.cz",
	"nitter.1d4.us", "nitter.kavin.rocks", "nitter.poast.org", "nitter.moomoo.me",
}

var multiSlash = regexp.MustCompile(`/{2,}`)

// Title lowercases, strips everything that is not a letter, digit, or
// whitespace, and collapses whitespace runs to single spaces.
func Title(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	if lowered == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(lowered))
	lastSpace := false
	for _, r := range lowered {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// URL canonicalizes a raw URL: tracking parameters are removed, Twitter/X
// mirror hosts are unified, duplicate slashes and trailing slashes are
// collapsed, and the result is rebuilt as https and lowercased. Parse
// failures degrade to a lexical cleanup; this function never returns an
// error because noisy feeds hand us malformed URLs routinely.
func URL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return fallbackCleanup(trimmed)
	}

	q := parsed.Query()
	for key := range q {
		if isTrackingParam(key) {
			q.Del(key)
		}
	}

	host := strings.ToLower(parsed.Hostname())
	if isTwitterMirror(host) {
		host = canonicalTwitterHost
	}

	path := multiSlash.ReplaceAllString(parsed.EscapedPath(), "/")
	path = strings.TrimRight(path, "/")

	rebuilt := "https://" + host + path
	if encoded := q.Encode(); encoded != "" {
		rebuilt += "?" + encoded
	}
	return strings.ToLower(rebuilt)
}

func isTrackingParam(key string) bool {
	for _, param := range trackingParams {
		if strings.EqualFold(key, param) {
			return true
		}
	}
	return false
}

func isTwitterMirror(host string) bool {
	for _, variant := range twitterVariants {
		if strings.Contains(host, variant) {
			return true
		}
	}
	for _, instance := range nitterInstances {
		if strings.Contains(host, instance) {
			return true
		}
	}
	return false
}

func fallbackCleanup(raw string) string {
	cleaned := strings.ToLower(raw)
	if i := strings.IndexAny(cleaned, "?#"); i >= 0 {
		cleaned = cleaned[:i]
	}
	return strings.TrimRight(cleaned, "/")
}
