// Package fingerprint derives stable hash identities from raw news items.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"finchwire.dev/newsvet/internal/news"
	"finchwire.dev/newsvet/internal/normalize"
)

// Content shorter than this is too thin to be a meaningful dedup signal and
// gets no content hash.
const minContentLength = 50

// Build derives the fingerprint of a raw item. It is a pure function: no
// store or network access, and the same item always yields the same hashes.
func Build(item news.RawItem) news.Fingerprint {
	fp := news.Fingerprint{
		TitleHash:   hashHex(normalize.Title(item.Title)),
		URLHash:     hashHex(normalize.URL(item.URL)),
		Source:      item.Source,
		PublishedAt: item.PublishedAt,
	}
	if len(item.Content) > minContentLength {
		fp.ContentHash = hashHex(normalize.Title(item.Content))
	}
	return fp
}

// TitleHash returns the hex SHA-256 of the normalized title, the grouping
// key used by the in-batch duplicate pre-check.
func TitleHash(title string) string {
	return hashHex(normalize.Title(title))
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
