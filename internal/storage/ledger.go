// Package storage tracks which articles a monitor run has already
// ingested, so cron runs don't re-embed the same items.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DedupStore is the common surface over the Postgres and file ledgers.
type DedupStore interface {
	IsIngested(hash string) bool
	IsLinkIngested(link string) bool
	MarkIngested(hash, title, link, bias, source string) error
}

// GenerateArticleHash creates a stable hash for an article from its
// normalized title and source domain.
func GenerateArticleHash(title, link string) string {
	normalizedTitle := strings.ToLower(strings.TrimSpace(title))
	normalizedTitle = strings.Join(strings.Fields(normalizedTitle), " ")

	domain := extractDomain(link)

	h := sha256.New()
	h.Write([]byte(normalizedTitle + "|" + domain))
	return hex.EncodeToString(h.Sum(nil))[:16] // Use first 16 characters
}

// extractDomain extracts domain from URL
func extractDomain(url string) string {
	if url == "" {
		return "unknown"
	}

	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	parts := strings.Split(url, "/")
	if len(parts) == 0 {
		return "unknown"
	}

	domain := parts[0]
	domain = strings.TrimPrefix(domain, "www.")

	return strings.ToLower(domain)
}
