// Package rss fetches the registered feeds and tags items with their source.
package rss

import (
	"context"
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/sources"
)

// Item is a single feed entry enriched with its source registry entry.
type Item struct {
	Title       string
	Link        string
	Description string
	Published   time.Time
	HasDate     bool
	Source      sources.Source
}

// Fetcher downloads and parses the registered RSS feeds.
type Fetcher struct {
	parser   *gofeed.Parser
	registry *sources.Registry
	timeout  time.Duration
}

func NewFetcher(registry *sources.Registry, timeout time.Duration) *Fetcher {
	return &Fetcher{
		parser:   gofeed.NewParser(),
		registry: registry,
		timeout:  timeout,
	}
}

// FetchAll downloads and parses all registered feeds. A failing feed is
// logged and skipped; the run continues with whatever parsed.
func (f *Fetcher) FetchAll(ctx context.Context) []Item {
	var allItems []Item
	successCount := 0

	for _, src := range f.registry.All() {
		items, err := f.fetchFeed(ctx, src)
		if err != nil {
			log.Printf("Error parsing RSS %s: %v", src.RSSFeed, err)
			continue // Log error, but don't stop
		}
		allItems = append(allItems, items...)
		successCount++
		log.Printf("Loaded %d items from %s", len(items), src.Name)
	}

	log.Printf("Processed RSS feeds: %d/%d ok", successCount, len(f.registry.All()))
	return allItems
}

// FetchRecent returns items published within the given window. Items
// without a parseable date are kept, matching the original ingestion
// behavior of the source system.
func (f *Fetcher) FetchRecent(ctx context.Context, window time.Duration) []Item {
	cutoff := time.Now().Add(-window)

	var recent []Item
	for _, item := range f.FetchAll(ctx) {
		if !item.HasDate || item.Published.After(cutoff) {
			recent = append(recent, item)
		}
	}
	return recent
}

func (f *Fetcher) fetchFeed(ctx context.Context, src sources.Source) ([]Item, error) {
	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	feed, err := f.parser.ParseURLWithContext(src.RSSFeed, fetchCtx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := Item{
			Title:       entry.Title,
			Link:        entry.Link,
			Description: entry.Description,
			Source:      src,
		}
		if entry.PublishedParsed != nil {
			item.Published = *entry.PublishedParsed
			item.HasDate = true
		} else if entry.UpdatedParsed != nil {
			item.Published = *entry.UpdatedParsed
			item.HasDate = true
		}
		items = append(items, item)
	}
	return items, nil
}
