// Package agent orchestrates the full topic workflow: article discovery,
// bias and neutral summarization, vector storage and publication.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/config"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/gemini"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/logger"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/metrics"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/news"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/ratelimit"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/rss"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/scraper"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/sources"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/storage"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/vectorstore"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/wordpress"
)

const (
	contextLimit     = 5
	contextThreshold = 0.7
	maxInternalLinks = 3
)

// UnconfiguredPipeline answers every processing request with the
// configuration error. Used when required settings are missing, so the
// server still starts and /health reports the degraded state.
type UnconfiguredPipeline struct {
	Err error
}

func (u UnconfiguredPipeline) ProcessNewsTopic(ctx context.Context, input news.ProcessingInput) (*news.ProcessingResult, error) {
	return nil, u.Err
}

func (u UnconfiguredPipeline) ProcessRSSFeeds(ctx context.Context) (*MonitorResult, error) {
	return nil, u.Err
}

// MonitorResult reports one feed ingestion run.
type MonitorResult struct {
	ItemsFound     int `json:"items_found"`
	ItemsProcessed int `json:"items_processed"`
}

// Agent wires the pipeline components together.
type Agent struct {
	cfg       *config.Config
	registry  *sources.Registry
	fetcher   *rss.Fetcher
	llm       *gemini.Client
	store     *vectorstore.Store
	ledger    storage.DedupStore
	publisher *wordpress.Publisher
	limiter   *ratelimit.AIRateLimiter
}

func New(cfg *config.Config, registry *sources.Registry, fetcher *rss.Fetcher, llm *gemini.Client, store *vectorstore.Store, ledger storage.DedupStore, publisher *wordpress.Publisher, limiter *ratelimit.AIRateLimiter) *Agent {
	return &Agent{
		cfg:       cfg,
		registry:  registry,
		fetcher:   fetcher,
		llm:       llm,
		store:     store,
		ledger:    ledger,
		publisher: publisher,
		limiter:   limiter,
	}
}

// ProcessNewsTopic runs the complete workflow for one topic: discover
// articles, retrieve related history, summarize per lean and neutrally,
// store embeddings and publish. Downstream failures degrade the result
// instead of aborting it.
func (a *Agent) ProcessNewsTopic(ctx context.Context, input news.ProcessingInput) (*news.ProcessingResult, error) {
	query, err := input.SearchQuery()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Info("Starting news processing", "topic", query)

	articles := a.discoverArticles(ctx, input, query)
	if len(articles) == 0 {
		logger.Warn("No articles found for topic", "topic", query)
		return errorResult("No articles found for the given topic"), nil
	}
	logger.Info("Discovered articles", "count", len(articles))

	relatedContext := a.retrieveRelatedContext(ctx, query)

	result := &news.ProcessingResult{
		Topic:          query,
		BiasSummaries:  a.generateBiasSummaries(ctx, articles),
		NeutralSummary: a.generateNeutralSummary(ctx, query, articles, relatedContext),
		Visualization:  buildVisualization(articles),
		Articles:       articles,
		Timestamp:      time.Now().UTC(),
	}

	a.storeArticles(ctx, articles)

	if postID := a.publish(ctx, result); postID > 0 {
		result.WordPressPostID = postID
	}

	metrics.Global.IncrementTopicsProcessed()
	metrics.Global.RecordProcessingTime(time.Since(start))
	metrics.Global.SetLastRun()

	logger.Info("Processed news topic", "topic", query, "articles", len(articles))
	return result, nil
}

// ProcessRSSFeeds ingests recent feed items into the vector store. Meant
// to run from the monitor endpoint or the in-process cron.
func (a *Agent) ProcessRSSFeeds(ctx context.Context) (*MonitorResult, error) {
	logger.Info("Starting RSS feed processing")

	items := a.fetcher.FetchRecent(ctx, a.cfg.MonitorWindow)
	metrics.Global.IncrementFeedItemsSeen(len(items))

	result := &MonitorResult{ItemsFound: len(items)}
	if len(items) == 0 {
		logger.Info("No recent RSS items found")
		return result, nil
	}

	if len(items) > a.cfg.MonitorMaxItems {
		items = items[:a.cfg.MonitorMaxItems]
	}

	for _, item := range items {
		hash := storage.GenerateArticleHash(item.Title, item.Link)
		if a.ledger.IsIngested(hash) || a.ledger.IsLinkIngested(item.Link) {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}

		if stored, err := a.store.HasURL(ctx, item.Link); err == nil && stored {
			metrics.Global.IncrementDuplicatesFiltered()
			a.markIngested(hash, item)
			continue
		}

		content, err := scraper.ExtractFullArticle(item.Link)
		if err != nil {
			logger.Error("Failed to extract article", "url", item.Link, "error", err)
			continue
		}
		metrics.Global.IncrementArticlesScraped()

		article := buildArticle(item, content)

		if err := a.limiter.UseEmbed(); err != nil {
			logger.Warn("Embedding budget exhausted, stopping run", "error", err)
			break
		}
		if _, err := a.store.AddArticle(ctx, article); err != nil {
			logger.Error("Failed to store article", "url", item.Link, "error", err)
			continue
		}
		metrics.Global.IncrementArticlesEmbedded()

		a.markIngested(hash, item)
		result.ItemsProcessed++
	}

	metrics.Global.SetLastRun()
	logger.Info("RSS processing completed", "found", result.ItemsFound, "processed", result.ItemsProcessed)
	return result, nil
}

// discoverArticles matches recent feed items against the query and
// extracts their full content. A topic_url from a registered source is
// extracted directly as well.
func (a *Agent) discoverArticles(ctx context.Context, input news.ProcessingInput, query string) []news.Article {
	items := a.fetcher.FetchRecent(ctx, a.cfg.TopicWindow)
	metrics.Global.IncrementFeedItemsSeen(len(items))

	matched := matchTopicItems(items, query)

	urls := make([]string, 0, len(matched)+1)
	itemByURL := make(map[string]rss.Item, len(matched)+1)
	for _, item := range matched {
		urls = append(urls, item.Link)
		itemByURL[item.Link] = item
	}

	if topicURL := strings.TrimSpace(input.TopicURL); topicURL != "" {
		if _, dup := itemByURL[topicURL]; !dup {
			if src, ok := a.registry.LookupURL(topicURL); ok {
				urls = append(urls, topicURL)
				itemByURL[topicURL] = rss.Item{Link: topicURL, Source: src}
			}
		}
	}

	extracted := scraper.ExtractArticles(urls, a.cfg.ScrapeMaxArticles)

	var articles []news.Article
	for url, content := range extracted {
		metrics.Global.IncrementArticlesScraped()
		articles = append(articles, buildArticle(itemByURL[url], content))
	}
	return articles
}

// matchTopicItems filters recent feed items to those mentioning the
// query. Repeats are dropped by link and by normalized title/domain
// hash, so a story republished under URL variants is scraped once.
func matchTopicItems(items []rss.Item, query string) []rss.Item {
	needle := strings.ToLower(query)

	seenLinks := make(map[string]bool)
	seenHashes := make(map[string]bool)
	var matched []rss.Item

	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.Title), needle) &&
			!strings.Contains(strings.ToLower(item.Description), needle) {
			continue
		}
		if item.Link == "" || seenLinks[item.Link] {
			continue
		}
		hash := storage.GenerateArticleHash(item.Title, item.Link)
		if seenHashes[hash] {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seenLinks[item.Link] = true
		seenHashes[hash] = true
		matched = append(matched, item)
	}
	return matched
}

// retrieveRelatedContext queries the vector store for similar history.
// Fails open: RAG context is an enhancement, not a requirement.
func (a *Agent) retrieveRelatedContext(ctx context.Context, query string) []vectorstore.Match {
	if err := a.limiter.UseEmbed(); err != nil {
		logger.Warn("Skipping context retrieval", "error", err)
		return nil
	}

	matches, err := a.store.SimilaritySearch(ctx, query, contextLimit, contextThreshold)
	if err != nil {
		logger.Error("Failed to retrieve related context", "error", err)
		return nil
	}

	logger.Info("Retrieved related context", "count", len(matches))
	return matches
}

// generateBiasSummaries produces one summary per classified lean. Leans
// without articles get a fixed placeholder so all three are always
// present in the result.
func (a *Agent) generateBiasSummaries(ctx context.Context, articles []news.Article) []news.BiasSummary {
	grouped := news.GroupByBias(articles)

	summaries := make([]news.BiasSummary, 0, len(sources.AllBiases))
	for _, bias := range sources.AllBiases {
		group := grouped[bias]
		summary := news.BiasSummary{
			Bias:         bias,
			ArticleCount: len(group),
			Sources:      sourceNames(group),
		}

		if len(group) == 0 {
			summary.Summary = fmt.Sprintf("Inga %s-orienterade källor rapporterade om detta ämne.", strings.ToLower(string(bias)))
			summaries = append(summaries, summary)
			continue
		}

		text, err := a.generateBiasSummary(ctx, bias, group)
		if err != nil {
			logger.Error("Failed to generate bias summary", "bias", bias, "error", err)
			metrics.Global.IncrementSummariesFailed()
			summary.Summary = fmt.Sprintf("Kunde inte generera sammanfattning för %s-orienterade källor.", strings.ToLower(string(bias)))
		} else {
			metrics.Global.IncrementSummariesGenerated()
			summary.Summary = text
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (a *Agent) generateBiasSummary(ctx context.Context, bias sources.Bias, group []news.Article) (string, error) {
	if err := a.limiter.UseGenerate(); err != nil {
		return "", err
	}
	return a.llm.BiasSummary(ctx, bias, group)
}

func (a *Agent) generateNeutralSummary(ctx context.Context, topic string, articles []news.Article, matches []vectorstore.Match) news.NeutralSummary {
	contextTexts := make([]string, 0, len(matches))
	for _, m := range matches {
		contextTexts = append(contextTexts, m.Content)
	}

	neutral := news.NeutralSummary{
		RelatedContext: contextSnippets(matches),
		InternalLinks:  internalLinks(matches),
	}

	if err := a.limiter.UseGenerate(); err != nil {
		logger.Error("Failed to generate neutral summary", "error", err)
		metrics.Global.IncrementSummariesFailed()
		neutral.Summary = "Kunde inte generera neutral sammanfattning: " + err.Error()
		return neutral
	}

	result, err := a.llm.NeutralSummary(ctx, topic, articles, contextTexts)
	if err != nil {
		logger.Error("Failed to generate neutral summary", "error", err)
		metrics.Global.IncrementSummariesFailed()
		neutral.Summary = "Kunde inte generera neutral sammanfattning: " + err.Error()
		return neutral
	}

	metrics.Global.IncrementSummariesGenerated()
	neutral.Summary = result.Summary
	neutral.KeyFacts = result.KeyFacts
	return neutral
}

// storeArticles embeds and upserts the analyzed articles, respecting the
// daily embedding budget. Storage failures only cost future RAG recall.
func (a *Agent) storeArticles(ctx context.Context, articles []news.Article) {
	allowed := make([]news.Article, 0, len(articles))
	for _, article := range articles {
		if err := a.limiter.UseEmbed(); err != nil {
			logger.Warn("Embedding budget exhausted", "stored", len(allowed), "total", len(articles))
			break
		}
		allowed = append(allowed, article)
	}

	ids := a.store.AddArticlesBatch(ctx, allowed)
	for range ids {
		metrics.Global.IncrementArticlesEmbedded()
	}
	logger.Info("Stored articles in vector store", "count", len(ids))
}

func (a *Agent) publish(ctx context.Context, result *news.ProcessingResult) int {
	if a.publisher == nil || !a.publisher.Configured() {
		logger.Warn("WordPress not configured, skipping publication")
		return 0
	}

	postID, err := a.publisher.Publish(ctx, result)
	if err != nil {
		logger.Error("Failed to publish to WordPress", "error", err)
		return 0
	}
	if postID > 0 {
		metrics.Global.IncrementPostsPublished()
	}
	return postID
}

func (a *Agent) markIngested(hash string, item rss.Item) {
	if err := a.ledger.MarkIngested(hash, item.Title, item.Link, string(item.Source.Bias), item.Source.Name); err != nil {
		logger.Error("Failed to mark article ingested", "url", item.Link, "error", err)
	}
}

func buildArticle(item rss.Item, content *scraper.ArticleContent) news.Article {
	title := content.Title
	if title == "" {
		title = item.Title
	}

	published := content.Published
	if published.IsZero() && item.HasDate {
		published = item.Published
	}

	return news.Article{
		Title:     title,
		Content:   content.Content,
		URL:       content.URL,
		Source:    item.Source.Name,
		Domain:    item.Source.Domain,
		Bias:      item.Source.Bias,
		Published: published,
		Authors:   content.Authors,
	}
}

func buildVisualization(articles []news.Article) []news.BiasVisualization {
	data := make([]news.BiasVisualization, 0, len(articles))
	for _, a := range articles {
		data = append(data, news.BiasVisualization{
			SourceName: a.Source,
			Bias:       a.Bias,
			URL:        a.URL,
		})
	}
	return data
}

func sourceNames(articles []news.Article) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range articles {
		if a.Source != "" && !seen[a.Source] {
			seen[a.Source] = true
			names = append(names, a.Source)
		}
	}
	return names
}

func contextSnippets(matches []vectorstore.Match) []string {
	var snippets []string
	for _, m := range matches {
		if len(snippets) == maxInternalLinks {
			break
		}
		content := m.Content
		if len([]rune(content)) > 200 {
			content = string([]rune(content)[:200]) + "..."
		}
		snippets = append(snippets, content)
	}
	return snippets
}

func internalLinks(matches []vectorstore.Match) []news.Link {
	var links []news.Link
	for _, m := range matches {
		if len(links) == maxInternalLinks {
			break
		}
		title, okTitle := m.Metadata["title"].(string)
		url, okURL := m.Metadata["url"].(string)
		if okTitle && okURL && title != "" && url != "" {
			links = append(links, news.Link{Title: title, URL: url})
		}
	}
	return links
}

func errorResult(message string) *news.ProcessingResult {
	return &news.ProcessingResult{
		Topic: "Error",
		NeutralSummary: news.NeutralSummary{
			Summary: message,
		},
		Timestamp: time.Now().UTC(),
	}
}
