package main

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/agent"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/config"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/gemini"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/logger"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/ratelimit"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/rss"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/server"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/sources"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/storage"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/vectorstore"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/wordpress"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Missing required settings keep the server up: /health answers 503
	// and the processing endpoints surface the configuration error.
	var pipeline server.Pipeline
	if err := cfg.Validate(); err != nil {
		logger.Warn("Configuration incomplete, processing disabled until resolved", "error", err)
		pipeline = agent.UnconfiguredPipeline{Err: err}
	} else {
		pipeline = buildPipeline(cfg)
	}

	srv := server.New(cfg, pipeline)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func buildPipeline(cfg *config.Config) *agent.Agent {
	registry, err := sources.Load(cfg.SourcesConfigPath)
	if err != nil {
		log.Fatalf("Failed to load source registry: %v", err)
	}
	logger.Info("Loaded source registry", "sources", len(registry.All()))

	ctx := context.Background()

	llm, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	embedder := vectorstore.NewEmbedder(llm.Raw(), cfg.EmbeddingModel)
	store, err := vectorstore.NewStore(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.VectorTable, embedder)
	if err != nil {
		log.Fatalf("Failed to create vector store: %v", err)
	}

	ledger := newLedger(cfg)

	publisher := wordpress.NewPublisher(cfg.WordPressURL, cfg.WordPressUsername, cfg.WordPressPassword)
	if !publisher.Configured() {
		logger.Warn("WordPress credentials missing, publication disabled")
	}

	limiter := ratelimit.NewAIRateLimiter(cfg.MaxGeminiRequests, cfg.MaxEmbedRequests, cfg.MaxGeminiRequests+cfg.MaxEmbedRequests)
	fetcher := rss.NewFetcher(registry, cfg.RequestTimeout)

	pipeline := agent.New(cfg, registry, fetcher, llm, store, ledger, publisher, limiter)

	if cfg.RSSCronSpec != "" {
		startCron(cfg.RSSCronSpec, pipeline)
	}

	return pipeline
}

// newLedger picks the Postgres ledger when a DSN is configured and the
// JSON file ledger otherwise.
func newLedger(cfg *config.Config) storage.DedupStore {
	if cfg.SupabaseDBDSN != "" {
		ledger, err := storage.NewPostgresLedger(cfg.SupabaseDBDSN, cfg.LedgerTTLHours)
		if err == nil {
			logger.Info("Using Postgres dedup ledger")
			return ledger
		}
		logger.Error("Postgres ledger unavailable, falling back to file", "error", err)
	}

	ledger := storage.NewFileLedger(cfg.LedgerFilePath, cfg.LedgerTTLHours)
	if err := ledger.Load(); err != nil {
		logger.Warn("Failed to load ledger file, starting empty", "error", err)
	}
	logger.Info("Using file dedup ledger", "path", cfg.LedgerFilePath)
	return ledger
}

// startCron schedules in-process feed ingestion, replacing the external
// cron trigger of the /rss_monitor endpoint.
func startCron(spec string, pipeline *agent.Agent) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := pipeline.ProcessRSSFeeds(context.Background()); err != nil {
			logger.Error("Scheduled RSS run failed", "error", err)
		}
	})
	if err != nil {
		log.Fatalf("Invalid RSS_CRON_SPEC %q: %v", spec, err)
	}
	c.Start()
	logger.Info("Scheduled RSS ingestion", "spec", spec)
}
