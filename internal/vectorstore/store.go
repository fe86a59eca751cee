// Package vectorstore stores article embeddings in Supabase pg_vector
// and retrieves similar history for RAG prompts.
package vectorstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	supabase "github.com/supabase-community/supabase-go"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/news"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/retry"
)

// Entry is one stored vector row.
type Entry struct {
	ID        string                 `json:"id"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	Embedding []float32              `json:"embedding,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// Match is a similarity search hit.
type Match struct {
	Entry
	Similarity float64 `json:"similarity"`
}

// Store is the Supabase-backed vector store client.
type Store struct {
	client   *supabase.Client
	embedder *Embedder
	table    string
}

func NewStore(supabaseURL, anonKey, table string, embedder *Embedder) (*Store, error) {
	client, err := supabase.NewClient(supabaseURL, anonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	return &Store{
		client:   client,
		embedder: embedder,
		table:    table,
	}, nil
}

// ContentID derives the stable row id for an article from its URL and
// content.
func ContentID(url, content string) string {
	sum := sha256.Sum256([]byte(url + content))
	return "article_" + hex.EncodeToString(sum[:])[:16]
}

// contentForEmbedding is title plus the first slice of the body, the
// same shape the similarity function was tuned on.
func contentForEmbedding(a news.Article) string {
	content := a.Content
	if len(content) > 1000 {
		content = content[:1000]
	}
	return a.Title + "\n\n" + content
}

// AddArticle embeds an article and upserts it into the vector table.
// Returns the row id.
func (s *Store) AddArticle(ctx context.Context, a news.Article) (string, error) {
	embedText := contentForEmbedding(a)

	embedding := a.Embedding
	if embedding == nil {
		var err error
		embedding, err = s.embedder.Embed(ctx, embedText)
		if err != nil {
			return "", err
		}
	}
	if len(embedding) != Dimension {
		return "", fmt.Errorf("embedding has %d dimensions, schema requires %d", len(embedding), Dimension)
	}

	metadata := map[string]interface{}{
		"title":          a.Title,
		"url":            a.URL,
		"source":         a.Source,
		"domain":         a.Domain,
		"political_bias": string(a.Bias),
	}
	if !a.Published.IsZero() {
		metadata["publication_date"] = a.Published.Format(time.RFC3339)
	}
	if len(a.Authors) > 0 {
		metadata["authors"] = a.Authors
	}

	entry := Entry{
		ID:        ContentID(a.URL, a.Content),
		Content:   embedText,
		Metadata:  metadata,
		Embedding: embedding,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	err := retry.WithRetry(ctx, retry.Config{MaxAttempts: 3, Delay: time.Second, Backoff: true}, func() error {
		_, _, err := s.client.From(s.table).Upsert(entry, "id", "", "").Execute()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert article: %w", err)
	}

	return entry.ID, nil
}

// AddArticlesBatch stores multiple articles, skipping failures.
func (s *Store) AddArticlesBatch(ctx context.Context, articles []news.Article) []string {
	var ids []string
	for _, a := range articles {
		id, err := s.AddArticle(ctx, a)
		if err != nil {
			log.Printf("Error adding article %q to vector store: %v", a.Title, err)
			continue
		}
		ids = append(ids, id)
	}
	log.Printf("Added %d/%d articles to vector store", len(ids), len(articles))
	return ids
}

// SimilaritySearch retrieves up to limit entries above the similarity
// threshold via the match_news_articles database function.
func (s *Store) SimilaritySearch(ctx context.Context, query string, limit int, threshold float64) ([]Match, error) {
	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{
		"query_embedding": queryEmbedding,
		"match_threshold": threshold,
		"match_count":     limit,
	}

	raw := s.client.Rpc("match_news_articles", "", params)
	if raw == "" {
		return nil, fmt.Errorf("similarity search returned no response")
	}

	var matches []Match
	if err := json.Unmarshal([]byte(raw), &matches); err != nil {
		return nil, fmt.Errorf("failed to decode similarity results: %w", err)
	}

	log.Printf("Found %d similar articles for query %q", len(matches), truncate(query, 50))
	return matches, nil
}

// HasURL reports whether an article with this URL is already stored.
func (s *Store) HasURL(ctx context.Context, url string) (bool, error) {
	data, _, err := s.client.From(s.table).
		Select("id", "", false).
		Eq("metadata->>url", url).
		Limit(1, "").
		Execute()
	if err != nil {
		return false, fmt.Errorf("failed to check URL existence: %w", err)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return false, fmt.Errorf("failed to decode existence check: %w", err)
	}
	return len(rows) > 0, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
