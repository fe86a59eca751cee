package vectorstore

import (
	"context"
	"fmt"
	"math"

	"github.com/google/generative-ai-go/genai"
)

// Dimension is the fixed pg_vector column width of the news_articles
// table. Every stored vector must match it exactly.
const Dimension = 384

// Embedder produces fixed-width embeddings via the hosted Gemini
// embedding API. The API returns wider vectors; they are truncated to
// the leading Dimension components and L2-renormalized so the existing
// schema and similarity function keep working.
type Embedder struct {
	client *genai.Client
	model  string
}

func NewEmbedder(client *genai.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// Embed returns the Dimension-wide embedding for a text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeRetrievalDocument

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from Gemini")
	}

	return FitDimension(res.Embedding.Values)
}

// EmbedQuery embeds a search query. Same width rules as Embed.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeRetrievalQuery

	res, err := em.EmbedContent(ctx, genai.Text(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from Gemini")
	}

	return FitDimension(res.Embedding.Values)
}

// FitDimension truncates a vector to Dimension components and
// renormalizes to unit length. Vectors narrower than Dimension are
// rejected; the schema is fixed.
func FitDimension(vec []float32) ([]float32, error) {
	if len(vec) < Dimension {
		return nil, fmt.Errorf("embedding has %d dimensions, need at least %d", len(vec), Dimension)
	}

	out := make([]float32, Dimension)
	copy(out, vec[:Dimension])

	var norm float64
	for _, v := range out {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("embedding has zero norm")
	}

	for i := range out {
		out[i] = float32(float64(out[i]) / norm)
	}
	return out, nil
}
