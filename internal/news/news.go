// Package news defines the data model shared by the processing pipeline.
package news

import (
	"fmt"
	"strings"
	"time"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/sources"
)

// Article is one fetched news article. Written once to the vector store,
// never updated.
type Article struct {
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	URL       string       `json:"url"`
	Source    string       `json:"source"`
	Domain    string       `json:"domain"`
	Bias      sources.Bias `json:"political_bias"`
	Published time.Time    `json:"publication_date,omitempty"`
	Authors   []string     `json:"authors,omitempty"`
	Embedding []float32    `json:"-"`
}

// ProcessingInput is the topic request body.
type ProcessingInput struct {
	TopicTitle       string `json:"topic_title"`
	TopicURL         string `json:"topic_url"`
	TopicDescription string `json:"topic_description"`
}

// SearchQuery derives the query string from the first populated field.
func (p ProcessingInput) SearchQuery() (string, error) {
	switch {
	case strings.TrimSpace(p.TopicTitle) != "":
		return strings.TrimSpace(p.TopicTitle), nil
	case strings.TrimSpace(p.TopicDescription) != "":
		return strings.TrimSpace(p.TopicDescription), nil
	case strings.TrimSpace(p.TopicURL) != "":
		return strings.TrimSpace(p.TopicURL), nil
	}
	return "", fmt.Errorf("at least one input field must be provided")
}

// BiasSummary is the framing summary for one political lean.
type BiasSummary struct {
	Bias         sources.Bias `json:"political_bias"`
	Summary      string       `json:"summary"`
	ArticleCount int          `json:"article_count"`
	Sources      []string     `json:"sources"`
}

// Link is a titled URL used for internal linking.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NeutralSummary is the RAG-enhanced neutral digest.
type NeutralSummary struct {
	Summary        string   `json:"summary"`
	KeyFacts       []string `json:"key_facts"`
	RelatedContext []string `json:"related_context"`
	InternalLinks  []Link   `json:"internal_links"`
}

// BiasVisualization is one entry of the bias chart payload.
type BiasVisualization struct {
	SourceName string       `json:"source_name"`
	Bias       sources.Bias `json:"bias"`
	URL        string       `json:"url"`
}

// ProcessingResult is the complete response for one topic. Ephemeral:
// only the WordPress post and the vector entries outlive the request.
type ProcessingResult struct {
	Topic             string              `json:"topic"`
	NeutralSummary    NeutralSummary      `json:"neutral_summary"`
	BiasSummaries     []BiasSummary       `json:"bias_summaries"`
	Visualization     []BiasVisualization `json:"bias_visualization_data"`
	Articles          []Article           `json:"articles_processed"`
	Timestamp         time.Time           `json:"processing_timestamp"`
	WordPressPostID   int                 `json:"wordpress_post_id,omitempty"`
}

// GroupByBias splits articles into the three classified leans. Articles
// from unknown sources are dropped, they carry no usable lean.
func GroupByBias(articles []Article) map[sources.Bias][]Article {
	grouped := map[sources.Bias][]Article{
		sources.BiasLeft:   nil,
		sources.BiasCenter: nil,
		sources.BiasRight:  nil,
	}
	for _, a := range articles {
		if a.Bias.Valid() {
			grouped[a.Bias] = append(grouped[a.Bias], a)
		}
	}
	return grouped
}
