// Package wordpress publishes processing results as WordPress posts via
// the REST API.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/logger"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/news"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/retry"
)

var baseTags = []string{"nyhetsanalys", "politik", "svenska medier"}

// Post is the request body sent to the WordPress posts endpoint.
type Post struct {
	Title   string         `json:"title"`
	Content string         `json:"content"`
	Excerpt string         `json:"excerpt"`
	Status  string         `json:"status"`
	Tags    []string       `json:"tags,omitempty"`
	Date    string         `json:"date"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Publisher posts to a WordPress site with basic auth.
type Publisher struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	retryCfg retry.Config
}

func NewPublisher(baseURL, username, password string) *Publisher {
	return &Publisher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
		retryCfg: retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
	}
}

// SetRetryConfig overrides the publish retry policy.
func (p *Publisher) SetRetryConfig(cfg retry.Config) {
	p.retryCfg = cfg
}

// Configured reports whether all credentials are set. Publishing is
// skipped entirely when they are not.
func (p *Publisher) Configured() bool {
	return p.baseURL != "" && p.username != "" && p.password != ""
}

// Publish creates a post for the result and returns the WordPress post ID.
func (p *Publisher) Publish(ctx context.Context, result *news.ProcessingResult) (int, error) {
	if !p.Configured() {
		logger.Warn("WordPress not configured, skipping publication")
		return 0, nil
	}

	post := BuildPost(result)

	var postID int
	err := retry.WithRetry(ctx, p.retryCfg, func() error {
		id, err := p.createPost(ctx, post)
		if err != nil {
			return err
		}
		postID = id
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to publish to WordPress: %w", err)
	}

	logger.Info("Published news analysis to WordPress", "post_id", postID)
	return postID, nil
}

func (p *Publisher) createPost(ctx context.Context, post Post) (int, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return 0, fmt.Errorf("error make JSON: %v", err)
	}

	endpoint := p.baseURL + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(p.username, p.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error HTTP request: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusCreated {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("wordpress API error: status %d - %s", resp.StatusCode, string(errText))
	}

	var created struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("error decode response: %v", err)
	}
	return created.ID, nil
}

// BuildPost assembles the Swedish post layout from a processing result.
func BuildPost(result *news.ProcessingResult) Post {
	return Post{
		Title:   "Nyhetsanalys: " + result.Topic,
		Content: formatContent(result),
		Excerpt: buildExcerpt(result.NeutralSummary.Summary),
		Status:  "publish",
		Tags:    buildTags(result),
		Date:    result.Timestamp.Format(time.RFC3339),
		Meta: map[string]any{
			"news_topic":        result.Topic,
			"articles_count":    len(result.Articles),
			"bias_distribution": biasDistribution(result.Articles),
		},
	}
}

func formatContent(result *news.ProcessingResult) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("<p><strong>Ämne:</strong> %s</p>", result.Topic))
	parts = append(parts, fmt.Sprintf("<p><em>Analyserade källor: %d artiklar från svenska medier</em></p>", len(result.Articles)))

	if len(result.Visualization) > 0 {
		if data, err := json.Marshal(result.Visualization); err == nil {
			parts = append(parts, fmt.Sprintf(`<div class="bias-visualization" data-bias='%s'></div>`, string(data)))
		}
	}

	parts = append(parts, "<h2>Politiska perspektiv</h2>")
	for _, bs := range result.BiasSummaries {
		if bs.ArticleCount == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("<h3>%s-orienterade medier (%d källor)</h3>", titleCase(string(bs.Bias)), bs.ArticleCount))
		parts = append(parts, fmt.Sprintf("<p>%s</p>", bs.Summary))
	}

	parts = append(parts, "<h2>Neutral sammanfattning</h2>")
	parts = append(parts, fmt.Sprintf("<p>%s</p>", result.NeutralSummary.Summary))

	if len(result.NeutralSummary.KeyFacts) > 0 {
		parts = append(parts, "<h3>Viktiga fakta</h3>", "<ul>")
		for _, fact := range result.NeutralSummary.KeyFacts {
			parts = append(parts, fmt.Sprintf("<li>%s</li>", fact))
		}
		parts = append(parts, "</ul>")
	}

	if len(result.NeutralSummary.InternalLinks) > 0 {
		parts = append(parts, "<h3>Relaterade artiklar</h3>", "<ul>")
		for _, link := range result.NeutralSummary.InternalLinks {
			parts = append(parts, fmt.Sprintf(`<li><a href="%s">%s</a></li>`, link.URL, link.Title))
		}
		parts = append(parts, "</ul>")
	}

	parts = append(parts, "<h3>Källor</h3>", "<ul>")
	for _, a := range result.Articles {
		parts = append(parts, fmt.Sprintf(`<li><a href="%s" target="_blank">%s</a> - %s</li>`, a.URL, a.Source, a.Title))
	}
	parts = append(parts, "</ul>")

	parts = append(parts, fmt.Sprintf("<p><em>Analys genomförd: %s UTC</em></p>", result.Timestamp.UTC().Format("2006-01-02 15:04")))

	return strings.Join(parts, "\n")
}

func buildExcerpt(summary string) string {
	runes := []rune(summary)
	if len(runes) > 150 {
		return string(runes[:150]) + "..."
	}
	return summary
}

func buildTags(result *news.ProcessingResult) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, t := range baseTags {
		add(t)
	}

	for _, word := range strings.Fields(strings.ToLower(result.Topic)) {
		if len([]rune(word)) > 3 {
			add(word)
		}
	}

	present := 0
	for _, bs := range result.BiasSummaries {
		if bs.ArticleCount > 0 {
			present++
		}
	}
	if present > 1 {
		add("mångfald perspektiv")
	}

	sort.Strings(tags[len(baseTags):])
	return tags
}

func biasDistribution(articles []news.Article) map[string]int {
	distribution := make(map[string]int)
	for _, a := range articles {
		distribution[string(a.Bias)]++
	}
	return distribution
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
