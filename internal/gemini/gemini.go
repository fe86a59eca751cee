// Package gemini wraps the hosted Gemini API for bias framing analysis
// and neutral summarization.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/news"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/sources"
)

type Client struct {
	client *genai.Client
	model  string
}

// NeutralResult is the parsed neutral-summary response.
type NeutralResult struct {
	Summary  string
	KeyFacts []string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Raw exposes the underlying genai client for the embedding path.
func (c *Client) Raw() *genai.Client {
	return c.client
}

const biasSummaryPrompt = `You are an expert political analyst specializing in Swedish media and political perspectives.
Your task is to analyze how %[1]s-leaning Swedish news sources are reporting on a specific topic.

IMPORTANT GUIDELINES:
1. Focus on HOW the %[1]s sources are framing and reporting the story
2. Capture the perspective, tone, and emphasis unique to %[1]s reporting
3. Do NOT compare to other political biases in this summary
4. Reflect the actual reporting style and viewpoint of %[1]s sources
5. Be factual but capture the specific angle and emphasis
6. Write the summary in Swedish

Articles from %[1]s sources:
%[2]s

Based on these articles, write a concise summary (150-200 words) that captures:
- The key points being emphasized by %[1]s sources
- The tone and framing used in their reporting
- Specific angles or perspectives highlighted
- Any particular concerns or priorities reflected in the coverage

Summary of what %[1]s sources are saying:
`

const neutralSummaryPrompt = `You are a professional journalist tasked with creating a completely neutral, factual summary of a news topic.

TOPIC: %s

CURRENT ARTICLES (from all political perspectives):
%s

RELEVANT HISTORICAL CONTEXT (from knowledge base):
%s

INSTRUCTIONS:
1. Create a comprehensive, strictly neutral summary that presents only verifiable facts
2. Use the historical context to provide background and depth
3. Avoid any political bias, speculation, or subjective language
4. Focus on core facts, key developments, and verified information
5. Length: 300-400 words, written in Swedish
6. After the summary, list 3-5 key verifiable facts as bullet points

Respond strictly in this format:

SAMMANFATTNING: <the neutral summary>

FAKTA:
- <fact 1>
- <fact 2>
- <fact 3>
`

// BiasSummary generates the framing summary for one political lean.
func (c *Client) BiasSummary(ctx context.Context, bias sources.Bias, articles []news.Article) (string, error) {
	prompt := fmt.Sprintf(biasSummaryPrompt, string(bias), formatArticles(articles))

	response, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(response)
	if summary == "" {
		return "", fmt.Errorf("empty bias summary from Gemini")
	}
	return summary, nil
}

// NeutralSummary generates the RAG-augmented neutral summary plus key facts.
func (c *Client) NeutralSummary(ctx context.Context, topic string, articles []news.Article, relatedContext []string) (*NeutralResult, error) {
	prompt := fmt.Sprintf(neutralSummaryPrompt, topic, formatArticles(articles), formatContext(relatedContext))

	response, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseNeutralResponse(response)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// formatArticles renders up to 10 articles as prompt blocks, each body
// capped at 1000 runes to stay inside token limits.
func formatArticles(articles []news.Article) string {
	var b strings.Builder

	for i, a := range articles {
		if i >= 10 {
			break
		}
		content := truncateRunes(a.Content, 1000)
		fmt.Fprintf(&b, "\nArtikel %d:\nKälla: %s (%s)\nTitel: %s\nInnehåll: %s\nURL: %s\n---\n",
			i+1, a.Source, a.Bias, a.Title, content, a.URL)
	}

	if b.Len() == 0 {
		return "Inga artiklar tillgängliga."
	}
	return b.String()
}

// formatContext renders up to 5 retrieved history entries, each capped
// at 500 runes.
func formatContext(entries []string) string {
	if len(entries) == 0 {
		return "Ingen relevant historisk kontext hittades."
	}

	var b strings.Builder
	for i, entry := range entries {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "\nKontext %d:\n%s\n---\n", i+1, truncateRunes(entry, 500))
	}
	return b.String()
}

func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	trimmed := string(runes[:max])
	// try to end at a sentence boundary
	if idx := strings.LastIndex(trimmed, ". "); idx > max/3 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "..."
}

var (
	summaryLabelRe = regexp.MustCompile(`(?i)^(SAMMANFATTNING|SUMMARY)\s*: ?`)
	factsLabelRe   = regexp.MustCompile(`(?i)^(FAKTA|KEY FACTS|VIKTIGA FAKTA)\s*:?\s*$`)
	bulletRe       = regexp.MustCompile(`^[-•*]\s*`)
)

// parseNeutralResponse splits a labelled Gemini response into the summary
// block and the fact bullets. Falls back to treating the whole response
// as the summary when the labels are missing.
func parseNeutralResponse(response string) (*NeutralResult, error) {
	lines := strings.Split(response, "\n")

	var summaryBuilder strings.Builder
	var facts []string
	section := ""

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if summaryLabelRe.MatchString(line) {
			section = "summary"
			rest := strings.TrimSpace(summaryLabelRe.ReplaceAllString(line, ""))
			if rest != "" {
				summaryBuilder.WriteString(rest)
			}
			continue
		}
		if factsLabelRe.MatchString(line) {
			section = "facts"
			continue
		}

		switch section {
		case "summary":
			if summaryBuilder.Len() > 0 {
				summaryBuilder.WriteString(" ")
			}
			summaryBuilder.WriteString(line)
		case "facts":
			fact := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
			if fact != "" && len(facts) < 5 {
				facts = append(facts, fact)
			}
		}
	}

	summary := strings.TrimSpace(summaryBuilder.String())

	// Fallback: unlabelled response becomes the summary as-is
	if summary == "" {
		summary = strings.TrimSpace(response)
	}
	if summary == "" {
		return nil, fmt.Errorf("could not parse Gemini response: empty summary")
	}

	return &NeutralResult{Summary: summary, KeyFacts: facts}, nil
}
