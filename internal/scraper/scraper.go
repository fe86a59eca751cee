package scraper

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ArticleContent is the extracted body of one article page.
type ArticleContent struct {
	Title     string
	Content   string
	URL       string
	Published time.Time
	Authors   []string
}

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ExtractFullArticle gets full text of an article by URL.
func ExtractFullArticle(url string) (*ArticleContent, error) {
	client := &http.Client{
		Timeout: 15 * time.Second,
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %v", err)
	}

	content := extractContentBySource(doc, url)
	title := extractTitle(doc)

	if content == "" {
		return nil, fmt.Errorf("can't get content")
	}

	return &ArticleContent{
		Title:     title,
		Content:   content,
		URL:       url,
		Published: extractPublished(doc),
		Authors:   extractAuthors(doc),
	}, nil
}

// extractContentBySource picks a selector list by news site.
func extractContentBySource(doc *goquery.Document, url string) string {
	var content string

	switch {
	case strings.Contains(url, "aftonbladet.se"):
		content = extractBySelectors(doc, []string{
			".article-body p",
			"[data-test-tag='article-body'] p",
			"main article p",
		}, 10)
	case strings.Contains(url, "expressen.se"):
		content = extractBySelectors(doc, []string{
			".rich-text p",
			".article__body p",
			"article p",
		}, 10)
	case strings.Contains(url, "dn.se"):
		content = extractBySelectors(doc, []string{
			".article__content p",
			".article-content p",
			"article p",
		}, 10)
	case strings.Contains(url, "svt.se"):
		content = extractBySelectors(doc, []string{
			".nyh_article__body p",
			".TextBodyComponent p",
			"article p",
		}, 10)
	case strings.Contains(url, "sr.se"):
		content = extractBySelectors(doc, []string{
			".publication-text p",
			".article-details__body p",
			"article p",
		}, 10)
	case strings.Contains(url, "svd.se"), strings.Contains(url, "svenskadagbladet.se"):
		content = extractBySelectors(doc, []string{
			".ArticleText-root p",
			".article-content p",
			"article p",
		}, 10)
	case strings.Contains(url, "gp.se"):
		content = extractBySelectors(doc, []string{
			".c-article__content p",
			".article__body p",
			"article p",
		}, 10)
	default:
		content = extractGenericContent(doc)
	}

	return cleanContent(content)
}

// extractBySelectors tries selectors until one yields paragraphs.
func extractBySelectors(doc *goquery.Document, selectors []string, minLen int) string {
	var paragraphs []string

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > minLen {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

// extractGenericContent is the fallback parser for unregistered sites.
func extractGenericContent(doc *goquery.Document) string {
	var paragraphs []string

	selectors := []string{
		"article p",
		".article p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"#content p",
		".text p",
		"p",
	}

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 { // 3 paragraphs is enough signal
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

// extractTitle gets the article title.
func extractTitle(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		"title",
		".article-title",
		".headline",
		".entry-title",
	}

	for _, selector := range selectors {
		title := doc.Find(selector).First().Text()
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return strings.TrimSpace(og)
	}

	return ""
}

// extractPublished reads the publication timestamp from common meta tags.
func extractPublished(doc *goquery.Document) time.Time {
	selectors := []string{
		`meta[property="article:published_time"]`,
		`meta[name="publish-date"]`,
	}

	for _, selector := range selectors {
		if raw, ok := doc.Find(selector).Attr("content"); ok {
			raw = strings.TrimSpace(raw)
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				return t
			}
		}
	}

	for _, selector := range []string{".publish-date", ".article-date", "time[datetime]"} {
		sel := doc.Find(selector).First()
		raw, ok := sel.Attr("datetime")
		if !ok {
			raw = sel.Text()
		}
		raw = strings.TrimSpace(raw)
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}

	return time.Time{}
}

// extractAuthors reads bylines from common selectors.
func extractAuthors(doc *goquery.Document) []string {
	var authors []string
	seen := map[string]bool{}

	selectors := []string{
		`[rel="author"]`,
		`meta[name="author"]`,
		".author",
		".byline",
	}

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			name, ok := s.Attr("content")
			if !ok {
				name = s.Text()
			}
			name = strings.TrimSpace(name)
			if name != "" && len(name) < 80 && !seen[name] {
				seen[name] = true
				authors = append(authors, name)
			}
		})
	}

	return authors
}

// junkPhrases are boilerplate fragments the Swedish outlets repeat in
// article bodies.
var junkPhrases = []string{
	"Läs mer:", "Läs också:", "Se även:", "Hör mer:", "Video:",
	"Följ ämnet", "Följ oss på", "Dela artikeln", "Skriv ut artikeln",
	"Spara artikeln", "Prenumerera på nyhetsbrevet",
	"Cookie", "GDPR", "Integritetspolicy", "Logga in", "Skapa konto",
	"Texten uppdateras", "Artikeln uppdateras",
}

var junkIndicators = []string{
	"cookie", "gdpr", "annons", "reklam", "läs mer",
	"klicka här", "följ oss", "dela artikel", "skriv ut", "spara artikel",
}

// cleanContent normalizes scraped text: strips tags and junk phrases,
// rebuilds paragraphs, caps the length on paragraph boundaries.
func cleanContent(content string) string {
	if content == "" {
		return ""
	}

	// Remove residual HTML tags
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "<br/>", " ")
	content = strings.ReplaceAll(content, "<p>", "\n\n")
	content = strings.ReplaceAll(content, "</p>", "")

	inTag := false
	var result strings.Builder
	for _, char := range content {
		if char == '<' {
			inTag = true
		} else if char == '>' {
			inTag = false
		} else if !inTag {
			result.WriteRune(char)
		}
	}

	content = strings.TrimSpace(result.String())

	for _, phrase := range junkPhrases {
		content = strings.ReplaceAll(content, phrase, "")
	}

	// Rebuild paragraphs
	lines := strings.Split(content, "\n")
	var cleanLines []string
	var currentParagraph strings.Builder

	flush := func() {
		if currentParagraph.Len() == 0 {
			return
		}
		paragraph := strings.TrimSpace(currentParagraph.String())
		if len(paragraph) > 30 {
			cleanLines = append(cleanLines, paragraph)
		}
		currentParagraph.Reset()
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if len(line) < 8 {
			flush()
			continue
		}

		lower := strings.ToLower(line)
		isJunk := false
		for _, indicator := range junkIndicators {
			if strings.Contains(lower, indicator) {
				isJunk = true
				break
			}
		}
		if isJunk {
			continue
		}

		if currentParagraph.Len() > 0 {
			currentParagraph.WriteString(" ")
		}
		currentParagraph.WriteString(line)

		if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") {
			flush()
		}
	}
	flush()

	resultText := strings.Join(cleanLines, "\n\n")

	for strings.Contains(resultText, "  ") {
		resultText = strings.ReplaceAll(resultText, "  ", " ")
	}
	for strings.Contains(resultText, "\n\n\n") {
		resultText = strings.ReplaceAll(resultText, "\n\n\n", "\n\n")
	}

	resultText = strings.TrimSpace(resultText)

	// Limit length, keep full paragraphs
	if len(resultText) > 4000 {
		paragraphs := strings.Split(resultText, "\n\n")
		var selected []string
		totalLength := 0

		for _, paragraph := range paragraphs {
			if totalLength+len(paragraph) < 3800 {
				selected = append(selected, paragraph)
				totalLength += len(paragraph) + 2
			} else {
				break
			}
		}

		if len(selected) > 0 {
			resultText = strings.Join(selected, "\n\n")
		}
	}

	return resultText
}

// ExtractArticles gets full content for a list of URLs, capped at max,
// with a politeness pause between requests.
func ExtractArticles(urls []string, max int) map[string]*ArticleContent {
	result := make(map[string]*ArticleContent)

	for i, url := range urls {
		if max > 0 && i >= max {
			break
		}

		log.Printf("Getting full content of article %d/%d: %s", i+1, len(urls), url)

		article, err := ExtractFullArticle(url)
		if err != nil {
			log.Printf("Can't get content %s: %v", url, err)
			continue
		}

		if len(article.Content) > 100 { // Check content is not empty
			result[url] = article
			log.Printf("Got content (%d chars)", len(article.Content))
		} else {
			log.Printf("Content too short: %s", url)
		}

		time.Sleep(500 * time.Millisecond)
	}

	return result
}
