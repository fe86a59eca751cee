package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	return d
}

func TestCleanContent_StripsTagsAndJunk(t *testing.T) {
	in := `<p>Regeringen presenterade under onsdagen en helt ny budget för nästa år.</p>
<p>Läs mer: Så påverkas du av den nya budgeten</p>
<p>Oppositionen kritiserade förslaget hårt under debatten i riksdagen.</p>`

	out := cleanContent(in)

	if strings.Contains(out, "<p>") || strings.Contains(out, "</p>") {
		t.Errorf("tags not stripped: %q", out)
	}
	if strings.Contains(strings.ToLower(out), "läs mer") {
		t.Errorf("junk line not removed: %q", out)
	}
	if !strings.Contains(out, "Regeringen presenterade") {
		t.Errorf("content lost: %q", out)
	}
	if !strings.Contains(out, "Oppositionen kritiserade") {
		t.Errorf("content lost: %q", out)
	}
}

func TestCleanContent_DropsShortFragments(t *testing.T) {
	in := "Dela\nRegeringen presenterade under onsdagen en helt ny budget för nästa år.\nFoto"

	out := cleanContent(in)

	if strings.Contains(out, "Dela") || strings.Contains(out, "Foto") {
		t.Errorf("short fragments kept: %q", out)
	}
	if !strings.Contains(out, "Regeringen presenterade") {
		t.Errorf("content lost: %q", out)
	}
}

func TestCleanContent_CapsOnParagraphBoundary(t *testing.T) {
	paragraph := "Detta stycke beskriver utförligt vad som hände under dagen i riksdagen. " + strings.Repeat("Mer text följer här i samma stycke. ", 20)
	in := strings.TrimSpace(strings.Repeat(paragraph+"\n\n", 12))

	out := cleanContent(in)

	if len(out) > 4000 {
		t.Errorf("content not capped: %d bytes", len(out))
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ".") {
		t.Errorf("cap did not land on a paragraph boundary: %q", out[len(out)-40:])
	}
}

func TestCleanContent_Empty(t *testing.T) {
	if got := cleanContent(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestExtractBySelectors(t *testing.T) {
	d := doc(t, `<html><body>
<article class="story"><p>Regeringen presenterade under onsdagen en helt ny budget för det kommande året som innehåller stora satsningar.</p></article>
</body></html>`)

	out := extractBySelectors(d, []string{".missing", "article.story"}, 50)
	if !strings.Contains(out, "Regeringen presenterade") {
		t.Errorf("selector fallback failed: %q", out)
	}

	if out := extractBySelectors(d, []string{".missing"}, 50); out != "" {
		t.Errorf("expected empty result for unmatched selectors, got %q", out)
	}
}

func TestExtractTitle_PrefersH1ThenOGTitle(t *testing.T) {
	d := doc(t, `<html><head><meta property="og:title" content="OG-titel"></head><body><h1>Huvudrubriken</h1></body></html>`)
	if got := extractTitle(d); got != "Huvudrubriken" {
		t.Errorf("got %q, want h1 text", got)
	}

	d = doc(t, `<html><head><meta property="og:title" content="OG-titel"></head><body></body></html>`)
	if got := extractTitle(d); got != "OG-titel" {
		t.Errorf("got %q, want og:title fallback", got)
	}
}

func TestExtractPublished(t *testing.T) {
	d := doc(t, `<html><head><meta property="article:published_time" content="2026-03-01T09:30:00Z"></head><body></body></html>`)

	ts := extractPublished(d)
	if ts.IsZero() {
		t.Fatal("expected a parsed timestamp")
	}
	if ts.UTC().Format("2006-01-02") != "2026-03-01" {
		t.Errorf("got %v", ts)
	}
}

func TestExtractArticles_RespectsCap(t *testing.T) {
	// Unreachable URLs: extraction fails per URL but the cap still
	// bounds how many are attempted.
	urls := []string{
		"http://127.0.0.1:1/a",
		"http://127.0.0.1:1/b",
		"http://127.0.0.1:1/c",
	}

	result := ExtractArticles(urls, 2)
	if len(result) != 0 {
		t.Errorf("expected no successful extractions, got %d", len(result))
	}
}
