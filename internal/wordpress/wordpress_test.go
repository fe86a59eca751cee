package wordpress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/logger"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/news"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/sources"
)

func init() {
	logger.Init()
}

func sampleResult() *news.ProcessingResult {
	return &news.ProcessingResult{
		Topic: "Regeringskris",
		NeutralSummary: news.NeutralSummary{
			Summary:  "En neutral sammanfattning av händelsen.",
			KeyFacts: []string{"Fakta ett.", "Fakta två."},
			InternalLinks: []news.Link{
				{Title: "Tidigare analys", URL: "https://example.com/tidigare"},
			},
		},
		BiasSummaries: []news.BiasSummary{
			{Bias: sources.BiasLeft, Summary: "Vänsterperspektiv.", ArticleCount: 2, Sources: []string{"Aftonbladet"}},
			{Bias: sources.BiasCenter, Summary: "Inga center-orienterade källor rapporterade om detta ämne.", ArticleCount: 0},
			{Bias: sources.BiasRight, Summary: "Högerperspektiv.", ArticleCount: 1, Sources: []string{"Svenska Dagbladet"}},
		},
		Visualization: []news.BiasVisualization{
			{SourceName: "Aftonbladet", Bias: sources.BiasLeft, URL: "https://www.aftonbladet.se/a"},
		},
		Articles: []news.Article{
			{Title: "Artikel", URL: "https://www.aftonbladet.se/a", Source: "Aftonbladet", Bias: sources.BiasLeft},
		},
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildPost_Layout(t *testing.T) {
	post := BuildPost(sampleResult())

	if post.Title != "Nyhetsanalys: Regeringskris" {
		t.Errorf("title = %q", post.Title)
	}
	if post.Status != "publish" {
		t.Errorf("status = %q", post.Status)
	}

	content := post.Content
	for _, want := range []string{
		"<strong>Ämne:</strong> Regeringskris",
		`<div class="bias-visualization"`,
		"<h2>Politiska perspektiv</h2>",
		"Left-orienterade medier (2 källor)",
		"Right-orienterade medier (1 källor)",
		"<h2>Neutral sammanfattning</h2>",
		"<h3>Viktiga fakta</h3>",
		"<li>Fakta ett.</li>",
		"<h3>Relaterade artiklar</h3>",
		`<a href="https://example.com/tidigare">Tidigare analys</a>`,
		"<h3>Källor</h3>",
		"Analys genomförd: 2026-03-01 12:00 UTC",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestBuildPost_SkipsEmptyBiasSections(t *testing.T) {
	post := BuildPost(sampleResult())

	if strings.Contains(post.Content, "Center-orienterade medier") {
		t.Error("zero-count bias section should be skipped")
	}
}

func TestBuildPost_ExcerptTruncation(t *testing.T) {
	result := sampleResult()
	result.NeutralSummary.Summary = strings.Repeat("å", 300)

	post := BuildPost(result)
	if !strings.HasSuffix(post.Excerpt, "...") {
		t.Errorf("long excerpt not truncated: %q", post.Excerpt)
	}
	if got := len([]rune(post.Excerpt)); got != 153 {
		t.Errorf("excerpt length = %d runes, want 153", got)
	}

	result.NeutralSummary.Summary = "Kort."
	post = BuildPost(result)
	if post.Excerpt != "Kort." {
		t.Errorf("short excerpt altered: %q", post.Excerpt)
	}
}

func TestBuildPost_Tags(t *testing.T) {
	post := BuildPost(sampleResult())

	want := map[string]bool{
		"nyhetsanalys":         false,
		"politik":              false,
		"svenska medier":       false,
		"regeringskris":        false,
		"mångfald perspektiv":  false,
	}
	for _, tag := range post.Tags {
		if _, ok := want[tag]; ok {
			want[tag] = true
		}
	}
	for tag, found := range want {
		if !found {
			t.Errorf("missing tag %q in %v", tag, post.Tags)
		}
	}
}

func TestPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/posts" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			t.Error("missing or wrong basic auth")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42}`))
	}))
	defer srv.Close()

	p := NewPublisher(srv.URL, "admin", "secret")
	id, err := p.Publish(context.Background(), sampleResult())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if id != 42 {
		t.Errorf("post id = %d, want 42", id)
	}
}

func TestPublish_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewPublisher(srv.URL, "admin", "secret")
	p.retryCfg.Delay = time.Millisecond

	if _, err := p.Publish(context.Background(), sampleResult()); err == nil {
		t.Error("expected error on 403 response")
	}
}

func TestPublish_UnconfiguredSkips(t *testing.T) {
	p := NewPublisher("", "", "")
	id, err := p.Publish(context.Background(), sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 0 {
		t.Errorf("got id %d, want 0", id)
	}
}
