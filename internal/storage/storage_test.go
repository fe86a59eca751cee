package storage

import (
	"path/filepath"
	"testing"
)

func TestGenerateArticleHash_NormalizesTitleAndDomain(t *testing.T) {
	a := GenerateArticleHash("Regeringen Presenterar Budget", "https://www.dn.se/artikel-1")
	b := GenerateArticleHash("  regeringen   presenterar budget ", "http://dn.se/artikel-2")

	if a != b {
		t.Errorf("normalized variants hash differently: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16", len(a))
	}
}

func TestGenerateArticleHash_DifferentTitlesDiffer(t *testing.T) {
	a := GenerateArticleHash("Titel ett", "https://www.dn.se/a")
	b := GenerateArticleHash("Titel två", "https://www.dn.se/a")

	if a == b {
		t.Error("different titles should hash differently")
	}
}

func TestGenerateArticleHash_DifferentDomainsDiffer(t *testing.T) {
	a := GenerateArticleHash("Samma titel", "https://www.dn.se/a")
	b := GenerateArticleHash("Samma titel", "https://www.svt.se/a")

	if a == b {
		t.Error("different domains should hash differently")
	}
}

func TestFileLedger_MarkAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	fl := NewFileLedger(path, 48)

	hash := GenerateArticleHash("En nyhet", "https://www.dn.se/en-nyhet")
	if fl.IsIngested(hash) {
		t.Error("fresh ledger should not contain the hash")
	}

	if err := fl.MarkIngested(hash, "En nyhet", "https://www.dn.se/en-nyhet", "Center", "Dagens Nyheter"); err != nil {
		t.Fatalf("MarkIngested failed: %v", err)
	}

	if !fl.IsIngested(hash) {
		t.Error("hash should be ingested after marking")
	}
	if !fl.IsLinkIngested("https://www.dn.se/en-nyhet") {
		t.Error("link should be ingested after marking")
	}
	if fl.IsLinkIngested("https://www.dn.se/annan") {
		t.Error("unrelated link should not be ingested")
	}
}

func TestFileLedger_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")

	first := NewFileLedger(path, 48)
	hash := GenerateArticleHash("En nyhet", "https://www.svt.se/en-nyhet")
	if err := first.MarkIngested(hash, "En nyhet", "https://www.svt.se/en-nyhet", "Center", "SVT Nyheter"); err != nil {
		t.Fatal(err)
	}

	second := NewFileLedger(path, 48)
	if err := second.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !second.IsIngested(hash) {
		t.Error("hash lost across reload")
	}
	if !second.IsLinkIngested("https://www.svt.se/en-nyhet") {
		t.Error("link index lost across reload")
	}
}

func TestFileLedger_LoadMissingFileIsNoop(t *testing.T) {
	fl := NewFileLedger(filepath.Join(t.TempDir(), "absent.json"), 48)
	if err := fl.Load(); err != nil {
		t.Errorf("Load of missing file should succeed, got %v", err)
	}
	if fl.GetStats()["total_items"] != 0 {
		t.Error("ledger should start empty")
	}
}

func TestExtractDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.dn.se/artikel": "dn.se",
		"http://svt.se/nyheter":     "svt.se",
		"":                          "unknown",
	}
	for url, want := range cases {
		if got := extractDomain(url); got != want {
			t.Errorf("extractDomain(%q) = %q, want %q", url, got, want)
		}
	}
}
