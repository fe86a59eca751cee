package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyDomain_KnownSources(t *testing.T) {
	r := Default()

	cases := map[string]Bias{
		"aftonbladet.se":      BiasLeft,
		"expressen.se":        BiasLeft,
		"dn.se":               BiasCenter,
		"svt.se":              BiasCenter,
		"sr.se":               BiasCenter,
		"svenskadagbladet.se": BiasRight,
		"gp.se":               BiasRight,
	}

	for domain, want := range cases {
		if got := r.ClassifyDomain(domain); got != want {
			t.Errorf("ClassifyDomain(%q) = %q, want %q", domain, got, want)
		}
	}
}

func TestClassifyDomain_UnknownDefaultsToUnknown(t *testing.T) {
	r := Default()

	if got := r.ClassifyDomain("bbc.co.uk"); got != BiasUnknown {
		t.Errorf("ClassifyDomain(bbc.co.uk) = %q, want %q", got, BiasUnknown)
	}
	if got := r.ClassifyDomain(""); got != BiasUnknown {
		t.Errorf("ClassifyDomain(\"\") = %q, want %q", got, BiasUnknown)
	}
}

func TestLookupDomain_StripsWWWAndSubdomains(t *testing.T) {
	r := Default()

	for _, domain := range []string{"www.dn.se", "dn.se", "sport.dn.se"} {
		src, ok := r.LookupDomain(domain)
		if !ok {
			t.Fatalf("LookupDomain(%q) not found", domain)
		}
		if src.Name != "Dagens Nyheter" {
			t.Errorf("LookupDomain(%q) = %q, want Dagens Nyheter", domain, src.Name)
		}
	}
}

func TestLookupURL(t *testing.T) {
	r := Default()

	src, ok := r.LookupURL("https://www.svt.se/nyheter/inrikes/some-article")
	if !ok {
		t.Fatal("expected svt.se article URL to resolve")
	}
	if src.Bias != BiasCenter {
		t.Errorf("got bias %q, want %q", src.Bias, BiasCenter)
	}

	if _, ok := r.LookupURL("https://example.com/article"); ok {
		t.Error("expected unregistered URL to not resolve")
	}
}

func TestLoad_MissingFileFallsBackToDefault(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(r.All()) != len(defaultSources) {
		t.Errorf("got %d sources, want %d defaults", len(r.All()), len(defaultSources))
	}
}

func TestLoad_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - name: Testbladet
    domain: testbladet.se
    bias: Left
    rss_feed: https://testbladet.se/rss
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(r.All()) != 1 {
		t.Fatalf("got %d sources, want 1", len(r.All()))
	}
	if got := r.ClassifyDomain("testbladet.se"); got != BiasLeft {
		t.Errorf("ClassifyDomain(testbladet.se) = %q, want %q", got, BiasLeft)
	}
}

func TestLoad_InvalidBiasRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - name: Testbladet
    domain: testbladet.se
    bias: Radical
    rss_feed: https://testbladet.se/rss
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid bias value")
	}
}

func TestByBias(t *testing.T) {
	r := Default()

	left := r.ByBias(BiasLeft)
	if len(left) != 2 {
		t.Errorf("got %d left sources, want 2", len(left))
	}
	center := r.ByBias(BiasCenter)
	if len(center) != 3 {
		t.Errorf("got %d center sources, want 3", len(center))
	}
}
