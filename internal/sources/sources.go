// Package sources holds the static registry of Swedish news sources and
// their editorial-lean classification.
package sources

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bias is the coarse editorial lean assigned per source.
type Bias string

const (
	BiasLeft    Bias = "Left"
	BiasCenter  Bias = "Center"
	BiasRight   Bias = "Right"
	BiasUnknown Bias = "Unknown"
)

// AllBiases lists the classified leans in presentation order.
var AllBiases = []Bias{BiasLeft, BiasCenter, BiasRight}

// Valid reports whether b is one of the three classified leans.
func (b Bias) Valid() bool {
	return b == BiasLeft || b == BiasCenter || b == BiasRight
}

// Source describes one registered news outlet.
type Source struct {
	Name    string `yaml:"name"`
	Domain  string `yaml:"domain"`
	Bias    Bias   `yaml:"bias"`
	RSSFeed string `yaml:"rss_feed"`
}

// Registry maps domains to sources. Immutable after load.
type Registry struct {
	byDomain map[string]Source
	ordered  []Source
}

// registryFile is the YAML override structure:
//
// sources:
//   - name: ...
//     domain: ...
//     bias: Left|Center|Right
//     rss_feed: https://...
type registryFile struct {
	Sources []Source `yaml:"sources"`
}

// defaultSources is the built-in Swedish registry.
var defaultSources = []Source{
	{Name: "Aftonbladet", Domain: "aftonbladet.se", Bias: BiasLeft, RSSFeed: "https://rss.aftonbladet.se/rss2/small/pages/sections/senastenytt/"},
	{Name: "Expressen", Domain: "expressen.se", Bias: BiasLeft, RSSFeed: "https://feeds.expressen.se/nyheter/"},
	{Name: "Dagens Nyheter", Domain: "dn.se", Bias: BiasCenter, RSSFeed: "https://www.dn.se/rss/"},
	{Name: "SVT Nyheter", Domain: "svt.se", Bias: BiasCenter, RSSFeed: "https://www.svt.se/nyheter/rss.xml"},
	{Name: "Sveriges Radio", Domain: "sr.se", Bias: BiasCenter, RSSFeed: "https://api.sr.se/api/rss/news"},
	{Name: "Svenska Dagbladet", Domain: "svenskadagbladet.se", Bias: BiasRight, RSSFeed: "https://www.svd.se/feed/articles.rss"},
	{Name: "Göteborgs-Posten", Domain: "gp.se", Bias: BiasRight, RSSFeed: "https://www.gp.se/nyheter/rss"},
}

// Default returns the built-in registry.
func Default() *Registry {
	return build(defaultSources)
}

// Load reads a registry override from a YAML file. A missing file falls
// back to the built-in registry.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()

	var file registryFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}
	if len(file.Sources) == 0 {
		return Default(), nil
	}

	for _, s := range file.Sources {
		if !s.Bias.Valid() {
			return nil, fmt.Errorf("source %q has invalid bias %q", s.Domain, s.Bias)
		}
		if s.Domain == "" || s.RSSFeed == "" {
			return nil, fmt.Errorf("source %q is missing domain or rss_feed", s.Name)
		}
	}

	return build(file.Sources), nil
}

// FromList builds a registry from an explicit source list.
func FromList(list []Source) (*Registry, error) {
	for _, s := range list {
		if !s.Bias.Valid() {
			return nil, fmt.Errorf("source %q has invalid bias %q", s.Domain, s.Bias)
		}
		if s.Domain == "" || s.RSSFeed == "" {
			return nil, fmt.Errorf("source %q is missing domain or rss_feed", s.Name)
		}
	}
	return build(list), nil
}

func build(list []Source) *Registry {
	r := &Registry{
		byDomain: make(map[string]Source, len(list)),
		ordered:  make([]Source, 0, len(list)),
	}
	for _, s := range list {
		r.byDomain[strings.ToLower(s.Domain)] = s
		r.ordered = append(r.ordered, s)
	}
	return r
}

// All returns every registered source in registry order.
func (r *Registry) All() []Source {
	out := make([]Source, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ByBias returns sources with the given lean.
func (r *Registry) ByBias(b Bias) []Source {
	var out []Source
	for _, s := range r.ordered {
		if s.Bias == b {
			out = append(out, s)
		}
	}
	return out
}

// LookupDomain finds the source owning a domain. Subdomains resolve to
// their registered parent (www.dn.se -> dn.se).
func (r *Registry) LookupDomain(domain string) (Source, bool) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "www.")
	if domain == "" {
		return Source{}, false
	}

	if s, ok := r.byDomain[domain]; ok {
		return s, true
	}
	// Walk up subdomain labels: nyheter.svt.se -> svt.se
	for {
		idx := strings.Index(domain, ".")
		if idx < 0 {
			break
		}
		domain = domain[idx+1:]
		if s, ok := r.byDomain[domain]; ok {
			return s, true
		}
	}
	return Source{}, false
}

// LookupURL resolves a full article URL to its source.
func (r *Registry) LookupURL(rawURL string) (Source, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Source{}, false
	}
	return r.LookupDomain(u.Hostname())
}

// ClassifyDomain returns the bias for a domain, BiasUnknown when the
// domain is not registered.
func (r *Registry) ClassifyDomain(domain string) Bias {
	if s, ok := r.LookupDomain(domain); ok {
		return s.Bias
	}
	return BiasUnknown
}
