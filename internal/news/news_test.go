package news

import (
	"testing"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/sources"
)

func TestSearchQuery_PrefersTitle(t *testing.T) {
	input := ProcessingInput{
		TopicTitle:       "Regeringskris",
		TopicDescription: "En beskrivning",
		TopicURL:         "https://www.dn.se/artikel",
	}

	query, err := input.SearchQuery()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "Regeringskris" {
		t.Errorf("got %q, want title", query)
	}
}

func TestSearchQuery_FallsBackToDescriptionThenURL(t *testing.T) {
	input := ProcessingInput{TopicDescription: "  En beskrivning  "}
	query, err := input.SearchQuery()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "En beskrivning" {
		t.Errorf("got %q, want trimmed description", query)
	}

	input = ProcessingInput{TopicURL: "https://www.dn.se/artikel"}
	query, err = input.SearchQuery()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "https://www.dn.se/artikel" {
		t.Errorf("got %q, want URL", query)
	}
}

func TestSearchQuery_EmptyInputRejected(t *testing.T) {
	input := ProcessingInput{TopicTitle: "   "}
	if _, err := input.SearchQuery(); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestGroupByBias(t *testing.T) {
	articles := []Article{
		{Title: "a", Bias: sources.BiasLeft},
		{Title: "b", Bias: sources.BiasLeft},
		{Title: "c", Bias: sources.BiasRight},
		{Title: "d", Bias: sources.BiasUnknown},
	}

	grouped := GroupByBias(articles)

	if len(grouped[sources.BiasLeft]) != 2 {
		t.Errorf("got %d left articles, want 2", len(grouped[sources.BiasLeft]))
	}
	if len(grouped[sources.BiasCenter]) != 0 {
		t.Errorf("got %d center articles, want 0", len(grouped[sources.BiasCenter]))
	}
	if len(grouped[sources.BiasRight]) != 1 {
		t.Errorf("got %d right articles, want 1", len(grouped[sources.BiasRight]))
	}
	if _, ok := grouped[sources.BiasUnknown]; ok {
		t.Error("unknown bias should not get a group")
	}
}

func TestGroupByBias_AllThreeKeysAlwaysPresent(t *testing.T) {
	grouped := GroupByBias(nil)
	for _, bias := range sources.AllBiases {
		if _, ok := grouped[bias]; !ok {
			t.Errorf("missing group for %q", bias)
		}
	}
}
