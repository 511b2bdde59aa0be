package search

import (
	"strings"
	"testing"

	"helpengine/internal/domain"
	"pgregory.net/rapid"
)

var queryVocabulary = []string{
	"bubble", "bubbles", "score", "click", "audio", "music", "effects",
	"lag", "fixing", "bonus", "combo", "power", "the", "glowing", "volume", "zzz",
}

func drawQuery(rt *rapid.T) string {
	words := rapid.SliceOfN(rapid.SampledFrom(queryVocabulary), 0, 5).Draw(rt, "words")
	return strings.Join(words, " ")
}

// TestProperty_SearchDeterministic verifies repeated searches, cached or not,
// return identical ordering and scores.
func TestProperty_SearchDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		q := drawQuery(rt)
		cached, _, _ := newTestEngine(sampleEntries()...)
		b, cat, _ := newTestBuilder(sampleEntries()...)
		uncached := NewEngine(b, cat, nil, Config{}, testLogger())

		first := cached.Search(q, domain.NewSearchOptions())
		second := cached.Search(q, domain.NewSearchOptions())
		third := uncached.Search(q, domain.NewSearchOptions())

		for _, other := range []Response{second, third} {
			if len(other.Results) != len(first.Results) {
				rt.Fatalf("query %q: %d vs %d results", q, len(first.Results), len(other.Results))
			}
			for i := range first.Results {
				if first.Results[i].Entry.Key != other.Results[i].Entry.Key || first.Results[i].Score != other.Results[i].Score {
					rt.Fatalf("query %q: result %d differs: %s/%v vs %s/%v", q, i,
						first.Results[i].Entry.Key, first.Results[i].Score,
						other.Results[i].Entry.Key, other.Results[i].Score)
				}
			}
		}
	})
}

// TestProperty_SearchRankedDescending verifies scores never increase down
// the result list.
func TestProperty_SearchRankedDescending(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e, _, _ := newTestEngine(sampleEntries()...)
		resp := e.Search(drawQuery(rt), domain.NewSearchOptions())
		for i := 0; i+1 < len(resp.Results); i++ {
			if resp.Results[i].Score < resp.Results[i+1].Score {
				rt.Fatalf("results[%d].Score %v < results[%d].Score %v", i, resp.Results[i].Score, i+1, resp.Results[i+1].Score)
			}
		}
	})
}

// TestProperty_FiltersNeverExpand verifies a filtered search returns a
// subset of the unfiltered one.
func TestProperty_FiltersNeverExpand(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e, _, _ := newTestEngine(sampleEntries()...)
		q := drawQuery(rt)

		opts := domain.NewSearchOptions().WithMaxResults(100)
		if rapid.Bool().Draw(rt, "by_category") {
			opts = opts.WithCategory(rapid.SampledFrom(domain.Categories).Draw(rt, "category"))
		}
		if rapid.Bool().Draw(rt, "by_difficulty") {
			opts = opts.WithDifficulty(rapid.SampledFrom(domain.Difficulties).Draw(rt, "difficulty"))
		}
		if rapid.Bool().Draw(rt, "by_priority") {
			opts = opts.WithPriority(rapid.SampledFrom(domain.Priorities).Draw(rt, "priority"))
		}

		all := e.Search(q, domain.NewSearchOptions().WithMaxResults(100))
		filtered := e.Search(q, opts)
		if len(filtered.Results) > len(all.Results) {
			rt.Fatalf("filtered %d > unfiltered %d", len(filtered.Results), len(all.Results))
		}
		seen := make(map[string]bool, len(all.Results))
		for _, r := range all.Results {
			seen[r.Entry.Key] = true
		}
		for _, r := range filtered.Results {
			if !seen[r.Entry.Key] {
				rt.Fatalf("filter added %s", r.Entry.Key)
			}
		}
	})
}
