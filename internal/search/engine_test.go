package search

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"helpengine/internal/domain"
)

func TestSearch_PartialMatch(t *testing.T) {
	e, _, _ := newTestEngine(gameBasics())

	resp := e.Search("bubble", domain.NewSearchOptions())
	if got := resultKeys(resp.Results); !reflect.DeepEqual(got, []string{"gameBasics"}) {
		t.Fatalf("expected [gameBasics], got %v", got)
	}
	if resp.Results[0].Score <= 0 {
		t.Errorf("expected positive score, got %v", resp.Results[0].Score)
	}
	// partial match: weight 4, no title boost, no exact bonus
	if math.Abs(resp.Results[0].Score-4) > 1e-9 {
		t.Errorf("score = %v, want 4", resp.Results[0].Score)
	}
	if !reflect.DeepEqual(resp.Results[0].MatchedFields, []string{"description"}) {
		t.Errorf("matched fields = %v", resp.Results[0].MatchedFields)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	e, _, c := newTestEngine(sampleEntries()...)

	for _, q := range []string{"", "   ", "\t\n"} {
		resp := e.Search(q, domain.NewSearchOptions())
		if resp.Searching {
			t.Errorf("query %q: expected Searching=false", q)
		}
		if resp.Results == nil || len(resp.Results) != 0 {
			t.Errorf("query %q: expected empty non-nil results, got %v", q, resp.Results)
		}
	}
	if c.Len() != 0 {
		t.Errorf("empty queries must not touch the cache, len=%d", c.Len())
	}
}

func TestSearch_ExactBonusAndRanking(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)

	resp := e.Search("score", domain.NewSearchOptions())
	want := []string{"lagFix", "gameBasics", "powerUps"}
	if got := resultKeys(resp.Results); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	scores := []float64{5.4 * 1.5, 4 * 1.5, 1.5 * 1.5}
	for i, r := range resp.Results {
		if math.Abs(r.Score-scores[i]) > 1e-9 {
			t.Errorf("%s score = %v, want %v", r.Entry.Key, r.Score, scores[i])
		}
	}
}

func TestSearch_TitleBoost(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)

	resp := e.Search("audio", domain.NewSearchOptions())
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %v", resultKeys(resp.Results))
	}
	// 1.2 weight × 2 title boost × 1.5 exact bonus
	if math.Abs(resp.Results[0].Score-3.6) > 1e-9 {
		t.Errorf("score = %v, want 3.6", resp.Results[0].Score)
	}
	if !reflect.DeepEqual(resp.Results[0].MatchedFields, []string{"title"}) {
		t.Errorf("matched fields = %v", resp.Results[0].MatchedFields)
	}
}

func TestSearch_AccumulatesAcrossTokens(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)

	resp := e.Search("bubbles score score", domain.NewSearchOptions())
	want := []string{"gameBasics", "lagFix", "powerUps"}
	if got := resultKeys(resp.Results); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if math.Abs(resp.Results[0].Score-12) > 1e-9 {
		t.Errorf("gameBasics score = %v, want 12", resp.Results[0].Score)
	}
}

func TestSearch_TiesKeepCatalogOrder(t *testing.T) {
	b := gameBasics()
	b.Key = "second"
	a := gameBasics()
	a.Key = "first"
	e, _, _ := newTestEngine(b, a)

	resp := e.Search("click", domain.NewSearchOptions())
	if got := resultKeys(resp.Results); !reflect.DeepEqual(got, []string{"second", "first"}) {
		t.Errorf("tie order = %v, want catalog order", got)
	}
}

func TestSearch_Filters(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)

	tests := []struct {
		name string
		opts domain.SearchOptions
		want []string
	}{
		{"category", domain.NewSearchOptions().WithCategory(domain.CategoryTroubleshooting), []string{"lagFix"}},
		{"difficulty", domain.NewSearchOptions().WithDifficulty(domain.DifficultyBeginner), []string{"gameBasics"}},
		{"priority", domain.NewSearchOptions().WithPriority(domain.PriorityMedium), []string{"powerUps"}},
		{"tags any-of", domain.NewSearchOptions().WithTags("nope", "COMBO"), []string{"powerUps"}},
		{"max results", domain.NewSearchOptions().WithMaxResults(1), []string{"lagFix"}},
		{"no match", domain.NewSearchOptions().WithCategory(domain.CategorySettings), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resultKeys(e.Search("score", tt.opts).Results)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch_DefaultCap(t *testing.T) {
	var entries []domain.HelpEntry
	for i := 0; i < 15; i++ {
		en := gameBasics()
		en.Key = "k" + strings.Repeat("x", i)
		entries = append(entries, en)
	}
	e, _, _ := newTestEngine(entries...)
	if n := len(e.Search("bubbles", domain.NewSearchOptions()).Results); n != 10 {
		t.Errorf("expected default cap of 10, got %d", n)
	}
}

func TestSearch_Cache(t *testing.T) {
	e, b, c := newTestEngine(sampleEntries()...)

	first := e.Search("score", domain.NewSearchOptions())
	if first.Cached {
		t.Fatal("first search should miss the cache")
	}
	second := e.Search("score", domain.NewSearchOptions().WithCategory(domain.CategoryBasic))
	if !second.Cached {
		t.Fatal("second search should hit the cache")
	}
	if got := resultKeys(second.Results); !reflect.DeepEqual(got, []string{"gameBasics"}) {
		t.Errorf("filters must apply to cached hits, got %v", got)
	}
	if c.Len() != 1 {
		t.Errorf("cache len = %d, want 1", c.Len())
	}

	extra := gameBasics()
	extra.Key = "extra"
	b.Add("extra", extra)
	if c.Len() != 0 {
		t.Error("index change must clear the search cache")
	}
	if got := e.Search("score", domain.NewSearchOptions()); got.Cached || len(got.Results) != 4 {
		t.Errorf("expected fresh search with 4 hits, cached=%v got %v", got.Cached, resultKeys(got.Results))
	}
}

func TestSearch_ResultsAreCopies(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)
	resp := e.Search("bonus", domain.NewSearchOptions())
	if len(resp.Results) == 0 {
		t.Fatal("expected results")
	}
	resp.Results[0].Entry.Metadata.Tags[0] = "mutated"
	resp.Results[0].MatchedFields[0] = "mutated"

	again := e.Search("bonus", domain.NewSearchOptions())
	if again.Results[0].Entry.Metadata.Tags[0] == "mutated" || again.Results[0].MatchedFields[0] == "mutated" {
		t.Error("mutating a result leaked into the cache")
	}
}

func TestSearch_SanitizedQuery(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)
	long := "score " + strings.Repeat("z", 300)
	resp := e.Search(long, domain.NewSearchOptions())
	if resp.Notice == "" {
		t.Error("expected a notice for an over-long query")
	}
	if !strings.HasPrefix(resp.Query, "score ") {
		t.Errorf("sanitized query = %q", resp.Query)
	}
	if len(resp.Results) != 3 {
		t.Errorf("expected the valid token to still match, got %v", resultKeys(resp.Results))
	}
}

func TestSearch_StopWordsOnly(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)
	resp := e.Search("the and of", domain.NewSearchOptions())
	if !resp.Searching {
		t.Error("non-empty query should report Searching")
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %v", resultKeys(resp.Results))
	}
}

func TestLookups(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)

	if got := keysOf(e.ByCategory(domain.CategorySettings)); !reflect.DeepEqual(got, []string{"audioSettings"}) {
		t.Errorf("ByCategory = %v", got)
	}
	if got := keysOf(e.ByDifficulty(domain.DifficultyBeginner)); !reflect.DeepEqual(got, []string{"gameBasics", "audioSettings"}) {
		t.Errorf("ByDifficulty = %v", got)
	}
	if got := e.ByDifficulty(domain.DifficultyExpert); got == nil || len(got) != 0 {
		t.Errorf("ByDifficulty(expert) = %v, want empty", got)
	}
	if got := keysOf(e.ByPriority(domain.PriorityLow)); !reflect.DeepEqual(got, []string{"audioSettings"}) {
		t.Errorf("ByPriority = %v", got)
	}
	if got := e.ByCategory(domain.Category("nope")); len(got) != 0 {
		t.Errorf("unknown category should be empty, got %v", got)
	}
}

func TestRelated_SkipsDangling(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)
	if got := keysOf(e.Related("powerUps")); !reflect.DeepEqual(got, []string{"gameBasics"}) {
		t.Errorf("Related = %v", got)
	}
	if got := e.Related("unknown"); len(got) != 0 {
		t.Errorf("Related(unknown) = %v", got)
	}
}

func TestSuggest(t *testing.T) {
	e, _, _ := newTestEngine(sampleEntries()...)

	if got := e.Suggest("bub", 5); !reflect.DeepEqual(got, []string{"bubbles", "bubble"}) {
		t.Errorf("Suggest(bub) = %v", got)
	}
	if got := e.Suggest("Bub", 1); !reflect.DeepEqual(got, []string{"bubbles"}) {
		t.Errorf("Suggest(Bub, 1) = %v", got)
	}
	if got := e.Suggest("zzz", 5); len(got) != 0 {
		t.Errorf("Suggest(zzz) = %v", got)
	}
	if got := e.Suggest("", 5); len(got) != 0 {
		t.Errorf("Suggest(\"\") = %v", got)
	}
}

func keysOf(es []domain.HelpEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Key
	}
	return out
}

func TestSearch_PunctuatedTagsAndRelatedKeys(t *testing.T) {
	entry := domain.HelpEntry{
		Key:           "boosts",
		Category:      domain.CategoryGameplay,
		Priority:      domain.PriorityMedium,
		Difficulty:    domain.DifficultyBeginner,
		Title:         "Boosts",
		Description:   "temporary effects",
		RelatedTopics: []string{"game_basics"},
		Metadata:      &domain.EntryMetadata{Tags: []string{"power-up", "high_score"}},
	}
	e, b, _ := newTestEngine(entry)

	cases := []struct {
		query string
		field string
	}{
		{"power-up", "tags"},
		{"powerup", "tags"},
		{"high_score", "tags"},
		{"game_basics", "related"},
	}
	for _, c := range cases {
		resp := e.Search(c.query, domain.NewSearchOptions())
		if got := resultKeys(resp.Results); !reflect.DeepEqual(got, []string{"boosts"}) {
			t.Errorf("query %q: got %v, want [boosts]", c.query, got)
			continue
		}
		if !reflect.DeepEqual(resp.Results[0].MatchedFields, []string{c.field}) {
			t.Errorf("query %q: matched fields = %v", c.query, resp.Results[0].MatchedFields)
		}
	}

	ie, ok := b.Index().Entry("boosts")
	if !ok {
		t.Fatal("entry not indexed")
	}
	if !ie.HasField("power-up", FieldTags) {
		t.Error("verbatim tag should stay indexed")
	}
}

func TestCompactKey(t *testing.T) {
	cases := map[string]string{
		"power-up":     "powerup",
		"High_Score":   "highscore",
		" game basics": "gamebasics",
		"plain":        "plain",
	}
	for in, want := range cases {
		if got := CompactKey(in); got != want {
			t.Errorf("CompactKey(%q) = %q, want %q", in, got, want)
		}
	}
}
