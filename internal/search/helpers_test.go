package search

import (
	"io"
	"log/slog"
	"time"

	"helpengine/internal/cache"
	"helpengine/internal/catalog"
	"helpengine/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func gameBasics() domain.HelpEntry {
	return domain.HelpEntry{
		Key:         "gameBasics",
		Category:    domain.CategoryBasic,
		Priority:    domain.PriorityHigh,
		Difficulty:  domain.DifficultyBeginner,
		Title:       "Basic play",
		Description: "click bubbles to score",
	}
}

func sampleEntries() []domain.HelpEntry {
	return []domain.HelpEntry{
		gameBasics(),
		{
			Key:         "powerUps",
			Category:    domain.CategoryGameplay,
			Priority:    domain.PriorityMedium,
			Difficulty:  domain.DifficultyIntermediate,
			Title:       "Power-ups",
			Description: "special bubbles grant bonus score",
			Steps: []domain.Step{
				{Title: "Collect", Body: "pop a glowing bubble"},
				{Title: "Activate", Body: "press space to trigger"},
			},
			RelatedTopics: []string{"gameBasics", "missingTopic"},
			Metadata:      &domain.EntryMetadata{Tags: []string{"Bonus", "combo"}},
		},
		{
			Key:         "audioSettings",
			Category:    domain.CategorySettings,
			Priority:    domain.PriorityLow,
			Difficulty:  domain.DifficultyBeginner,
			Title:       "Audio settings",
			Description: "adjust music and effects volume",
			Sections: []domain.Section{
				{Title: "Music", Body: "background music volume"},
			},
		},
		{
			Key:         "lagFix",
			Category:    domain.CategoryTroubleshooting,
			Priority:    domain.PriorityCritical,
			Difficulty:  domain.DifficultyAdvanced,
			Title:       "Fixing lag",
			Description: "reduce effects when the score counter stutters",
			Items: []domain.SubItem{
				{Tag: "gpu", Title: "Graphics", Body: "lower particle effects"},
			},
			Metadata: &domain.EntryMetadata{Tags: []string{"performance"}},
		},
	}
}

func newTestBuilder(entries ...domain.HelpEntry) (*Builder, *catalog.Catalog, *fakeClock) {
	cat := catalog.New(entries...)
	clk := newClock()
	b := NewBuilder(cat, NewTokenizer(0, 0), clk, IndexConfig{}, testLogger())
	return b, cat, clk
}

func newTestEngine(entries ...domain.HelpEntry) (*Engine, *Builder, *cache.FIFO[string, []domain.SearchResult]) {
	b, cat, _ := newTestBuilder(entries...)
	c := cache.NewFIFO[string, []domain.SearchResult](0)
	return NewEngine(b, cat, c, Config{}, testLogger()), b, c
}

func resultKeys(rs []domain.SearchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Entry.Key
	}
	return out
}
