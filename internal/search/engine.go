package search

import (
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"helpengine/internal/cache"
	"helpengine/internal/catalog"
	"helpengine/internal/domain"
)

// Config tunes ranking and limits.
type Config struct {
	MaxResults            int     // default 10
	TitleBoost            float64 // default 2.0
	ExactBonus            float64 // default 1.5
	MaxQueryLength        int     // default 200 runes
	PartialMatchMinLength int     // default 3 runes; <0 disables partial matching
}

func (c Config) withDefaults() Config {
	if c.MaxResults <= 0 {
		c.MaxResults = 10
	}
	if c.TitleBoost <= 0 {
		c.TitleBoost = 2.0
	}
	if c.ExactBonus <= 0 {
		c.ExactBonus = 1.5
	}
	if c.MaxQueryLength <= 0 {
		c.MaxQueryLength = DefaultMaxQueryLength
	}
	if c.PartialMatchMinLength == 0 {
		c.PartialMatchMinLength = 3
	}
	return c
}

// Response is the outcome of one search call.
type Response struct {
	Results   []domain.SearchResult
	Query     string // sanitized query actually searched
	Notice    string // non-empty when the query was altered
	Searching bool   // false for an empty query
	Cached    bool
}

// Engine ranks catalog entries against queries using the builder's indexes.
type Engine struct {
	builder *Builder
	catalog *catalog.Catalog
	cache   *cache.FIFO[string, []domain.SearchResult]
	cfg     Config
	logger  *slog.Logger
}

// NewEngine wires an engine over builder. results may be nil to disable
// memoization. The cache is cleared whenever the index changes.
func NewEngine(builder *Builder, cat *catalog.Catalog, results *cache.FIFO[string, []domain.SearchResult], cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		builder: builder,
		catalog: cat,
		cache:   results,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
	if results != nil {
		builder.OnChange(results.Clear)
	}
	return e
}

// Search tokenizes query, scores every entry matching at least one token,
// applies the filters in opts and returns at most opts.MaxResults hits.
// An empty query returns no results with Searching=false and leaves the
// cache untouched.
func (e *Engine) Search(query string, opts domain.SearchOptions) Response {
	sq := SanitizeQuery(query, e.cfg.MaxQueryLength)
	resp := Response{Query: sq.Value, Notice: sq.Notice, Results: []domain.SearchResult{}}
	if sq.Value == "" {
		return resp
	}
	resp.Searching = true

	var ranked []domain.SearchResult
	if e.cache != nil {
		if hit, ok := e.cache.Get(query); ok {
			ranked = hit
			resp.Cached = true
		}
	}
	if !resp.Cached {
		ranked = e.rank(sq.Value)
		if e.cache != nil {
			e.cache.Set(query, ranked)
		}
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = e.cfg.MaxResults
	}
	for _, r := range ranked {
		if !matchesFilters(r.Entry, opts) {
			continue
		}
		resp.Results = append(resp.Results, domain.SearchResult{
			Entry:         r.Entry.Clone(),
			Score:         r.Score,
			MatchedFields: append([]string(nil), r.MatchedFields...),
		})
		if len(resp.Results) == limit {
			break
		}
	}
	e.logger.Debug("search", "query", sq.Value, "matches", len(ranked), "returned", len(resp.Results), "cached", resp.Cached)
	return resp
}

type accum struct {
	score  float64
	fields map[Field]struct{}
}

var fieldOrder = []Field{FieldTitle, FieldDescription, FieldContent, FieldTags, FieldRelated}

// rank returns every matching entry, unfiltered, best first.
func (e *Engine) rank(query string) []domain.SearchResult {
	idx := e.builder.Index()
	tokens := e.builder.Tokenizer().Unique(query)
	scores := make(map[string]*accum)

	for _, tok := range tokens {
		best := make(map[string]float64)
		fields := make(map[string][]Field)

		consider := func(kw string, exact bool) {
			for key := range idx.inverted[kw] {
				ie := idx.entries[key]
				s := ie.Weight
				if ie.HasField(kw, FieldTitle) {
					s *= e.cfg.TitleBoost
				}
				if exact {
					s *= e.cfg.ExactBonus
				}
				if s > best[key] {
					best[key] = s
				}
				fields[key] = append(fields[key], ie.Keywords[kw]...)
			}
		}

		if _, ok := idx.inverted[tok]; ok {
			consider(tok, true)
		}
		if e.cfg.PartialMatchMinLength > 0 && utf8.RuneCountInString(tok) >= e.cfg.PartialMatchMinLength {
			for kw := range idx.inverted {
				if kw != tok && strings.Contains(kw, tok) {
					consider(kw, false)
				}
			}
		}

		for key, s := range best {
			a, ok := scores[key]
			if !ok {
				a = &accum{fields: make(map[Field]struct{})}
				scores[key] = a
			}
			a.score += s
			for _, f := range fields[key] {
				a.fields[f] = struct{}{}
			}
		}
	}

	out := make([]domain.SearchResult, 0, len(scores))
	for key, a := range scores {
		entry, ok := e.catalog.Get(key)
		if !ok {
			continue
		}
		matched := make([]string, 0, len(a.fields))
		for _, f := range fieldOrder {
			if _, ok := a.fields[f]; ok {
				matched = append(matched, string(f))
			}
		}
		out = append(out, domain.SearchResult{Entry: entry, Score: a.score, MatchedFields: matched})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return idx.Position(out[i].Entry.Key) < idx.Position(out[j].Entry.Key)
	})
	return out
}

func matchesFilters(e domain.HelpEntry, opts domain.SearchOptions) bool {
	if opts.Category != "" && e.Category != opts.Category {
		return false
	}
	if opts.Difficulty != "" && e.Difficulty != opts.Difficulty {
		return false
	}
	if opts.Priority != "" && e.Priority != opts.Priority {
		return false
	}
	if len(opts.Tags) > 0 {
		found := false
		for _, want := range opts.Tags {
			for _, have := range e.Tags() {
				if strings.EqualFold(want, have) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ByCategory returns the entries of c in catalog order.
func (e *Engine) ByCategory(c domain.Category) []domain.HelpEntry {
	return e.resolve(e.builder.Index().ByCategory(c))
}

// ByPriority returns the entries of p in catalog order.
func (e *Engine) ByPriority(p domain.Priority) []domain.HelpEntry {
	return e.resolve(e.builder.Index().ByPriority(p))
}

// ByDifficulty returns the entries of d in catalog order.
func (e *Engine) ByDifficulty(d domain.Difficulty) []domain.HelpEntry {
	slot := e.builder.Index().ByDifficulty(d)
	if slot == nil {
		return []domain.HelpEntry{}
	}
	return e.resolve(slot.Keys)
}

// Related resolves the related topics of key. Dangling references are skipped.
func (e *Engine) Related(key string) []domain.HelpEntry {
	entry, ok := e.catalog.Get(key)
	if !ok {
		return []domain.HelpEntry{}
	}
	return e.resolve(entry.RelatedTopics)
}

// Suggest returns up to limit indexed keywords starting with prefix, most
// common first and alphabetical among equals.
func (e *Engine) Suggest(prefix string, limit int) []string {
	toks := e.builder.Tokenizer().Tokenize(prefix)
	if len(toks) == 0 {
		return []string{}
	}
	p := toks[len(toks)-1]
	idx := e.builder.Index()

	var out []string
	for _, kw := range idx.Keywords() {
		if strings.HasPrefix(kw, p) {
			out = append(out, kw)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return idx.DocFreq(out[i]) > idx.DocFreq(out[j])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func (e *Engine) resolve(keys []string) []domain.HelpEntry {
	out := make([]domain.HelpEntry, 0, len(keys))
	for _, k := range keys {
		if entry, ok := e.catalog.Get(k); ok {
			out = append(out, entry)
		}
	}
	return out
}
