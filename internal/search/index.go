package search

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"helpengine/internal/catalog"
	"helpengine/internal/domain"
)

// Field names the part of an entry a keyword was extracted from.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldContent     Field = "content"
	FieldTags        Field = "tags"
	FieldRelated     Field = "related"
)

var priorityWeights = map[domain.Priority]float64{
	domain.PriorityLow:      0.5,
	domain.PriorityMedium:   1.0,
	domain.PriorityHigh:     2.0,
	domain.PriorityCritical: 3.0,
}

var categoryWeights = map[domain.Category]float64{
	domain.CategoryBasic:           2.0,
	domain.CategoryGameplay:        1.5,
	domain.CategoryAdvanced:        1.0,
	domain.CategorySettings:        1.2,
	domain.CategoryTroubleshooting: 1.8,
}

var difficultyWeights = map[domain.Difficulty]float64{
	domain.DifficultyBeginner:     1,
	domain.DifficultyIntermediate: 2,
	domain.DifficultyAdvanced:     3,
	domain.DifficultyExpert:       4,
}

// Element weights for the complexity of structured sub-content.
const (
	stepWeight    = 1.0
	sectionWeight = 1.5
	itemWeight    = 1.0
)

// ContentWeight is the static per-entry multiplier priority × category.
// Unknown values weigh 1.
func ContentWeight(p domain.Priority, c domain.Category) float64 {
	pw, ok := priorityWeights[p]
	if !ok {
		pw = 1
	}
	cw, ok := categoryWeights[c]
	if !ok {
		cw = 1
	}
	return pw * cw
}

// Complexity scores an entry's structured content scaled by its difficulty.
func Complexity(e domain.HelpEntry) float64 {
	dw, ok := difficultyWeights[e.Difficulty]
	if !ok {
		dw = 1
	}
	elements := float64(len(e.Steps))*stepWeight +
		float64(len(e.Sections))*sectionWeight +
		float64(len(e.Items))*itemWeight
	return elements * dw
}

// IndexEntry is the per-entry extraction result.
type IndexEntry struct {
	Key       string
	Keywords  map[string][]Field
	Weight    float64
	IndexedAt time.Time
}

// HasField reports whether keyword was extracted from field f.
func (ie *IndexEntry) HasField(keyword string, f Field) bool {
	for _, got := range ie.Keywords[keyword] {
		if got == f {
			return true
		}
	}
	return false
}

// DifficultySlot lists the entries of one difficulty and their running
// average complexity.
type DifficultySlot struct {
	Keys          []string
	AvgComplexity float64
	total         float64
}

// Index is one immutable-after-build snapshot of every secondary structure.
// Only the incremental add path extends it in place.
type Index struct {
	inverted     map[string]map[string]struct{}
	byCategory   map[domain.Category][]string
	byDifficulty map[domain.Difficulty]*DifficultySlot
	byPriority   map[domain.Priority][]string
	entries      map[string]*IndexEntry
	positions    map[string]int
	builtAt      time.Time
}

func newIndex(builtAt time.Time) *Index {
	return &Index{
		inverted:     make(map[string]map[string]struct{}),
		byCategory:   make(map[domain.Category][]string),
		byDifficulty: make(map[domain.Difficulty]*DifficultySlot),
		byPriority:   make(map[domain.Priority][]string),
		entries:      make(map[string]*IndexEntry),
		positions:    make(map[string]int),
		builtAt:      builtAt,
	}
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// BuiltAt returns when the last full build happened.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// Entry returns the extraction result for key.
func (ix *Index) Entry(key string) (*IndexEntry, bool) {
	ie, ok := ix.entries[key]
	return ie, ok
}

// Position returns the catalog position of key, or -1.
func (ix *Index) Position(key string) int {
	if p, ok := ix.positions[key]; ok {
		return p
	}
	return -1
}

// Lookup returns the keys indexed under keyword in catalog order.
func (ix *Index) Lookup(keyword string) []string {
	return ix.ordered(ix.inverted[keyword])
}

// DocFreq returns how many entries carry keyword.
func (ix *Index) DocFreq(keyword string) int { return len(ix.inverted[keyword]) }

// Keywords returns every indexed keyword in ascending order.
func (ix *Index) Keywords() []string {
	out := make([]string, 0, len(ix.inverted))
	for k := range ix.inverted {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the keys of category c in catalog order.
func (ix *Index) ByCategory(c domain.Category) []string {
	return append([]string(nil), ix.byCategory[c]...)
}

// ByPriority returns the keys of priority p in catalog order.
func (ix *Index) ByPriority(p domain.Priority) []string {
	return append([]string(nil), ix.byPriority[p]...)
}

// ByDifficulty returns the slot for d, or nil when no entry has it.
func (ix *Index) ByDifficulty(d domain.Difficulty) *DifficultySlot {
	slot, ok := ix.byDifficulty[d]
	if !ok {
		return nil
	}
	cp := *slot
	cp.Keys = append([]string(nil), slot.Keys...)
	return &cp
}

func (ix *Index) ordered(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return ix.positions[out[i]] < ix.positions[out[j]] })
	return out
}

func (ix *Index) insert(pos int, e domain.HelpEntry, ie *IndexEntry) {
	ix.entries[e.Key] = ie
	ix.positions[e.Key] = pos
	for kw := range ie.Keywords {
		set, ok := ix.inverted[kw]
		if !ok {
			set = make(map[string]struct{})
			ix.inverted[kw] = set
		}
		set[e.Key] = struct{}{}
	}
	ix.byCategory[e.Category] = append(ix.byCategory[e.Category], e.Key)
	ix.byPriority[e.Priority] = append(ix.byPriority[e.Priority], e.Key)

	slot, ok := ix.byDifficulty[e.Difficulty]
	if !ok {
		slot = &DifficultySlot{}
		ix.byDifficulty[e.Difficulty] = slot
	}
	slot.Keys = append(slot.Keys, e.Key)
	slot.total += Complexity(e)
	slot.AvgComplexity = slot.total / float64(len(slot.Keys))
}

// IndexConfig controls rebuild staleness.
type IndexConfig struct {
	StaleAfter       time.Duration // default 24h
	RebuildThreshold int           // default 100; <0 disables the size trigger
}

// Builder owns the indexes derived from a catalog it only reads.
type Builder struct {
	catalog  *catalog.Catalog
	tok      *Tokenizer
	clock    domain.Clock
	cfg      IndexConfig
	logger   *slog.Logger
	idx      *Index
	onChange []func()
}

// NewBuilder builds the initial index over cat.
func NewBuilder(cat *catalog.Catalog, tok *Tokenizer, clock domain.Clock, cfg IndexConfig, logger *slog.Logger) *Builder {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 24 * time.Hour
	}
	if cfg.RebuildThreshold == 0 {
		cfg.RebuildThreshold = 100
	}
	if clock == nil {
		clock = domain.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tok == nil {
		tok = NewTokenizer(0, 0)
	}
	b := &Builder{catalog: cat, tok: tok, clock: clock, cfg: cfg, logger: logger}
	b.Build()
	return b
}

// OnChange registers fn to run after every rebuild or incremental add.
func (b *Builder) OnChange(fn func()) {
	b.onChange = append(b.onChange, fn)
}

func (b *Builder) changed() {
	for _, fn := range b.onChange {
		fn()
	}
}

// Index returns the current snapshot.
func (b *Builder) Index() *Index { return b.idx }

// Tokenizer returns the tokenizer used for extraction.
func (b *Builder) Tokenizer() *Tokenizer { return b.tok }

// Build replaces the whole index with a fresh one built from the catalog.
func (b *Builder) Build() *Index {
	now := b.clock.Now()
	idx := newIndex(now)
	b.catalog.Each(func(pos int, e domain.HelpEntry) {
		idx.insert(pos, e, b.extract(e, now))
	})
	b.idx = idx
	b.logger.Debug("search index built", "entries", idx.Len(), "keywords", len(idx.inverted))
	b.changed()
	return idx
}

// ShouldRebuild reports whether the index is older than StaleAfter or holds
// more entries than RebuildThreshold.
func (b *Builder) ShouldRebuild() bool {
	if b.idx == nil {
		return true
	}
	if b.clock.Now().Sub(b.idx.builtAt) > b.cfg.StaleAfter {
		return true
	}
	return b.cfg.RebuildThreshold > 0 && b.idx.Len() > b.cfg.RebuildThreshold
}

// RebuildIfNeeded rebuilds when ShouldRebuild holds and reports whether it did.
func (b *Builder) RebuildIfNeeded() bool {
	if !b.ShouldRebuild() {
		return false
	}
	b.Build()
	return true
}

// Add inserts a new entry and extends the index incrementally.
func (b *Builder) Add(key string, e domain.HelpEntry) bool {
	if !b.catalog.Add(key, e) {
		return false
	}
	stored, _ := b.catalog.Get(key)
	b.idx.insert(b.catalog.Len()-1, stored, b.extract(stored, b.clock.Now()))
	b.logger.Info("help entry added", "key", key)
	b.changed()
	return true
}

// Update replaces an existing entry and rebuilds the whole index.
func (b *Builder) Update(key string, e domain.HelpEntry) bool {
	if !b.catalog.Update(key, e) {
		return false
	}
	b.logger.Info("help entry updated", "key", key)
	b.Build()
	return true
}

// Remove deletes an entry and rebuilds the whole index.
func (b *Builder) Remove(key string) bool {
	if !b.catalog.Remove(key) {
		return false
	}
	b.logger.Info("help entry removed", "key", key)
	b.Build()
	return true
}

// extract collects the deduplicated keyword set of e. Tags and related keys
// are not tokenized.
func (b *Builder) extract(e domain.HelpEntry, now time.Time) *IndexEntry {
	ie := &IndexEntry{
		Key:       e.Key,
		Keywords:  make(map[string][]Field),
		Weight:    ContentWeight(e.Priority, e.Category),
		IndexedAt: now,
	}
	add := func(kw string, f Field) {
		if kw == "" || ie.HasField(kw, f) {
			return
		}
		ie.Keywords[kw] = append(ie.Keywords[kw], f)
	}
	for _, tok := range b.tok.Tokenize(e.Title) {
		add(tok, FieldTitle)
	}
	for _, tok := range b.tok.Tokenize(e.Description) {
		add(tok, FieldDescription)
	}
	for _, s := range e.Steps {
		for _, tok := range b.tok.Tokenize(s.Title + " " + s.Body) {
			add(tok, FieldContent)
		}
	}
	for _, s := range e.Sections {
		for _, tok := range b.tok.Tokenize(s.Title + " " + s.Body) {
			add(tok, FieldContent)
		}
	}
	for _, it := range e.Items {
		for _, tok := range b.tok.Tokenize(it.Title + " " + it.Body) {
			add(tok, FieldContent)
		}
	}
	for _, tag := range e.Tags() {
		addKey(tag, FieldTags, add)
	}
	for _, rel := range e.RelatedTopics {
		addKey(rel, FieldRelated, add)
	}
	return ie
}

// addKey indexes a tag or related key verbatim (lower-cased) and in the
// punctuation-free form a query token takes, so "power-up" is reachable
// through the token "powerup".
func addKey(key string, f Field, add func(string, Field)) {
	add(strings.ToLower(strings.TrimSpace(key)), f)
	add(CompactKey(key), f)
}

// CompactKey is key normalized like query text with the word gaps removed.
func CompactKey(key string) string {
	return strings.Join(strings.Fields(Normalize(key)), "")
}
