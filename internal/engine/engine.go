// Package engine is the single owned instance a host constructs: it wires
// the catalog, search index, caches, profile store and recommendation engine
// together and exposes the operations the host calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"helpengine/internal/cache"
	"helpengine/internal/catalog"
	"helpengine/internal/domain"
	"helpengine/internal/metrics"
	"helpengine/internal/profile"
	"helpengine/internal/recommend"
	"helpengine/internal/search"
)

// Config is what the host provides at construction.
type Config struct {
	Catalog  *catalog.Catalog   // nil starts empty
	Store    domain.KVStore     // nil disables persistence
	Clock    domain.Clock       // nil uses the wall clock
	Logger   *slog.Logger       // nil uses slog.Default()
	Metrics  *metrics.Collector // nil creates a private collector
	Settings Settings
}

// Engine owns all state of one help system. Every public method runs to
// completion under the engine lock, so no caller observes a half-built
// index or a half-updated profile.
type Engine struct {
	mu sync.Mutex

	catalog   *catalog.Catalog
	builder   *search.Builder
	search    *search.Engine
	caches    *cache.Caches
	profile   *profile.Store
	recommend *recommend.Engine

	kv       domain.KVStore
	settings Settings
	clock    domain.Clock
	logger   *slog.Logger
	metrics  *metrics.Collector

	saves     sync.WaitGroup
	saveMu    sync.Mutex
	saveSeq   atomic.Uint64
	savedSeq  uint64
	closed    bool
	closeErrs error
	closeDone chan struct{}
}

// New builds the index over cfg.Catalog and starts from the default profile.
// Call Load to restore persisted state.
func New(cfg Config) *Engine {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.New()
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	s := cfg.Settings
	if s.KeyPrefix == "" {
		s.KeyPrefix = DefaultKeyPrefix
	}

	e := &Engine{
		catalog:   cfg.Catalog,
		caches:    cache.NewCaches(s.CacheCapacity),
		kv:        cfg.Store,
		settings:  s,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		closeDone: make(chan struct{}),
	}

	tok := search.NewTokenizer(s.MinTokenLength, s.MaxTokenLength)
	e.builder = search.NewBuilder(e.catalog, tok, e.clock, s.Index, e.logger)
	e.indexChanged()
	e.builder.OnChange(e.indexChanged)
	e.search = search.NewEngine(e.builder, e.catalog, e.caches.Search, s.Search, e.logger)

	pcfg := s.Profile
	pcfg.Clock = e.clock
	pcfg.Logger = e.logger
	e.profile = profile.NewStore(pcfg)
	e.profile.OnTransition(func(from, to domain.SkillLevel) {
		e.metrics.SkillTransitions.Inc()
	})

	rcfg := s.Recommend
	rcfg.Logger = e.logger
	e.recommend = recommend.NewEngine(e.profile, rcfg)

	e.logger.Debug("help engine ready", "entries", e.catalog.Len(), "persistence", e.kv != nil)
	return e
}

func (e *Engine) indexChanged() {
	e.caches.Content.Clear()
	e.metrics.IndexRebuilds.Inc()
	e.metrics.IndexedEntries.Set(int64(e.builder.Index().Len()))
}

// Metrics returns the collector the engine reports to.
func (e *Engine) Metrics() *metrics.Collector { return e.metrics }

// --- Search and lookups ---

// Search ranks the catalog against query. See search.Engine.Search.
func (e *Engine) Search(query string, opts domain.SearchOptions) search.Response {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	resp := e.search.Search(query, opts)
	if !resp.Searching {
		return resp
	}
	e.metrics.Searches.Inc()
	if resp.Cached {
		e.metrics.CacheHits.Inc()
	} else {
		e.metrics.CacheMisses.Inc()
	}
	e.metrics.SearchLatency.ObserveDuration(time.Since(start))
	return resp
}

func (e *Engine) GetByCategory(c domain.Category) []domain.HelpEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search.ByCategory(c)
}

func (e *Engine) GetByDifficulty(d domain.Difficulty) []domain.HelpEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search.ByDifficulty(d)
}

func (e *Engine) GetByPriority(p domain.Priority) []domain.HelpEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search.ByPriority(p)
}

// Suggest completes the last word of prefix from indexed keywords.
func (e *Engine) Suggest(prefix string, limit int) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search.Suggest(prefix, limit)
}

// Related resolves the related topics of key.
func (e *Engine) Related(key string) []domain.HelpEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search.Related(key)
}

// Get returns a copy of the entry stored under key.
func (e *Engine) Get(key string) (domain.HelpEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Get(key)
}

// ResolveContent returns the index-th entry of category c in catalog order,
// memoized in the content cache until the next index change.
func (e *Engine) ResolveContent(c domain.Category, index int) (domain.HelpEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := cache.ContentKey{Category: c, Index: index}
	if entry, ok := e.caches.Content.Get(key); ok {
		return entry.Clone(), true
	}
	keys := e.builder.Index().ByCategory(c)
	if index < 0 || index >= len(keys) {
		return domain.HelpEntry{}, false
	}
	entry, ok := e.catalog.Get(keys[index])
	if !ok {
		return domain.HelpEntry{}, false
	}
	e.caches.Content.Set(key, entry)
	return entry.Clone(), true
}

// --- Catalog mutation ---

// AddContent inserts a new entry. It returns false when key already exists.
func (e *Engine) AddContent(key string, entry domain.HelpEntry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Add(key, entry)
}

// UpdateContent replaces an existing entry and rebuilds the index. It
// returns false when key does not exist.
func (e *Engine) UpdateContent(key string, entry domain.HelpEntry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Update(key, entry)
}

// RemoveContent deletes an entry and rebuilds the index. It returns false
// when key does not exist.
func (e *Engine) RemoveContent(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Remove(key)
}

// RebuildIfNeeded rebuilds a stale or oversized index. Hosts call it on
// their own schedule.
func (e *Engine) RebuildIfNeeded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.RebuildIfNeeded()
}

// --- Personalization ---

// RecordInteraction logs r, recomputes the profile and, with AutoSave,
// persists a snapshot in the background.
func (e *Engine) RecordInteraction(r domain.InteractionRecord) domain.InteractionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	stored := e.profile.RecordInteraction(r)
	e.metrics.Interactions.Inc()
	if e.kv != nil && e.settings.AutoSave && !e.closed {
		e.saveAsync()
	}
	return stored
}

// saveAsync writes the current snapshot without blocking the caller. A
// snapshot older than one already written is dropped.
func (e *Engine) saveAsync() {
	snap, err := e.profile.Snapshot()
	if err != nil {
		e.logger.Warn("cannot snapshot profile", "error", err)
		return
	}
	seq := e.saveSeq.Add(1)
	e.saves.Add(1)
	go func() {
		defer e.saves.Done()
		e.saveMu.Lock()
		defer e.saveMu.Unlock()
		if seq < e.savedSeq {
			return
		}
		if err := snap.Save(context.Background(), e.kv, e.settings.KeyPrefix); err != nil {
			e.logger.Warn("background save failed", "error", err)
			return
		}
		e.savedSeq = seq
	}()
}

// GetRecommendations returns at most MaxRecommendations scored topics.
func (e *Engine) GetRecommendations() []domain.ContentRecommendation {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.Recommendations.Inc()
	return e.recommend.Recommend()
}

func (e *Engine) GetSkillAnalysis() profile.SkillAnalysis {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.SkillAnalysis()
}

func (e *Engine) GetPersonalizationStats() profile.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Stats()
}

// Profile returns a copy of the current profile.
func (e *Engine) Profile() domain.UserProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Profile()
}

// Progress returns a copy of the accumulated progress.
func (e *Engine) Progress() domain.ProgressData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Progress()
}

// Analyze is the behavior-analysis tick: it recomputes the classifications
// and re-infers the learning style.
func (e *Engine) Analyze() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile.Analyze()
}

func (e *Engine) UpdatePreferences(p profile.Preferences) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile.UpdatePreferences(p)
}

// Reset returns the profile to defaults. The next Save overwrites the
// persisted state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile.Reset()
}

// --- Persistence and lifecycle ---

// Load restores profile, progress and history from the store. Corrupt or
// missing parts fall back to defaults; only storage failures are returned.
func (e *Engine) Load(ctx context.Context) (profile.LoadResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.kv == nil {
		return profile.LoadResult{}, nil
	}
	return e.profile.Load(ctx, e.kv, e.settings.KeyPrefix)
}

// Save writes profile, progress and history to the store.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked(ctx)
}

func (e *Engine) saveLocked(ctx context.Context) error {
	if e.kv == nil {
		return nil
	}
	snap, err := e.profile.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot profile: %w", err)
	}
	seq := e.saveSeq.Add(1)
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if err := snap.Save(ctx, e.kv, e.settings.KeyPrefix); err != nil {
		return err
	}
	e.savedSeq = seq
	return nil
}

// Flush waits for background saves started so far.
func (e *Engine) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.saves.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for background saves, writes a final snapshot and clears the
// caches. Calling it again returns the first result.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		select {
		case <-e.closeDone:
			return e.closeErrs
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	e.closed = true
	e.mu.Unlock()

	var errs []error
	if err := e.Flush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("wait for background saves: %w", err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.saveLocked(ctx); err != nil {
		errs = append(errs, fmt.Errorf("final save: %w", err))
	}
	e.caches.Clear()
	e.closeErrs = errors.Join(errs...)
	close(e.closeDone)
	e.logger.Debug("help engine closed")
	return e.closeErrs
}
