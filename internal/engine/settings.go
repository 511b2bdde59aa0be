package engine

import (
	"time"

	"helpengine/internal/cache"
	"helpengine/internal/config"
	"helpengine/internal/domain"
	"helpengine/internal/profile"
	"helpengine/internal/recommend"
	"helpengine/internal/search"
)

// Settings carries every tunable of one engine instance. The zero value of
// any field selects the component default.
type Settings struct {
	Search         search.Config
	Index          search.IndexConfig
	MinTokenLength int
	MaxTokenLength int
	CacheCapacity  int
	Profile        profile.Config
	Recommend      recommend.Config
	KeyPrefix      string
	AutoSave       bool
}

// DefaultKeyPrefix namespaces persisted keys.
const DefaultKeyPrefix = "helpengine:"

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Search: search.Config{
			MaxResults:            10,
			TitleBoost:            2.0,
			ExactBonus:            1.5,
			MaxQueryLength:        search.DefaultMaxQueryLength,
			PartialMatchMinLength: 3,
		},
		Index: search.IndexConfig{
			StaleAfter:       24 * time.Hour,
			RebuildThreshold: 100,
		},
		MinTokenLength: search.DefaultMinTokenLength,
		MaxTokenLength: search.DefaultMaxTokenLength,
		CacheCapacity:  cache.DefaultCapacity,
		Profile: profile.Config{
			HistoryCapacity:  profile.DefaultHistoryCapacity,
			HistoryCompactTo: profile.DefaultHistoryCompactTo,
			PatternWindow:    profile.DefaultPatternWindow,
			StyleWindow:      profile.DefaultStyleWindow,
			ReadingDuration:  profile.DefaultReadingDuration,
			Thresholds:       profile.DefaultThresholds(),
		},
		Recommend: recommend.Config{
			MaxRecommendations: recommend.DefaultMaxRecommendations,
			ErrorWindow:        recommend.DefaultErrorWindow,
		},
		KeyPrefix: DefaultKeyPrefix,
	}
}

func (s Settings) WithMaxResults(n int) Settings {
	s.Search.MaxResults = n
	return s
}

func (s Settings) WithRanking(titleBoost, exactBonus float64) Settings {
	s.Search.TitleBoost = titleBoost
	s.Search.ExactBonus = exactBonus
	return s
}

// WithPartialMatch sets the minimum token length for contains-matching.
// A negative value disables it.
func (s Settings) WithPartialMatch(minLen int) Settings {
	s.Search.PartialMatchMinLength = minLen
	return s
}

func (s Settings) WithMaxQueryLength(n int) Settings {
	s.Search.MaxQueryLength = n
	return s
}

func (s Settings) WithTokenLengths(minLen, maxLen int) Settings {
	s.MinTokenLength = minLen
	s.MaxTokenLength = maxLen
	return s
}

func (s Settings) WithRebuildPolicy(staleAfter time.Duration, threshold int) Settings {
	s.Index.StaleAfter = staleAfter
	s.Index.RebuildThreshold = threshold
	return s
}

func (s Settings) WithCacheCapacity(n int) Settings {
	s.CacheCapacity = n
	return s
}

func (s Settings) WithHistory(capacity, compactTo int) Settings {
	s.Profile.HistoryCapacity = capacity
	s.Profile.HistoryCompactTo = compactTo
	return s
}

func (s Settings) WithThreshold(level domain.SkillLevel, th profile.Threshold) Settings {
	m := make(map[domain.SkillLevel]profile.Threshold, len(s.Profile.Thresholds)+1)
	for k, v := range s.Profile.Thresholds {
		m[k] = v
	}
	m[level] = th
	s.Profile.Thresholds = m
	return s
}

func (s Settings) WithMaxRecommendations(n int) Settings {
	if n > recommend.DefaultMaxRecommendations {
		n = recommend.DefaultMaxRecommendations
	}
	s.Recommend.MaxRecommendations = n
	return s
}

func (s Settings) WithErrorWindow(d time.Duration) Settings {
	s.Recommend.ErrorWindow = d
	return s
}

// WithStyleAffinity replaces the topic x style relevance table.
func (s Settings) WithStyleAffinity(table map[string]map[domain.LearningStyle]float64) Settings {
	s.Recommend.StyleAffinity = table
	return s
}

// WithPersistence sets the storage key prefix and whether every recorded
// interaction is saved in the background.
func (s Settings) WithPersistence(prefix string, autoSave bool) Settings {
	s.KeyPrefix = prefix
	s.AutoSave = autoSave
	return s
}

// SettingsFromConfig maps the host configuration onto engine settings.
// Threshold entries with unknown level names are ignored; Validate rejects
// them earlier.
func SettingsFromConfig(cfg *config.Config) Settings {
	s := DefaultSettings().
		WithMaxResults(cfg.Search.MaxResults).
		WithRanking(cfg.Search.TitleBoost, cfg.Search.ExactBonus).
		WithMaxQueryLength(cfg.Search.MaxQueryLength).
		WithTokenLengths(cfg.Search.MinTokenLength, cfg.Search.MaxTokenLength).
		WithRebuildPolicy(time.Duration(cfg.Index.StaleAfterHours)*time.Hour, cfg.Index.RebuildThreshold).
		WithCacheCapacity(cfg.Cache.Capacity).
		WithHistory(cfg.Profile.HistoryCapacity, cfg.Profile.HistoryCompactTo).
		WithMaxRecommendations(cfg.Recommend.MaxRecommendations).
		WithErrorWindow(time.Duration(cfg.Recommend.ErrorWindowHours)*time.Hour).
		WithPersistence(cfg.Persistence.KeyPrefix, cfg.Persistence.AutoSave)

	partial := cfg.Search.PartialMatchMinLength
	if partial == 0 {
		partial = -1
	}
	s = s.WithPartialMatch(partial)

	s.Profile.PatternWindow = cfg.Profile.PatternWindow
	s.Profile.StyleWindow = cfg.Profile.StyleWindow
	s.Profile.ReadingDuration = time.Duration(cfg.Profile.ReadingSeconds) * time.Second
	for name, th := range cfg.Profile.Thresholds {
		level, err := domain.ParseSkillLevel(name)
		if err != nil || level == domain.SkillBeginner {
			continue
		}
		s = s.WithThreshold(level, profile.Threshold{SuccessRate: th.SuccessRate, Mastered: th.Mastered})
	}
	return s
}
