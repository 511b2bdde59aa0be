package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			DataDir:  "~/.helpengine",
		},
		Catalog: CatalogConfig{
			Dir: "~/.helpengine/catalog",
		},
		Search: SearchConfig{
			MaxResults:            10,
			TitleBoost:            2.0,
			ExactBonus:            1.5,
			MaxQueryLength:        200,
			MinTokenLength:        2,
			MaxTokenLength:        50,
			PartialMatchMinLength: 3,
		},
		Index: IndexConfig{
			StaleAfterHours:  24,
			RebuildThreshold: 100,
		},
		Cache: CacheConfig{
			Capacity: 50,
		},
		Profile: ProfileConfig{
			HistoryCapacity:  1000,
			HistoryCompactTo: 500,
			PatternWindow:    20,
			StyleWindow:      50,
			ReadingSeconds:   30,
			Thresholds: map[string]ThresholdConfig{
				"intermediate": {SuccessRate: 0.6, Mastered: 5},
				"advanced":     {SuccessRate: 0.8, Mastered: 10},
				"expert":       {SuccessRate: 0.9, Mastered: 20},
			},
		},
		Recommend: RecommendConfig{
			MaxRecommendations: 5,
			ErrorWindowHours:   24,
		},
		Persistence: PersistenceConfig{
			Driver:    "sqlite",
			DBPath:    "~/.helpengine/profile.db",
			Dir:       "~/.helpengine/store",
			KeyPrefix: "helpengine:",
			AutoSave:  true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
