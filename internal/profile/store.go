// Package profile keeps one user's skill classification, progress counters
// and interaction history, and recomputes derived state on every change.
package profile

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"helpengine/internal/domain"
)

const (
	DefaultHistoryCapacity  = 1000
	DefaultHistoryCompactTo = 500
	DefaultPatternWindow    = 20
	DefaultStyleWindow      = 50
	DefaultReadingDuration  = 30 * time.Second
)

// Evidence weights attached to every skill transition.
const (
	weightSuccessRate     = 0.4
	weightFeatureAdoption = 0.3
	weightHelpUsage       = 0.2
	weightErrorRecovery   = 0.1
)

// Threshold is the requirement to enter a skill level.
type Threshold struct {
	SuccessRate float64 `json:"successRate"`
	Mastered    int     `json:"mastered"`
}

// DefaultThresholds returns the entry requirement per level above beginner.
func DefaultThresholds() map[domain.SkillLevel]Threshold {
	return map[domain.SkillLevel]Threshold{
		domain.SkillIntermediate: {SuccessRate: 0.6, Mastered: 5},
		domain.SkillAdvanced:     {SuccessRate: 0.8, Mastered: 10},
		domain.SkillExpert:       {SuccessRate: 0.9, Mastered: 20},
	}
}

// Config for the profile store.
type Config struct {
	HistoryCapacity  int
	HistoryCompactTo int
	PatternWindow    int
	StyleWindow      int
	ReadingDuration  time.Duration
	Thresholds       map[domain.SkillLevel]Threshold
	Clock            domain.Clock
	Logger           *slog.Logger
}

// Preferences are the explicit user choices. Zero fields leave the current
// value untouched.
type Preferences struct {
	LearningStyle      domain.LearningStyle
	AccessibilityNeeds []domain.AccessibilityNeed
	PreferredTopics    []string
}

// Store owns one user's profile, progress and history.
type Store struct {
	cfg      Config
	clock    domain.Clock
	logger   *slog.Logger
	profile  domain.UserProfile
	progress domain.ProgressData
	history  *History

	onTransition []func(from, to domain.SkillLevel)
}

// NewStore creates a store holding the default profile.
func NewStore(cfg Config) *Store {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.HistoryCompactTo <= 0 {
		cfg.HistoryCompactTo = DefaultHistoryCompactTo
	}
	if cfg.PatternWindow <= 0 {
		cfg.PatternWindow = DefaultPatternWindow
	}
	if cfg.StyleWindow <= 0 {
		cfg.StyleWindow = DefaultStyleWindow
	}
	if cfg.ReadingDuration <= 0 {
		cfg.ReadingDuration = DefaultReadingDuration
	}
	if cfg.Thresholds == nil {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Store{
		cfg:     cfg,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		history: NewHistory(cfg.HistoryCapacity, cfg.HistoryCompactTo),
	}
	s.resetState()
	return s
}

func (s *Store) resetState() {
	s.profile = domain.DefaultProfile(s.clock.Now())
	s.progress = domain.NewProgressData()
	s.history.Reset()
}

// Restore replaces the whole state, as after loading from persistence.
// Records are replayed through the ring so its bound still holds.
func (s *Store) Restore(p domain.UserProfile, progress domain.ProgressData, records []domain.InteractionRecord) {
	s.profile = p
	s.progress = progress.Clone()
	s.history.Reset()
	for _, r := range records {
		s.history.Append(r)
	}
}

// Reset returns the store to the default profile with empty progress.
func (s *Store) Reset() { s.resetState() }

// OnTransition registers fn to run after each skill level change.
func (s *Store) OnTransition(fn func(from, to domain.SkillLevel)) {
	s.onTransition = append(s.onTransition, fn)
}

// Profile returns a copy of the current profile.
func (s *Store) Profile() domain.UserProfile {
	p := s.profile
	p.AccessibilityNeeds = append([]domain.AccessibilityNeed(nil), s.profile.AccessibilityNeeds...)
	return p
}

// Progress returns a deep copy of the accumulated progress.
func (s *Store) Progress() domain.ProgressData { return s.progress.Clone() }

// History returns the retained interactions, oldest first.
func (s *Store) History() []domain.InteractionRecord { return s.history.Records() }

// RecentErrors counts error interactions within window of now.
func (s *Store) RecentErrors(window time.Duration) int {
	return s.history.CountSince(domain.InteractionError, s.clock.Now().Add(-window))
}

// SuccessRate is successful interactions over help requests, 0 before the
// first request.
func (s *Store) SuccessRate() float64 {
	if s.progress.HelpRequests == 0 {
		return 0
	}
	return float64(s.progress.SuccessfulInteractions) / float64(s.progress.HelpRequests)
}

// RecordInteraction logs r, updates the counters it touches and recomputes
// skill level, play frequency and usage pattern before returning. Missing
// IDs and timestamps are filled in; the stored record is returned.
func (s *Store) RecordInteraction(r domain.InteractionRecord) domain.InteractionRecord {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.clock.Now()
	}
	if s.history.Append(r) {
		s.logger.Debug("interaction history compacted", "len", s.history.Len())
	}

	p := &s.progress
	p.HelpRequests++
	if r.Success {
		p.SuccessfulInteractions++
	}
	if r.TopicKey != "" {
		p.TopicsViewed.Add(r.TopicKey)
		p.TopicFrequency[r.TopicKey]++
	}
	if r.ConceptMastered != "" {
		p.ConceptsMastered.Add(r.ConceptMastered)
	}
	if r.ErrorResolved {
		p.ErrorRecoveries++
	}

	s.recompute()
	return r
}

func (s *Store) recompute() {
	s.UpdateSkillLevel()
	s.profile.PlayFrequency = s.playFrequency()
	s.profile.UsagePattern = s.usagePattern()
	s.profile.UpdatedAt = s.clock.Now()
}

// UpdateSkillLevel advances the level by at most one step when the next
// level's thresholds are met, appending a progression snapshot. Levels
// never move down.
func (s *Store) UpdateSkillLevel() bool {
	from := s.profile.SkillLevel
	next, ok := from.Next()
	if !ok {
		return false
	}
	th, ok := s.cfg.Thresholds[next]
	if !ok {
		return false
	}
	rate := s.SuccessRate()
	mastered := s.progress.ConceptsMastered.Len()
	if rate < th.SuccessRate || mastered < th.Mastered {
		return false
	}

	now := s.clock.Now()
	s.profile.SkillLevel = next
	s.profile.UpdatedAt = now
	s.progress.Progression = append(s.progress.Progression, domain.DifficultyProgression{
		Timestamp:  now,
		Level:      next,
		Confidence: Confidence(rate, mastered),
		Evidence:   s.evidence(rate, mastered),
	})
	s.logger.Info("skill level advanced", "from", from, "to", next, "success_rate", rate, "mastered", mastered)
	for _, fn := range s.onTransition {
		fn(from, next)
	}
	return true
}

// Confidence scores a transition from the success rate and mastered count.
func Confidence(successRate float64, mastered int) float64 {
	adoption := math.Min(float64(mastered)*4, 40)
	return math.Min(successRate*60+adoption, 100) / 100
}

func (s *Store) evidence(rate float64, mastered int) []domain.Evidence {
	recovery := 0.0
	if s.progress.HelpRequests > 0 {
		recovery = float64(s.progress.ErrorRecoveries) / float64(s.progress.HelpRequests)
	}
	return []domain.Evidence{
		{Kind: domain.EvidenceSuccessRate, Value: rate, Weight: weightSuccessRate},
		{Kind: domain.EvidenceFeatureAdoption, Value: float64(mastered), Weight: weightFeatureAdoption},
		{Kind: domain.EvidenceHelpUsage, Value: float64(s.progress.HelpRequests), Weight: weightHelpUsage},
		{Kind: domain.EvidenceErrorRecovery, Value: recovery, Weight: weightErrorRecovery},
	}
}

// RequestsPerDay is help requests over whole days since the profile was
// created, with at least one day.
func (s *Store) RequestsPerDay() float64 {
	days := s.clock.Now().Sub(s.profile.CreatedAt).Hours() / 24
	if days < 1 {
		days = 1
	}
	return float64(s.progress.HelpRequests) / days
}

func (s *Store) playFrequency() domain.PlayFrequency {
	rate := s.RequestsPerDay()
	switch {
	case rate >= 10:
		return domain.FrequencyDaily
	case rate >= 5:
		return domain.FrequencyFrequent
	case rate >= 3:
		return domain.FrequencyRegular
	default:
		return domain.FrequencyOccasional
	}
}

func (s *Store) usagePattern() domain.UsagePattern {
	recent := s.history.Recent(s.cfg.PatternWindow)
	if len(recent) == 0 {
		return domain.UsageReactive
	}
	proactive := 0
	for _, r := range recent {
		if r.Type == domain.InteractionProactive {
			proactive++
		}
	}
	ratio := float64(proactive) / float64(len(recent))
	switch {
	case ratio > 0.7:
		return domain.UsageProactive
	case ratio > 0.3:
		return domain.UsageMixed
	default:
		return domain.UsageReactive
	}
}

// InferLearningStyle counts style signals over the recent window and adopts
// the strongest. Ties go to the earlier style in domain.LearningStyles. With
// no signals the current style is kept.
func (s *Store) InferLearningStyle() domain.LearningStyle {
	counts := make(map[domain.LearningStyle]int, len(domain.LearningStyles))
	for _, r := range s.history.Recent(s.cfg.StyleWindow) {
		if r.Context.UsedVisuals {
			counts[domain.StyleVisual]++
		}
		if r.Context.UsedAudio {
			counts[domain.StyleAuditory]++
		}
		if r.Context.UsedInteraction {
			counts[domain.StyleKinesthetic]++
		}
		if r.Duration >= s.cfg.ReadingDuration {
			counts[domain.StyleReading]++
		}
	}

	best, bestCount := s.profile.LearningStyle, 0
	for _, style := range domain.LearningStyles {
		if counts[style] > bestCount {
			best, bestCount = style, counts[style]
		}
	}
	if best != s.profile.LearningStyle {
		s.logger.Info("learning style inferred", "from", s.profile.LearningStyle, "to", best)
		s.profile.LearningStyle = best
		s.profile.UpdatedAt = s.clock.Now()
	}
	return best
}

// Analyze is the periodic behavior pass: full recompute plus learning-style
// inference.
func (s *Store) Analyze() {
	s.recompute()
	s.InferLearningStyle()
}

// UpdatePreferences applies explicit user choices.
func (s *Store) UpdatePreferences(p Preferences) {
	if p.LearningStyle != "" {
		s.profile.LearningStyle = p.LearningStyle
	}
	if p.AccessibilityNeeds != nil {
		s.profile.AccessibilityNeeds = dedupeNeeds(p.AccessibilityNeeds)
	}
	if p.PreferredTopics != nil {
		s.progress.PreferredTopics = domain.NewStringSet(p.PreferredTopics...)
	}
	s.profile.UpdatedAt = s.clock.Now()
}

func dedupeNeeds(in []domain.AccessibilityNeed) []domain.AccessibilityNeed {
	seen := make(map[domain.AccessibilityNeed]struct{}, len(in))
	out := make([]domain.AccessibilityNeed, 0, len(in))
	for _, n := range in {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SkillAnalysis summarizes where the user stands against the next level.
type SkillAnalysis struct {
	Level            domain.SkillLevel              `json:"level"`
	SuccessRate      float64                        `json:"success_rate"`
	ConceptsMastered int                            `json:"concepts_mastered"`
	HelpRequests     int                            `json:"help_requests"`
	HasNext          bool                           `json:"has_next"`
	NextLevel        domain.SkillLevel              `json:"next_level"`
	SuccessRateGap   float64                        `json:"success_rate_gap"`
	ConceptsGap      int                            `json:"concepts_gap"`
	Confidence       float64                        `json:"confidence"`
	Progression      []domain.DifficultyProgression `json:"progression"`
}

// SkillAnalysis reports the current level and what the next one requires.
// Confidence is that of the latest transition, or the current score when
// there has been none.
func (s *Store) SkillAnalysis() SkillAnalysis {
	rate := s.SuccessRate()
	mastered := s.progress.ConceptsMastered.Len()
	a := SkillAnalysis{
		Level:            s.profile.SkillLevel,
		SuccessRate:      rate,
		ConceptsMastered: mastered,
		HelpRequests:     s.progress.HelpRequests,
		Confidence:       Confidence(rate, mastered),
		Progression:      s.progress.Clone().Progression,
	}
	if n := len(s.progress.Progression); n > 0 {
		a.Confidence = s.progress.Progression[n-1].Confidence
	}
	if next, ok := s.profile.SkillLevel.Next(); ok {
		a.HasNext = true
		a.NextLevel = next
		if th, ok := s.cfg.Thresholds[next]; ok {
			a.SuccessRateGap = math.Max(th.SuccessRate-rate, 0)
			a.ConceptsGap = max(th.Mastered-mastered, 0)
		}
	}
	return a
}

// TopicCount pairs a topic with how often it was viewed.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Stats is the personalization summary exposed to the host.
type Stats struct {
	Profile                domain.UserProfile `json:"profile"`
	HelpRequests           int                `json:"help_requests"`
	SuccessfulInteractions int                `json:"successful_interactions"`
	ErrorRecoveries        int                `json:"error_recoveries"`
	SuccessRate            float64            `json:"success_rate"`
	RequestsPerDay         float64            `json:"requests_per_day"`
	TopicsViewed           int                `json:"topics_viewed"`
	ConceptsMastered       int                `json:"concepts_mastered"`
	TopTopics              []TopicCount       `json:"top_topics"`
	HistoryLength          int                `json:"history_length"`
}

const topTopicsLimit = 5

// Stats reports counters and classifications.
func (s *Store) Stats() Stats {
	return Stats{
		Profile:                s.Profile(),
		HelpRequests:           s.progress.HelpRequests,
		SuccessfulInteractions: s.progress.SuccessfulInteractions,
		ErrorRecoveries:        s.progress.ErrorRecoveries,
		SuccessRate:            s.SuccessRate(),
		RequestsPerDay:         s.RequestsPerDay(),
		TopicsViewed:           s.progress.TopicsViewed.Len(),
		ConceptsMastered:       s.progress.ConceptsMastered.Len(),
		TopTopics:              topTopics(s.progress.TopicFrequency, topTopicsLimit),
		HistoryLength:          s.history.Len(),
	}
}

func topTopics(freq map[string]int, limit int) []TopicCount {
	out := make([]TopicCount, 0, len(freq))
	for k, v := range freq {
		out = append(out, TopicCount{Topic: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
