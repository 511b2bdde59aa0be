// Package recommend turns a user's profile and recent behavior into a short,
// scored list of suggested help topics.
package recommend

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"helpengine/internal/domain"
	"helpengine/internal/profile"
)

const (
	// DefaultMaxRecommendations is also the hard upper bound.
	DefaultMaxRecommendations = 5
	DefaultErrorWindow        = 24 * time.Hour
)

// Score components.
const (
	baseScore      = 10.0
	unviewedScore  = 20.0
	skillScore     = 15.0
	errorScore     = 25.0
	styleScore     = 10.0
	troubleErrors  = 3  // more than this surfaces troubleshooting topics
	relevantErrors = 2  // more than this makes troubleshooting topics error-relevant
	onboardingSeen = 3  // fewer distinct viewed topics than this surfaces onboarding
	advancedAfter  = 10 // more mastered concepts than this surfaces advanced topics
)

// Config holds the topic tables and limits. Nil tables select the defaults.
type Config struct {
	MaxRecommendations    int
	ErrorWindow           time.Duration
	SkillTopics           map[domain.SkillLevel][]string
	TroubleshootingTopics []string
	OnboardingTopics      []string
	AdvancedTopics        []string
	FoundationalTopics    []string
	StyleAffinity         map[string]map[domain.LearningStyle]float64
	Logger                *slog.Logger
}

// Engine reads a profile store and scores candidate topics on demand.
type Engine struct {
	store  *profile.Store
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an engine over store.
func NewEngine(store *profile.Store, cfg Config) *Engine {
	if cfg.MaxRecommendations <= 0 || cfg.MaxRecommendations > DefaultMaxRecommendations {
		cfg.MaxRecommendations = DefaultMaxRecommendations
	}
	if cfg.ErrorWindow <= 0 {
		cfg.ErrorWindow = DefaultErrorWindow
	}
	if cfg.SkillTopics == nil {
		cfg.SkillTopics = DefaultSkillTopics()
	}
	if cfg.TroubleshootingTopics == nil {
		cfg.TroubleshootingTopics = DefaultTroubleshootingTopics()
	}
	if cfg.OnboardingTopics == nil {
		cfg.OnboardingTopics = DefaultOnboardingTopics()
	}
	if cfg.AdvancedTopics == nil {
		cfg.AdvancedTopics = DefaultAdvancedTopics()
	}
	if cfg.FoundationalTopics == nil {
		cfg.FoundationalTopics = DefaultFoundationalTopics()
	}
	if cfg.StyleAffinity == nil {
		cfg.StyleAffinity = DefaultStyleAffinity()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{store: store, cfg: cfg, logger: cfg.Logger}
}

// Affinity returns the styleRelevance of topic for style, clamped to [0, 1].
func (e *Engine) Affinity(topic string, style domain.LearningStyle) float64 {
	v, ok := e.cfg.StyleAffinity[topic][style]
	if !ok {
		return DefaultAffinity
	}
	return clamp(v, 0, 1)
}

type candidate struct {
	topic   string
	reasons []domain.RecommendationReason
}

type candidates struct {
	byTopic map[string]*candidate
	order   []*candidate
}

func (cs *candidates) add(topic string, r domain.RecommendationReason) {
	c, ok := cs.byTopic[topic]
	if !ok {
		c = &candidate{topic: topic}
		cs.byTopic[topic] = c
		cs.order = append(cs.order, c)
	}
	c.reasons = append(c.reasons, r)
}

// Recommend returns at most MaxRecommendations topics, best first. Equal
// scores keep the order in which the sources produced them.
func (e *Engine) Recommend() []domain.ContentRecommendation {
	prof := e.store.Profile()
	progress := e.store.Progress()
	recentErrors := e.store.RecentErrors(e.cfg.ErrorWindow)
	mastered := progress.ConceptsMastered.Len()

	cs := &candidates{byTopic: make(map[string]*candidate)}

	skillTopics := e.cfg.SkillTopics[prof.SkillLevel]
	for _, t := range skillTopics {
		cs.add(t, domain.RecommendationReason{
			Kind:          domain.ReasonSkillLevel,
			Weight:        0.8,
			Justification: fmt.Sprintf("Suited to your %s skill level", prof.SkillLevel),
		})
	}

	preferred := progress.PreferredTopics.Sorted()
	for _, t := range preferred {
		cs.add(t, domain.RecommendationReason{
			Kind:          domain.ReasonPreference,
			Weight:        0.75,
			Justification: "You asked to see more of this",
		})
	}

	if recentErrors > troubleErrors {
		for _, t := range e.cfg.TroubleshootingTopics {
			cs.add(t, domain.RecommendationReason{
				Kind:          domain.ReasonErrorPattern,
				Weight:        0.9,
				Justification: fmt.Sprintf("You hit %d errors recently", recentErrors),
			})
		}
	}
	if progress.TopicsViewed.Len() < onboardingSeen {
		for _, t := range e.cfg.OnboardingTopics {
			cs.add(t, domain.RecommendationReason{
				Kind:          domain.ReasonOnboarding,
				Weight:        0.7,
				Justification: "Helps you get started",
			})
		}
	}

	if mastered > advancedAfter {
		for _, t := range e.cfg.AdvancedTopics {
			cs.add(t, domain.RecommendationReason{
				Kind:          domain.ReasonProgress,
				Weight:        0.6,
				Justification: fmt.Sprintf("You have mastered %d concepts", mastered),
			})
		}
	} else {
		for _, t := range e.cfg.FoundationalTopics {
			cs.add(t, domain.RecommendationReason{
				Kind:          domain.ReasonProgress,
				Weight:        0.5,
				Justification: "Builds on the fundamentals",
			})
		}
	}

	// Topics the user picked count as part of their level's list.
	inSkill := domain.NewStringSet(append(append([]string(nil), skillTopics...), preferred...)...)
	troubleshooting := domain.NewStringSet(e.cfg.TroubleshootingTopics...)

	out := make([]domain.ContentRecommendation, 0, len(cs.order))
	for _, c := range cs.order {
		unviewed := !progress.TopicsViewed.Has(c.topic)
		skillRel := 0.5
		if inSkill.Has(c.topic) {
			skillRel = 1
		}
		errorRel := 0.0
		if recentErrors > relevantErrors && troubleshooting.Has(c.topic) {
			errorRel = 1
		}
		styleRel := e.Affinity(c.topic, prof.LearningStyle)

		score := baseScore + skillScore*skillRel + errorScore*errorRel + styleScore*styleRel
		if unviewed {
			score += unviewedScore
			c.reasons = append(c.reasons, domain.RecommendationReason{
				Kind:          domain.ReasonUnviewed,
				Weight:        0.2,
				Justification: "You have not viewed this yet",
			})
		}
		if styleRel > DefaultAffinity {
			c.reasons = append(c.reasons, domain.RecommendationReason{
				Kind:          domain.ReasonLearningStyle,
				Weight:        styleRel * 0.1,
				Justification: fmt.Sprintf("Works well for %s learners", prof.LearningStyle),
			})
		}
		sort.SliceStable(c.reasons, func(i, j int) bool { return c.reasons[i].Weight > c.reasons[j].Weight })

		score = clamp(score, 0, 100)
		out = append(out, domain.ContentRecommendation{
			TopicKey: c.topic,
			Score:    score,
			Reasons:  c.reasons,
			Priority: Bucket(score),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > e.cfg.MaxRecommendations {
		out = out[:e.cfg.MaxRecommendations]
	}
	e.logger.Debug("recommendations computed",
		"candidates", len(cs.order), "returned", len(out),
		"level", prof.SkillLevel, "recent_errors", recentErrors)
	return out
}

// Bucket maps a score onto a priority.
func Bucket(score float64) domain.Priority {
	switch {
	case score >= 70:
		return domain.PriorityCritical
	case score >= 55:
		return domain.PriorityHigh
	case score >= 40:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
