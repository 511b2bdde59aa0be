package domain

import (
	"fmt"
	"sort"
	"time"
)

// SkillLevel is the ordinal proficiency of a user.
type SkillLevel int

const (
	SkillBeginner SkillLevel = iota
	SkillIntermediate
	SkillAdvanced
	SkillExpert
)

var skillNames = [...]string{"beginner", "intermediate", "advanced", "expert"}

func (l SkillLevel) String() string {
	if l < SkillBeginner || l > SkillExpert {
		return fmt.Sprintf("SkillLevel(%d)", int(l))
	}
	return skillNames[l]
}

// Difficulty maps a skill level onto the matching content difficulty.
func (l SkillLevel) Difficulty() Difficulty {
	return Difficulty(l.String())
}

// Next returns the following level and false when l is already expert.
func (l SkillLevel) Next() (SkillLevel, bool) {
	if l >= SkillExpert {
		return l, false
	}
	return l + 1, true
}

func (l SkillLevel) MarshalText() ([]byte, error) {
	if l < SkillBeginner || l > SkillExpert {
		return nil, fmt.Errorf("invalid skill level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *SkillLevel) UnmarshalText(b []byte) error {
	v, err := ParseSkillLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseSkillLevel parses the lower-case level name.
func ParseSkillLevel(s string) (SkillLevel, error) {
	for i, n := range skillNames {
		if n == s {
			return SkillLevel(i), nil
		}
	}
	return SkillBeginner, fmt.Errorf("unknown skill level %q", s)
}

// LearningStyle is the inferred or declared way a user prefers to learn.
type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleReading     LearningStyle = "reading"
)

// LearningStyles is also the tie-break order for style inference.
var LearningStyles = []LearningStyle{StyleVisual, StyleAuditory, StyleKinesthetic, StyleReading}

// AccessibilityNeed tags a user's accessibility requirement.
type AccessibilityNeed string

const (
	NeedHighContrast  AccessibilityNeed = "high_contrast"
	NeedScreenReader  AccessibilityNeed = "screen_reader"
	NeedReducedMotion AccessibilityNeed = "reduced_motion"
	NeedLargeText     AccessibilityNeed = "large_text"
	NeedCaptions      AccessibilityNeed = "captions"
)

// UsagePattern classifies how proactively a user seeks help.
type UsagePattern string

const (
	UsageReactive  UsagePattern = "reactive"
	UsageMixed     UsagePattern = "mixed"
	UsageProactive UsagePattern = "proactive"
)

// PlayFrequency classifies how often a user asks for help per day.
type PlayFrequency string

const (
	FrequencyOccasional PlayFrequency = "occasional"
	FrequencyRegular    PlayFrequency = "regular"
	FrequencyFrequent   PlayFrequency = "frequent"
	FrequencyDaily      PlayFrequency = "daily"
)

// UserProfile is one user's classification state. Only the profile store
// mutates it.
type UserProfile struct {
	SkillLevel         SkillLevel          `json:"skill_level"`
	LearningStyle      LearningStyle       `json:"learning_style"`
	AccessibilityNeeds []AccessibilityNeed `json:"accessibility_needs,omitempty"`
	UsagePattern       UsagePattern        `json:"usage_pattern"`
	PlayFrequency      PlayFrequency       `json:"play_frequency"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// DefaultProfile is the profile a new or unrecoverable user starts from.
func DefaultProfile(now time.Time) UserProfile {
	return UserProfile{
		SkillLevel:    SkillBeginner,
		LearningStyle: StyleVisual,
		UsagePattern:  UsageReactive,
		PlayFrequency: FrequencyOccasional,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// StringSet is an unordered set of keys.
type StringSet map[string]struct{}

func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s StringSet) Add(k string) { s[k] = struct{}{} }

func (s StringSet) Len() int { return len(s) }

func (s StringSet) Has(k string) bool {
	_, ok := s[k]
	return ok
}

func (s StringSet) Remove(k string) { delete(s, k) }

func (s StringSet) Clone() StringSet { return NewStringSet(s.Sorted()...) }

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EvidenceKind names one data point behind a skill transition.
type EvidenceKind string

const (
	EvidenceSuccessRate     EvidenceKind = "success_rate"
	EvidenceFeatureAdoption EvidenceKind = "feature_adoption"
	EvidenceHelpUsage       EvidenceKind = "help_usage"
	EvidenceErrorRecovery   EvidenceKind = "error_recovery"
)

// Evidence is one weighted data point justifying a transition.
type Evidence struct {
	Kind   EvidenceKind `json:"kind"`
	Value  float64      `json:"value"`
	Weight float64      `json:"weight"`
}

// DifficultyProgression is a snapshot taken at each skill transition.
type DifficultyProgression struct {
	Timestamp  time.Time  `json:"timestamp"`
	Level      SkillLevel `json:"level"`
	Confidence float64    `json:"confidence"`
	Evidence   []Evidence `json:"evidence"`
}

// ProgressData is the accumulated learning state of one user.
type ProgressData struct {
	TopicsViewed           StringSet
	ConceptsMastered       StringSet
	PreferredTopics        StringSet
	HelpRequests           int
	SuccessfulInteractions int
	ErrorRecoveries        int
	TopicFrequency         map[string]int
	Progression            []DifficultyProgression
}

// NewProgressData returns empty progress with all collections allocated.
func NewProgressData() ProgressData {
	return ProgressData{
		TopicsViewed:     StringSet{},
		ConceptsMastered: StringSet{},
		PreferredTopics:  StringSet{},
		TopicFrequency:   map[string]int{},
	}
}

// Clone deep-copies p.
func (p ProgressData) Clone() ProgressData {
	out := p
	out.TopicsViewed = p.TopicsViewed.Clone()
	out.ConceptsMastered = p.ConceptsMastered.Clone()
	out.PreferredTopics = p.PreferredTopics.Clone()
	out.TopicFrequency = make(map[string]int, len(p.TopicFrequency))
	for k, v := range p.TopicFrequency {
		out.TopicFrequency[k] = v
	}
	out.Progression = make([]DifficultyProgression, len(p.Progression))
	for i, dp := range p.Progression {
		dp.Evidence = append([]Evidence(nil), dp.Evidence...)
		out.Progression[i] = dp
	}
	return out
}

// InteractionType is the kind of a logged event.
type InteractionType string

const (
	InteractionHelpRequest InteractionType = "help_request"
	InteractionError       InteractionType = "error"
	InteractionSuccess     InteractionType = "success"
	InteractionDismissal   InteractionType = "dismissal"
	InteractionProactive   InteractionType = "proactive"
	InteractionExploration InteractionType = "exploration"
)

// InteractionContext carries the free-form signals of one event.
type InteractionContext struct {
	UsedVisuals     bool   `json:"used_visuals,omitempty"`
	UsedAudio       bool   `json:"used_audio,omitempty"`
	UsedInteraction bool   `json:"used_interaction,omitempty"`
	Trigger         string `json:"trigger,omitempty"`
}

// InteractionRecord is one immutable logged event.
type InteractionRecord struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	Type            InteractionType    `json:"type"`
	TopicKey        string             `json:"topic,omitempty"`
	Success         bool               `json:"success"`
	Duration        time.Duration      `json:"duration,omitempty"`
	ConceptMastered string             `json:"concept_mastered,omitempty"`
	ErrorResolved   bool               `json:"error_resolved,omitempty"`
	Context         InteractionContext `json:"context"`
}

// ReasonKind names the source of a recommendation reason.
type ReasonKind string

const (
	ReasonSkillLevel    ReasonKind = "skill_level"
	ReasonErrorPattern  ReasonKind = "error_pattern"
	ReasonOnboarding    ReasonKind = "onboarding"
	ReasonProgress      ReasonKind = "progress"
	ReasonUnviewed      ReasonKind = "unviewed"
	ReasonLearningStyle ReasonKind = "learning_style"
	ReasonPreference    ReasonKind = "preference"
)

// RecommendationReason is one weighted justification.
type RecommendationReason struct {
	Kind          ReasonKind `json:"kind"`
	Weight        float64    `json:"weight"`
	Justification string     `json:"justification"`
}

// ContentRecommendation is a scored topic suggestion computed on demand.
type ContentRecommendation struct {
	TopicKey string                 `json:"topic"`
	Score    float64                `json:"score"`
	Reasons  []RecommendationReason `json:"reasons"`
	Priority Priority               `json:"priority"`
}
