package profile

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"helpengine/internal/domain"
)

// progressRecord is the stored shape of ProgressData. Sets become sorted
// sequences and the frequency map becomes a key-ordered list of pairs so the
// encoding is stable.
type progressRecord struct {
	TopicsViewed           []string                       `json:"topics_viewed"`
	ConceptsMastered       []string                       `json:"concepts_mastered"`
	PreferredTopics        []string                       `json:"preferred_topics"`
	HelpRequests           int                            `json:"help_requests"`
	SuccessfulInteractions int                            `json:"successful_interactions"`
	ErrorRecoveries        int                            `json:"error_recoveries"`
	TopicFrequency         []TopicCount                   `json:"topic_frequency"`
	Progression            []domain.DifficultyProgression `json:"progression"`
}

// EncodeProgress serializes p.
func EncodeProgress(p domain.ProgressData) (string, error) {
	rec := progressRecord{
		TopicsViewed:           p.TopicsViewed.Sorted(),
		ConceptsMastered:       p.ConceptsMastered.Sorted(),
		PreferredTopics:        p.PreferredTopics.Sorted(),
		HelpRequests:           p.HelpRequests,
		SuccessfulInteractions: p.SuccessfulInteractions,
		ErrorRecoveries:        p.ErrorRecoveries,
		TopicFrequency:         make([]TopicCount, 0, len(p.TopicFrequency)),
		Progression:            p.Progression,
	}
	for k, v := range p.TopicFrequency {
		rec.TopicFrequency = append(rec.TopicFrequency, TopicCount{Topic: k, Count: v})
	}
	sort.Slice(rec.TopicFrequency, func(i, j int) bool {
		return rec.TopicFrequency[i].Topic < rec.TopicFrequency[j].Topic
	})
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode progress: %w", err)
	}
	return string(data), nil
}

// DecodeProgress parses data produced by EncodeProgress.
func DecodeProgress(data string) (domain.ProgressData, error) {
	var rec progressRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return domain.ProgressData{}, fmt.Errorf("decode progress: %w", err)
	}
	if rec.HelpRequests < 0 || rec.SuccessfulInteractions < 0 || rec.ErrorRecoveries < 0 {
		return domain.ProgressData{}, fmt.Errorf("decode progress: negative counter")
	}
	if rec.SuccessfulInteractions > rec.HelpRequests {
		return domain.ProgressData{}, fmt.Errorf("decode progress: %d successes exceed %d requests",
			rec.SuccessfulInteractions, rec.HelpRequests)
	}
	p := domain.NewProgressData()
	p.TopicsViewed = domain.NewStringSet(rec.TopicsViewed...)
	p.ConceptsMastered = domain.NewStringSet(rec.ConceptsMastered...)
	p.PreferredTopics = domain.NewStringSet(rec.PreferredTopics...)
	p.HelpRequests = rec.HelpRequests
	p.SuccessfulInteractions = rec.SuccessfulInteractions
	p.ErrorRecoveries = rec.ErrorRecoveries
	for _, tc := range rec.TopicFrequency {
		p.TopicFrequency[tc.Topic] = tc.Count
	}
	p.Progression = rec.Progression
	return p, nil
}

// EncodeProfile serializes p.
func EncodeProfile(p domain.UserProfile) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	return string(data), nil
}

// DecodeProfile parses and validates a stored profile.
func DecodeProfile(data string) (domain.UserProfile, error) {
	var p domain.UserProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	if !validStyle(p.LearningStyle) {
		return domain.UserProfile{}, fmt.Errorf("decode profile: unknown learning style %q", p.LearningStyle)
	}
	if p.CreatedAt.IsZero() {
		return domain.UserProfile{}, fmt.Errorf("decode profile: missing created_at")
	}
	if p.UsagePattern == "" {
		p.UsagePattern = domain.UsageReactive
	}
	if p.PlayFrequency == "" {
		p.PlayFrequency = domain.FrequencyOccasional
	}
	return p, nil
}

func validStyle(s domain.LearningStyle) bool {
	for _, known := range domain.LearningStyles {
		if s == known {
			return true
		}
	}
	return false
}

// EncodeHistory serializes records oldest first.
func EncodeHistory(records []domain.InteractionRecord) (string, error) {
	if records == nil {
		records = []domain.InteractionRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(data), nil
}

// DecodeHistory parses stored records and sorts them chronologically.
func DecodeHistory(data string) ([]domain.InteractionRecord, error) {
	var records []domain.InteractionRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// Snapshot is the serialized form of a store's state, ready to hand to a
// KVStore. Taking a snapshot does not block on I/O.
type Snapshot struct {
	Profile  string
	Progress string
	History  string
	TakenAt  time.Time
}

// Snapshot serializes the current state.
func (s *Store) Snapshot() (Snapshot, error) {
	prof, err := EncodeProfile(s.profile)
	if err != nil {
		return Snapshot{}, err
	}
	prog, err := EncodeProgress(s.progress)
	if err != nil {
		return Snapshot{}, err
	}
	hist, err := EncodeHistory(s.history.Records())
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Profile: prof, Progress: prog, History: hist, TakenAt: s.clock.Now()}, nil
}
