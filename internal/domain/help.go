package domain

import "time"

// Category groups help entries. The set is closed.
type Category string

const (
	CategoryBasic           Category = "basic"
	CategoryGameplay        Category = "gameplay"
	CategoryAdvanced        Category = "advanced"
	CategorySettings        Category = "settings"
	CategoryTroubleshooting Category = "troubleshooting"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryBasic,
	CategoryGameplay,
	CategoryAdvanced,
	CategorySettings,
	CategoryTroubleshooting,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Priority ranks how important an entry is to surface.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool {
	for _, k := range Priorities {
		if k == p {
			return true
		}
	}
	return false
}

// Difficulty is the level an entry is written for.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{
	DifficultyBeginner,
	DifficultyIntermediate,
	DifficultyAdvanced,
	DifficultyExpert,
}

func (d Difficulty) Valid() bool {
	for _, k := range Difficulties {
		if k == d {
			return true
		}
	}
	return false
}

// Step is one ordered instruction inside an entry.
type Step struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body,omitempty" yaml:"body,omitempty"`
}

// Section is a titled block of prose inside an entry.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body,omitempty" yaml:"body,omitempty"`
}

// SubItem is a tagged piece of sub-content (tip, warning, shortcut, ...).
type SubItem struct {
	Tag   string `json:"tag" yaml:"tag"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body,omitempty" yaml:"body,omitempty"`
}

// EntryMetadata is the optional metadata bag of an entry.
type EntryMetadata struct {
	Tags           []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	LastUpdated    time.Time `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
	ReadingMinutes int       `json:"reading_minutes,omitempty" yaml:"reading_minutes,omitempty"`
}

// HelpEntry is one help article identified by a stable key.
type HelpEntry struct {
	Key           string         `json:"key" yaml:"key"`
	Category      Category       `json:"category" yaml:"category"`
	Priority      Priority       `json:"priority" yaml:"priority"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description" yaml:"description"`
	Steps         []Step         `json:"steps,omitempty" yaml:"steps,omitempty"`
	Sections      []Section      `json:"sections,omitempty" yaml:"sections,omitempty"`
	Items         []SubItem      `json:"items,omitempty" yaml:"items,omitempty"`
	Difficulty    Difficulty     `json:"difficulty" yaml:"difficulty"`
	RelatedTopics []string       `json:"related_topics,omitempty" yaml:"related_topics,omitempty"`
	Metadata      *EntryMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Tags returns the declared tags, or nil when the entry has no metadata.
func (e HelpEntry) Tags() []string {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata.Tags
}

// Clone returns a deep copy so callers cannot alias catalog-owned slices.
func (e HelpEntry) Clone() HelpEntry {
	out := e
	out.Steps = append([]Step(nil), e.Steps...)
	out.Sections = append([]Section(nil), e.Sections...)
	out.Items = append([]SubItem(nil), e.Items...)
	out.RelatedTopics = append([]string(nil), e.RelatedTopics...)
	if e.Metadata != nil {
		md := *e.Metadata
		md.Tags = append([]string(nil), e.Metadata.Tags...)
		out.Metadata = &md
	}
	return out
}

// SearchResult is one ranked hit.
type SearchResult struct {
	Entry         HelpEntry `json:"entry"`
	Score         float64   `json:"score"`
	MatchedFields []string  `json:"matched_fields"`
}

// SearchOptions narrows and caps a search. Filters only ever exclude matches.
// The zero value means "no filter" for every field and the default cap.
type SearchOptions struct {
	Category   Category
	Difficulty Difficulty
	Priority   Priority
	Tags       []string // any-of match
	MaxResults int      // <= 0 selects the configured default
}

// NewSearchOptions returns options with no filters.
func NewSearchOptions() SearchOptions {
	return SearchOptions{}
}

func (o SearchOptions) WithCategory(c Category) SearchOptions {
	o.Category = c
	return o
}

func (o SearchOptions) WithDifficulty(d Difficulty) SearchOptions {
	o.Difficulty = d
	return o
}

func (o SearchOptions) WithPriority(p Priority) SearchOptions {
	o.Priority = p
	return o
}

func (o SearchOptions) WithTags(tags ...string) SearchOptions {
	o.Tags = append([]string(nil), tags...)
	return o
}

func (o SearchOptions) WithMaxResults(n int) SearchOptions {
	o.MaxResults = n
	return o
}
