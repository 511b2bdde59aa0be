package cache

import "helpengine/internal/domain"

// ContentKey identifies a resolved piece of content: the index-th entry of a
// category.
type ContentKey struct {
	Category domain.Category
	Index    int
}

// Caches pairs the two independent instances the engine uses: resolved
// content keyed by (category, selection index) and ranked search hits keyed
// by raw query string.
type Caches struct {
	Content *FIFO[ContentKey, domain.HelpEntry]
	Search  *FIFO[string, []domain.SearchResult]
}

// NewCaches creates both caches with the same capacity.
func NewCaches(capacity int) *Caches {
	return &Caches{
		Content: NewFIFO[ContentKey, domain.HelpEntry](capacity),
		Search:  NewFIFO[string, []domain.SearchResult](capacity),
	}
}

// Clear empties both caches.
func (c *Caches) Clear() {
	c.Content.Clear()
	c.Search.Clear()
}
