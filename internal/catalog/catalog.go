// Package catalog owns the help entries and the order they were loaded in.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"helpengine/internal/domain"
)

// ErrInvalidEntry is wrapped by Validate for entries with unknown enums or no key.
var ErrInvalidEntry = errors.New("invalid help entry")

// Catalog maps entry keys to entries and remembers insertion order, which is
// the tie-break order for search ranking.
type Catalog struct {
	entries map[string]domain.HelpEntry
	order   []string
}

// New builds a catalog from entries in the given order. Later duplicates of a
// key are dropped.
func New(entries ...domain.HelpEntry) *Catalog {
	c := &Catalog{entries: make(map[string]domain.HelpEntry, len(entries))}
	for _, e := range entries {
		c.Add(e.Key, e)
	}
	return c
}

// FromMap builds a catalog from a key→entry mapping. Map order is undefined,
// so keys are inserted in ascending order.
func FromMap(m map[string]domain.HelpEntry) *Catalog {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c := &Catalog{entries: make(map[string]domain.HelpEntry, len(m))}
	for _, k := range keys {
		c.Add(k, m[k])
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.order) }

// Get returns a copy of the entry stored under key.
func (c *Catalog) Get(key string) (domain.HelpEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return domain.HelpEntry{}, false
	}
	return e.Clone(), true
}

// Has reports whether key exists.
func (c *Catalog) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Keys returns the keys in catalog order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.order...)
}

// Each calls fn for every entry in catalog order with its position.
// The entry passed to fn must not be modified.
func (c *Catalog) Each(fn func(pos int, e domain.HelpEntry)) {
	for i, k := range c.order {
		fn(i, c.entries[k])
	}
}

// Add stores entry under key. It returns false if key is already present.
func (c *Catalog) Add(key string, entry domain.HelpEntry) bool {
	if _, ok := c.entries[key]; ok {
		return false
	}
	entry = entry.Clone()
	entry.Key = key
	c.entries[key] = entry
	c.order = append(c.order, key)
	return true
}

// Update replaces the entry under key, keeping its position. It returns false
// if key is absent.
func (c *Catalog) Update(key string, entry domain.HelpEntry) bool {
	if _, ok := c.entries[key]; !ok {
		return false
	}
	entry = entry.Clone()
	entry.Key = key
	c.entries[key] = entry
	return true
}

// Remove deletes key. It returns false if key is absent.
func (c *Catalog) Remove(key string) bool {
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Validate checks the structural fields of an entry.
func Validate(e domain.HelpEntry) error {
	switch {
	case e.Key == "":
		return fmt.Errorf("%w: key is empty", ErrInvalidEntry)
	case !e.Category.Valid():
		return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidEntry, e.Key, e.Category)
	case !e.Priority.Valid():
		return fmt.Errorf("%w: %s: unknown priority %q", ErrInvalidEntry, e.Key, e.Priority)
	case !e.Difficulty.Valid():
		return fmt.Errorf("%w: %s: unknown difficulty %q", ErrInvalidEntry, e.Key, e.Difficulty)
	}
	return nil
}
