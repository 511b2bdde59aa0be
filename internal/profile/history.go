package profile

import (
	"time"

	"helpengine/internal/domain"
)

// History is a fixed-capacity ring of interaction records. When an append
// finds it full, the oldest records are dropped until compactTo remain.
type History struct {
	buf       []domain.InteractionRecord
	head      int
	size      int
	compactTo int
}

// NewHistory allocates a ring of capacity records. A compactTo outside
// (0, capacity) selects half the capacity.
func NewHistory(capacity, compactTo int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	if compactTo <= 0 || compactTo >= capacity {
		compactTo = capacity / 2
	}
	return &History{buf: make([]domain.InteractionRecord, capacity), compactTo: compactTo}
}

// Append adds r as the newest record and reports whether the ring was
// compacted first.
func (h *History) Append(r domain.InteractionRecord) bool {
	compacted := false
	if h.size == len(h.buf) {
		h.drop(h.size - h.compactTo)
		compacted = true
	}
	h.buf[(h.head+h.size)%len(h.buf)] = r
	h.size++
	return compacted
}

func (h *History) drop(n int) {
	for i := 0; i < n; i++ {
		h.buf[(h.head+i)%len(h.buf)] = domain.InteractionRecord{}
	}
	h.head = (h.head + n) % len(h.buf)
	h.size -= n
}

func (h *History) at(i int) domain.InteractionRecord {
	return h.buf[(h.head+i)%len(h.buf)]
}

// Len returns the number of retained records.
func (h *History) Len() int { return h.size }

// Cap returns the ring capacity.
func (h *History) Cap() int { return len(h.buf) }

// Records returns every retained record, oldest first.
func (h *History) Records() []domain.InteractionRecord {
	return h.Recent(h.size)
}

// Recent returns the newest n records, oldest first.
func (h *History) Recent(n int) []domain.InteractionRecord {
	if n > h.size {
		n = h.size
	}
	if n < 0 {
		n = 0
	}
	out := make([]domain.InteractionRecord, 0, n)
	for i := h.size - n; i < h.size; i++ {
		out = append(out, h.at(i))
	}
	return out
}

// CountSince counts records of type t stamped strictly after since.
func (h *History) CountSince(t domain.InteractionType, since time.Time) int {
	n := 0
	for i := h.size - 1; i >= 0; i-- {
		r := h.at(i)
		if r.Timestamp.After(since) && r.Type == t {
			n++
		}
	}
	return n
}

// Reset empties the ring.
func (h *History) Reset() {
	h.drop(h.size)
	h.head = 0
}
