package profile

import (
	"fmt"
	"testing"
	"time"

	"helpengine/internal/domain"
)

func rec(i int) domain.InteractionRecord {
	return domain.InteractionRecord{
		ID:        fmt.Sprintf("r%d", i),
		Timestamp: time.Unix(int64(i), 0),
		Type:      domain.InteractionHelpRequest,
	}
}

func TestHistory_CompactsWhenFull(t *testing.T) {
	h := NewHistory(10, 5)
	for i := 0; i < 10; i++ {
		if h.Append(rec(i)) {
			t.Fatalf("unexpected compaction at %d", i)
		}
	}
	if !h.Append(rec(10)) {
		t.Fatal("expected compaction on the 11th append")
	}
	if h.Len() != 6 {
		t.Fatalf("len = %d, want 6", h.Len())
	}
	got := h.Records()
	if got[0].ID != "r5" || got[5].ID != "r10" {
		t.Errorf("kept %s..%s, want r5..r10", got[0].ID, got[5].ID)
	}
}

func TestHistory_WrapsAround(t *testing.T) {
	h := NewHistory(4, 2)
	for i := 0; i < 11; i++ {
		h.Append(rec(i))
	}
	got := h.Records()
	for i := 1; i < len(got); i++ {
		if !got[i-1].Timestamp.Before(got[i].Timestamp) {
			t.Fatalf("records out of order: %v", got)
		}
	}
	if got[len(got)-1].ID != "r10" {
		t.Errorf("newest = %s, want r10", got[len(got)-1].ID)
	}
	if h.Len() > h.Cap() {
		t.Errorf("len %d exceeds cap %d", h.Len(), h.Cap())
	}
}

func TestHistory_Recent(t *testing.T) {
	h := NewHistory(0, 0)
	if h.Cap() != DefaultHistoryCapacity {
		t.Fatalf("cap = %d, want %d", h.Cap(), DefaultHistoryCapacity)
	}
	for i := 0; i < 5; i++ {
		h.Append(rec(i))
	}
	got := h.Recent(2)
	if len(got) != 2 || got[0].ID != "r3" || got[1].ID != "r4" {
		t.Errorf("Recent(2) = %v", got)
	}
	if len(h.Recent(50)) != 5 {
		t.Error("Recent beyond length should return everything")
	}
	if len(h.Recent(-1)) != 0 {
		t.Error("negative n should return nothing")
	}
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory(3, 1)
	h.Append(rec(1))
	h.Append(rec(2))
	h.Reset()
	if h.Len() != 0 {
		t.Fatalf("len after reset = %d", h.Len())
	}
	h.Append(rec(3))
	if got := h.Records(); len(got) != 1 || got[0].ID != "r3" {
		t.Errorf("after reset = %v", got)
	}
}
