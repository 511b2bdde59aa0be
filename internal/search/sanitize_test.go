package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		max        int
		want       string
		wantNotice string
	}{
		{"clean", "bubble pop", 0, "bubble pop", ""},
		{"collapse whitespace", "  bubble \t\n pop ", 0, "bubble pop", ""},
		{"control chars", "bub\x00ble\x07", 0, "bubble", "removed control characters"},
		{"truncate", "abcdefghij", 4, "abcd", "truncated to 4 characters"},
		{"invalid utf8", "bub\xffble", 0, "bub ble", "replaced invalid UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeQuery(tt.in, tt.max)
			if got.Value != tt.want {
				t.Errorf("Value = %q, want %q", got.Value, tt.want)
			}
			if got.Notice != tt.wantNotice {
				t.Errorf("Notice = %q, want %q", got.Notice, tt.wantNotice)
			}
		})
	}
}

func TestSanitizeQuery_DefaultLimit(t *testing.T) {
	got := SanitizeQuery(strings.Repeat("é", 500), 0)
	if n := utf8.RuneCountInString(got.Value); n != DefaultMaxQueryLength {
		t.Errorf("expected %d runes, got %d", DefaultMaxQueryLength, n)
	}
	if got.Notice == "" {
		t.Error("expected a truncation notice")
	}
}
