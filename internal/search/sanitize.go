package search

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxQueryLength bounds a query in runes.
const DefaultMaxQueryLength = 200

// SanitizedQuery is a query after cleanup plus a human-readable note of what
// was changed. Notice is empty when the input was already clean.
type SanitizedQuery struct {
	Value  string
	Notice string
}

// SanitizeQuery removes control characters, collapses whitespace, and
// truncates to maxLen runes. It never rejects input.
func SanitizeQuery(q string, maxLen int) SanitizedQuery {
	if maxLen <= 0 {
		maxLen = DefaultMaxQueryLength
	}
	var notes []string

	if !utf8.ValidString(q) {
		q = strings.ToValidUTF8(q, " ")
		notes = append(notes, "replaced invalid UTF-8")
	}

	stripped := false
	q = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			stripped = true
			return -1
		}
		return r
	}, q)
	if stripped {
		notes = append(notes, "removed control characters")
	}

	q = strings.Join(strings.Fields(q), " ")

	if utf8.RuneCountInString(q) > maxLen {
		runes := []rune(q)
		q = strings.TrimSpace(string(runes[:maxLen]))
		notes = append(notes, fmt.Sprintf("truncated to %d characters", maxLen))
	}

	return SanitizedQuery{Value: q, Notice: strings.Join(notes, "; ")}
}
