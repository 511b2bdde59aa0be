// Package search builds the keyword indexes over the help catalog and ranks
// entries against free-text queries.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultMinTokenLength = 2
	DefaultMaxTokenLength = 50
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "in": {}, "to": {}, "of": {},
	"and": {}, "or": {}, "for": {}, "on": {}, "with": {}, "this": {}, "that": {},
	"it": {}, "be": {}, "as": {}, "at": {}, "by": {}, "we": {}, "do": {},
	"you": {}, "your": {}, "can": {}, "are": {}, "from": {}, "how": {},
	"what": {}, "will": {}, "if": {}, "then": {}, "so": {}, "but": {},
}

// IsStopWord reports whether w is dropped by the tokenizer.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Tokenizer normalizes free text into search tokens. It is stateless apart
// from its length bounds and safe to share.
type Tokenizer struct {
	minLen int
	maxLen int
}

// NewTokenizer returns a tokenizer keeping tokens of minLen..maxLen runes.
// Non-positive bounds select the defaults.
func NewTokenizer(minLen, maxLen int) *Tokenizer {
	if minLen <= 0 {
		minLen = DefaultMinTokenLength
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxTokenLength
	}
	return &Tokenizer{minLen: minLen, maxLen: maxLen}
}

// Normalize applies NFKC, Unicode lower-casing and punctuation stripping.
// Whitespace is kept so the result can be split into tokens.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = cases.Lower(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case unicode.IsPunct(r):
			// dropped so "don't" and "dont" tokenize alike
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Tokenize returns the normalized tokens of text in order of appearance.
// Duplicates are kept.
func (t *Tokenizer) Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		n := utf8.RuneCountInString(f)
		if n < t.minLen || n > t.maxLen {
			continue
		}
		if IsStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Unique returns the tokens of text with duplicates removed, keeping first
// occurrences in order.
func (t *Tokenizer) Unique(text string) []string {
	toks := t.Tokenize(text)
	seen := make(map[string]struct{}, len(toks))
	out := toks[:0]
	for _, tok := range toks {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
