package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// QueryBounds validates query length in characters, not bytes,
// since a single Hangul syllable is three bytes of UTF-8.
type QueryBounds struct {
	Min int
	Max int
}

// Check returns "" for an acceptable query, or the reason it is rejected.
func (b QueryBounds) Check(query string) string {
	n := utf8.RuneCountInString(strings.TrimSpace(query))
	switch {
	case n == 0:
		return "empty query"
	case b.Min > 0 && n < b.Min:
		return "query too short"
	case b.Max > 0 && n > b.Max:
		return "query too long"
	}
	return ""
}

// CollapseSpaces trims s and squeezes every whitespace run into a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Seen filters out repeated keys. The zero value is not usable; use NewSeen.
type Seen[K comparable] struct {
	keys map[K]struct{}
}

// NewSeen creates an empty Seen.
func NewSeen[K comparable]() *Seen[K] {
	return &Seen[K]{keys: make(map[K]struct{})}
}

// First reports whether k is seen for the first time and records it.
func (s *Seen[K]) First(k K) bool {
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

// Len returns the number of distinct keys recorded.
func (s *Seen[K]) Len() int {
	return len(s.keys)
}
