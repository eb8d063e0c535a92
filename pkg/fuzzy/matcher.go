package fuzzy

import (
	"sort"

	"github.com/bastiangx/jamofind/pkg/hangul"
)

// Matcher ranks a fixed list of candidate names against queries.
// Candidates are decomposed once up front.
type Matcher struct {
	candidates []string
	decomposed [][]rune
}

// Match is a candidate together with its distance to the query.
type Match struct {
	Str      string
	Index    int
	Distance int
}

// NewMatcher creates a matcher over candidates. The slice is not copied.
func NewMatcher(candidates []string) *Matcher {
	decomposed := make([][]rune, len(candidates))
	for i, c := range candidates {
		decomposed[i] = hangul.Full(c)
	}
	return &Matcher{
		candidates: candidates,
		decomposed: decomposed,
	}
}

// Rank returns every candidate ordered by distance, ties kept in input order.
func (m *Matcher) Rank(query string) []Match {
	q := hangul.Full(query)
	matches := make([]Match, len(m.candidates))
	for i, c := range m.candidates {
		matches[i] = Match{
			Str:      c,
			Index:    i,
			Distance: distance(q, m.decomposed[i]),
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}

// Best returns the closest candidate. ok is false when there are no candidates.
func (m *Matcher) Best(query string) (Match, bool) {
	if len(m.candidates) == 0 {
		return Match{}, false
	}
	q := hangul.Full(query)
	best := Match{Index: -1}
	for i, c := range m.candidates {
		d := distance(q, m.decomposed[i])
		if best.Index < 0 || d < best.Distance {
			best = Match{Str: c, Index: i, Distance: d}
		}
	}
	return best, true
}

// Closest is a one-shot Best over candidates.
func Closest(query string, candidates []string) (Match, bool) {
	return NewMatcher(candidates).Best(query)
}
