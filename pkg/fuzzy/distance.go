// Package fuzzy ranks names by how close they are once decomposed into jamo.
//
// The index in pkg/finder only answers "which records match"; when several records
// share a prefix or suffix with the query, callers use Distance to pick the closest one.
package fuzzy

import "github.com/bastiangx/jamofind/pkg/hangul"

// Distance is the Levenshtein distance between the full jamo decompositions of a and b.
// A one-jamo slip inside a syllable ("강남" vs "강난") costs 1, not a whole syllable.
func Distance(a, b string) int {
	return distance(hangul.Full(a), hangul.Full(b))
}

// distance keeps a single rolling row of the DP table: O(len(b)) memory.
func distance(a, b []rune) int {
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(row[j-1]+1, above+1, diag+cost)
			diag = above
		}
	}
	return row[len(b)]
}
