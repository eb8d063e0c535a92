package fuzzy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests the jamo distance against the cases callers rely on.
// IMPORTANT to know:
// a slip inside one syllable must cost less than a different syllable.
func TestDistance(t *testing.T) {
	testCases := []struct {
		a, b        string
		expected    int
		description string
	}{
		{"", "", 0, "Both empty"},
		{"강남", "", 6, "Empty side costs every jamo"},
		{"강남", "강남", 0, "Identical"},
		{"강남", "강난", 1, "Final consonant slip"},
		{"강남", "광남", 1, "Vowel slip"},
		{"강남", "강북", 3, "Whole syllable differs"},
		{"서울시", "서울특별시", 6, "Inserted syllables"},
		{"래미안", "레미안", 1, "ㅐ vs ㅔ"},
		{"abc", "abd", 1, "ASCII still works"},
		{"kitten", "sitting", 3, "Classic case"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, Distance(tc.a, tc.b))
		})
	}
}

func TestDistanceMetricProperties(t *testing.T) {
	words := []string{"", "역삼", "역삼동", "삼성동", "서울특별시", "서울시", "11680", "래미안1차", "ㅇㅅㄷ"}

	for _, a := range words {
		assert.Equal(t, 0, Distance(a, a), "identity for %q", a)
		for _, b := range words {
			ab := Distance(a, b)
			assert.Equal(t, ab, Distance(b, a), "symmetry for %q, %q", a, b)
			for _, c := range words {
				assert.LessOrEqual(t, Distance(a, c), ab+Distance(b, c),
					fmt.Sprintf("triangle for %q, %q, %q", a, b, c))
			}
		}
	}
}

func TestMatcherRank(t *testing.T) {
	m := NewMatcher([]string{"래미안대치팰리스", "래미안", "레미안", "자이"})

	ranked := m.Rank("래미안")
	require.Len(t, ranked, 4)
	assert.Equal(t, "래미안", ranked[0].Str)
	assert.Equal(t, 0, ranked[0].Distance)
	assert.Equal(t, "레미안", ranked[1].Str)
	assert.Equal(t, 2, ranked[1].Index, "index points back into candidates")
	assert.Equal(t, 1, ranked[1].Distance)
}

func TestMatcherBest(t *testing.T) {
	m := NewMatcher([]string{"은마", "은마아파트", "개포주공"})

	best, ok := m.Best("은마아파트")
	require.True(t, ok)
	assert.Equal(t, "은마아파트", best.Str)
	assert.Equal(t, 1, best.Index)

	// ties resolve to the earliest candidate
	best, ok = NewMatcher([]string{"가", "나"}).Best("다")
	require.True(t, ok)
	assert.Equal(t, 0, best.Index)

	_, ok = NewMatcher(nil).Best("x")
	assert.False(t, ok)
}

func TestClosest(t *testing.T) {
	best, ok := Closest("헬리오시", []string{"헬리오시티", "파크리오"})
	require.True(t, ok)
	assert.Equal(t, "헬리오시티", best.Str)
}
