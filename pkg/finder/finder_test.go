package finder

import (
	"testing"

	"github.com/bastiangx/jamofind/pkg/hangul"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegionFinder() *Finder[string] {
	f := New[string]()
	f.Register([]string{"서울특별시", "11000"}, "A")
	f.Register([]string{"강남구", "11680"}, "B")
	f.Freeze()
	return f
}

func TestFinderRegionScenario(t *testing.T) {
	f := newRegionFinder()

	assert.Equal(t, []string{"A"}, f.Search("서울"))
	assert.Equal(t, []string{"B"}, f.Search("11680"))
	assert.Empty(t, f.SearchTerms([]string{"서울", "강남"}), "different payloads intersect to nothing")
	assert.Equal(t, []string{"A", "B"}, f.Search("11"), "shared numeric prefix")
}

func TestFinderPrefixSuffixChosung(t *testing.T) {
	f := New[string]()
	f.Register([]string{"역삼동"}, "A")
	f.Freeze()

	testCases := []struct {
		query       string
		description string
	}{
		{"역삼", "Prefix"},
		{"삼동", "Suffix through the reverse trie"},
		{hangul.Chosung("역삼동"), "Chosung abbreviation"},
		{"ㅇㅅ", "Chosung prefix"},
		{"ㅅㄷ", "Chosung suffix"},
		{"역사", "Partial syllable typed with an IME"},
		{"역삼동", "Exact"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Contains(t, f.Search(tc.query), "A")
		})
	}

	assert.Empty(t, f.Search("삼"+"역"))
	assert.Empty(t, f.Search("ㄷㅅ"))
}

func TestFinderEveryRegisteredTagFindsItsPayload(t *testing.T) {
	corpus := map[string][]string{
		"seoul":   {"서울특별시", "서울시", "1100000000"},
		"jongno":  {"서울특별시", "종로구", "1111000000"},
		"sajik":   {"서울특별시", "종로구", "사직동", "1111010100"},
		"raemian": {"래미안1차", "래미", "미안"},
		"ascii":   {"Tower Palace", "tp-1"},
	}

	f := New[string]()
	for payload, tags := range corpus {
		f.Register(tags, payload)
	}
	f.Freeze()

	for payload, tags := range corpus {
		for _, tag := range tags {
			assert.Contains(t, f.SearchTerms([]string{tag}), payload, "tag %q", tag)
		}
	}
}

func TestFinderTermOrderDoesNotMatter(t *testing.T) {
	f := New[int]()
	f.Register([]string{"서울특별시", "종로구", "사직동"}, 1)
	f.Register([]string{"서울특별시", "강남구", "역삼동"}, 2)
	f.Register([]string{"부산광역시", "해운대구", "우동"}, 3)
	f.Freeze()

	pairs := [][2]string{
		{"서울", "종로"},
		{"서울", "역삼"},
		{"ㅅㅇ", "ㄱㄴ"},
		{"동", "서울"},
		{"부산", "역삼"},
	}
	for _, p := range pairs {
		assert.ElementsMatch(t, f.SearchTerms([]string{p[0], p[1]}), f.SearchTerms([]string{p[1], p[0]}), "%v", p)
	}

	assert.Equal(t, []int{1}, f.Search("서울 종로"))
	assert.Equal(t, []int{1, 2}, f.Search("서울"))
}

func TestFinderEmptyQueries(t *testing.T) {
	f := newRegionFinder()

	for _, q := range []string{"", "   ", "\t\n"} {
		assert.Empty(t, f.Search(q), "%q", q)
		assert.NotNil(t, f.Search(q))
	}
	assert.Empty(t, f.SearchTerms(nil))
	assert.Empty(t, f.SearchTerms([]string{" ", ""}))
}

func TestFinderZeroMatchTermEmptiesResult(t *testing.T) {
	f := newRegionFinder()
	assert.Empty(t, f.Search("서울 없는동네"))
	assert.Empty(t, f.Search("없는동네 서울"))
	assert.Empty(t, f.Search("zzz"))
}

func TestFinderPayloadUnderTwoTags(t *testing.T) {
	f := New[string]()
	f.Register([]string{"부산광역시", "부산시"}, "busan")
	f.Freeze()

	assert.Equal(t, []string{"busan"}, f.Search("부산광역시"))
	assert.Equal(t, []string{"busan"}, f.Search("부산시"))
	assert.Equal(t, []string{"busan"}, f.Search("광역시"))
}

func TestFinderDuplicatesAndHomonyms(t *testing.T) {
	f := New[string]()
	first := f.Register([]string{"중구"}, "seoul-jung")
	second := f.Register([]string{"중구"}, "busan-jung")
	third := f.Register([]string{"중구"}, "seoul-jung")

	assert.Equal(t, []int{0, 1, 2}, []int{first, second, third}, "ids are dense")
	assert.Equal(t, []int{0, 1, 2}, f.IDs("중구"))
	assert.Equal(t, []string{"seoul-jung", "busan-jung", "seoul-jung"}, f.Search("중구"))
}

func TestFinderTagsAreTrimmedAndBlanksSkipped(t *testing.T) {
	f := New[string]()
	f.Register([]string{"  역삼동 ", "", "   "}, "A")

	assert.Equal(t, []int{0}, f.IDs("역삼동"))
	assert.Equal(t, 1, f.Stats()["tags"])
	assert.Equal(t, []string{"A"}, f.Search("역삼동"))
}

func TestFinderCollidingDecompositionsAccumulate(t *testing.T) {
	f := New[string]()
	// precomposed and conjoining spellings decompose identically
	f.Register([]string{"\uC5ED"}, "precomposed")
	f.Register([]string{"\u110B\u1167\u11A8"}, "conjoining")

	set, ok := f.forward.Lookup(hangul.Full("역"))
	require.True(t, ok)
	assert.Len(t, set.tags, 2, "both tags kept at the shared node")
	assert.ElementsMatch(t, []string{"precomposed", "conjoining"}, f.Search("역"))
}

func TestFinderNodeTagsAreDistinct(t *testing.T) {
	f := New[int]()
	for i := 0; i < 5; i++ {
		f.Register([]string{"래미", "래미"}, i)
	}

	set, ok := f.forward.Lookup(hangul.Full("래미"))
	require.True(t, ok)
	assert.Equal(t, []string{"래미"}, set.tags)

	chosung, ok := f.reverse.Lookup(hangul.Reverse([]rune(hangul.Chosung("래미"))))
	require.True(t, ok)
	assert.Equal(t, []string{"래미"}, chosung.tags)
}

func TestFinderFrozenIgnoresRegister(t *testing.T) {
	f := newRegionFinder()
	assert.True(t, f.Frozen())
	assert.Equal(t, -1, f.Register([]string{"부산"}, "C"))
	assert.Equal(t, 2, f.Len())
	assert.Empty(t, f.Search("부산"))
}

func TestFinderPayloadAndStats(t *testing.T) {
	f := newRegionFinder()

	p, ok := f.Payload(1)
	require.True(t, ok)
	assert.Equal(t, "B", p)
	_, ok = f.Payload(2)
	assert.False(t, ok)
	_, ok = f.Payload(-1)
	assert.False(t, ok)

	stats := f.Stats()
	assert.Equal(t, 2, stats["records"])
	assert.Equal(t, 4, stats["tags"])
	assert.Equal(t, []string{"11000", "11680", "강남구", "서울특별시"}, f.Tags())
	// 서울특별시 and 강남구 have full + chosung paths, the codes only full
	assert.Equal(t, 6, stats["forwardNodes"])
	assert.Equal(t, 6, stats["reverseNodes"])
}

func TestFinderMixedDigitHangulTerm(t *testing.T) {
	f := New[string]()
	f.Register([]string{"래미안1차"}, "A")
	f.Freeze()

	assert.Equal(t, []string{"A"}, f.Search("래미안1"))
	assert.Equal(t, []string{"A"}, f.Search("1차"))
	assert.Equal(t, []string{"A"}, f.Search("ㄹㅁㅇ"))
}
