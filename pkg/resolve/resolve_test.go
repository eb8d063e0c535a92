package resolve

import (
	"context"
	"testing"

	"github.com/bastiangx/jamofind/pkg/apartment"
	"github.com/bastiangx/jamofind/pkg/finder"
	"github.com/bastiangx/jamofind/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type corpus struct {
	trades []apartment.Trade
}

func (c corpus) EachTrade(ctx context.Context, fn func(apartment.Trade) error) error {
	for _, t := range c.trades {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

func (corpus) EachRent(context.Context, func(apartment.Rent) error) error { return nil }

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	ctx := context.Background()

	regions := region.NewIndex(finder.Options{})
	require.NoError(t, regions.Build(ctx, []region.Code{
		{LawAddrCode: "1168000000", Address: "서울특별시 강남구"},
		{LawAddrCode: "1168010300", Address: "서울특별시 강남구 대치동"},
		{LawAddrCode: "1168010100", Address: "서울특별시 강남구 역삼동"},
		{LawAddrCode: "1171010100", Address: "서울특별시 송파구 잠실동"},
		{LawAddrCode: "4113510300", Address: "경기도 성남시 분당구 정자동"},
	}))

	aparts := apartment.NewIndex(2, finder.Options{})
	require.NoError(t, aparts.Build(ctx, corpus{trades: []apartment.Trade{
		{LawAddrCodeCity: 11680, LawAddrCodeDong: 10300, Name: "은마"},
		{LawAddrCodeCity: 11680, LawAddrCodeDong: 10300, Name: "래미안 대치팰리스"},
		{LawAddrCodeCity: 11680, LawAddrCodeDong: 10100, Name: "역삼래미안"},
		{LawAddrCodeCity: 11710, LawAddrCodeDong: 10100, Name: "잠실엘스"},
		{LawAddrCodeCity: 41135, LawAddrCodeDong: 10300, Name: "정자동아이파크"},
	}}, regions))

	return New(regions, aparts, 2)
}

func TestResolverSearch(t *testing.T) {
	r := newResolver(t)

	testCases := []struct {
		description string
		addr        string
		aptName     string
		expected    []ApartmentID
	}{
		{
			description: "Dong and name",
			addr:        "서울 대치동",
			aptName:     "은마",
			expected:    []ApartmentID{{"서울특별시 강남구 대치동", "1168010300", "은마"}},
		},
		{
			description: "Gu level finds every dong, sorted by address",
			addr:        "강남구",
			aptName:     "래미안",
			expected: []ApartmentID{
				{"서울특별시 강남구 대치동", "1168010300", "래미안 대치팰리스"},
				{"서울특별시 강남구 역삼동", "1168010100", "역삼래미안"},
			},
		},
		{
			description: "Empty name lists the region",
			addr:        "잠실동",
			aptName:     "",
			expected:    []ApartmentID{{"서울특별시 송파구 잠실동", "1171010100", "잠실엘스"}},
		},
		{
			description: "Chosung address",
			addr:        "ㅈㅈㄷ",
			aptName:     "아이파크",
			expected:    []ApartmentID{{"경기도 성남시 분당구 정자동", "4113510300", "정자동아이파크"}},
		},
		{
			description: "No region",
			addr:        "없는동네",
			aptName:     "은마",
			expected:    []ApartmentID{},
		},
		{
			description: "Empty address",
			addr:        "",
			aptName:     "은마",
			expected:    []ApartmentID{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got, err := r.Search(context.Background(), tc.addr, tc.aptName)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestResolverSearchCancelled(t *testing.T) {
	r := newResolver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Search(ctx, "강남구", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateRegion(t *testing.T) {
	testCases := []struct {
		address  string
		expected string
	}{
		{"서울특별시 강남구 역삼동", "동남권"},
		{"서울특별시 종로구 사직동", "도심권"},
		{"서울특별시 중구", "도심권"},
		{"서울특별시 마포구", "서북권"},
		{"서울특별시 노원구 상계동", "동북권"},
		{"서울특별시 영등포구", "서남권"},
		{"부산광역시 해운대구 우동", "부산"},
		{"경기도 성남시 분당구", "경기"},
		{"세종특별자치시 조치원읍", "세종"},
		{"제주특별자치도 제주시", "제주"},
		{"전라남도 여수시", "전남"},
		{"", NationwideRateRegion},
		{"Tokyo", NationwideRateRegion},
	}

	for _, tc := range testCases {
		t.Run(tc.address, func(t *testing.T) {
			assert.Equal(t, tc.expected, RateRegion(tc.address))
		})
	}
}

func TestBestMatch(t *testing.T) {
	id := ApartmentID{Name: "래미안 대치팰리스"}

	m, ok := BestMatch(id, []string{"대치아이파크", "래미안대치팰리스1단지", "은마"})
	require.True(t, ok)
	assert.Equal(t, "래미안대치팰리스1단지", m.Str)
	assert.Equal(t, 1, m.Index)

	_, ok = BestMatch(id, nil)
	assert.False(t, ok)
}

func TestRankByName(t *testing.T) {
	ids := []ApartmentID{
		{LawAddrCode: "1168011800", Name: "가나다라마바"},
		{LawAddrCode: "1168011800", Name: "도곡렉슬"},
		{LawAddrCode: "1168011800", Name: "렉슬"},
	}

	ranked := RankByName(ids, "렉슬")
	require.Len(t, ranked, 3)
	assert.Equal(t, "렉슬", ranked[0].Name)
	assert.Equal(t, "도곡렉슬", ranked[1].Name)
	assert.Equal(t, "가나다라마바", ranked[2].Name)

	assert.Equal(t, ids, RankByName(ids, ""), "no name keeps the resolver order")
	assert.Empty(t, RankByName(nil, "렉슬"))
}
