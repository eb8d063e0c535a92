package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bastiangx/jamofind/pkg/apartment"
	"github.com/bastiangx/jamofind/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTradesKeepInsertionOrder(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutTrades([]apartment.Trade{
		{LawAddrCodeCity: 11680, LawAddrCodeDong: 10300, Name: "은마", Price: 250000},
		{LawAddrCodeCity: 11710, LawAddrCodeDong: 10100, Name: "잠실엘스"},
	}))
	require.NoError(t, s.PutTrades([]apartment.Trade{{Name: "세 번째"}}))
	require.NoError(t, s.PutTrades(nil))

	var names []string
	require.NoError(t, s.EachTrade(context.Background(), func(tr apartment.Trade) error {
		names = append(names, tr.Name)
		return nil
	}))
	assert.Equal(t, []string{"은마", "잠실엘스", "세 번째"}, names)
}

func TestEachRentStopsOnCallbackError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutRents([]apartment.Rent{{Name: "a"}, {Name: "b"}, {Name: "c"}}))

	stop := errors.New("stop")
	seen := 0
	err := s.EachRent(context.Background(), func(apartment.Rent) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}

func TestRegionsAreReplaced(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutRegions([]region.Code{
		{LawAddrCode: "1168000000", Address: "서울특별시 강남구"},
		{LawAddrCode: "1100000000", Address: "서울특별시"},
	}))
	codes, err := s.Regions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []region.Code{
		{LawAddrCode: "1100000000", Address: "서울특별시"},
		{LawAddrCode: "1168000000", Address: "서울특별시 강남구"},
	}, codes, "ordered by code")

	require.NoError(t, s.PutRegions([]region.Code{{LawAddrCode: "2600000000", Address: "부산광역시"}}))
	codes, err = s.Regions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []region.Code{{LawAddrCode: "2600000000", Address: "부산광역시"}}, codes)
}

func TestSnapshots(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Snapshot("region")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutSnapshot("region", []byte("v1")))
	require.NoError(t, s.PutSnapshot("region", []byte("v2")))

	blob, err := s.Snapshot("region")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), blob)
}

func TestDeleteSnapshot(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.DeleteSnapshot("region"), "missing snapshot")
	require.NoError(t, s.PutSnapshot("region", []byte("v1")))
	require.NoError(t, s.DeleteSnapshot("region"))

	_, err := s.Snapshot("region")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCorpusWritesDropSnapshots(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Store) error
	}{
		{"trades", func(s *Store) error { return s.PutTrades([]apartment.Trade{{Name: "은마"}}) }},
		{"rents", func(s *Store) error { return s.PutRents([]apartment.Rent{{Name: "은마"}}) }},
		{"regions", func(s *Store) error {
			return s.PutRegions([]region.Code{{LawAddrCode: "1100000000", Address: "서울특별시"}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			require.NoError(t, s.PutSnapshot("region", []byte("old")))
			require.NoError(t, s.PutSnapshot("apart", []byte("old")))

			require.NoError(t, tt.write(s))

			for _, name := range []string{"region", "apart"} {
				_, err := s.Snapshot(name)
				assert.ErrorIs(t, err, ErrNotFound, name)
			}
		})
	}
}

func TestEmptyWriteKeepsSnapshots(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutSnapshot("apart", []byte("v1")))
	require.NoError(t, s.PutTrades(nil))

	blob, err := s.Snapshot("apart")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), blob)
}

func TestImportJSONL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	trades := `{"lawaddrcode_city": 11680, "lawaddrcode_dong": 10300, "name": "은마", "price": 250000, "addrcode_bld": 1}
{"lawaddrcode_city": 11680, "lawaddrcode_dong": 10300, "name": "래미안 대치팰리스", "unknown_field": true}

{"lawaddrcode_city": 11710, "lawaddrcode_dong": 10100, "name": "잠실엘스"}
`
	n, err := s.ImportTrades(ctx, strings.NewReader(trades), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var got []apartment.Trade
	require.NoError(t, s.EachTrade(ctx, func(tr apartment.Trade) error {
		got = append(got, tr)
		return nil
	}))
	require.Len(t, got, 3)
	assert.Equal(t, "1168010300", got[0].LawAddrCode())
	assert.Equal(t, 1, got[0].AddrCodeBld)

	n, err = s.ImportRents(ctx, strings.NewReader(`{"location_code": 11110, "lawaddr_dong": "사직동", "name": "광화문스페이스본"}`), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats["trades"])
	assert.Equal(t, 1, stats["rents"])
	assert.Equal(t, 0, stats["regions"])
}

func TestImportJSONLReportsBadRow(t *testing.T) {
	s := openTestStore(t)

	n, err := s.ImportRents(context.Background(), strings.NewReader(`{"name": "ok"}
{"name": 12}`), 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Equal(t, 0, n, "the pending batch is not flushed")
}
