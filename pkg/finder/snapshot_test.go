package finder

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type regionPayload struct {
	Code    string `msgpack:"code"`
	Address string `msgpack:"address"`
}

func TestSnapshotRestoresSearchBehaviour(t *testing.T) {
	f := New[regionPayload]()
	f.Register([]string{"서울특별시", "서울시", "1100000000"}, regionPayload{"1100000000", "서울특별시"})
	f.Register([]string{"서울특별시", "강남구", "1168000000"}, regionPayload{"1168000000", "서울특별시 강남구"})
	f.Register(nil, regionPayload{"0", "untagged"})
	f.Register([]string{"중구", " 중구 "}, regionPayload{"1114000000", "서울특별시 중구"})
	f.Freeze()

	var buf bytes.Buffer
	require.NoError(t, f.Export(&buf))

	restored, err := Import[regionPayload](&buf)
	require.NoError(t, err)
	assert.True(t, restored.Frozen())
	assert.Equal(t, f.Stats(), restored.Stats())

	for _, q := range []string{"서울", "강남", "ㅅㅇㅌㅂㅅ", "11", "별시", "중구", "서울 강남"} {
		assert.Equal(t, f.Search(q), restored.Search(q), "query %q", q)
	}

	p, ok := restored.Payload(2)
	require.True(t, ok)
	assert.Equal(t, "untagged", p.Address, "ids keep their position")
}

func TestSnapshotEmptyFinder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New[string]().Export(&buf))

	restored, err := Import[string](&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Len())
}

func TestSnapshotRejectsGarbage(t *testing.T) {
	_, err := Import[string](bytes.NewReader([]byte("definitely not zstd")))
	assert.Error(t, err)
}

func TestSnapshotRejectsWrongMagicAndVersion(t *testing.T) {
	encode := func(h snapshotHeader) *bytes.Buffer {
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		require.NoError(t, msgpack.NewEncoder(zw).Encode(&h))
		require.NoError(t, zw.Close())
		return &buf
	}

	_, err := Import[string](encode(snapshotHeader{Magic: "other", Version: snapshotVersion}))
	assert.ErrorIs(t, err, ErrSnapshotFormat)

	_, err = Import[string](encode(snapshotHeader{Magic: snapshotMagic, Version: snapshotVersion + 1}))
	assert.ErrorIs(t, err, ErrSnapshotVersion)

	_, err = Import[string](encode(snapshotHeader{Magic: snapshotMagic, Version: snapshotVersion, Count: 3}))
	assert.Error(t, err, "truncated record stream")
}
