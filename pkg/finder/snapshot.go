package finder

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	snapshotMagic   = "jamofind"
	snapshotVersion = 1
)

var (
	// ErrSnapshotFormat is returned for blobs that are not Finder snapshots.
	ErrSnapshotFormat = errors.New("not a finder snapshot")
	// ErrSnapshotVersion is returned for snapshots written by an incompatible version.
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)

type snapshotHeader struct {
	Magic   string `msgpack:"m"`
	Version int    `msgpack:"v"`
	Count   int    `msgpack:"n"`
}

type snapshotRecord[T any] struct {
	ID      int      `msgpack:"i"`
	Tags    []string `msgpack:"t"`
	Payload T        `msgpack:"p"`
}

// Export writes the registration log of f as a zstd-compressed msgpack stream.
// Only what Register was given is stored; tries are rebuilt on Import.
func (f *Finder[T]) Export(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	enc := msgpack.NewEncoder(zw)
	header := snapshotHeader{Magic: snapshotMagic, Version: snapshotVersion, Count: len(f.entries)}
	if err := enc.Encode(&header); err != nil {
		zw.Close()
		return fmt.Errorf("snapshot header: %w", err)
	}

	for id, e := range f.entries {
		rec := snapshotRecord[T]{ID: id, Tags: e.tags, Payload: e.payload}
		if err := enc.Encode(&rec); err != nil {
			zw.Close()
			return fmt.Errorf("snapshot record %d: %w", id, err)
		}
	}
	return zw.Close()
}

// Import replays a snapshot written by Export into a new frozen Finder.
func Import[T any](r io.Reader) (*Finder[T], error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer zr.Close()

	dec := msgpack.NewDecoder(zr)

	var header snapshotHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotFormat, err)
	}
	if header.Magic != snapshotMagic {
		return nil, ErrSnapshotFormat
	}
	if header.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, header.Version)
	}

	f := New[T]()
	for i := 0; i < header.Count; i++ {
		var rec snapshotRecord[T]
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("snapshot record %d: %w", i, err)
		}
		if rec.ID != i {
			return nil, fmt.Errorf("%w: record %d out of order (got id %d)", ErrSnapshotFormat, i, rec.ID)
		}
		f.Register(rec.Tags, rec.Payload)
	}
	f.Freeze()
	return f, nil
}
