package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/bastiangx/jamofind/pkg/apartment"
	"github.com/bastiangx/jamofind/pkg/region"
	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// ctxCheckEvery is how many rows an iteration reads between context checks.
const ctxCheckEvery = 1024

// PutTrades appends trades.
func (s *Store) PutTrades(trades []apartment.Trade) error {
	return putRows(s, tradePrefix, tradeIDSeq, trades)
}

// PutRents appends rents.
func (s *Store) PutRents(rents []apartment.Rent) error {
	return putRows(s, rentPrefix, rentIDSeq, rents)
}

func putRows[T any](s *Store, prefix, seqName string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	seq, err := s.sequence(seqName)
	if err != nil {
		return fmt.Errorf("store %s sequence: %w", prefix, err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range rows {
		id, err := seq.Next()
		if err != nil {
			return fmt.Errorf("store %s next id: %w", prefix, err)
		}
		val, err := msgpack.Marshal(&rows[i])
		if err != nil {
			return fmt.Errorf("store %s encode: %w", prefix, err)
		}
		if err := wb.Set(makeRowKey(prefix, id), val); err != nil {
			return fmt.Errorf("store %s write: %w", prefix, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	return s.dropSnapshots()
}

// EachTrade calls fn for every stored trade in insertion order.
func (s *Store) EachTrade(ctx context.Context, fn func(apartment.Trade) error) error {
	return eachRow(ctx, s, tradePrefix, fn)
}

// EachRent calls fn for every stored rent in insertion order.
func (s *Store) EachRent(ctx context.Context, fn func(apartment.Rent) error) error {
	return eachRow(ctx, s, rentPrefix, fn)
}

func eachRow[T any](ctx context.Context, s *Store, prefix string, fn func(T) error) error {
	return s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if n++; n%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			var row T
			err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &row)
			})
			if err != nil {
				return fmt.Errorf("store %s decode %x: %w", prefix, it.Item().Key(), err)
			}
			if err := fn(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutRegions replaces the stored region codes with codes.
func (s *Store) PutRegions(codes []region.Code) error {
	keep := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		keep[string(makeRegionKey(c.LawAddrCode))] = struct{}{}
	}

	var stale [][]byte
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(regionPrefix)
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if _, ok := keep[string(it.Item().Key())]; !ok {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store regions scan: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("store regions delete: %w", err)
		}
	}
	for i := range codes {
		val, err := msgpack.Marshal(&codes[i])
		if err != nil {
			return fmt.Errorf("store regions encode: %w", err)
		}
		if err := wb.Set(makeRegionKey(codes[i].LawAddrCode), val); err != nil {
			return fmt.Errorf("store regions write: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	return s.dropSnapshots()
}

// Regions returns every stored region code ordered by code.
func (s *Store) Regions(ctx context.Context) ([]region.Code, error) {
	var codes []region.Code
	err := eachRow(ctx, s, regionPrefix, func(c region.Code) error {
		codes = append(codes, c)
		return nil
	})
	return codes, err
}

// PutSnapshot stores blob under name, replacing any previous snapshot.
func (s *Store) PutSnapshot(name string, blob []byte) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(makeSnapshotKey(name), blob)
	})
}

// DeleteSnapshot removes the snapshot stored under name. A missing snapshot is not an error.
func (s *Store) DeleteSnapshot(name string) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Delete(makeSnapshotKey(name))
	})
}

// dropSnapshots removes every stored snapshot. Snapshots describe the corpus
// they were built from, so any corpus write makes them stale.
func (s *Store) dropSnapshots() error {
	var names []string
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(snapshotPrefix)
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), snapshotPrefix))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store snapshots scan: %w", err)
	}
	for _, name := range names {
		if err := s.DeleteSnapshot(name); err != nil {
			return fmt.Errorf("store drop snapshot %s: %w", name, err)
		}
		log.Debugf("Corpus changed, dropped %s snapshot", name)
	}
	return nil
}

// Snapshot returns the snapshot stored under name, or ErrNotFound.
func (s *Store) Snapshot(name string) ([]byte, error) {
	var blob []byte
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSnapshotKey(name))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, name)
	}
	return blob, err
}
