/*
Package store persists the raw corpus and index snapshots in BadgerDB.

Trade and rent rows are append-only and keyed by a sequence number, region codes
are keyed by their code and replaced as a whole, and snapshots are opaque blobs
keyed by index name. Values are msgpack encoded.
*/
package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const defaultSequenceBandwidth = 1000

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps a BadgerDB instance.
type Store struct {
	db *badger.DB

	seqMu sync.Mutex
	seqs  map[string]*badger.Sequence
}

// badgerLogger routes badger's logging through charm log. Badger's info output
// is demoted to debug.
type badgerLogger struct{}

var _ badger.Logger = badgerLogger{}

func (badgerLogger) Errorf(msg string, items ...any) {
	log.Errorf("badger: "+strings.TrimSpace(msg), items...)
}

func (badgerLogger) Warningf(msg string, items ...any) {
	log.Warnf("badger: "+strings.TrimSpace(msg), items...)
}

func (badgerLogger) Infof(msg string, items ...any) {
	log.Debugf("badger: "+strings.TrimSpace(msg), items...)
}

func (badgerLogger) Debugf(msg string, items ...any) {
	log.Debugf("badger: "+strings.TrimSpace(msg), items...)
}

// Open opens the store at path, creating the directory if needed.
// With inMemory set, path is ignored and nothing touches disk.
func Open(path string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("store: %s is not a directory", path)
		}
		opts = badger.DefaultOptions(path)
	}

	opts.Logger = badgerLogger{}
	// snapshot blobs are zstd already, corpus rows are small
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{db: db, seqs: make(map[string]*badger.Sequence)}, nil
}

// Close releases the id sequences and closes the database.
func (s *Store) Close() error {
	s.seqMu.Lock()
	for name, seq := range s.seqs {
		if err := seq.Release(); err != nil {
			log.Warnf("Failed to release sequence %s: %v", name, err)
		}
	}
	s.seqs = nil
	s.seqMu.Unlock()
	return s.db.Close()
}

// sequence returns the id sequence named name, opening it on first use.
func (s *Store) sequence(name string) (*badger.Sequence, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	if seq, ok := s.seqs[name]; ok {
		return seq, nil
	}
	seq, err := s.db.GetSequence([]byte(name), defaultSequenceBandwidth)
	if err != nil {
		return nil, err
	}
	s.seqs[name] = seq
	return seq, nil
}

// count returns the number of keys under prefix.
func (s *Store) count(prefix string) (int, error) {
	n := 0
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Stats returns the number of stored rows per kind.
func (s *Store) Stats() (map[string]int, error) {
	stats := make(map[string]int, 4)
	for name, prefix := range map[string]string{
		"trades":    tradePrefix,
		"rents":     rentPrefix,
		"regions":   regionPrefix,
		"snapshots": snapshotPrefix,
	} {
		n, err := s.count(prefix)
		if err != nil {
			return nil, fmt.Errorf("store stats: %w", err)
		}
		stats[name] = n
	}
	return stats, nil
}
