package finder

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheSize     = 4096
	defaultProgressEvery = 10000
)

// Source feeds (tags, payload) pairs to register until the corpus is exhausted.
type Source[T any] func(ctx context.Context, register func(tags []string, payload T)) error

// Observer captures telemetry for searches and rebuilds.
type Observer interface {
	ObserveSearch(index string, duration time.Duration, results int)
	ObserveBuild(index string, duration time.Duration, records int, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveSearch(string, time.Duration, int) {}

func (nopObserver) ObserveBuild(string, time.Duration, int, error) {}

// Options tune a Live index.
type Options struct {
	// CacheSize bounds the per-generation query cache. Negative disables caching.
	CacheSize int
	// ProgressEvery logs rebuild progress after this many records.
	ProgressEvery int
	Observer      Observer
}

// generation is one frozen Finder plus the cache of answers it produced.
// Both are replaced together so a cached answer never outlives its index.
type generation[T any] struct {
	finder *Finder[T]
	cache  *lru.Cache[string, []T]
}

// Live serves searches from the current frozen Finder and swaps in rebuilt ones atomically.
// Search is safe for concurrent use at all times, including during a rebuild.
type Live[T any] struct {
	name          string
	current       atomic.Pointer[generation[T]]
	cacheSize     int
	progressEvery int
	observer      Observer
	rebuildMu     sync.Mutex
}

// NewLive creates a Live index named name holding an empty frozen Finder.
func NewLive[T any](name string, opts Options) *Live[T] {
	if opts.CacheSize == 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = defaultProgressEvery
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	l := &Live[T]{
		name:          name,
		cacheSize:     opts.CacheSize,
		progressEvery: opts.ProgressEvery,
		observer:      opts.Observer,
	}
	empty := New[T]()
	empty.Freeze()
	l.Swap(empty)
	return l
}

// Name returns the index name used in logs and metrics.
func (l *Live[T]) Name() string {
	return l.name
}

// Swap freezes f and makes it the index every later search sees.
func (l *Live[T]) Swap(f *Finder[T]) {
	f.Freeze()
	gen := &generation[T]{finder: f}
	if l.cacheSize > 0 {
		// lru.New only errors on non-positive size which we guard above.
		gen.cache, _ = lru.New[string, []T](l.cacheSize)
	}
	l.current.Store(gen)
}

// Finder returns the current frozen Finder.
func (l *Live[T]) Finder() *Finder[T] {
	return l.current.Load().finder
}

// Rebuild builds a new Finder from src and swaps it in when src is exhausted.
// On error or cancellation the current index stays in place.
// Only one rebuild runs at a time; concurrent calls wait their turn.
func (l *Live[T]) Rebuild(ctx context.Context, src Source[T]) error {
	l.rebuildMu.Lock()
	defer l.rebuildMu.Unlock()

	start := time.Now()
	f := New[T]()
	var cancelled error

	register := func(tags []string, payload T) {
		if cancelled != nil {
			return
		}
		f.Register(tags, payload)
		if n := f.Len(); n%l.progressEvery == 0 {
			log.Infof("%s: registered %s records", l.name, humanize.Comma(int64(n)))
			cancelled = ctx.Err()
		}
	}

	err := src(ctx, register)
	if err == nil {
		err = cancelled
	}
	if err == nil {
		err = ctx.Err()
	}
	l.observer.ObserveBuild(l.name, time.Since(start), f.Len(), err)
	if err != nil {
		return fmt.Errorf("rebuild %s: %w", l.name, err)
	}

	l.Swap(f)
	log.Infof("%s: index ready, %s records in %v", l.name, humanize.Comma(int64(f.Len())), time.Since(start).Round(time.Millisecond))
	return nil
}

// Search runs Finder.Search against the current index.
func (l *Live[T]) Search(query string) []T {
	return l.SearchTerms(strings.Fields(query))
}

// SearchTerms runs Finder.SearchTerms against the current index, answering repeated
// queries from the cache. The returned slice belongs to the caller.
func (l *Live[T]) SearchTerms(terms []string) []T {
	start := time.Now()
	gen := l.current.Load()

	cacheKey := normalizeTerms(terms)
	if gen.cache != nil {
		if cached, ok := gen.cache.Get(cacheKey); ok {
			l.observer.ObserveSearch(l.name, time.Since(start), len(cached))
			return slices.Clone(cached)
		}
	}

	results := gen.finder.SearchTerms(terms)
	if gen.cache != nil {
		gen.cache.Add(cacheKey, slices.Clone(results))
	}
	l.observer.ObserveSearch(l.name, time.Since(start), len(results))
	return results
}

// Stats merges index statistics with cache occupancy.
func (l *Live[T]) Stats() map[string]int {
	gen := l.current.Load()
	stats := gen.finder.Stats()
	if gen.cache != nil {
		stats["cachedQueries"] = gen.cache.Len()
		stats["maxCachedQueries"] = l.cacheSize
	}
	return stats
}

func normalizeTerms(terms []string) string {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, "\x00")
}
