package region

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/bastiangx/jamofind/pkg/finder"
)

// IndexName labels the region index in logs and metrics.
const IndexName = "region"

// Index answers address searches and code-prefix lookups over the current region corpus.
type Index struct {
	live *finder.Live[Code]
	// sorted by LawAddrCode, replaced right after each successful rebuild
	byCode atomic.Pointer[[]Code]
}

// NewIndex creates an empty region index.
func NewIndex(opts finder.Options) *Index {
	idx := &Index{live: finder.NewLive[Code](IndexName, opts)}
	idx.byCode.Store(&[]Code{})
	return idx
}

// Build replaces the index with one built from codes.
func (idx *Index) Build(ctx context.Context, codes []Code) error {
	err := idx.live.Rebuild(ctx, func(ctx context.Context, register func([]string, Code)) error {
		for _, c := range codes {
			if err := ctx.Err(); err != nil {
				return err
			}
			register(Tags(c), c)
		}
		return nil
	})
	if err != nil {
		return err
	}
	idx.storeSorted(codes)
	return nil
}

// Restore swaps in a Finder loaded from a snapshot.
func (idx *Index) Restore(f *finder.Finder[Code]) {
	codes := make([]Code, 0, f.Len())
	for id := 0; id < f.Len(); id++ {
		c, _ := f.Payload(id)
		codes = append(codes, c)
	}
	idx.live.Swap(f)
	idx.storeSorted(codes)
}

func (idx *Index) storeSorted(codes []Code) {
	sorted := slices.Clone(codes)
	slices.SortStableFunc(sorted, func(a, b Code) int {
		return strings.Compare(a.LawAddrCode, b.LawAddrCode)
	})
	idx.byCode.Store(&sorted)
}

// Search returns the codes matching every whitespace separated term of query.
func (idx *Index) Search(query string) []Code {
	return idx.live.Search(query)
}

// SearchTerms is Search for terms that are already split.
func (idx *Index) SearchTerms(terms []string) []Code {
	return idx.live.SearchTerms(terms)
}

// First returns the first match of terms, used to resolve a (city code, dong) pair.
func (idx *Index) First(terms []string) (Code, bool) {
	res := idx.live.SearchTerms(terms)
	if len(res) == 0 {
		return Code{}, false
	}
	return res[0], true
}

// Decode returns every code starting with prefix, ordered by code.
// An empty prefix matches nothing.
func (idx *Index) Decode(prefix string) []Code {
	prefix = strings.TrimSpace(prefix)
	out := []Code{}
	if prefix == "" {
		return out
	}

	codes := *idx.byCode.Load()
	i, _ := slices.BinarySearchFunc(codes, prefix, func(c Code, p string) int {
		return strings.Compare(c.LawAddrCode, p)
	})
	for ; i < len(codes) && strings.HasPrefix(codes[i].LawAddrCode, prefix); i++ {
		out = append(out, codes[i])
	}
	return out
}

// Finder exposes the live Finder, for snapshots.
func (idx *Index) Finder() *finder.Finder[Code] {
	return idx.live.Finder()
}

// Stats returns index statistics.
func (idx *Index) Stats() map[string]int {
	return idx.live.Stats()
}
