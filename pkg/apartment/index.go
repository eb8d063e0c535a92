package apartment

import (
	"context"
	"strings"

	"github.com/bastiangx/jamofind/internal/utils"
	"github.com/bastiangx/jamofind/pkg/finder"
)

// IndexName labels the apartment index in logs and metrics.
const IndexName = "apart"

// Index answers complex name searches.
type Index struct {
	live *finder.Live[Address]
	n    int
}

// NewIndex creates an empty apartment index using n-grams of size n.
func NewIndex(n int, opts finder.Options) *Index {
	if n <= 0 {
		n = DefaultNGram
	}
	return &Index{live: finder.NewLive[Address](IndexName, opts), n: n}
}

// Build replaces the index with one built from corpus.
func (idx *Index) Build(ctx context.Context, corpus Corpus, regions RegionResolver) error {
	return idx.live.Rebuild(ctx, Source(corpus, regions, idx.n))
}

// Restore swaps in a Finder loaded from a snapshot.
func (idx *Index) Restore(f *finder.Finder[Address]) {
	idx.live.Swap(f)
}

// Search splits query on whitespace and searches the expanded terms.
func (idx *Index) Search(query string) []Address {
	return idx.SearchTerms(strings.Fields(query))
}

// SearchTerms expands every term that is not a plain number into its n-grams
// and returns the complexes matching all of them.
func (idx *Index) SearchTerms(terms []string) []Address {
	return idx.live.SearchTerms(idx.Expand(terms))
}

// Expand turns query terms into index terms.
func (idx *Index) Expand(terms []string) []string {
	out := make([]string, 0, len(terms)*2)
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if utils.IsOnlyNumbers(term) {
			out = append(out, term)
			continue
		}
		out = append(out, NGrams(term, idx.n)...)
	}
	return out
}

// Finder exposes the live Finder, for snapshots.
func (idx *Index) Finder() *finder.Finder[Address] {
	return idx.live.Finder()
}

// Stats returns index statistics.
func (idx *Index) Stats() map[string]int {
	return idx.live.Stats()
}
