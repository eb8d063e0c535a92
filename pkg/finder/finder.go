/*
Package finder resolves partially typed Korean names to registered records.

A Finder keeps two tries. The forward trie answers "starts with", the reverse trie, fed with
reversed paths, answers "ends with". Every tag is deposited in both tries twice: once under
its full jamo spelling and once under its chosung (lead consonant) abbreviation. One prefix
walk therefore serves full spellings, IME style initials and suffixes alike.

	f := finder.New[string]()
	f.Register([]string{"서울특별시", "11000"}, "A")
	f.Register([]string{"역삼동"}, "B")
	f.Freeze()

	f.Search("서울")   // [A]
	f.Search("삼동")   // [B], suffix
	f.Search("ㅇㅅㄷ") // [B], chosung

# Lifecycle

Register is only for the build phase and is not safe for concurrent use. Once Freeze is
called the Finder is read-only and Search may be called from any number of goroutines.
To pick up corpus changes, build a new Finder and swap it in with Live.

# Matching

Query terms are split on whitespace and combined with AND: a record matches when every
term matches at least one of its tags. A term with no match empties the result.
*/
package finder

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bastiangx/jamofind/pkg/hangul"
	"github.com/charmbracelet/log"
)

// tagSet holds every distinct tag whose decomposition ends at one trie node.
type tagSet struct {
	tags []string
}

// entry is what a Register call leaves behind for one id.
type entry[T any] struct {
	tags    []string
	payload T
}

// Finder is the tag index. Ids are dense and follow registration order.
type Finder[T any] struct {
	forward *Trie[*tagSet]
	reverse *Trie[*tagSet]
	tag2ids map[string]*roaring.Bitmap
	entries []entry[T]
	frozen  atomic.Bool
}

// New creates an empty Finder in its build phase.
func New[T any]() *Finder[T] {
	return &Finder[T]{
		forward: NewTrie[*tagSet](),
		reverse: NewTrie[*tagSet](),
		tag2ids: make(map[string]*roaring.Bitmap),
	}
}

// Register stores payload under the next id and indexes it by every non-empty tag.
// The same payload registered twice gets two ids; nothing is deduplicated.
// It returns the new id, or -1 if the Finder is frozen.
func (f *Finder[T]) Register(tags []string, payload T) int {
	if f.frozen.Load() {
		log.Warn("Register called on a frozen finder, ignoring")
		return -1
	}

	id := len(f.entries)
	kept := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		ids, seen := f.tag2ids[tag]
		if !seen {
			ids = roaring.New()
			f.tag2ids[tag] = ids
		}
		if ids.CheckedAdd(uint32(id)) {
			kept = append(kept, tag)
		}

		// A tag string seen before already sits at all four of its nodes.
		if !seen {
			f.index(tag)
		}
	}

	f.entries = append(f.entries, entry[T]{tags: kept, payload: payload})
	return id
}

// index deposits tag at its full and chosung paths in both tries.
func (f *Finder[T]) index(tag string) {
	full, chosung := hangul.Decompose(tag)

	paths := [][]rune{full}
	if !slices.Equal(full, chosung) {
		paths = append(paths, chosung)
	}

	for _, path := range paths {
		deposit(f.forward, path, tag)
		deposit(f.reverse, hangul.Reverse(path), tag)
	}
}

func deposit(t *Trie[*tagSet], path []rune, tag string) {
	if set, ok := t.Lookup(path); ok {
		set.tags = append(set.tags, tag)
		return
	}
	t.Insert(path, &tagSet{tags: []string{tag}})
}

// Freeze ends the build phase. Later Register calls are ignored.
func (f *Finder[T]) Freeze() {
	f.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (f *Finder[T]) Frozen() bool {
	return f.frozen.Load()
}

// Search splits query on whitespace and returns the payloads matching every term,
// in registration order.
func (f *Finder[T]) Search(query string) []T {
	return f.SearchTerms(strings.Fields(query))
}

// SearchTerms is Search for terms that are already split. Blank terms are dropped;
// no terms at all yields an empty result.
func (f *Finder[T]) SearchTerms(terms []string) []T {
	ids := f.Match(terms)
	if ids == nil || ids.IsEmpty() {
		return []T{}
	}

	out := make([]T, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		out = append(out, f.entries[it.Next()].payload)
	}
	return out
}

// Match returns the ids matching every term, nil when no term is usable.
// The bitmap is freshly allocated and owned by the caller.
func (f *Finder[T]) Match(terms []string) *roaring.Bitmap {
	var result *roaring.Bitmap

	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		ids := f.termIDs(term)
		if result == nil {
			result = ids
		} else {
			result.And(ids)
		}
		if result.IsEmpty() {
			return result
		}
	}
	return result
}

// termIDs collects the ids of every tag that starts or ends with term.
func (f *Finder[T]) termIDs(term string) *roaring.Bitmap {
	ids := roaring.New()

	path := classify(term)
	if len(path) == 0 {
		return ids
	}

	for _, set := range f.forward.CollectPrefix(path) {
		f.union(ids, set)
	}
	for _, set := range f.reverse.CollectPrefix(hangul.Reverse(path)) {
		f.union(ids, set)
	}
	return ids
}

func (f *Finder[T]) union(ids *roaring.Bitmap, set *tagSet) {
	for _, tag := range set.tags {
		if tagged, ok := f.tag2ids[tag]; ok {
			ids.Or(tagged)
		}
	}
}

// classify picks the path a term is searched by. Equal lengths mean the term is plain
// literal text, searched by its chosung path; anything else is searched by full jamo,
// which also reaches the chosung paths deposited at registration.
func classify(term string) []rune {
	full, chosung := hangul.Decompose(term)
	if len(chosung) == len(full) {
		return chosung
	}
	return full
}

// Len is the number of registered records.
func (f *Finder[T]) Len() int {
	return len(f.entries)
}

// Payload returns the payload registered under id.
func (f *Finder[T]) Payload(id int) (T, bool) {
	if id < 0 || id >= len(f.entries) {
		var zero T
		return zero, false
	}
	return f.entries[id].payload, true
}

// IDs returns the ids registered with exactly tag, in ascending order.
func (f *Finder[T]) IDs(tag string) []int {
	b, ok := f.tag2ids[strings.TrimSpace(tag)]
	if !ok {
		return nil
	}
	out := make([]int, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Tags returns every distinct registered tag, sorted.
func (f *Finder[T]) Tags() []string {
	tags := make([]string, 0, len(f.tag2ids))
	for tag := range f.tag2ids {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Stats returns statistics about the index.
func (f *Finder[T]) Stats() map[string]int {
	return map[string]int{
		"records":      len(f.entries),
		"tags":         len(f.tag2ids),
		"forwardNodes": f.forward.Len(),
		"reverseNodes": f.reverse.Len(),
	}
}
