package finder

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Trie is a prefix tree over symbol paths with one value per terminal node.
//
// Paths are keyed by their UTF-8 encoding. UTF-8 never lets one complete rune be a byte
// prefix of another, so a byte-prefix walk in the patricia trie is exactly a symbol-prefix
// walk. Reads never mutate the tree and are safe to run concurrently once inserts stop.
type Trie[T any] struct {
	root *patricia.Trie
	size int
}

// NewTrie creates an empty trie.
func NewTrie[T any]() *Trie[T] {
	return &Trie[T]{root: patricia.NewTrie()}
}

// Insert makes path terminal and sets its value, replacing any previous one.
// The empty path is never terminal, so inserting it does nothing.
func (t *Trie[T]) Insert(path []rune, data T) {
	if len(path) == 0 {
		return
	}
	k := key(path)
	if t.root.Insert(k, data) {
		t.size++
		return
	}
	t.root.Set(k, data)
}

// Lookup returns the value stored at exactly path.
func (t *Trie[T]) Lookup(path []rune) (T, bool) {
	var zero T
	if len(path) == 0 {
		return zero, false
	}
	item := t.root.Get(key(path))
	if item == nil {
		return zero, false
	}
	data, ok := item.(T)
	return data, ok
}

// CollectPrefix returns the values of every terminal at or below prefix.
// The order is unspecified. An absent prefix yields nil.
func (t *Trie[T]) CollectPrefix(prefix []rune) []T {
	var out []T
	err := t.root.VisitSubtree(key(prefix), func(p patricia.Prefix, item patricia.Item) error {
		if data, ok := item.(T); ok {
			out = append(out, data)
		} else {
			log.Errorf("Unknown item type: %T at %q", item, string(p))
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}
	return out
}

// Len is the number of terminal nodes.
func (t *Trie[T]) Len() int {
	return t.size
}

func key(path []rune) patricia.Prefix {
	return patricia.Prefix(string(path))
}
