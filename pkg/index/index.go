// Package index holds the active suggestion set. Every rebuild produces a
// complete immutable Snapshot which is installed with a single atomic
// pointer swap, so readers never observe a partially built index.
package index

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/snipserve/snipserve/pkg/source"
)

// Snapshot is one immutable, fully built suggestion set. Entry positions
// double as load-order ranks for tie-breaking in the matcher.
type Snapshot struct {
	entries      []source.Entry
	trie         *patricia.Trie // lowercase display -> []int entry positions
	replacements map[string]int // replacement key -> entry position
	wordCounts   map[string]int // lowercase display -> occurrences
}

// Entries returns all entries in load order. Callers must not mutate.
func (s *Snapshot) Entries() []source.Entry {
	return s.entries
}

// Len reports the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Replacement looks up an exact replacement rule for the query.
// Key comparison is case-sensitive: a rule fires only when the user typed
// the key exactly. The last-loaded rule wins for a duplicated key.
func (s *Snapshot) Replacement(query string) (source.Entry, bool) {
	pos, ok := s.replacements[query]
	if !ok {
		return source.Entry{}, false
	}
	return s.entries[pos], true
}

// VisitPrefix calls fn with the position of every entry whose lowercase
// display starts with lowerPrefix.
func (s *Snapshot) VisitPrefix(lowerPrefix string, fn func(pos int)) {
	err := s.trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		positions, ok := item.([]int)
		if !ok {
			log.Errorf("Unknown item type: %T for prefix %s", item, p)
			return nil
		}
		for _, pos := range positions {
			fn(pos)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}
}

// WordCounts returns occurrence counts keyed by lowercase display.
// The fuzzy corrector uses these as a frequency signal.
func (s *Snapshot) WordCounts() map[string]int {
	return s.wordCounts
}

// Index owns the current snapshot plus the two source sets it is built
// from: durable file entries and the transient entries scanned out of the
// most recent OCR capture. Rebuilds are serialized; reads are lock-free.
type Index struct {
	current atomic.Pointer[Snapshot]

	mu        sync.Mutex
	files     []source.Entry
	transient []source.Entry
}

// New returns an index with an empty snapshot already installed.
func New() *Index {
	ix := &Index{}
	ix.current.Store(build(nil))
	return ix
}

// Snapshot returns the currently installed snapshot.
func (ix *Index) Snapshot() *Snapshot {
	return ix.current.Load()
}

// Rebuild replaces the durable file entries wholesale and installs a fresh
// snapshot. The previous snapshot stays valid for readers that already
// hold it.
func (ix *Index) Rebuild(files []source.Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.files = files
	ix.swap()
}

// Ingest replaces the transient OCR-derived entries and installs a fresh
// snapshot. File entries are untouched.
func (ix *Index) Ingest(transient []source.Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.transient = transient
	ix.swap()
}

// Clear drops both source sets and installs an empty snapshot.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.files = nil
	ix.transient = nil
	ix.swap()
}

func (ix *Index) swap() {
	entries := make([]source.Entry, 0, len(ix.files)+len(ix.transient))
	entries = append(entries, ix.files...)
	entries = append(entries, ix.transient...)

	snap := build(entries)
	ix.current.Store(snap)
	log.Debugf("Index snapshot installed: %d entries (%d file, %d transient)",
		snap.Len(), len(ix.files), len(ix.transient))
}

// Stats returns counters about the current snapshot.
func (ix *Index) Stats() map[string]int {
	ix.mu.Lock()
	files, transient := len(ix.files), len(ix.transient)
	ix.mu.Unlock()

	snap := ix.Snapshot()
	return map[string]int{
		"totalEntries":     snap.Len(),
		"fileEntries":      files,
		"transientEntries": transient,
		"replacementRules": len(snap.replacements),
	}
}

// build constructs a snapshot from entries already in load order.
// Entries with an empty display are dropped here, which keeps the
// "display is never empty" invariant in one place.
func build(entries []source.Entry) *Snapshot {
	snap := &Snapshot{
		trie:         patricia.NewTrie(),
		replacements: make(map[string]int),
		wordCounts:   make(map[string]int),
	}

	for _, e := range entries {
		if e.Display == "" {
			continue
		}
		if e.Insert == "" {
			e.Insert = e.Display
		}
		pos := len(snap.entries)
		snap.entries = append(snap.entries, e)

		lower := strings.ToLower(e.Display)
		key := patricia.Prefix(lower)
		if item := snap.trie.Get(key); item != nil {
			snap.trie.Set(key, append(item.([]int), pos))
		} else {
			snap.trie.Set(key, []int{pos})
		}
		snap.wordCounts[lower]++

		if e.Kind == source.KindReplacement {
			snap.replacements[e.Display] = pos
		}
	}
	return snap
}
