package suggest

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/utils"
	"github.com/snipserve/snipserve/pkg/index"
)

// minFuzzyQueryLen guards the corrector against very short queries where
// nearly everything is one edit away.
const minFuzzyQueryLen = 3

// Options control ranking and fallback behavior.
type Options struct {
	// PrefixFirst ranks prefix matches ahead of interior substring matches.
	PrefixFirst bool
	// EmptyQueryDefaults makes an empty query return the first entries in
	// load order instead of nothing.
	EmptyQueryDefaults bool
	// FuzzyFallback retries a corrected query when nothing matched.
	FuzzyFallback bool
}

// DefaultOptions returns the documented default behavior.
func DefaultOptions() Options {
	return Options{
		PrefixFirst:        true,
		EmptyQueryDefaults: false,
		FuzzyFallback:      true,
	}
}

// Matcher answers queries against whatever snapshot the index currently
// holds. It keeps no state of its own, so a rebuilt index is picked up by
// the very next call.
type Matcher struct {
	idx  *index.Index
	opts Options
}

// NewMatcher creates a matcher over the given index.
func NewMatcher(idx *index.Index, opts Options) *Matcher {
	return &Matcher{idx: idx, opts: opts}
}

type candidate struct {
	pos      int
	isPrefix bool
}

// Match returns ranked suggestions for the query, truncated to limit.
//
// An exact replacement key short-circuits everything and returns that rule
// as the sole result. Otherwise displays are matched case-insensitively,
// prefix candidates come from the snapshot trie, interior candidates from
// a scan, and ties go to the shorter display first, then to source load
// order. Reserved command strings (/reload, /exit) are the caller's
// concern; they never reach this layer with meaning.
func (m *Matcher) Match(query string, limit int) []Suggestion {
	snap := m.idx.Snapshot()

	if query == "" {
		if !m.opts.EmptyQueryDefaults {
			return nil
		}
		return defaults(snap, limit)
	}

	if rule, ok := snap.Replacement(query); ok {
		return []Suggestion{{Display: rule.Display, Insert: rule.Insert, Kind: rule.Kind}}
	}

	results := m.collect(snap, query, limit)

	if len(results) == 0 && m.opts.FuzzyFallback && utf8.RuneCountInString(query) >= minFuzzyQueryLen {
		corrector := NewCorrector(snap.WordCounts())
		corrected, wasFixed := corrector.SuggestCorrection(strings.ToLower(query))
		if wasFixed {
			log.Debugf("Query %q corrected to %q", query, corrected)
			results = m.collect(snap, corrected, limit)
			for i := range results {
				results[i].WasCorrected = true
				results[i].OriginalQuery = query
				results[i].CorrectedQuery = corrected
			}
		}
	}

	return results
}

// collect gathers, ranks and truncates candidates for a non-empty query.
func (m *Matcher) collect(snap *index.Snapshot, query string, limit int) []Suggestion {
	lowerQuery := strings.ToLower(query)
	entries := snap.Entries()

	seen := make(map[int]bool)
	var cands []candidate

	snap.VisitPrefix(lowerQuery, func(pos int) {
		if seen[pos] {
			return
		}
		seen[pos] = true
		cands = append(cands, candidate{pos: pos, isPrefix: true})
	})

	for pos := range entries {
		if seen[pos] {
			continue
		}
		if utils.StringContainsIgnoreCase(entries[pos].Display, lowerQuery) {
			seen[pos] = true
			cands = append(cands, candidate{pos: pos})
		}
	}

	prefixFirst := m.opts.PrefixFirst
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if prefixFirst && a.isPrefix != b.isPrefix {
			return a.isPrefix
		}
		da, db := entries[a.pos].Display, entries[b.pos].Display
		if len(da) != len(db) {
			return len(da) < len(db)
		}
		return a.pos < b.pos
	})

	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}

	results := make([]Suggestion, len(cands))
	for i, c := range cands {
		e := entries[c.pos]
		results[i] = Suggestion{Display: e.Display, Insert: e.Insert, Kind: e.Kind}
	}
	return results
}

// defaults returns the head of the index in load order, for front-ends that
// want something on screen before the first keystroke.
func defaults(snap *index.Snapshot, limit int) []Suggestion {
	entries := snap.Entries()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	results := make([]Suggestion, len(entries))
	for i, e := range entries {
		results[i] = Suggestion{Display: e.Display, Insert: e.Insert, Kind: e.Kind}
	}
	return results
}

// Stats reports counters from the underlying index.
func (m *Matcher) Stats() map[string]int {
	return m.idx.Stats()
}

var _ IMatcher = (*Matcher)(nil)
