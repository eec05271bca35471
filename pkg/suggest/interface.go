// Package suggest is the core, matching partial user queries against the
// active index snapshot and ranking the candidates.
package suggest

import "github.com/snipserve/snipserve/pkg/source"

// Suggestion is one ranked match for a query.
type Suggestion struct {
	Display string
	Insert  string
	Kind    source.Kind

	// set when the result came from a fuzzy-corrected retry
	WasCorrected   bool
	OriginalQuery  string
	CorrectedQuery string
}

// IMatcher defines the interface for suggestion match engines
type IMatcher interface {
	// Match returns ranked suggestions for a query, truncated to limit
	Match(query string, limit int) []Suggestion

	// Stats returns statistics about the active index
	Stats() map[string]int
}
