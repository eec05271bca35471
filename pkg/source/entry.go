// Package source loads suggestion entries from a data directory and from
// captured OCR text. Files are classified once by name pattern into a Kind
// and parsed by a per-kind parser; a file that fails to parse is skipped
// without touching entries from other files.
package source

import (
	"path/filepath"
	"strings"
)

// Kind classifies where an entry came from and how it should be inserted.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindWord entries are single words or short phrases tokenized from
	// plain text files or OCR captures.
	KindWord
	// KindLine entries are whole lines from *_line.txt files.
	KindLine
	// KindTemplate entries are multi-line blocks from *_separator.txt files;
	// the display is the block's first line, the insert is the full block.
	KindTemplate
	// KindReplacement entries are exact-match key substitutions from
	// *_replace.txt files.
	KindReplacement
	// KindDelimited entries are individual fields from .tsv/.csv files.
	KindDelimited
)

// String returns the wire/log name of the kind.
func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindLine:
		return "line"
	case KindTemplate:
		return "template"
	case KindReplacement:
		return "replacement"
	case KindDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// Entry is one suggestable unit of text. Display is what the user sees and
// matches against; Insert is what gets typed into the target application.
// Display is never empty; Insert defaults to Display unless the format
// overrides it (templates, replacements).
type Entry struct {
	Display string
	Insert  string
	Kind    Kind
}

// Classify resolves a file's Kind from its name. The suffix patterns take
// priority over the bare extension so "snippets_replace.txt" never falls
// through to the word tokenizer.
func Classify(filename string) Kind {
	base := strings.ToLower(filepath.Base(filename))

	switch {
	case strings.HasSuffix(base, "_line.txt"):
		return KindLine
	case strings.HasSuffix(base, "_separator.txt"):
		return KindTemplate
	case strings.HasSuffix(base, "_replace.txt"):
		return KindReplacement
	}

	switch filepath.Ext(base) {
	case ".tsv", ".csv":
		return KindDelimited
	case ".txt":
		return KindWord
	}
	return KindUnknown
}
