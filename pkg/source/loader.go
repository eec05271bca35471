package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/utils"
)

// Loader reads suggestion files from a single data directory.
type Loader struct {
	dirPath string
}

// NewLoader creates a loader for the given data directory.
func NewLoader(dirPath string) *Loader {
	return &Loader{dirPath: dirPath}
}

// Dir returns the directory this loader reads from.
func (l *Loader) Dir() string {
	return l.dirPath
}

// LoadAll enumerates the data directory and parses every recognized file.
// Files are visited in name order so entry load order is stable across
// reloads. A file that cannot be decoded or parsed is logged and skipped;
// its entries never partially land in the result.
func (l *Loader) LoadAll() ([]Entry, error) {
	dirEntries, err := os.ReadDir(l.dirPath)
	if err != nil {
		return nil, fmt.Errorf("reading data directory %s: %w", l.dirPath, err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	var entries []Entry
	for _, name := range names {
		path := filepath.Join(l.dirPath, name)
		kind := Classify(name)
		if kind == KindUnknown {
			log.Debugf("Skipping unrecognized file: %s", name)
			continue
		}

		fileEntries, err := ParseFile(path, kind)
		if err != nil {
			log.Warnf("Skipping %s: %v", name, err)
			continue
		}
		entries = append(entries, fileEntries...)
		log.Debugf("Loaded %d entries from %s (%s)", len(fileEntries), name, kind)
	}
	return entries, nil
}

// ParseFile parses a single file with the parser for the given kind.
func ParseFile(path string, kind Kind) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8")
	}
	content := string(data)

	switch kind {
	case KindLine:
		return parseLines(content), nil
	case KindTemplate:
		return parseTemplates(content), nil
	case KindReplacement:
		return parseReplacements(content)
	case KindDelimited:
		return parseDelimited(content, delimiterFor(path))
	case KindWord:
		return ScanText(content), nil
	}
	return nil, fmt.Errorf("no parser for kind %s", kind)
}

func delimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// parseLines turns each non-empty line into one entry with insert == display.
func parseLines(content string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, Entry{Display: line, Insert: line, Kind: KindLine})
	}
	return entries
}

// parseTemplates splits the content on the literal "||" block delimiter.
// Each block keeps its full text as the insert value; only its first line
// is shown as the display.
func parseTemplates(content string) []Entry {
	var entries []Entry
	for _, block := range strings.Split(content, "||") {
		block = strings.Trim(block, "\r\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		display := strings.TrimSpace(utils.FirstLine(block))
		if display == "" {
			continue
		}
		entries = append(entries, Entry{Display: display, Insert: block, Kind: KindTemplate})
	}
	return entries
}

// parseReplacements reads one "key|replacement" rule per line. Only the
// replacement field carries the escaping rule: a doubled "||" stands for a
// literal pipe character.
func parseReplacements(content string) ([]Entry, error) {
	var entries []Entry
	for n, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, rest, found := strings.Cut(line, "|")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("line %d: expected key|replacement, got %q", n+1, line)
		}
		replacement := strings.ReplaceAll(rest, "||", "|")
		entries = append(entries, Entry{Display: key, Insert: replacement, Kind: KindReplacement})
	}
	return entries, nil
}

// parseDelimited splits records on the delimiter; every non-empty field
// becomes its own independent entry.
func parseDelimited(content string, delim rune) ([]Entry, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing delimited content: %w", err)
	}

	var entries []Entry
	for _, record := range records {
		for _, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			entries = append(entries, Entry{Display: field, Insert: field, Kind: KindDelimited})
		}
	}
	return entries, nil
}
