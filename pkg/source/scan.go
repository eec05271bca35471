package source

import (
	"regexp"
	"strings"
)

var (
	wordRe  = regexp.MustCompile(`\b\w+\b`)
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	urlRe   = regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+(?:/[-\w%!./?=&+#~:;]*)*`)

	// bare TLDs are noise as standalone suggestions
	commonTLDs = map[string]bool{
		"com": true, "org": true, "net": true, "edu": true, "gov": true, "io": true,
	}

	usernameSepRe = regexp.MustCompile(`[._-]`)
)

const (
	minTokenPartLen = 3
	maxPhraseWords  = 4
)

// ScanText tokenizes free-form text (plain word files, OCR captures) into
// Word entries: individual words, e-mail addresses with their username and
// domain components, URLs, and 2 to 4 word phrases. Duplicates are dropped
// while preserving first-seen order, so scan priority doubles as load order.
func ScanText(content string) []Entry {
	seen := make(map[string]bool)
	var entries []Entry

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		entries = append(entries, Entry{Display: s, Insert: s, Kind: KindWord})
	}

	for _, word := range wordRe.FindAllString(content, -1) {
		add(word)
	}

	for _, email := range emailRe.FindAllString(content, -1) {
		add(email)
		username, domain, ok := strings.Cut(email, "@")
		if !ok {
			continue
		}
		add(username)
		for _, part := range usernameSepRe.Split(username, -1) {
			if len(part) >= minTokenPartLen {
				add(part)
			}
		}
		add(domain)
		for _, part := range strings.Split(domain, ".") {
			if len(part) >= minTokenPartLen && !commonTLDs[strings.ToLower(part)] {
				add(part)
			}
		}
	}

	for _, url := range urlRe.FindAllString(content, -1) {
		add(strings.TrimRight(url, `.,;:'"`))
	}

	words := strings.Fields(content)
	for i := range words {
		for n := 2; n <= maxPhraseWords && i+n <= len(words); n++ {
			add(strings.Join(words[i:i+n], " "))
		}
	}

	return entries
}
