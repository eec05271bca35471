package suggest

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Corrector proposes a likely intended query for a misspelled one, scored
// against the displays currently in the index.
type Corrector struct {
	words      []string
	wordCounts map[string]int
}

// NewCorrector builds a corrector from occurrence counts keyed by
// lowercase display.
func NewCorrector(counts map[string]int) *Corrector {
	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Strings(words)

	return &Corrector{
		words:      words,
		wordCounts: counts,
	}
}

// SuggestCorrection returns the most likely correction for input, and
// whether a correction was applied. Inputs shorter than two runes and
// inputs that already exist in the index are returned unchanged.
func (c *Corrector) SuggestCorrection(input string) (string, bool) {
	if utf8.RuneCountInString(input) < 2 {
		return input, false
	}

	lowerInput := strings.ToLower(input)
	if _, ok := c.wordCounts[lowerInput]; ok {
		return lowerInput, false
	}

	matches := c.findMatches(lowerInput)

	for i := range matches {
		// occurrence bonus, capped so common words don't dominate
		if n := c.wordCounts[matches[i].word]; n > 0 {
			bonus := n * 2
			if bonus > 30 {
				bonus = 30
			}
			matches[i].score += bonus
		}
		lengthDiff := len(matches[i].word) - len(input)
		if lengthDiff < 0 {
			lengthDiff = -lengthDiff
		}
		matches[i].score -= lengthDiff * 2
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > 0 {
		return matches[0].word, true
	}
	return input, false
}

// scoring constants
const (
	firstCharMatchBonus            = 15
	adjacentMatchBonus             = 10
	separatorMatchBonus            = 12
	camelCaseMatchBonus            = 12
	unmatchedLeadingCharPenalty    = -3
	maxUnmatchedLeadingCharPenalty = -9
)

type fuzzyMatch struct {
	word           string
	score          int
	matchedIndexes []int
}

// findMatches scores every candidate whose first character agrees with the
// pattern. The first-letter heuristic keeps wildly different words out.
func (c *Corrector) findMatches(pattern string) []fuzzyMatch {
	if len(pattern) == 0 {
		return nil
	}

	var matches []fuzzyMatch
	patternRunes := []rune(pattern)

	for _, word := range c.words {
		if len(pattern) > 1 && len(word) > 0 && pattern[0] != word[0] {
			continue
		}

		match := fuzzyMatch{
			word:           word,
			matchedIndexes: make([]int, 0, len(patternRunes)),
		}

		if c.runFuzzyMatch(patternRunes, word, &match) {
			match.score += len(match.matchedIndexes) - len(word)
			matches = append(matches, match)
		}
	}

	return matches
}

// runFuzzyMatch tests if pattern matches the candidate as an in-order
// subsequence and accumulates a score. Returns true on a full match.
func (c *Corrector) runFuzzyMatch(pattern []rune, candidate string, match *fuzzyMatch) bool {
	candidateRunes := []rune(candidate)

	var last rune
	var lastIndex int
	var currAdjacentMatchBonus int
	patternIndex := 0
	bestScore := -1
	matchedIndex := -1

	for i := 0; i < len(candidateRunes); i++ {
		curr := candidateRunes[i]

		if runeEqualFold(curr, pattern[patternIndex]) {
			score := 0

			if i == 0 {
				score += firstCharMatchBonus
			}
			if i > 0 && unicode.IsLower(last) && unicode.IsUpper(curr) {
				score += camelCaseMatchBonus
			}
			if i > 0 && isSeparator(last) {
				score += separatorMatchBonus
			}

			if len(match.matchedIndexes) > 0 {
				lastMatch := match.matchedIndexes[len(match.matchedIndexes)-1]
				bonus := 0
				if lastIndex == lastMatch {
					bonus = currAdjacentMatchBonus*2 + adjacentMatchBonus
					currAdjacentMatchBonus = bonus
				} else {
					currAdjacentMatchBonus = 0
				}
				score += bonus
			}

			if score > bestScore {
				bestScore = score
				matchedIndex = i
			}

			var nextPatternRune rune
			if patternIndex < len(pattern)-1 {
				nextPatternRune = pattern[patternIndex+1]
			}
			var nextCandidateRune rune
			if i < len(candidateRunes)-1 {
				nextCandidateRune = candidateRunes[i+1]
			}

			if runeEqualFold(nextPatternRune, nextCandidateRune) || nextCandidateRune == 0 {
				if matchedIndex > -1 {
					if len(match.matchedIndexes) == 0 {
						penalty := matchedIndex * unmatchedLeadingCharPenalty
						if penalty < maxUnmatchedLeadingCharPenalty {
							penalty = maxUnmatchedLeadingCharPenalty
						}
						bestScore += penalty
					}

					match.score += bestScore
					match.matchedIndexes = append(match.matchedIndexes, matchedIndex)
					bestScore = -1
					patternIndex++
				}
			}
		}

		last = curr
		lastIndex = i

		if patternIndex >= len(pattern) {
			return true
		}
	}

	return patternIndex >= len(pattern)
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/'
}

func runeEqualFold(a, b rune) bool {
	if a == b {
		return true
	}
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}
	return strings.EqualFold(string(a), string(b))
}
