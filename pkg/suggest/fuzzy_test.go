package suggest

import (
	"testing"
)

// Tests the corrector's expected preferences.
//
// IMPORTANT to know:
// preference: `exact match > most frequent word > closest spelling`
// The corrector only proposes words the typed query is an in-order
// subsequence of, so extra typed characters never correct.
func TestSuggestCorrection(t *testing.T) {
	dictionary := map[string]int{
		"apple":   100,
		"banana":  90,
		"apricot": 80,

		"meeting": 20,
		"melting": 1,
	}

	corrector := NewCorrector(dictionary)

	testCases := []struct {
		input          string
		expectedOutput string
		corrected      bool
		description    string
	}{
		// exact matches pass through untouched
		{"apple", "apple", false, "Exact match"},
		{"Apple", "apple", false, "Case insensitive exact match"},

		// dropped characters
		{"appl", "apple", true, "Missing character at end"},
		{"aple", "apple", true, "Missing character in middle"},
		{"apct", "apricot", true, "Several missing characters"},

		{"meting", "meeting", true, "Doubled letter collapsed"},

		// nothing plausible
		{"zzz", "zzz", false, "No candidate shares the first letter"},
		{"applez", "applez", false, "Extra trailing character"},

		// too short to correct
		{"a", "a", false, "Single character input"},
	}

	for _, tc := range testCases {
		output, corrected := corrector.SuggestCorrection(tc.input)
		if output != tc.expectedOutput {
			t.Errorf("%s: SuggestCorrection(%q) = %q, want %q",
				tc.description, tc.input, output, tc.expectedOutput)
		}
		if corrected != tc.corrected {
			t.Errorf("%s: SuggestCorrection(%q) corrected = %v, want %v",
				tc.description, tc.input, corrected, tc.corrected)
		}
	}
}

func TestCorrectorEmptyDictionary(t *testing.T) {
	corrector := NewCorrector(map[string]int{})

	output, corrected := corrector.SuggestCorrection("anything")
	if output != "anything" || corrected {
		t.Errorf("empty dictionary must never correct, got (%q, %v)", output, corrected)
	}
}
