package parse

import (
	"strings"

	"github.com/queryforce/soqlkit/pkg/token"
)

// SuggestKeyword checks if the input looks like a misspelled SOQL keyword
// and returns the canonical spelling of the closest match.
// Returns empty string if no suggestion.
func SuggestKeyword(input string) string {
	input = strings.ToUpper(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	// Very short inputs produce too many false positives.
	if len(input) < 3 {
		return ""
	}

	// Exact matches need no suggestion.
	if token.IsKeyword(input) {
		return ""
	}

	const maxDistance = 2

	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, kw := range token.Keywords() {
		// Skip short keywords (BY, FOR, NOT, ASC) - nearly everything is
		// within two edits of them, and FORM should suggest FROM, not FOR.
		if len(kw) <= 3 {
			continue
		}

		// Quick length check - if lengths differ by more than maxDistance, skip
		lenDiff := len(kw) - len(input)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > maxDistance {
			continue
		}

		dist := levenshteinDistance(input, kw)
		if dist <= maxDistance && dist < bestDistance {
			bestDistance = dist
			bestMatch = kw
		}
	}

	return bestMatch
}

// ClosestMatch returns the candidate within maxDistance edits of input,
// matched case-insensitively and preferring the smallest distance. Returns
// empty string when nothing is close enough. Candidates keep their original
// casing in the result.
func ClosestMatch(input string, candidates []string, maxDistance int) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, cand := range candidates {
		lenDiff := len(cand) - len(input)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > maxDistance {
			continue
		}

		dist := levenshteinDistance(input, strings.ToLower(cand))
		if dist <= maxDistance && dist < bestDistance {
			bestDistance = dist
			bestMatch = cand
		}
	}

	return bestMatch
}

// levenshteinDistance calculates the Levenshtein distance between two strings.
// This is the minimum number of single-character edits (insertions, deletions,
// or substitutions) required to change one string into the other.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two rows are enough for the DP matrix.
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
