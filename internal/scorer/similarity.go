package scorer

import "strings"

// Ratio returns a normalized edit-distance similarity between a and b in
// [0, 1]. 1 means identical, 0 means nothing in common. Deterministic and
// case-sensitive; callers pass normalized strings.
func Ratio(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// Mentions reports whether text contains or closely resembles value
// (similarity >= threshold over same-length word windows).
func Mentions(text, value string, threshold float64) bool {
	if text == "" || value == "" {
		return false
	}
	if strings.Contains(text, value) {
		return true
	}

	valueWords := strings.Fields(value)
	textWords := strings.Fields(text)
	n := len(valueWords)
	if n == 0 || n > len(textWords) {
		return false
	}

	for i := 0; i+n <= len(textWords); i++ {
		window := strings.Join(textWords[i:i+n], " ")
		if Ratio(window, value) >= threshold {
			return true
		}
	}
	return false
}

// levenshtein computes edit distance with a two-row rolling buffer.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
