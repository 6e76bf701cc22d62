package merchant

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Similarity returns a score in [0, 1] derived from the Levenshtein edit
// distance: (longest - distance) / longest. Identical strings score 1.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}

	distance := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptionsWithSub)
	return float64(longest-distance) / float64(longest)
}
