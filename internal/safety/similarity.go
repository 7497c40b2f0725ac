package safety

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LevenshteinRatio is the default similarity function: 1 - (edit distance /
// max length), via sergi/go-diff's diffmatchpatch, which already implements
// a well-tested Levenshtein distance over diff ops. Identical strings score
// 1; completely disjoint strings of equal length score 0.
func LevenshteinRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	dist := dmp.DiffLevenshtein(diffs)

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}

// JaccardShingle is the alternative similarity function: token-shingle
// Jaccard index over whitespace-split words. Offered as a cheaper,
// order-insensitive alternative to LevenshteinRatio for callers that pass
// it explicitly to New; no config key selects it.
func JaccardShingle(a, b string) float64 {
	setA := shingleSet(a)
	setB := shingleSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func shingleSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
