package match

import (
	"regexp"

	"github.com/agnivade/levenshtein"
)

// boundaryLength is the cleaned-name length below which a target must
// appear as a whole-word match inside the candidate. Short, generic names
// ("US BANK") would otherwise ride along inside unrelated institutions.
const boundaryLength = 10

// tokenPenaltyThreshold halves the composite when token overlap falls
// below it: high character similarity with disjoint word sets usually
// means two different institutions with similar spelling.
const tokenPenaltyThreshold = 0.5

// charSimilarity is a normalized edit-distance ratio in [0,1] between two
// cleaned names.
func charSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// tokenSimilarity is the Jaccard similarity of the two cleaned word sets.
func tokenSimilarity(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// boundarySafe rejects short targets that only match a substring fragment
// of the candidate. Targets at or above boundaryLength always pass.
func boundarySafe(targetClean, candClean string) bool {
	if len(targetClean) >= boundaryLength {
		return true
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(targetClean))
	if err != nil {
		return false
	}
	return re.MatchString(candClean)
}

// composite combines the similarity signals: character similarity as the
// base, halved on weak token overlap, zeroed on a boundary violation.
func composite(targetClean, candClean string) float64 {
	score := charSimilarity(targetClean, candClean)
	if tokenSimilarity(targetClean, candClean) < tokenPenaltyThreshold {
		score *= 0.5
	}
	if !boundarySafe(targetClean, candClean) {
		score = 0
	}
	return score
}
