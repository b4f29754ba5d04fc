// Package match resolves normalized lender names against the FDIC registry
// with a scored candidate cascade.
package match

import (
	"regexp"
	"strings"
)

// removePatterns are stripped as whole words before any similarity
// comparison: legal suffixes, generic banking words, and a short list of
// major city names that show up as branch qualifiers. Multi-word patterns
// come before their substrings.
var removePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bNATIONAL ASSOCIATION\b`),
	regexp.MustCompile(`\bN\.A\.`),
	regexp.MustCompile(`\bN\.A\b`),
	regexp.MustCompile(`\bNA\b`),
	regexp.MustCompile(`\bTHE\b`),
	regexp.MustCompile(`\bINC\b`),
	regexp.MustCompile(`\bCORP\b`),
	regexp.MustCompile(`\bLLC\b`),
	regexp.MustCompile(`\bLTD\b`),
	regexp.MustCompile(`\bCO\b`),
	regexp.MustCompile(`\bGROUP\b`),
	regexp.MustCompile(`\bHOLDINGS\b`),
	regexp.MustCompile(`\bBANCORP\b`),
	regexp.MustCompile(`\bFINANCIAL\b`),
	regexp.MustCompile(`\bBRANCH\b`),
	regexp.MustCompile(`\bAGENCY\b`),
	regexp.MustCompile(`\bNEW YORK\b`),
	regexp.MustCompile(`\bCHICAGO\b`),
	regexp.MustCompile(`\bLONDON\b`),
	regexp.MustCompile(`\bDELAWARE\b`),
}

var (
	cleanNonAlnum   = regexp.MustCompile(`[^A-Z0-9\s]`)
	cleanMultiSpace = regexp.MustCompile(`\s+`)
)

// CleanAggressive uppercases a name and strips legal suffixes, generic
// banking words, branch locations, punctuation, and extra whitespace. Both
// sides of every comparison go through this, so "JPMorgan Chase Bank,
// National Association" and "JPMORGAN CHASE BANK" collapse to the same
// cleaned form.
func CleanAggressive(name string) string {
	clean := strings.ToUpper(name)
	for _, pat := range removePatterns {
		clean = pat.ReplaceAllString(clean, "")
	}
	clean = cleanNonAlnum.ReplaceAllString(clean, "")
	return strings.TrimSpace(cleanMultiSpace.ReplaceAllString(clean, " "))
}

// tokenSet splits a cleaned name into its word set.
func tokenSet(cleaned string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		set[tok] = struct{}{}
	}
	return set
}
