// Package filter implements the lexical heuristics that pick plausible
// US bank lenders out of raw syndicated-loan records.
package filter

import (
	"regexp"
	"strings"
)

// bankKeywords are substrings associated with depository and lending
// institutions. A name containing any of them is a bank candidate.
var bankKeywords = []string{
	"bank", "banc", "trust", "savings", "loan", "credit", "union",
	"capital", "financial", "financing", "funding", "lending", "mortgage",
}

// excludeEndings disqualify a candidate when they appear as the final word
// of the name, after a space or period. Checked only as an ending, so
// embedded occurrences ("Fundamental Bank") do not disqualify.
var excludeEndings = []string{
	"fund", "funds", "advisors", "management", "asset management",
	"clo", "cdo", "etf", "equity", "venture", "ventures",
	"insurance", "assurance",
}

var countryPunct = regexp.MustCompile(`[^a-z0-9\s]`)

// usCountries is the set of accepted country spellings after normalization
// (lowercase, punctuation stripped). "u.s.a" and "u.s" collapse into "usa"
// and "us" once punctuation is removed.
var usCountries = map[string]struct{}{
	"united states":            {},
	"usa":                      {},
	"us":                       {},
	"united states of america": {},
}

// IsBankLike reports whether a lender name plausibly denotes a bank-type
// entity. The name qualifies if it contains a bank keyword or the
// institution type mentions "bank", and is then rejected if it ends with a
// fund/investment/insurance style suffix.
func IsBankLike(name, institutionType string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return false
	}

	included := false
	for _, kw := range bankKeywords {
		if strings.Contains(n, kw) {
			included = true
			break
		}
	}
	if !included && strings.Contains(strings.ToLower(institutionType), "bank") {
		included = true
	}
	if !included {
		return false
	}

	for _, ending := range excludeEndings {
		if strings.HasSuffix(n, " "+ending) || strings.HasSuffix(n, "."+ending) {
			return false
		}
	}
	return true
}

// IsUSDomiciled reports whether the operating country denotes the United
// States. The country field is matched exactly after normalization, never
// by substring; "US Bank" in the institution type also qualifies.
func IsUSDomiciled(country, institutionType string) bool {
	c := strings.ToLower(strings.TrimSpace(country))
	c = countryPunct.ReplaceAllString(c, "")
	c = strings.TrimSpace(c)
	if _, ok := usCountries[c]; ok {
		return true
	}
	return strings.Contains(institutionType, "US Bank")
}
