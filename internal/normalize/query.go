package normalize

import (
	"regexp"
	"strings"
)

var (
	nonAlnum   = regexp.MustCompile(`[^A-Z0-9\s]`)
	multiSpace = regexp.MustCompile(`\s+`)

	// looseTokens are dropped for the matcher's relaxed retry: residual
	// branch locations and legal suffixes that often keep a strict
	// phrase query from hitting anything.
	looseTokens = regexp.MustCompile(`(?i)\bCHICAGO\b|\bNEW YORK\b|\bBRANCH\b|\bINC\b|\bCORP\b`)
)

// BuildQuery turns a core name into a registry wildcard phrase query:
// uppercase, non-alphanumerics stripped, spaces collapsed and
// backslash-escaped, wrapped as NAME:*...*. Names shorter than 2
// characters yield no query.
func BuildQuery(name string) string {
	return buildQuery(name, false)
}

// BuildLooseQuery is BuildQuery with the loose token set removed first.
func BuildLooseQuery(name string) string {
	return buildQuery(name, true)
}

func buildQuery(name string, loose bool) string {
	if len(strings.TrimSpace(name)) < 2 {
		return ""
	}

	clean := strings.ToUpper(name)
	if loose {
		clean = looseTokens.ReplaceAllString(clean, "")
	}
	clean = nonAlnum.ReplaceAllString(clean, "")
	clean = multiSpace.ReplaceAllString(strings.TrimSpace(clean), " ")
	if len(clean) < 2 {
		return ""
	}

	escaped := strings.ReplaceAll(clean, " ", `\ `)
	return "NAME:*" + escaped + "*"
}
