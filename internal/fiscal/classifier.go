package fiscal

import "strings"

// STPrefixSet holds the NCM prefixes whose goods fall under the ICMS-ST
// regime. The default set is pharmacy-retail biased (medicines, cosmetics,
// hygiene, medical devices) and deliberately over-includes rather than
// under-includes.
type STPrefixSet []string

// DefaultSTPrefixes returns the built-in pharmacy/cosmetic/health prefix set.
func DefaultSTPrefixes() STPrefixSet {
	return STPrefixSet{
		"3004", // medicines, dosed
		"3003", // medicines, bulk
		"3304", // beauty and make-up preparations
		"3305", // hair preparations
		"3306", // oral hygiene
		"3307", // shaving, deodorants, toiletry
		"3401", // soaps
		"3006", // pharmaceutical goods
		"9018", // medical instruments
		"4014", // hygienic rubber articles
	}
}

// Matches reports whether the normalized NCM starts with any prefix in the set.
func (s STPrefixSet) Matches(ncm string) bool {
	code := stripNCM(ncm)
	if code == "" {
		return false
	}
	for _, p := range s {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// IsST decides whether a product line is subject to ICMS Substituição
// Tributária: a declared CEST code is authoritative, otherwise the NCM
// prefix heuristic applies. Total function, never fails.
func IsST(ncm, declaredCEST string, prefixes STPrefixSet) bool {
	if strings.TrimSpace(declaredCEST) != "" {
		return true
	}
	return prefixes.Matches(ncm)
}
