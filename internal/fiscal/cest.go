// Package fiscal implements the NFe fiscal classification and tax
// projection engine: CEST resolution, ICMS-ST classification, purchase- and
// sale-side tax projection, and the invoice assembler that drives them.
//
// Everything in this package is pure computation over value objects. The
// reference tables are immutable after construction and safe for concurrent
// use across callers.
package fiscal

import (
	"fmt"
	"strings"
)

// NormalizeNCM strips formatting separators and surrounding whitespace from
// an NCM code. Returns an error when non-digit characters remain: such a
// code cannot be classified and the line must be reported as failed.
func NormalizeNCM(s string) (string, error) {
	n := stripNCM(s)
	for _, r := range n {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("NCM %q contains non-digit characters", s)
		}
	}
	return n, nil
}

func stripNCM(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, "-", "")
}

// CESTTable maps NCM codes (full codes or 4/6-digit chapter prefixes) to
// CEST codes. Immutable after construction.
type CESTTable struct {
	byNCM map[string]string
}

// NewCESTTable builds a CESTTable from an NCM→CEST mapping. Keys are
// normalized so formatted reference files ("3004.90.99") work unchanged.
func NewCESTTable(entries map[string]string) *CESTTable {
	m := make(map[string]string, len(entries))
	for ncm, cest := range entries {
		m[stripNCM(ncm)] = stripNCM(cest)
	}
	return &CESTTable{byNCM: m}
}

// Len returns the number of reference entries.
func (t *CESTTable) Len() int {
	return len(t.byNCM)
}

// Resolve finds the CEST code for an NCM. Longest-specific-match-first:
// exact match beats the 6-digit prefix, which beats the 4-digit prefix.
// There is no fallback shorter than 4 digits, matching the granularity of
// the reference table's keys.
func (t *CESTTable) Resolve(ncm string) (string, bool) {
	code := stripNCM(ncm)
	if code == "" || len(t.byNCM) == 0 {
		return "", false
	}

	if cest, ok := t.byNCM[code]; ok {
		return cest, true
	}
	for _, prefixLen := range []int{6, 4} {
		if len(code) >= prefixLen {
			if cest, ok := t.byNCM[code[:prefixLen]]; ok {
				return cest, true
			}
		}
	}
	return "", false
}
