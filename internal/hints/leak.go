package hints

import (
	"regexp"
	"strings"
	"unicode"
)

var quoted = regexp.MustCompile(`'[^']*'`)

// squash lowercases s and drops all whitespace and trailing semicolons so
// formatting differences do not hide a copied query.
func squash(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.TrimRight(s, ";")
}

// revealsAnswer reports whether hint gives away answer: the full query,
// its WHERE clause, or a SELECT carrying every literal the answer filters
// on.
func revealsAnswer(hint, answer string) bool {
	h, a := squash(hint), squash(answer)
	if a == "" {
		return false
	}
	if strings.Contains(h, a) {
		return true
	}
	if i := strings.Index(a, "where"); i >= 0 {
		if clause := a[i+len("where"):]; len(clause) >= 8 && strings.Contains(h, clause) {
			return true
		}
	}

	lits := quoted.FindAllString(strings.ToLower(answer), -1)
	if len(lits) == 0 || !strings.Contains(h, "select") {
		return false
	}
	lower := strings.ToLower(hint)
	for _, l := range lits {
		if !strings.Contains(lower, l) {
			return false
		}
	}
	return true
}
