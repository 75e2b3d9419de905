package engine

import (
	"regexp"
	"strings"
)

var (
	leadingKeyword = regexp.MustCompile(`(?i)^(SELECT|WITH)\b`)
	forbiddenWords = regexp.MustCompile(`(?i)\b(DROP|TRUNCATE|ALTER|CREATE|DELETE|INSERT|UPDATE|ATTACH|DETACH|PRAGMA|VACUUM|REPLACE\s+INTO)\b`)
)

var duplicateClauses = []struct {
	re  *regexp.Regexp
	msg string
}{
	{regexp.MustCompile(`(?i)\bFROM\s+FROM\b`), "Duplicate FROM clause"},
	{regexp.MustCompile(`(?i)\bWHERE\s+WHERE\b`), "Duplicate WHERE clause"},
	{regexp.MustCompile(`(?i)\bSELECT\s+SELECT\b`), "Duplicate SELECT keyword"},
	{regexp.MustCompile(`(?i)\bGROUP\s+GROUP\b`), "Duplicate GROUP BY clause"},
	{regexp.MustCompile(`(?i)\bORDER\s+ORDER\b`), "Duplicate ORDER BY clause"},
}

// Guard rejects queries that are not a single read-only SELECT. Checks run
// in a fixed order so the same query always yields the same message. It
// returns the query with a trailing semicolon removed.
func Guard(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", invalid("Query cannot be empty")
	}

	bare := strings.TrimSpace(stripLiterals(q))
	if !leadingKeyword.MatchString(bare) {
		return "", invalid("Only SELECT queries are allowed")
	}
	if forbiddenWords.MatchString(bare) {
		return "", forbidden("This operation is not allowed")
	}
	if !balanced(bare) {
		return "", invalid("Unbalanced parentheses in query")
	}
	for _, d := range duplicateClauses {
		if d.re.MatchString(bare) {
			return "", invalid(d.msg)
		}
	}

	bare = strings.TrimSpace(strings.TrimSuffix(bare, ";"))
	if strings.Contains(bare, ";") {
		return "", invalid("Only a single statement is allowed")
	}
	if strings.HasSuffix(q, ";") {
		q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	}
	return q, nil
}

// stripLiterals blanks out the contents of quoted strings, quoted
// identifiers and comments so keyword checks only see SQL structure. An
// unterminated quote blanks the rest of the query.
func stripLiterals(q string) string {
	var b strings.Builder
	b.Grow(len(q))

	rs := []rune(q)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\'' || r == '"' || r == '`':
			b.WriteRune(r)
			i++
			for i < len(rs) {
				if rs[i] == r {
					if i+1 < len(rs) && rs[i+1] == r { // doubled quote escape
						b.WriteString("  ")
						i += 2
						continue
					}
					b.WriteRune(r)
					break
				}
				b.WriteRune(' ')
				i++
			}
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			for i < len(rs) && rs[i] != '\n' {
				b.WriteRune(' ')
				i++
			}
			if i < len(rs) {
				b.WriteRune('\n')
			}
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			b.WriteString("  ")
			i += 2
			for i < len(rs) && !(rs[i] == '*' && i+1 < len(rs) && rs[i+1] == '/') {
				b.WriteRune(' ')
				i++
			}
			if i < len(rs) {
				b.WriteString("  ")
				i++
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func balanced(q string) bool {
	depth := 0
	for _, r := range q {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
