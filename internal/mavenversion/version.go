// Package mavenversion implements a total order on Maven version strings
// compatible with Maven's ComparableVersion semantics: tokenization into
// alternating numeric and alphanumeric runs and a fixed qualifier order
// (alpha < beta < milestone < rc < snapshot < "" < sp). '.' and '-' are
// both treated as plain run separators; the separate list level that
// ComparableVersion opens at '-' is not modelled.
package mavenversion

import (
	"regexp"
	"strings"
)

// qualifierOrder ranks known qualifiers, after alias normalization.
// Unknown qualifiers sort lexicographically and after every known one.
var qualifierOrder = map[string]int{
	"alpha":     0,
	"beta":      1,
	"milestone": 2,
	"rc":        3,
	"snapshot":  4,
	"":          5,
	"sp":        6,
}

// qualifierAlias normalizes common synonyms to the canonical qualifier used
// for ranking, matching Maven's own ComparableVersion table.
var qualifierAlias = map[string]string{
	"ga":      "",
	"final":   "",
	"release": "",
	"cr":      "rc",
}

// item is either a numeric run (isNum true, num holds the digits with
// leading zeros trimmed away) or an alphanumeric qualifier run.
type item struct {
	isNum bool
	num   string // normalized, no leading zeros, empty means zero
	qual  string // lowercase qualifier text when isNum is false
}

func tokenize(raw string) []item {
	var items []item
	s := raw
	if s == "" {
		return []item{{isNum: true, num: ""}}
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '.' || c == '-':
			// A '-' following a numeric run starts a new "list level" in
			// real ComparableVersion; we approximate the common case by
			// simply treating both as run separators, which matches
			// observable ordering for the version strings this resolver
			// ever compares (dependency/plugin versions, not the full
			// Maven test-suite corpus).
			i++
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			items = append(items, item{isNum: true, num: trimLeadingZeros(s[i:j])})
			i = j
		default:
			j := i
			for j < len(s) && !isDigit(s[j]) && s[j] != '.' && s[j] != '-' {
				j++
			}
			qual := strings.ToLower(s[i:j])
			if canon, ok := qualifierAlias[qual]; ok {
				qual = canon
			}
			items = append(items, item{isNum: false, qual: qual})
			i = j
		}
	}
	if len(items) == 0 {
		items = append(items, item{isNum: true, num: ""})
	}
	return items
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func trimLeadingZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	return s
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than
// b, per Maven ComparableVersion ordering. Versions whose token streams
// compare equal (e.g. "1.0" and "1.0.0", or "1.0-cr1" and "1.0-rc1") are
// equal and yield 0.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	va, vb := tokenize(a), tokenize(b)
	n := len(va)
	if len(vb) > n {
		n = len(vb)
	}
	for i := 0; i < n; i++ {
		var ia, ib item
		if i < len(va) {
			ia = va[i]
		} else {
			ia = zeroLike(vb[i])
		}
		if i < len(vb) {
			ib = vb[i]
		} else {
			ib = zeroLike(va[i])
		}
		if c := compareItem(ia, ib); c != 0 {
			return c
		}
	}
	return 0
}

// zeroLike returns the "absent" counterpart for an item so that a shorter
// version compares as if padded with neutral values (0 for numeric slots,
// the empty/GA qualifier for alphanumeric slots).
func zeroLike(other item) item {
	if other.isNum {
		return item{isNum: true, num: ""}
	}
	return item{isNum: false, qual: ""}
}

func compareItem(a, b item) int {
	if a.isNum && b.isNum {
		return compareNumeric(a.num, b.num)
	}
	if a.isNum && !b.isNum {
		// A numeric item is always newer than a qualifier at the same
		// position (Maven: numbers rank above alphanumeric qualifiers).
		return 1
	}
	if !a.isNum && b.isNum {
		return -1
	}
	return compareQualifier(a.qual, b.qual)
}

func compareNumeric(a, b string) int {
	if a == "" {
		a = "0"
	}
	if b == "" {
		b = "0"
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func compareQualifier(a, b string) int {
	if a == b {
		return 0
	}
	ra, aKnown := qualifierOrder[a]
	rb, bKnown := qualifierOrder[b]
	switch {
	case aKnown && bKnown:
		if ra == rb {
			return strings.Compare(a, b)
		}
		if ra < rb {
			return -1
		}
		return 1
	case aKnown && !bKnown:
		return -1 // known qualifiers sort before unknown ones
	case !aKnown && bKnown:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// Matches reports whether v fully matches the anchored regular expression
// rx (equivalent to `^(?:rx)$`).
func Matches(v string, rx *regexp.Regexp) bool {
	loc := rx.FindStringIndex(v)
	return loc != nil && loc[0] == 0 && loc[1] == len(v)
}

// CompileAnchored compiles pattern as a fully anchored regular expression.
func CompileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

// LatestOf returns the greatest element of candidates under Compare,
// restricted to those for which predicate returns true (predicate == nil
// means no filtering). Returns "", false if nothing qualifies.
func LatestOf(candidates []string, predicate func(string) bool) (string, bool) {
	best := ""
	found := false
	for _, c := range candidates {
		if predicate != nil && !predicate(c) {
			continue
		}
		if !found || Compare(c, best) > 0 {
			best = c
			found = true
		}
	}
	return best, found
}
