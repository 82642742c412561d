// Package bracket locates the delimiter that closes an already-opened
// bracket in template source, skipping over strings, template literals,
// regular expression literals and comments so that delimiters inside them do
// not count.
package bracket

import "strings"

var pairs = map[string]byte{
	"{": '}',
	"(": ')',
	"[": ']',
}

// Matcher adapts FindMatching to the parser's delimiter matcher interface.
type Matcher struct{}

func (Matcher) FindMatching(template string, index int, open string) (int, bool) {
	return FindMatching(template, index, open)
}

// FindMatching scans template from index, assuming one open delimiter has
// already been consumed, and returns the byte offset of the delimiter that
// closes it. It reports false when open is not a known delimiter or the
// input ends first.
func FindMatching(template string, index int, open string) (int, bool) {
	closing, ok := pairs[open]
	if !ok {
		return 0, false
	}
	if index < 0 {
		index = 0
	}

	end, found := scan(template, index, open[0], closing, 1)
	if !found {
		return 0, false
	}
	return end, true
}

// scan walks forward with depth already-open delimiters and returns the
// offset where depth drops to zero.
func scan(s string, i int, open, closing byte, depth int) (int, bool) {
	for i < len(s) {
		ch := s[i]
		switch {
		case ch == '\'' || ch == '"':
			next, ok := skipQuoted(s, i)
			if !ok {
				return 0, false
			}
			i = next
			continue
		case ch == '`':
			next, ok := skipTemplate(s, i)
			if !ok {
				return 0, false
			}
			i = next
			continue
		case ch == '/' && i+1 < len(s) && s[i+1] == '/':
			nl := strings.IndexByte(s[i+2:], '\n')
			if nl < 0 {
				return 0, false
			}
			i += 2 + nl + 1
			continue
		case ch == '/' && i+1 < len(s) && s[i+1] == '*':
			stop := strings.Index(s[i+2:], "*/")
			if stop < 0 {
				return 0, false
			}
			i += 2 + stop + 2
			continue
		case ch == '/' && regexAllowed(s[:i]):
			if next, ok := skipRegex(s, i); ok {
				i = next
				continue
			}
		case ch == open:
			depth++
		case ch == closing:
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// skipQuoted returns the offset just past the string literal starting at i.
func skipQuoted(s string, i int) (int, bool) {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		}
	}
	return 0, false
}

// regexAllowed reports whether a '/' following before starts a regular
// expression rather than a division.
func regexAllowed(before string) bool {
	before = strings.TrimRight(before, " \t\r\n")
	if before == "" {
		return true
	}
	last := before[len(before)-1]
	if strings.IndexByte("(,=:[!&|?{};+-*%<>~^", last) >= 0 {
		return true
	}
	word := before[strings.LastIndexFunc(before, func(r rune) bool {
		return !(r == '_' || r == '$' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})+1:]
	switch word {
	case "return", "typeof", "void", "delete", "in", "of", "instanceof", "new", "case", "do", "else":
		return true
	}
	return false
}

// skipRegex returns the offset just past the regular expression literal
// starting at i, flags included. A literal cannot span lines.
func skipRegex(s string, i int) (int, bool) {
	inClass := false
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '\n':
			return 0, false
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if inClass {
				continue
			}
			j++
			for j < len(s) && (s[j] >= 'a' && s[j] <= 'z' || s[j] >= 'A' && s[j] <= 'Z') {
				j++
			}
			return j, true
		}
	}
	return 0, false
}

// skipTemplate returns the offset just past the template literal starting at
// i. Substitutions are scanned as nested brace groups.
func skipTemplate(s string, i int) (int, bool) {
	for j := i + 1; j < len(s); j++ {
		switch {
		case s[j] == '\\':
			j++
		case s[j] == '`':
			return j + 1, true
		case s[j] == '$' && j+1 < len(s) && s[j+1] == '{':
			end, ok := scan(s, j+2, '{', '}', 1)
			if !ok {
				return 0, false
			}
			j = end
		}
	}
	return 0, false
}
