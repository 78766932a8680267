package matcher

import (
	"errors"
	"strings"
)

var (
	errTrailingBackslash = errors.New("trailing backslash")
	errUnmatchedBracket  = errors.New("unmatched [")
)

// TranslateBasic rewrites a POSIX basic regular expression into RE2 syntax.
//
// Escaped \| \( \) \{ \} \+ \? become operators and their bare forms become
// literals. A '*' at the start of an expression or group is literal. \< and \>
// become \b. Bracket expressions are copied with backslashes made literal.
func TranslateBasic(pattern string) (string, error) {
	var b strings.Builder
	b.Grow(len(pattern) + 8)

	// exprStart is true where a '*' cannot repeat anything.
	exprStart := true

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		switch c {
		case '\\':
			if i+1 >= len(pattern) {
				return "", errTrailingBackslash
			}
			i++
			next := pattern[i]
			switch next {
			case '|', '(', ')', '{', '}', '+', '?':
				b.WriteByte(next)
				exprStart = next == '|' || next == '('
				continue
			case '<', '>':
				b.WriteString(`\b`)
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}

		case '|', '(', ')', '{', '}', '+', '?':
			b.WriteByte('\\')
			b.WriteByte(c)

		case '*':
			if exprStart {
				b.WriteString(`\*`)
			} else {
				b.WriteByte('*')
			}

		case '^':
			b.WriteByte('^')
			// "^*" still has nothing to repeat.
			continue

		case '[':
			end := bracketEnd(pattern, i)
			if end < 0 {
				return "", errUnmatchedBracket
			}
			b.WriteString(strings.ReplaceAll(pattern[i:end+1], `\`, `\\`))
			i = end

		default:
			b.WriteByte(c)
		}

		exprStart = false
	}

	return b.String(), nil
}

// bracketEnd returns the index of the ']' closing the bracket expression that
// opens at start, or -1.
func bracketEnd(pattern string, start int) int {
	j := start + 1
	if j < len(pattern) && pattern[j] == '^' {
		j++
	}
	// A leading ']' is a literal member.
	if j < len(pattern) && pattern[j] == ']' {
		j++
	}

	for j < len(pattern) {
		switch {
		case pattern[j] == '[' && j+1 < len(pattern) && strings.IndexByte(":.=", pattern[j+1]) >= 0:
			closing := string(pattern[j+1]) + "]"
			k := strings.Index(pattern[j+2:], closing)
			if k < 0 {
				return -1
			}
			j += 2 + k + len(closing)
		case pattern[j] == ']':
			return j
		default:
			j++
		}
	}
	return -1
}
