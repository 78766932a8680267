package matcher

import (
	"regexp"

	"github.com/ccollicutt/grepmaster/pkg/parser"
)

// Expression returns the regular expression source that pattern compiles to
// under opts.
//
// With BasicLiteral a whole-word pattern is always escaped and then wrapped in
// word boundaries, even with -E. With BasicPOSIX the basic or extended
// expression is kept and wrapped as a group.
func (m *Matcher) Expression(pattern string, opts parser.Options) (string, error) {
	var expr string

	switch {
	case opts.WordRegexp && m.basic == BasicLiteral:
		expr = `\b` + regexp.QuoteMeta(pattern) + `\b`
	case opts.WordRegexp:
		base, err := m.baseExpression(pattern, opts)
		if err != nil {
			return "", err
		}
		expr = `\b(?:` + base + `)\b`
	default:
		base, err := m.baseExpression(pattern, opts)
		if err != nil {
			return "", err
		}
		expr = base
	}

	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}
	return expr, nil
}

func (m *Matcher) baseExpression(pattern string, opts parser.Options) (string, error) {
	switch {
	case opts.Extended:
		return pattern, nil
	case m.basic == BasicPOSIX:
		return TranslateBasic(pattern)
	default:
		return regexp.QuoteMeta(pattern), nil
	}
}

// Compile builds the matching expression for pattern. Failures are returned
// as *PatternError.
func (m *Matcher) Compile(pattern string, opts parser.Options) (*regexp.Regexp, error) {
	expr, err := m.Expression(pattern, opts)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}
