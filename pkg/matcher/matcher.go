package matcher

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ccollicutt/grepmaster/pkg/parser"
)

// Matcher evaluates grep commands. It holds configuration only and is safe
// for concurrent use.
type Matcher struct {
	basic BasicSyntax
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithBasicSyntax selects how patterns are read without -E.
func WithBasicSyntax(s BasicSyntax) Option {
	return func(m *Matcher) {
		if s != "" {
			m.basic = s
		}
	}
}

// New creates a Matcher. By default basic patterns are literal strings.
func New(opts ...Option) *Matcher {
	m := &Matcher{basic: BasicLiteral}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BasicSyntax returns the configured basic syntax.
func (m *Matcher) BasicSyntax() BasicSyntax {
	return m.basic
}

var defaultMatcher = New()

// Evaluate runs pattern with flags over files using literal basic syntax.
func Evaluate(pattern string, flags []string, files []string, src FileSource) ([]string, error) {
	return defaultMatcher.Evaluate(pattern, flags, files, src)
}

// Evaluate runs pattern with flags over files, in file order, and returns the
// lines grep would print. Files missing from src produce a diagnostic line
// and do not stop the evaluation. A pattern that does not compile fails the
// whole evaluation with a *PatternError.
func (m *Matcher) Evaluate(pattern string, flags []string, files []string, src FileSource) ([]string, error) {
	return m.EvaluateOptions(pattern, parser.DecodeOptions(flags), files, src)
}

// EvaluateOptions is Evaluate with already decoded options.
func (m *Matcher) EvaluateOptions(pattern string, opts parser.Options, files []string, src FileSource) ([]string, error) {
	re, err := m.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}

	s := &search{
		re:           re,
		opts:         opts,
		showFilename: opts.WithFilename || len(files) > 1,
	}

	output := []string{}
	for _, name := range files {
		content, ok := src.Content(name)
		if !ok {
			output = append(output, NotFoundLine(name))
			continue
		}
		output = s.file(output, name, content)
	}

	return output, nil
}

// search carries the per-evaluation state shared by every file.
type search struct {
	re           *regexp.Regexp
	opts         parser.Options
	showFilename bool
}

// file appends the output for one file to out.
func (s *search) file(out []string, name, content string) []string {
	lines := SplitLines(content)
	selected := make([]bool, len(lines))
	results := make([]MatchResult, 0)
	count := 0

	for i, line := range lines {
		bodies, ok := s.selectLine(line)
		if !ok {
			continue
		}
		selected[i] = true
		count++
		if !s.opts.Count {
			results = append(results, MatchResult{Index: i, Bodies: bodies})
		}
	}

	if s.opts.Count {
		if s.showFilename {
			return append(out, name+":"+strconv.Itoa(count))
		}
		return append(out, strconv.Itoa(count))
	}

	if s.opts.HasContext() && !s.opts.OnlyMatching {
		return s.withContext(out, name, lines, selected, results)
	}

	for _, r := range results {
		for _, body := range r.Bodies {
			out = append(out, s.render(name, r.Index, ':', body))
		}
	}
	return out
}

// selectLine decides whether line is selected and what is printed for it.
func (s *search) selectLine(line string) ([]string, bool) {
	if s.opts.OnlyMatching {
		bodies := nonEmpty(s.re.FindAllString(line, -1))
		if s.opts.Invert {
			// An inverted selection has no matches to extract.
			return nil, len(bodies) == 0
		}
		return bodies, len(bodies) > 0
	}

	hit := s.re.MatchString(line)
	if s.opts.Invert {
		hit = !hit
	}
	if !hit {
		return nil, false
	}
	return []string{line}, true
}

// withContext appends selected lines and their context windows. Overlapping
// or adjacent windows form one group; groups are separated by Separator.
func (s *search) withContext(out []string, name string, lines []string, selected []bool, results []MatchResult) []string {
	before := min(s.opts.BeforeRadius(), len(lines))
	after := min(s.opts.AfterRadius(), len(lines))
	last := -1

	for _, r := range results {
		start := max(0, r.Index-before)
		end := min(len(lines)-1, r.Index+after)

		if last >= 0 && start > last+1 {
			out = append(out, Separator)
		}
		start = max(start, last+1)

		for i := start; i <= end; i++ {
			sep := byte('-')
			if selected[i] {
				sep = ':'
			}
			out = append(out, s.render(name, i, sep, lines[i]))
		}
		last = max(last, end)
	}

	return out
}

// render prefixes body with the file name and line number as configured.
func (s *search) render(name string, index int, sep byte, body string) string {
	var b strings.Builder
	if s.showFilename {
		b.WriteString(name)
		b.WriteByte(sep)
	}
	if s.opts.LineNumbers {
		b.WriteString(strconv.Itoa(index + 1))
		b.WriteByte(sep)
	}
	b.WriteString(body)
	return b.String()
}

// SplitLines splits content on newlines. A trailing newline ends the last
// line rather than starting an empty one.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func nonEmpty(matches []string) []string {
	out := matches[:0]
	for _, m := range matches {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
