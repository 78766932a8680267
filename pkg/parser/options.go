package parser

import (
	"math"
	"strconv"
	"strings"
)

// DefaultRadius is the context radius used when a context flag carries no number.
const DefaultRadius = 1

// Options is the decoded form of a flag list.
type Options struct {
	IgnoreCase   bool // -i
	LineNumbers  bool // -n
	Invert       bool // -v
	Count        bool // -c
	WordRegexp   bool // -w
	Extended     bool // -E
	OnlyMatching bool // -o
	WithFilename bool // -H

	// After, Before and Context are -1 when the flag was not given.
	After   int
	Before  int
	Context int

	// Unknown lists flags outside the vocabulary. They are ignored.
	Unknown []string
}

// BeforeRadius returns the effective number of leading context lines.
// An explicit -B wins over -C.
func (o Options) BeforeRadius() int {
	return effectiveRadius(o.Before, o.Context)
}

// AfterRadius returns the effective number of trailing context lines.
// An explicit -A wins over -C.
func (o Options) AfterRadius() int {
	return effectiveRadius(o.After, o.Context)
}

// HasContext reports whether any context line would be printed.
func (o Options) HasContext() bool {
	return o.BeforeRadius() > 0 || o.AfterRadius() > 0
}

func effectiveRadius(side, both int) int {
	if side >= 0 {
		return side
	}
	if both >= 0 {
		return both
	}
	return 0
}

// optionSpec is one row of the flag vocabulary.
type optionSpec struct {
	short      byte
	long       string
	takesValue bool
	help       string
	apply      func(o *Options, value int)
}

var optionTable = []optionSpec{
	{short: 'i', long: "ignore-case", help: "match without regard to case", apply: func(o *Options, _ int) { o.IgnoreCase = true }},
	{short: 'n', long: "line-number", help: "prefix lines with their line number", apply: func(o *Options, _ int) { o.LineNumbers = true }},
	{short: 'v', long: "invert-match", help: "select lines that do not match", apply: func(o *Options, _ int) { o.Invert = true }},
	{short: 'c', long: "count", help: "print a count of selected lines per file", apply: func(o *Options, _ int) { o.Count = true }},
	{short: 'w', long: "word-regexp", help: "match whole words only", apply: func(o *Options, _ int) { o.WordRegexp = true }},
	{short: 'E', long: "extended-regexp", help: "read the pattern as an extended regular expression", apply: func(o *Options, _ int) { o.Extended = true }},
	{short: 'o', long: "only-matching", help: "print only the matched parts of lines", apply: func(o *Options, _ int) { o.OnlyMatching = true }},
	{short: 'H', long: "with-filename", help: "prefix lines with the file name", apply: func(o *Options, _ int) { o.WithFilename = true }},
	{short: 'A', long: "after-context", help: "print NUM lines after each match", takesValue: true, apply: func(o *Options, v int) { o.After = v }},
	{short: 'B', long: "before-context", help: "print NUM lines before each match", takesValue: true, apply: func(o *Options, v int) { o.Before = v }},
	{short: 'C', long: "context", help: "print NUM lines around each match", takesValue: true, apply: func(o *Options, v int) { o.Context = v }},
}

// FlagInfo describes one flag of the vocabulary.
type FlagInfo struct {
	Short      string // "-C"
	Long       string // "--context"
	Help       string
	TakesValue bool

	// Value is the radius carried by a value flag.
	Value int
}

// Describe explains a normalised flag such as "-n" or "-C2". ok is false for
// flags outside the vocabulary.
func Describe(flag string) (info FlagInfo, ok bool) {
	spec, ok := canonicalSpec(flag)
	if !ok {
		return FlagInfo{}, false
	}
	info = FlagInfo{
		Short:      "-" + string(spec.short),
		Long:       "--" + spec.long,
		Help:       spec.help,
		TakesValue: spec.takesValue,
	}
	if spec.takesValue {
		info.Value, _ = parseRadius(flag[2:])
	}
	return info, true
}

func lookupShort(c byte) (*optionSpec, bool) {
	for i := range optionTable {
		if optionTable[i].short == c {
			return &optionTable[i], true
		}
	}
	return nil, false
}

func lookupLong(name string) (*optionSpec, bool) {
	for i := range optionTable {
		if optionTable[i].long == name {
			return &optionTable[i], true
		}
	}
	return nil, false
}

// NormalizeFlags rewrites flag tokens into their canonical short form.
// A value flag followed by a separate numeric token absorbs that token.
// Tokens that are not flags and were not absorbed are kept as-is.
func NormalizeFlags(tokens []string) []string {
	var out []string
	for i := 0; i < len(tokens); i++ {
		next, hasNext := "", i+1 < len(tokens)
		if hasNext {
			next = tokens[i+1]
		}
		flags, consumed := expandFlag(tokens[i], next, hasNext)
		out = append(out, flags...)
		if consumed {
			i++
		}
	}
	return out
}

// DecodeOptions decodes a flag list. Values may be fused ("-C2") or separate
// ("-C", "2"); a value flag with no number gets DefaultRadius.
func DecodeOptions(flags []string) Options {
	opts := Options{After: -1, Before: -1, Context: -1}

	for _, flag := range NormalizeFlags(flags) {
		spec, ok := canonicalSpec(flag)
		if !ok {
			opts.Unknown = append(opts.Unknown, flag)
			continue
		}
		value := 0
		if spec.takesValue {
			value, _ = parseRadius(flag[2:])
		}
		spec.apply(&opts, value)
	}

	return opts
}

// canonicalSpec resolves a normalised flag ("-n", "-C2") to its table row.
func canonicalSpec(flag string) (*optionSpec, bool) {
	if len(flag) < 2 || flag[0] != '-' || flag[1] == '-' {
		return nil, false
	}
	spec, ok := lookupShort(flag[1])
	if !ok {
		return nil, false
	}
	if spec.takesValue {
		if _, ok := parseRadius(flag[2:]); !ok {
			return nil, false
		}
	} else if len(flag) != 2 {
		return nil, false
	}
	return spec, true
}

// expandFlag normalises one token. consumed reports whether next was used as
// the token's value.
func expandFlag(tok, next string, hasNext bool) (flags []string, consumed bool) {
	switch {
	case strings.HasPrefix(tok, "--") && len(tok) > 2:
		return expandLong(tok, next, hasNext)
	case strings.HasPrefix(tok, "-") && len(tok) > 1 && tok[1] != '-':
		return expandShort(tok, next, hasNext)
	default:
		return []string{tok}, false
	}
}

func expandLong(tok, next string, hasNext bool) ([]string, bool) {
	name, value, hasValue := strings.Cut(tok[2:], "=")
	spec, ok := lookupLong(name)
	if !ok {
		return []string{tok}, false
	}
	if !spec.takesValue {
		return []string{"-" + string(spec.short)}, false
	}

	radius := DefaultRadius
	consumed := false
	if hasValue {
		if n, ok := parseRadius(value); ok {
			radius = n
		}
	} else if hasNext {
		if n, ok := parseRadius(next); ok {
			radius, consumed = n, true
		}
	}
	return []string{fuse(spec.short, radius)}, consumed
}

func expandShort(tok, next string, hasNext bool) ([]string, bool) {
	body := tok[1:]
	var out []string

	for j := 0; j < len(body); j++ {
		spec, ok := lookupShort(body[j])
		if !ok {
			out = append(out, "-"+string(body[j]))
			continue
		}
		if !spec.takesValue {
			out = append(out, "-"+string(spec.short))
			continue
		}

		// A value flag ends the cluster: the rest of the token is its value.
		rest := body[j+1:]
		if rest == "" {
			if hasNext {
				if n, ok := parseRadius(next); ok {
					return append(out, fuse(spec.short, n)), true
				}
			}
			return append(out, fuse(spec.short, DefaultRadius)), false
		}
		radius := DefaultRadius
		if n, ok := parseRadius(leadingDigits(rest)); ok {
			radius = n
		}
		return append(out, fuse(spec.short, radius)), false
	}

	return out, false
}

func fuse(short byte, radius int) string {
	return "-" + string(short) + strconv.Itoa(radius)
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// parseRadius parses a non-negative decimal radius. Values too large for an
// int32 are clamped.
func parseRadius(s string) (int, bool) {
	if s == "" || leadingDigits(s) != s {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return math.MaxInt32, true
	}
	return int(n), true
}
