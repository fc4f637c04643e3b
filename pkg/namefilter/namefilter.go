// Package namefilter parses semicolon-separated name filter expressions and
// matches names against them.
//
// An expression is a list of patterns separated by ';'. A literal ';' inside
// a pattern is written as "\;". Each pattern is a regular expression; a
// leading '-' makes it an exclusion and a leading '+' (or no prefix) an
// inclusion:
//
//	+\.txt$;+\.md$;-^tmp/
//
// A name matches when it matches at least one inclusion (or there are no
// inclusions) and no exclusion.
package namefilter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	separator = ';'
	escape    = '\\'
)

// ErrMissingEscape is returned when an expression ends with a lone escape
// character.
var ErrMissingEscape = errors.New("namefilter: missing character after escape")

// Split splits expr on unescaped ';'. "\;" yields a literal ';'; a backslash
// before any other character is kept together with that character. Empty
// segments are kept. An empty expression yields no patterns.
func Split(expr string) ([]string, error) {
	if expr == "" {
		return nil, nil
	}
	var (
		out []string
		b   strings.Builder
	)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch c {
		case escape:
			i++
			if i >= len(expr) {
				return nil, fmt.Errorf("%w: %q", ErrMissingEscape, expr)
			}
			if expr[i] != separator {
				b.WriteByte(escape)
			}
			b.WriteByte(expr[i])
		case separator:
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(out, b.String()), nil
}

// Join is the inverse of Split: it escapes ';' in each pattern and joins
// them with ';'.
func Join(patterns []string) string {
	escaped := make([]string, len(patterns))
	for i, p := range patterns {
		escaped[i] = strings.ReplaceAll(p, string(separator), string([]byte{escape, separator}))
	}
	return strings.Join(escaped, string(separator))
}

// Option configures Parse.
type Option func(*options)

type options struct {
	ignoreCase bool
}

// WithIgnoreCase makes every pattern case-insensitive.
func WithIgnoreCase() Option {
	return func(o *options) { o.ignoreCase = true }
}

// Filter is a compiled filter expression. It is safe for concurrent use.
type Filter struct {
	patterns  []string
	inclusion []*regexp.Regexp
	exclusion []*regexp.Regexp
}

// Parse compiles expr into a Filter. Empty patterns are skipped.
func Parse(expr string, opts ...Option) (*Filter, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	patterns, err := Split(expr)
	if err != nil {
		return nil, err
	}

	f := &Filter{patterns: patterns}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		exclude := false
		switch p[0] {
		case '-':
			exclude = true
			p = p[1:]
		case '+':
			p = p[1:]
		}
		if p == "" {
			continue
		}
		if o.ignoreCase {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("namefilter: pattern %q: %w", p, err)
		}
		if exclude {
			f.exclusion = append(f.exclusion, re)
		} else {
			f.inclusion = append(f.inclusion, re)
		}
	}
	return f, nil
}

// MustParse is like Parse but panics on error. It is meant for constant
// expressions.
func MustParse(expr string, opts ...Option) *Filter {
	f, err := Parse(expr, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Validate reports whether expr parses.
func Validate(expr string) error {
	_, err := Parse(expr)
	return err
}

// Match reports whether name passes the filter. A nil Filter matches
// everything.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}
	return f.IsIncluded(name) && !f.IsExcluded(name)
}

// IsIncluded reports whether name matches an inclusion, or true if there
// are none.
func (f *Filter) IsIncluded(name string) bool {
	if len(f.inclusion) == 0 {
		return true
	}
	for _, re := range f.inclusion {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether name matches any exclusion.
func (f *Filter) IsExcluded(name string) bool {
	for _, re := range f.exclusion {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Patterns returns the split patterns in order, prefixes included.
func (f *Filter) Patterns() []string {
	return append([]string(nil), f.patterns...)
}

// String returns the filter expression.
func (f *Filter) String() string {
	return Join(f.patterns)
}
