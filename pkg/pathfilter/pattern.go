// Package pathfilter decides which emitted build files are relevant for a
// reload notification.
//
// An ignore specification is absent, a single pattern, or a list of
// patterns. A single pattern defaults to a regular expression searched
// anywhere in the path, while list entries default to doublestar globs; a
// "re:" or "glob:" prefix (or a /slash-delimited/ expression) declares the
// kind explicitly.
package pathfilter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind is the matching primitive of a Pattern.
type Kind int

const (
	// KindRegexp matches when the expression is found anywhere in the path.
	KindRegexp Kind = iota

	// KindGlob matches when the whole slash-separated path matches the glob.
	KindGlob
)

// String returns the prefix used for the kind.
func (k Kind) String() string {
	switch k {
	case KindRegexp:
		return "re"
	case KindGlob:
		return "glob"
	default:
		return "unknown"
	}
}

// Pattern is a compiled path pattern of a declared kind.
type Pattern struct {
	kind Kind
	expr string
	re   *regexp.Regexp
}

// NewRegexp compiles a regular expression pattern.
func NewRegexp(expr string) (Pattern, error) {
	if expr == "" {
		return Pattern{}, ErrEmptyPattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	return Pattern{kind: KindRegexp, expr: expr, re: re}, nil
}

// NewGlob validates a doublestar glob pattern.
func NewGlob(expr string) (Pattern, error) {
	if expr == "" {
		return Pattern{}, ErrEmptyPattern
	}
	if !doublestar.ValidatePattern(expr) {
		return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, expr)
	}
	return Pattern{kind: KindGlob, expr: expr}, nil
}

// MustRegexp is like NewRegexp but panics on error.
func MustRegexp(expr string) Pattern {
	p, err := NewRegexp(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// MustGlob is like NewGlob but panics on error.
func MustGlob(expr string) Pattern {
	p, err := NewGlob(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse builds a Pattern from its textual form. Recognized forms:
//
//	re:<expr>       regular expression
//	regexp:<expr>   regular expression
//	glob:<expr>     doublestar glob
//	/<expr>/        regular expression
//	/<expr>/i       case-insensitive regular expression
//
// Anything else is compiled with the fallback kind.
func Parse(s string, fallback Kind) (Pattern, error) {
	switch {
	case strings.HasPrefix(s, "re:"):
		return NewRegexp(strings.TrimPrefix(s, "re:"))
	case strings.HasPrefix(s, "regexp:"):
		return NewRegexp(strings.TrimPrefix(s, "regexp:"))
	case strings.HasPrefix(s, "glob:"):
		return NewGlob(strings.TrimPrefix(s, "glob:"))
	case len(s) > 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/"):
		return NewRegexp(s[1 : len(s)-1])
	case len(s) > 3 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/i"):
		return NewRegexp("(?i)" + s[1:len(s)-2])
	}

	if fallback == KindGlob {
		return NewGlob(s)
	}
	return NewRegexp(s)
}

// Kind returns the declared matching primitive.
func (p Pattern) Kind() Kind {
	return p.kind
}

// String returns the pattern in its prefixed textual form, which Parse
// accepts back.
func (p Pattern) String() string {
	return p.kind.String() + ":" + p.expr
}

// Match reports whether path matches the pattern. Paths are compared in
// slash-separated form. The zero Pattern matches nothing.
func (p Pattern) Match(path string) bool {
	normalized := filepath.ToSlash(path)

	switch p.kind {
	case KindGlob:
		if p.expr == "" {
			return false
		}
		matched, err := doublestar.Match(p.expr, normalized)
		return err == nil && matched
	default:
		if p.re == nil {
			return false
		}
		return p.re.MatchString(normalized)
	}
}
