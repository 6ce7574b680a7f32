// Package ignore decides which storage keys are kept out of the content
// cache.
//
// Patterns are separated by semicolons. A pattern matches a whole key; "*"
// matches any run of characters, including "/" and the empty run. Every other
// character is literal.
package ignore

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/jmgilman/go/errors"
)

// Separator splits patterns in a configuration string.
const Separator = ";"

// Filter matches storage keys against a set of ignore patterns.
// The zero value and a nil *Filter ignore nothing.
type Filter struct {
	patterns []string
	globs    []glob.Glob
}

// New compiles a semicolon-separated pattern list.
func New(spec string) (*Filter, error) {
	f := &Filter{}
	for _, p := range strings.Split(spec, Separator) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := compile(p)
		if err != nil {
			return nil, errors.WithContext(
				errors.Wrap(err, errors.CodeInvalidConfig, "invalid ignore pattern"),
				"pattern", p,
			)
		}
		f.patterns = append(f.patterns, p)
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// MustNew is like New but panics on an invalid pattern.
func MustNew(spec string) *Filter {
	f, err := New(spec)
	if err != nil {
		panic(err)
	}
	return f
}

// compile quotes everything except "*" and compiles without separators, so
// the wildcard also crosses "/".
func compile(pattern string) (glob.Glob, error) {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = glob.QuoteMeta(part)
	}
	return glob.Compile(strings.Join(parts, "*"))
}

// Match reports whether key is ignored.
func (f *Filter) Match(key string) bool {
	if f == nil {
		return false
	}
	for _, g := range f.globs {
		if g.Match(key) {
			return true
		}
	}
	return false
}

// Patterns returns the configured patterns in order.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}

// Len returns the number of patterns.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.patterns)
}
