// Package glob compiles shell-style path globs into anchored regexps.
//
// Supported syntax:
//
//	*      any run of characters except '/'
//	**     any run of characters, '/' included
//	?      one character except '/'
//	[...]  character class, passed through ('\' escapes inside)
//	{a,b}  alternation, may nest
//
// A glob that starts with '^' is taken as a raw regexp.
package glob

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	rxSlash    = `/+`
	rxQuestion = `[^/]`
	rxStar     = `[^/]*`
	rxStarStar = `.*`
)

var (
	ErrUnclosedClass = errors.New("unterminated character class [...]")
	ErrUnclosedBrace = errors.New("unterminated alternation {...}")
	ErrBackslash     = errors.New("unexpected character '\\'")
)

// Compile turns a glob into a regexp matching whole normalized paths.
func Compile(input string) (*regexp.Regexp, error) {
	input = norm.NFD.String(input)
	if strings.HasPrefix(input, "^") {
		return regexp.Compile(input)
	}

	src := []rune(input)
	var out strings.Builder
	out.Grow(len(input)*2 + 2)
	out.WriteByte('^')

	depth := 0
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case ch == '\\':
			return nil, fmt.Errorf("glob %q: %w", input, ErrBackslash)

		case ch == '/':
			for i+1 < len(src) && src[i+1] == '/' {
				i++
			}
			out.WriteString(rxSlash)

		case ch == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				i++
				out.WriteString(rxStarStar)
			} else {
				out.WriteString(rxStar)
			}

		case ch == '?':
			out.WriteString(rxQuestion)

		case ch == '[':
			end, class, err := compileClass(src, i)
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", input, err)
			}
			out.WriteString(class)
			i = end

		case ch == '{':
			depth++
			out.WriteString("(?:")

		case ch == ',' && depth > 0:
			out.WriteByte('|')

		case ch == '}' && depth > 0:
			depth--
			out.WriteByte(')')

		default:
			out.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	if depth > 0 {
		return nil, fmt.Errorf("glob %q: %w", input, ErrUnclosedBrace)
	}
	out.WriteByte('$')
	return regexp.Compile(out.String())
}

// compileClass translates the class opening at src[start] and returns the
// index of its closing ']'.
func compileClass(src []rune, start int) (int, string, error) {
	var out strings.Builder
	out.WriteByte('[')
	i := start + 1
	if i < len(src) && src[i] == '^' {
		out.WriteByte('^')
		i++
	}
	for ; i < len(src); i++ {
		switch ch := src[i]; ch {
		case '\\':
			i++
			if i >= len(src) {
				return 0, "", ErrUnclosedClass
			}
			out.WriteByte('\\')
			out.WriteRune(src[i])
		case ']':
			out.WriteByte(']')
			return i, out.String(), nil
		default:
			out.WriteRune(ch)
		}
	}
	return 0, "", ErrUnclosedClass
}

// Normalize cleans path into the slash-separated NFD form that compiled
// globs are matched against.
func Normalize(path string) string {
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	return norm.NFD.String(path)
}

// Set is an ordered list of compiled globs.
type Set []*regexp.Regexp

// CompileAll compiles every glob, stopping at the first bad one.
func CompileAll(globs []string) (Set, error) {
	set := make(Set, 0, len(globs))
	for _, g := range globs {
		rx, err := Compile(g)
		if err != nil {
			return nil, err
		}
		set = append(set, rx)
	}
	return set, nil
}

// Match reports whether any glob in the set matches path.
func (set Set) Match(path string) bool {
	if len(set) == 0 {
		return false
	}
	path = Normalize(path)
	for _, rx := range set {
		if rx.MatchString(path) {
			return true
		}
	}
	return false
}
