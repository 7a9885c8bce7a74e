// Package pattern compiles the lines of a regex.txt file.
//
// The dialect is backtracking (regexp2), so lookarounds, backreferences and
// (?P<name>...) groups are accepted alongside the usual syntax.
package pattern

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/chronos-tachyon/rxcollate/internal/fold"
	"github.com/chronos-tachyon/rxcollate/internal/textfile"
)

const compileOptions = regexp2.IgnoreCase | regexp2.RE2

// Pattern is one compiled line. Source is the text exactly as written in
// the file; it is what ends up in the collation.
type Pattern struct {
	Source string
	Line   int
	rx     *regexp2.Regexp
}

// Matches reports whether the pattern occurs anywhere in s. Patterns
// anchor themselves with ^ and $ when they need to. The only error is a
// match timeout.
func (p Pattern) Matches(s string) (bool, error) {
	ok, err := p.rx.MatchString(s)
	if err != nil {
		return false, &TimeoutError{Source: p.Source, Line: p.Line, Err: err}
	}
	return ok, nil
}

// Set is the ordered pattern list of one folder.
type Set []Pattern

// Sources returns the source text of every pattern, in order.
func (set Set) Sources() []string {
	out := make([]string, len(set))
	for i, p := range set {
		out[i] = p.Source
	}
	return out
}

// Hits counts the patterns that match s.
func (set Set) Hits(s string) (int, error) {
	n := 0
	for _, p := range set {
		ok, err := p.Matches(s)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

type Options struct {
	// Fold runs each source line through fold.String before compiling.
	Fold bool

	// MatchTimeout bounds a single match. Zero means no limit.
	MatchTimeout time.Duration
}

// Compile compiles lines in order. folder and path only label errors.
func Compile(folder string, path string, lines []textfile.Line, opts Options) (Set, error) {
	set := make(Set, 0, len(lines))
	for _, line := range lines {
		expr := line.Text
		if opts.Fold {
			expr = fold.String(expr)
		}
		rx, err := regexp2.Compile(expr, compileOptions)
		if err != nil {
			return nil, &SyntaxError{
				Folder: folder,
				Path:   path,
				Line:   line.No,
				Source: line.Text,
				Err:    err,
			}
		}
		if opts.MatchTimeout > 0 {
			rx.MatchTimeout = opts.MatchTimeout
		}
		set = append(set, Pattern{Source: line.Text, Line: line.No, rx: rx})
	}
	return set, nil
}

// SyntaxError reports a line that is not a valid regular expression.
type SyntaxError struct {
	Folder string
	Path   string
	Line   int
	Source string
	Err    error
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("%q: line %d: invalid pattern %q in folder '%s': %v", err.Path, err.Line, err.Source, err.Folder, err.Err)
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

// TimeoutError reports a match that ran past Options.MatchTimeout.
type TimeoutError struct {
	Source string
	Line   int
	Err    error
}

func (err *TimeoutError) Error() string {
	return fmt.Sprintf("line %d: pattern %q: %v", err.Line, err.Source, err.Err)
}

func (err *TimeoutError) Unwrap() error {
	return err.Err
}
