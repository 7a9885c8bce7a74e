package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-tachyon/rxcollate/internal/textfile"
)

func lines(texts ...string) []textfile.Line {
	out := make([]textfile.Line, len(texts))
	for i, text := range texts {
		out[i] = textfile.Line{No: i + 1, Text: text}
	}
	return out
}

func matches(t *testing.T, p Pattern, s string) bool {
	t.Helper()
	ok, err := p.Matches(s)
	require.NoError(t, err)
	return ok
}

func hits(t *testing.T, set Set, s string) int {
	t.Helper()
	n, err := set.Hits(s)
	require.NoError(t, err)
	return n
}

func TestCompile_OrderAndSources(t *testing.T) {
	set, err := Compile("A", "A/regex.txt", lines(`hello`, `wor+ld`, `^free \w+$`), Options{})
	require.NoError(t, err)
	require.Len(t, set, 3)
	assert.Equal(t, []string{`hello`, `wor+ld`, `^free \w+$`}, set.Sources())
	assert.Equal(t, 2, set[1].Line)
}

func TestPattern_CaseInsensitiveSearch(t *testing.T) {
	set, err := Compile("A", "A/regex.txt", lines(`hello`, `^free \w+$`), Options{})
	require.NoError(t, err)

	assert.True(t, matches(t, set[0], "well, HELLO there"))
	assert.False(t, matches(t, set[0], "goodbye"))

	assert.True(t, matches(t, set[1], "Free Gold"))
	assert.False(t, matches(t, set[1], "get Free Gold"))

	assert.Equal(t, 1, hits(t, set, "hello"))
	assert.Equal(t, 0, hits(t, set, "nothing"))
}

func TestPattern_BacktrackingSyntax(t *testing.T) {
	tests := []struct {
		name string
		expr string
		yes  string
		no   string
	}{
		{"negative lookahead", `foo(?!bar)`, "foo baz", "FOOBAR"},
		{"positive lookahead", `free(?= gold)`, "Free Gold", "free silver"},
		{"negative lookbehind", `(?<!not )spam`, "pure spam", "not spam"},
		{"backreference", `(\w)\1{2}`, "zzz top", "abc"},
		{"named group", `(?P<word>sc[a@]m)`, "SC@M alert", "scum"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set, err := Compile("A", "A/regex.txt", lines(tc.expr), Options{})
			require.NoError(t, err)
			assert.True(t, matches(t, set[0], tc.yes))
			assert.False(t, matches(t, set[0], tc.no))
		})
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile("scams/trade", "/lib/scams/trade/regex.txt", []textfile.Line{
		{No: 1, Text: `ok`},
		{No: 4, Text: `bad(`},
	}, Options{})
	require.Error(t, err)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "scams/trade", se.Folder)
	assert.Equal(t, 4, se.Line)
	assert.Equal(t, `bad(`, se.Source)
	assert.Contains(t, err.Error(), "line 4")
	assert.NotNil(t, errors.Unwrap(err))
}

func TestCompile_Fold(t *testing.T) {
	set, err := Compile("B", "B/regex.txt", lines(`café`), Options{Fold: true})
	require.NoError(t, err)
	assert.True(t, matches(t, set[0], "cafe"))
	assert.Equal(t, "café", set[0].Source)

	set, err = Compile("B", "B/regex.txt", lines(`café`), Options{})
	require.NoError(t, err)
	assert.False(t, matches(t, set[0], "cafe"))
}
