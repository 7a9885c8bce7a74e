// Package textfile reads the newline-delimited inputs of a pattern folder.
package textfile

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/afero"
)

const CommentPrefix = '#'

// Line is one meaningful line of a file. No is 1-based.
type Line struct {
	No   int
	Text string
}

type File struct {
	Path  string
	Data  []byte
	Lines []Line
}

// Texts returns the line texts in file order.
func (f *File) Texts() []string {
	out := make([]string, len(f.Lines))
	for i, line := range f.Lines {
		out[i] = line.Text
	}
	return out
}

// Load reads path in full and splits it with Parse. The file is closed
// before Load returns.
func Load(fsys afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%q: failed to read file: %w", path, err)
	}
	return &File{Path: path, Data: data, Lines: Parse(data)}, nil
}

// Parse splits data on '\n'. Trailing whitespace (including '\r') is
// trimmed; lines that start with '#' and lines left empty are dropped.
func Parse(data []byte) []Line {
	lines := make([]Line, 0, bytes.Count(data, []byte{'\n'})+1)
	no := 0
	for len(data) > 0 {
		no++
		raw, rest, _ := bytes.Cut(data, []byte{'\n'})
		data = rest

		if len(raw) > 0 && raw[0] == CommentPrefix {
			continue
		}
		text := strings.TrimRightFunc(string(raw), unicode.IsSpace)
		if text == "" {
			continue
		}
		lines = append(lines, Line{No: no, Text: text})
	}
	return lines
}
