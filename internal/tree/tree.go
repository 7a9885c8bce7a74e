// Package tree converts a pattern library to and from a nested category
// document, the shape used to organise categories outside the filesystem.
package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/chronos-tachyon/rxcollate/internal/scan"
	"github.com/chronos-tachyon/rxcollate/internal/textfile"
)

var (
	ErrBadName   = errors.New("invalid category name")
	ErrExists    = errors.New("file already exists")
	ErrBadFormat = errors.New("unknown tree format")
)

// Node is one category. A leaf usually carries Patterns and Samples; an
// inner category usually carries only Children, but both may be set.
type Node struct {
	Name     string   `json:"name" yaml:"name"`
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Samples  []string `json:"samples,omitempty" yaml:"samples,omitempty"`
	Children []*Node  `json:"children,omitempty" yaml:"children,omitempty"`
}

// Child returns the direct child called name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants depth first. path is the
// slash-joined chain of names below n ("" for n itself).
func (n *Node) Walk(fn func(path string, node *Node) error) error {
	return n.walk("", fn)
}

func (n *Node) walk(path string, fn func(string, *Node) error) error {
	if err := fn(path, n); err != nil {
		return err
	}
	for _, c := range n.Children {
		childPath := c.Name
		if path != "" {
			childPath = path + "/" + c.Name
		}
		if err := c.walk(childPath, fn); err != nil {
			return err
		}
	}
	return nil
}

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrBadFormat)
	}
}

// FormatOf guesses the format from a file extension, defaulting to JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

func Encode(w io.Writer, root *Node, format Format) error {
	switch format {
	case JSON:
		e := json.NewEncoder(w)
		e.SetEscapeHTML(false)
		e.SetIndent("", "  ")
		return e.Encode(root)
	case YAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(root); err != nil {
			return err
		}
		return e.Close()
	default:
		return fmt.Errorf("%q: %w", string(format), ErrBadFormat)
	}
}

func Decode(r io.Reader, format Format) (*Node, error) {
	var root Node
	var err error
	switch format {
	case JSON:
		err = json.NewDecoder(r).Decode(&root)
	case YAML:
		err = yaml.NewDecoder(r).Decode(&root)
	default:
		return nil, fmt.Errorf("%q: %w", string(format), ErrBadFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s tree: %w", format, err)
	}
	return &root, nil
}

// Export reads every directory under root into a Node tree. Directories
// without pattern files still appear, as categories.
func Export(fsys afero.Fs, root string, regexName string, samplesName string, logger zerolog.Logger) (*Node, error) {
	root = filepath.Clean(root)
	dirs, err := scan.New(fsys, logger).Subdirectories(root)
	if err != nil {
		return nil, err
	}

	top := &Node{Name: filepath.Base(root)}
	nodes := map[string]*Node{root: top}
	if err := readLeaf(fsys, root, regexName, samplesName, top); err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		parent := nodes[filepath.Dir(dir)]
		if parent == nil {
			return nil, fmt.Errorf("%q: parent visited out of order", dir)
		}
		node := &Node{Name: filepath.Base(dir)}
		if err := readLeaf(fsys, dir, regexName, samplesName, node); err != nil {
			return nil, err
		}
		parent.Children = append(parent.Children, node)
		nodes[dir] = node
	}
	return top, nil
}

func readLeaf(fsys afero.Fs, dir string, regexName string, samplesName string, node *Node) error {
	var err error
	if node.Patterns, err = maybeLines(fsys, filepath.Join(dir, regexName)); err != nil {
		return err
	}
	node.Samples, err = maybeLines(fsys, filepath.Join(dir, samplesName))
	return err
}

func maybeLines(fsys afero.Fs, path string) ([]string, error) {
	fi, err := fsys.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%q: failed to stat file: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, nil
	}
	f, err := textfile.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	return f.Texts(), nil
}

type ImportOptions struct {
	RegexName   string
	SamplesName string
	// Overwrite replaces existing pattern and sample files.
	Overwrite bool
	Logger    zerolog.Logger
}

// Import materialises the tree below root: one directory per child node,
// with pattern and sample files for every node that carries lines. The
// name of the top node itself is ignored.
func Import(fsys afero.Fs, root string, top *Node, opts ImportOptions) error {
	root = filepath.Clean(root)
	return top.Walk(func(path string, node *Node) error {
		if path != "" && !validName(node.Name) {
			return fmt.Errorf("%q: %w", node.Name, ErrBadName)
		}
		dir := filepath.Join(root, filepath.FromSlash(path))
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%q: failed to create directory: %w", dir, err)
		}
		if err := writeLines(fsys, filepath.Join(dir, opts.RegexName), node.Patterns, opts); err != nil {
			return err
		}
		return writeLines(fsys, filepath.Join(dir, opts.SamplesName), node.Samples, opts)
	})
}

func validName(name string) bool {
	switch {
	case name == "", name == ".", name == "..":
		return false
	case strings.ContainsAny(name, `/\`):
		return false
	case strings.ContainsRune(name, 0):
		return false
	}
	return true
}

func writeLines(fsys afero.Fs, path string, lines []string, opts ImportOptions) error {
	if len(lines) == 0 {
		return nil
	}
	if !opts.Overwrite {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return fmt.Errorf("%q: failed to stat file: %w", path, err)
		}
		if exists {
			return fmt.Errorf("%q: %w", path, ErrExists)
		}
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := afero.WriteFile(fsys, path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("%q: failed to write file: %w", path, err)
	}
	opts.Logger.Debug().
		Str("path", path).
		Int("lines", len(lines)).
		Msg("wrote file")
	return nil
}
