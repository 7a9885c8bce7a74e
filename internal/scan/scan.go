// Package scan discovers the folders of a pattern library.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/chronos-tachyon/rxcollate/internal/glob"
	"github.com/chronos-tachyon/rxcollate/internal/stack"
)

var ErrNotDir = errors.New("not a directory")

// Scanner walks directory trees on an afero filesystem.
//
// Siblings are visited in the order afero.ReadDir returns them, which is
// sorted by name for the OS and in-memory filesystems. Other afero backends
// make no such promise, so callers must not rely on sibling order.
type Scanner struct {
	fs      afero.Fs
	exclude glob.Set
	logger  zerolog.Logger
}

func New(fsys afero.Fs, logger zerolog.Logger) *Scanner {
	return &Scanner{fs: fsys, logger: logger}
}

// Exclude skips every directory whose root-relative path matches set,
// together with everything below it.
func (sc *Scanner) Exclude(set glob.Set) {
	sc.exclude = set
}

// Subdirectories returns every directory below root, depth first, each
// parent before its children. root itself is not included.
func (sc *Scanner) Subdirectories(root string) ([]string, error) {
	root = filepath.Clean(root)
	fi, err := sc.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%q: failed to stat root: %w", root, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%q: %w", root, ErrNotDir)
	}

	dirs := make([]string, 0, 64)
	work := stack.New[string](64)
	work.Push(root)
	for {
		dir, ok := work.Pop()
		if !ok {
			break
		}
		if dir != root {
			dirs = append(dirs, dir)
		}

		children, err := sc.childDirs(root, dir)
		if err != nil {
			return nil, err
		}
		work.PushReversed(children)
	}
	return dirs, nil
}

func (sc *Scanner) childDirs(root string, dir string) ([]string, error) {
	dents, err := afero.ReadDir(sc.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%q: failed to read directory: %w", dir, err)
	}

	children := make([]string, 0, len(dents))
	for _, dent := range dents {
		if !dent.IsDir() {
			continue
		}
		child := filepath.Join(dir, dent.Name())
		if sc.excluded(root, child) {
			sc.logger.Debug().
				Str("path", child).
				Msg("excluded directory")
			continue
		}
		children = append(children, child)
	}
	return children, nil
}

func (sc *Scanner) excluded(root string, dir string) bool {
	if len(sc.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return sc.exclude.Match(rel)
}

// SubfoldersContaining returns the Subdirectories of root that hold every
// one of names as a regular file.
func (sc *Scanner) SubfoldersContaining(root string, names []string) ([]string, error) {
	dirs, err := sc.Subdirectories(root)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		ok, err := sc.hasFiles(dir, names)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, dir)
		}
	}
	return out, nil
}

func (sc *Scanner) hasFiles(dir string, names []string) (bool, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		fi, err := sc.fs.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%q: failed to stat file: %w", path, err)
		}
		if !fi.Mode().IsRegular() {
			return false, nil
		}
	}
	return true, nil
}
