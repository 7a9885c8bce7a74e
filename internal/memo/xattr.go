package memo

import (
	"bytes"
	"errors"
	"path/filepath"
	"syscall"

	"github.com/pkg/xattr"
	"github.com/rs/zerolog"
)

const DefaultName = "user.rxcollate.stamp"

// Xattr keeps stamps in an extended attribute of a file inside each
// folder. It works on real paths only, so it must not be paired with a
// non-OS afero filesystem.
type Xattr struct {
	Name   string
	File   string
	Logger zerolog.Logger
}

// NewXattr stores stamps on the file called target in each folder.
func NewXattr(target string, logger zerolog.Logger) *Xattr {
	return &Xattr{Name: DefaultName, File: target, Logger: logger}
}

func (x *Xattr) path(dir string) string {
	return filepath.Join(dir, x.File)
}

// Load returns the stamp of dir, if a complete one is stored.
func (x *Xattr) Load(dir string) (Stamp, bool) {
	var st Stamp
	raw, ok := x.maybeGet(x.path(dir))
	if !ok {
		return st, false
	}
	return st, st.Decode(raw, x.Logger)
}

// Save stores st on dir. Failures are logged, never returned: a build must
// not fail because the memo could not be written.
func (x *Xattr) Save(dir string, st Stamp) {
	var scratch [128]byte
	x.maybeSet(x.path(dir), st.Append(scratch[:0]))
}

// Forget removes any stamp from dir.
func (x *Xattr) Forget(dir string) {
	path := x.path(dir)
	err := xattr.Remove(path, x.Name)
	if err == nil || isNoAttr(err) {
		return
	}
	x.Logger.Error().
		Str("path", path).
		Str("xaName", x.Name).
		Err(err).
		Msg("removexattr failed")
}

func (x *Xattr) maybeGet(path string) ([]byte, bool) {
	value, err := xattr.Get(path, x.Name)
	if err == nil {
		x.Logger.Trace().
			Str("path", path).
			Str("xaName", x.Name).
			Bytes("xaValue", value).
			Msg("getxattr")
		return value, true
	}

	if isNoAttr(err) {
		return nil, false
	}

	x.Logger.Error().
		Str("path", path).
		Str("xaName", x.Name).
		Err(err).
		Msg("getxattr failed")
	return nil, false
}

func (x *Xattr) maybeSet(path string, value []byte) {
	existing, err := xattr.Get(path, x.Name)
	switch {
	case err == nil:
		if bytes.Equal(value, existing) {
			return
		}
	case isNoAttr(err):
		// pass
	default:
		x.Logger.Error().
			Str("path", path).
			Str("xaName", x.Name).
			Err(err).
			Msg("getxattr failed")
		return
	}

	err = xattr.Set(path, x.Name, value)
	if err == nil {
		x.Logger.Debug().
			Str("path", path).
			Str("xaName", x.Name).
			Bytes("xaValue", value).
			Msg("setxattr")
		return
	}

	x.Logger.Error().
		Str("path", path).
		Str("xaName", x.Name).
		Bytes("xaValue", value).
		Err(err).
		Msg("setxattr failed")
}

func isNoAttr(err error) bool {
	return errors.Is(err, xattr.ENOATTR) || errors.Is(err, syscall.ENODATA)
}
