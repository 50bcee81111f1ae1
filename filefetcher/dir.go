package filefetcher

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for names that resolve outside the DirFetcher root.
var ErrOutsideRoot = errors.New("path escapes root directory")

// DirFetcher resolves names relative to Root. Absolute names and names that
// climb out of Root with ".." are rejected.
type DirFetcher struct {
	Root string
	// Ext is appended to names that have no extension (e.g. ".html").
	Ext string
}

// NewDirFetcher returns a DirFetcher for root.
func NewDirFetcher(root, ext string) *DirFetcher {
	return &DirFetcher{Root: root, Ext: ext}
}

func (f *DirFetcher) FetchFile(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fetchErr(name, err)
	}
	path, err := f.resolve(name)
	if err != nil {
		return "", fetchErr(name, err)
	}
	return readLocal(path)
}

func (f *DirFetcher) resolve(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", ErrOutsideRoot
	}
	rel := filepath.Clean(filepath.FromSlash(name))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	if f.Ext != "" && filepath.Ext(rel) == "" {
		rel += f.Ext
	}
	return filepath.Join(f.Root, rel), nil
}
