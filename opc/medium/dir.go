package medium

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"github.com/yuanying/opcpkg/opc/packuri"
)

// DirReader reads package items from an expanded directory tree.
type DirReader struct {
	fs   afero.Fs
	root string
}

// NewDirReader reads items below root on fs.
func NewDirReader(fs afero.Fs, root string) *DirReader {
	return &DirReader{fs: fs, root: root}
}

func (r *DirReader) path(uri packuri.URI) string {
	return filepath.Join(r.root, filepath.FromSlash(uri.MemberName()))
}

// Contains reports whether uri names a regular file under the root.
func (r *DirReader) Contains(uri packuri.URI) bool {
	info, err := r.fs.Stat(r.path(uri))
	return err == nil && !info.IsDir()
}

// Read returns the content of the file uri names.
func (r *DirReader) Read(uri packuri.URI) ([]byte, error) {
	blob, err := afero.ReadFile(r.fs, r.path(uri))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}
	return blob, nil
}

// URIs lists every regular file under the root as a pack URI.
func (r *DirReader) URIs() ([]packuri.URI, error) {
	var uris []packuri.URI
	err := afero.Walk(r.fs, r.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.root, p)
		if err != nil {
			return err
		}
		uris = append(uris, packuri.URI("/"+filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.root, err)
	}
	sort.Slice(uris, func(i, j int) bool { return uris[i] < uris[j] })
	return uris, nil
}

func (r *DirReader) Close() error { return nil }

// DirWriter writes package items as files below a root directory.
type DirWriter struct {
	fs   afero.Fs
	root string
}

// NewDirWriter writes items below root on fs.
func NewDirWriter(fs afero.Fs, root string) *DirWriter {
	return &DirWriter{fs: fs, root: root}
}

func (w *DirWriter) Write(uri packuri.URI, blob []byte) error {
	p := filepath.Join(w.root, filepath.FromSlash(uri.MemberName()))
	if err := w.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", uri, err)
	}
	if err := afero.WriteFile(w.fs, p, blob, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", uri, err)
	}
	return nil
}

func (w *DirWriter) Close() error { return nil }
