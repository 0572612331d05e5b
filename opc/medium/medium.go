// Package medium provides byte-level access to the items of an OPC package,
// stored either as a zip archive or as an expanded directory tree.
package medium

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/yuanying/opcpkg/opc/packuri"
)

var (
	ErrPackageNotFound = errors.New("package not found")
	ErrItemNotFound    = errors.New("item not found")
)

// Reader reads the items of one physical package.
type Reader interface {
	Contains(uri packuri.URI) bool
	Read(uri packuri.URI) ([]byte, error)
	// URIs lists every item in the medium in sorted order.
	URIs() ([]packuri.URI, error)
	Close() error
}

// Writer stores items into one physical package. Close flushes the package.
type Writer interface {
	Write(uri packuri.URI, blob []byte) error
	Close() error
}

// Aborter is implemented by writers that can throw away everything written
// so far instead of committing it.
type Aborter interface {
	Abort() error
}

// PackageReader adds the OPC-specific lookups on top of a Reader.
type PackageReader struct {
	Reader
}

// NewPackageReader wraps r.
func NewPackageReader(r Reader) *PackageReader {
	return &PackageReader{Reader: r}
}

// ContentTypesBlob returns the content of "[Content_Types].xml".
func (r *PackageReader) ContentTypesBlob() ([]byte, error) {
	blob, err := r.Read(packuri.ContentTypesURI)
	if err != nil {
		return nil, fmt.Errorf("failed to read content types: %w", err)
	}
	return blob, nil
}

// RelsBlobFor returns the relationships item for uri, or nil when uri has
// no relationships item.
func (r *PackageReader) RelsBlobFor(uri packuri.URI) ([]byte, error) {
	relsURI := uri.RelsURI()
	if !r.Contains(relsURI) {
		return nil, nil
	}
	return r.Read(relsURI)
}

// OpenReader opens the package at path, choosing the directory reader when
// path is a directory and the zip reader when it is a zip archive.
func OpenReader(fs afero.Fs, path string) (Reader, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPackageNotFound, path, err)
	}
	if info.IsDir() {
		return NewDirReader(fs, path), nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPackageNotFound, path, err)
	}
	zr, err := newZipReader(f, info.Size(), f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return zr, nil
}

// CreateWriter creates a writer for a package at path. With asDir the items
// are written as files below path; otherwise a zip archive is written to a
// temporary file next to path and renamed into place on Close.
func CreateWriter(fs afero.Fs, path string, asDir bool) (Writer, error) {
	if asDir {
		if err := fs.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", path, err)
		}
		return NewDirWriter(fs, path), nil
	}
	return createZipFile(fs, path)
}

// fileZipWriter writes a zip archive into a temporary file and commits it by
// rename, so a failed save never leaves a truncated package at the target.
type fileZipWriter struct {
	*ZipWriter
	fs   afero.Fs
	f    afero.File
	dest string
}

func createZipFile(fs afero.Fs, path string) (*fileZipWriter, error) {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	f, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &fileZipWriter{
		ZipWriter: NewZipWriter(f),
		fs:        fs,
		f:         f,
		dest:      path,
	}, nil
}

func (w *fileZipWriter) Close() error {
	if err := w.ZipWriter.Close(); err != nil {
		w.discard()
		return err
	}
	if err := w.f.Close(); err != nil {
		w.fs.Remove(w.f.Name())
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := w.fs.Rename(w.f.Name(), w.dest); err != nil {
		w.fs.Remove(w.f.Name())
		return fmt.Errorf("failed to move package into place: %w", err)
	}
	return nil
}

func (w *fileZipWriter) Abort() error {
	w.discard()
	return nil
}

func (w *fileZipWriter) discard() {
	w.f.Close()
	w.fs.Remove(w.f.Name())
}

var _ Aborter = (*fileZipWriter)(nil)
