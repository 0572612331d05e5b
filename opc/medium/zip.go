package medium

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yuanying/opcpkg/opc/packuri"
)

// ZipReader reads package items from a zip archive. Member names map to part
// names by prefixing a slash.
type ZipReader struct {
	zr     *zip.Reader
	closer io.Closer
	files  map[string]*zip.File
}

// NewZipReader reads a zip archive of the given size from r. Closing the
// returned reader does not close r.
func NewZipReader(r io.ReaderAt, size int64) (*ZipReader, error) {
	return newZipReader(r, size, nil)
}

func newZipReader(r io.ReaderAt, size int64, closer io.Closer) (*ZipReader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrPackageNotFound, err)
	}

	reader := &ZipReader{
		zr:     zr,
		closer: closer,
		files:  make(map[string]*zip.File, len(zr.File)),
	}

	// Build file map with normalized paths
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		reader.files[normalizeMember(f.Name)] = f
	}

	return reader, nil
}

// Contains reports whether the archive has a member for uri.
func (r *ZipReader) Contains(uri packuri.URI) bool {
	_, ok := r.files[uri.MemberName()]
	return ok
}

// Read returns the decompressed member uri names.
func (r *ZipReader) Read(uri packuri.URI) ([]byte, error) {
	f, ok := r.files[uri.MemberName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, uri)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", uri, err)
	}
	defer rc.Close()

	blob, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}
	return blob, nil
}

// URIs lists every archive member as a pack URI.
func (r *ZipReader) URIs() ([]packuri.URI, error) {
	uris := make([]packuri.URI, 0, len(r.files))
	for name := range r.files {
		uris = append(uris, packuri.URI("/"+name))
	}
	sort.Slice(uris, func(i, j int) bool { return uris[i] < uris[j] })
	return uris, nil
}

func (r *ZipReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ZipWriter writes package items as deflated zip members.
type ZipWriter struct {
	zw *zip.Writer
}

// NewZipWriter writes a zip archive to w. Closing the returned writer
// finishes the archive but does not close w.
func NewZipWriter(w io.Writer) *ZipWriter {
	return &ZipWriter{zw: zip.NewWriter(w)}
}

func (w *ZipWriter) Write(uri packuri.URI, blob []byte) error {
	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   uri.MemberName(),
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", uri, err)
	}
	if _, err := fw.Write(blob); err != nil {
		return fmt.Errorf("failed to write %s: %w", uri, err)
	}
	return nil
}

func (w *ZipWriter) Close() error {
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("failed to finish zip archive: %w", err)
	}
	return nil
}

// normalizeMember normalizes member names written by tools that use "./"
// prefixes or backslash separators.
func normalizeMember(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	return name
}
