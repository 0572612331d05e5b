// Package opc implements the Open Packaging Convention engine: loading a
// package's part graph from a zip archive or expanded directory, querying
// and mutating its relationships, and writing it back.
package opc

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/yuanying/opcpkg/opc/medium"
	"github.com/yuanying/opcpkg/opc/packuri"
)

// Options holds the collaborators of a Package. The zero value is usable.
type Options struct {
	// Factory builds parts by content type. Nil builds every part as a
	// binary part.
	Factory *PartFactory
	// Logger receives load and save diagnostics. Nil discards them.
	Logger *slog.Logger
	// Fs is the filesystem Open and Save use. Nil means the OS filesystem.
	Fs afero.Fs
}

func (o Options) withDefaults() Options {
	if o.Factory == nil {
		o.Factory = NewPartFactory()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	return o
}

// Package is the root of the part graph. It owns every part reachable from
// its relationships.
type Package struct {
	relator
	factory *PartFactory
	logger  *slog.Logger
	fs      afero.Fs
	adopted []Part
}

// New returns an empty package.
func New(opts Options) *Package {
	opts = opts.withDefaults()
	return &Package{
		relator: relator{rels: NewRelationships(packuri.PackageURI.BaseURI())},
		factory: opts.Factory,
		logger:  opts.Logger,
		fs:      opts.Fs,
	}
}

// Open loads the package at path, a zip archive or an expanded directory.
func Open(path string, opts Options) (*Package, error) {
	pkg := New(opts)
	r, err := medium.OpenReader(pkg.fs, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := newPackageLoader(r, pkg).load(); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return pkg, nil
}

// OpenFrom loads a package from an already opened medium. The caller keeps
// ownership of r.
func OpenFrom(r medium.Reader, opts Options) (*Package, error) {
	pkg := New(opts)
	if err := newPackageLoader(r, pkg).load(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// OpenBytes loads a package from zip archive bytes.
func OpenBytes(data []byte, opts Options) (*Package, error) {
	zr, err := medium.NewZipReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return OpenFrom(zr, opts)
}

// Factory returns the factory the package builds parts with.
func (p *Package) Factory() *PartFactory { return p.factory }

// Logger returns the logger load and save diagnostics go to.
func (p *Package) Logger() *slog.Logger { return p.logger }

// Adopt records a part created for the package before any relationship
// reaches it. Adopted parts count for name allocation and content dedupe,
// but are only saved once they are reachable.
func (p *Package) Adopt(part Part) {
	if !slices.Contains(p.adopted, part) {
		p.adopted = append(p.adopted, part)
	}
}

// IterAllParts yields the parts IterParts yields, then every adopted part
// no relationship reaches.
func (p *Package) IterAllParts() iter.Seq[Part] {
	return func(yield func(Part) bool) {
		reachable := make(map[Part]bool)
		for part := range p.IterParts() {
			reachable[part] = true
			if !yield(part) {
				return
			}
		}
		for _, part := range p.adopted {
			if reachable[part] {
				continue
			}
			if !yield(part) {
				return
			}
		}
	}
}

// IterParts yields every part reachable from the package, depth first in
// rId order, each exactly once.
func (p *Package) IterParts() iter.Seq[Part] {
	return func(yield func(Part) bool) {
		visited := make(map[Part]bool)
		var walk func(rels *Relationships) bool
		walk = func(rels *Relationships) bool {
			for _, rel := range rels.All() {
				if rel.IsExternal() {
					continue
				}
				part := rel.target
				if visited[part] {
					continue
				}
				visited[part] = true
				if !yield(part) {
					return false
				}
				if !walk(part.Rels()) {
					return false
				}
			}
			return true
		}
		walk(p.Rels())
	}
}

// Parts returns the parts IterParts yields.
func (p *Package) Parts() []Part {
	return slices.Collect(p.IterParts())
}

// IterRels yields every relationship reachable from the package, External
// ones included. Each part's relationships are visited once.
func (p *Package) IterRels() iter.Seq[*Relationship] {
	return func(yield func(*Relationship) bool) {
		visited := make(map[Part]bool)
		var walk func(rels *Relationships) bool
		walk = func(rels *Relationships) bool {
			for _, rel := range rels.All() {
				if !yield(rel) {
					return false
				}
				if rel.IsExternal() {
					continue
				}
				part := rel.target
				if visited[part] {
					continue
				}
				visited[part] = true
				if !walk(part.Rels()) {
					return false
				}
			}
			return true
		}
		walk(p.Rels())
	}
}

// PartByName returns the reachable part named name.
func (p *Package) PartByName(name packuri.URI) (Part, bool) {
	for part := range p.IterParts() {
		if part.PartName() == name {
			return part, true
		}
	}
	return nil, false
}

// MainDocumentPart returns the target of the package's officeDocument
// relationship.
func (p *Package) MainDocumentPart() (Part, error) {
	return p.PartRelatedBy(RelTypeOfficeDocument)
}

// DropRel removes the package relationship rID unconditionally.
func (p *Package) DropRel(rID string) {
	p.rels.Pop(rID)
}

// NextPartName returns the lowest-numbered part name produced by tmpl, a
// format with a single %d such as "/ppt/slides/slide%d.xml", that no
// reachable or adopted part uses.
func (p *Package) NextPartName(tmpl string) (packuri.URI, error) {
	idx := strings.Index(tmpl, "%d")
	if idx < 0 || strings.Count(tmpl, "%") != 1 {
		return "", fmt.Errorf("%w: template %q must contain exactly one %%d", ErrInvalidPartName, tmpl)
	}
	if _, err := packuri.New(tmpl); err != nil {
		return "", err
	}

	prefix := tmpl[:idx]
	used := make(map[packuri.URI]bool)
	for part := range p.IterAllParts() {
		if strings.HasPrefix(string(part.PartName()), prefix) {
			used[part.PartName()] = true
		}
	}

	for n := 1; ; n++ {
		candidate := packuri.URI(fmt.Sprintf(tmpl, n))
		if !used[candidate] {
			return candidate, nil
		}
	}
}

// Save writes the package to path: into the directory when path is an
// existing directory, otherwise as a zip archive. A failed save leaves any
// existing file at path untouched.
func (p *Package) Save(path string) error {
	info, err := p.fs.Stat(path)
	return p.save(path, err == nil && info.IsDir())
}

// SaveDir writes the package as an expanded directory at path.
func (p *Package) SaveDir(path string) error {
	return p.save(path, true)
}

func (p *Package) save(path string, asDir bool) error {
	w, err := medium.CreateWriter(p.fs, path, asDir)
	if err != nil {
		return err
	}
	if err := p.SaveTo(w); err != nil {
		if a, ok := w.(medium.Aborter); ok {
			a.Abort()
		}
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// SaveTo writes every item of the package to w. It does not close w.
func (p *Package) SaveTo(w medium.Writer) error {
	pw := &packageWriter{w: w, logger: p.logger}
	return pw.write(p.Rels(), p.Parts())
}

// WriteTo writes the package as a zip archive to out.
func (p *Package) WriteTo(out io.Writer) (int64, error) {
	cw := &countingWriter{w: out}
	zw := medium.NewZipWriter(cw)
	if err := p.SaveTo(zw); err != nil {
		return cw.n, err
	}
	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
