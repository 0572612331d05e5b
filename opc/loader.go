package opc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuanying/opcpkg/opc/medium"
	"github.com/yuanying/opcpkg/opc/packuri"
)

// packageLoader builds the part graph of a package in two phases: it first
// walks the raw relationship items from the package root, then constructs
// every discovered part and wires each relationship set to the constructed
// targets.
type packageLoader struct {
	reader  *medium.PackageReader
	pkg     *Package
	factory *PartFactory
	logger  *slog.Logger

	xmlRels map[packuri.URI]*xmlRelationships
	order   []packuri.URI
	parts   map[packuri.URI]Part
}

func newPackageLoader(r medium.Reader, pkg *Package) *packageLoader {
	return &packageLoader{
		reader:  medium.NewPackageReader(r),
		pkg:     pkg,
		factory: pkg.factory,
		logger:  pkg.logger,
		xmlRels: make(map[packuri.URI]*xmlRelationships),
		parts:   make(map[packuri.URI]Part),
	}
}

func (l *packageLoader) load() error {
	ctBlob, err := l.reader.ContentTypesBlob()
	if err != nil {
		if errors.Is(err, medium.ErrItemNotFound) {
			return fmt.Errorf("%w: %w", ErrPackageNotFound, err)
		}
		return err
	}
	contentTypes, err := ParseContentTypes(ctBlob)
	if err != nil {
		return &PartError{Op: "parse", PartName: packuri.ContentTypesURI, Err: err}
	}

	if err := l.discoverRels(packuri.PackageURI); err != nil {
		return err
	}
	l.logger.Debug("discovered relationship items", "count", len(l.order))

	if err := l.constructParts(contentTypes); err != nil {
		return err
	}
	l.wire()
	l.logStrays()

	l.logger.Debug("loaded package", "parts", len(l.parts))
	return nil
}

// discoverRels records the raw relationships of source and, depth first, of
// every internal target not seen before. Targets without a relationships
// item get an empty list. The visited check also makes cyclic input
// terminate.
func (l *packageLoader) discoverRels(source packuri.URI) error {
	blob, err := l.reader.RelsBlobFor(source)
	if err != nil {
		return &PartError{Op: "read", PartName: source.RelsURI(), Err: err}
	}
	rels, err := parseRelationships(blob)
	if err != nil {
		return &PartError{Op: "parse", PartName: source.RelsURI(), Err: err}
	}

	l.xmlRels[source] = rels
	l.order = append(l.order, source)

	baseURI := source.BaseURI()
	for _, rel := range rels.Relationships {
		if rel.targetMode() == TargetModeExternal {
			continue
		}
		target := packuri.FromRelRef(baseURI, rel.Target)
		if _, visited := l.xmlRels[target]; visited {
			continue
		}
		if err := l.discoverRels(target); err != nil {
			return err
		}
	}
	return nil
}

// constructParts builds a part for every discovered part name that is
// present in the medium.
func (l *packageLoader) constructParts(contentTypes *ContentTypeMap) error {
	for _, name := range l.order {
		if name == packuri.PackageURI {
			continue
		}
		if !l.reader.Contains(name) {
			l.logger.Debug("relationship target not in package", "part", name)
			continue
		}

		ct, err := contentTypes.Lookup(name)
		if err != nil {
			return &PartError{Op: "load", PartName: name, Err: err}
		}
		blob, err := l.reader.Read(name)
		if err != nil {
			return &PartError{Op: "read", PartName: name, Err: err}
		}
		part, err := l.factory.Construct(name, ct, l.pkg, blob)
		if err != nil {
			return &PartError{Op: "load", PartName: name, Err: err}
		}
		l.parts[name] = part
	}
	return nil
}

// wire converts each raw relationship list into the owner's live set.
// Internal relationships to undiscovered or absent parts are dropped.
func (l *packageLoader) wire() {
	for _, name := range l.order {
		var rels *Relationships
		if name == packuri.PackageURI {
			rels = l.pkg.Rels()
		} else if part, ok := l.parts[name]; ok {
			rels = part.Rels()
		} else {
			continue
		}

		for _, d := range rels.load(l.xmlRels[name], l.parts) {
			l.logger.Debug("dropped dangling relationship",
				"owner", name, "rId", d.ID, "target", d.Target)
		}
	}
}

// logStrays reports items that no relationship reaches. They never become
// parts and are not written on save.
func (l *packageLoader) logStrays() {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	uris, err := l.reader.URIs()
	if err != nil {
		l.logger.Debug("failed to list items", "err", err)
		return
	}
	for _, uri := range uris {
		if uri == packuri.ContentTypesURI || isRelsItem(uri) {
			continue
		}
		if _, ok := l.parts[uri]; !ok {
			l.logger.Debug("unreachable item ignored", "item", uri)
		}
	}
}

func isRelsItem(uri packuri.URI) bool {
	s := string(uri)
	return strings.HasSuffix(s, ".rels") && strings.Contains(s, "/_rels/")
}
