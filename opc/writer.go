package opc

import (
	"log/slog"

	"github.com/yuanying/opcpkg/opc/medium"
	"github.com/yuanying/opcpkg/opc/packuri"
)

// packageWriter serializes a part graph through a medium.Writer. It only
// reads the graph.
type packageWriter struct {
	w      medium.Writer
	logger *slog.Logger
}

// write stores the content-type map first, then the package relationships,
// then each part followed by its relationships item when it has any.
func (pw *packageWriter) write(pkgRels *Relationships, parts []Part) error {
	ct, err := composeContentTypes(parts)
	if err != nil {
		return &PartError{Op: "serialize", PartName: packuri.ContentTypesURI, Err: err}
	}
	if err := pw.put(packuri.ContentTypesURI, ct); err != nil {
		return err
	}

	if err := pw.putRels(packuri.PackageURI, pkgRels); err != nil {
		return err
	}

	for _, part := range parts {
		blob, err := part.Blob()
		if err != nil {
			return &PartError{Op: "serialize", PartName: part.PartName(), Err: err}
		}
		if err := pw.put(part.PartName(), blob); err != nil {
			return err
		}
		if part.Rels().Len() == 0 {
			continue
		}
		if err := pw.putRels(part.PartName(), part.Rels()); err != nil {
			return err
		}
	}
	return nil
}

func (pw *packageWriter) putRels(owner packuri.URI, rels *Relationships) error {
	blob, err := rels.XML()
	if err != nil {
		return &PartError{Op: "serialize", PartName: owner.RelsURI(), Err: err}
	}
	return pw.put(owner.RelsURI(), blob)
}

func (pw *packageWriter) put(uri packuri.URI, blob []byte) error {
	if err := pw.w.Write(uri, blob); err != nil {
		return &PartError{Op: "write", PartName: uri, Err: err}
	}
	pw.logger.Debug("wrote item", "item", uri, "bytes", len(blob))
	return nil
}
