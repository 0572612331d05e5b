package opc

import "github.com/yuanying/opcpkg/opc/packuri"

// Part is one item of the package graph. Implementations must be pointer
// types: parts are compared by identity when relationships are matched and
// when the graph is walked.
type Part interface {
	Relatable
	PartName() packuri.URI
	SetPartName(name packuri.URI)
	ContentType() string
	// Blob returns the serialized content of the part.
	Blob() ([]byte, error)
	Package() *Package
	// DropRel removes the relationship rID unless the part's content still
	// refers to it.
	DropRel(rID string)
}

// BasePart is a part with an opaque binary payload. Specialized parts embed
// it and override Blob and DropRel as needed.
type BasePart struct {
	relator
	partName    packuri.URI
	contentType string
	pkg         *Package
	blob        []byte
}

// NewBasePart creates a part with an empty relationship set.
func NewBasePart(partName packuri.URI, contentType string, pkg *Package, blob []byte) *BasePart {
	return &BasePart{
		relator:     relator{rels: NewRelationships(partName.BaseURI())},
		partName:    partName,
		contentType: contentType,
		pkg:         pkg,
		blob:        blob,
	}
}

// LoadBinaryPart is the Constructor for content types with no specialized
// part.
func LoadBinaryPart(partName packuri.URI, contentType string, pkg *Package, blob []byte) (Part, error) {
	return NewBasePart(partName, contentType, pkg, blob), nil
}

// PartName returns the part name.
func (p *BasePart) PartName() packuri.URI { return p.partName }

// SetPartName renames the part. Relationship targets are computed from part
// names on save, so references to the part follow the rename.
func (p *BasePart) SetPartName(name packuri.URI) {
	p.partName = name
	p.rels.baseURI = name.BaseURI()
}

// ContentType returns the MIME type recorded in [Content_Types].xml.
func (p *BasePart) ContentType() string { return p.contentType }

// Blob returns the payload as loaded or last set.
func (p *BasePart) Blob() ([]byte, error) { return p.blob, nil }

// SetBlob replaces the binary payload.
func (p *BasePart) SetBlob(blob []byte) { p.blob = blob }

// Package returns the package the part belongs to.
func (p *BasePart) Package() *Package { return p.pkg }

// DropRel removes rID. A binary payload cannot cite an rId, so removal is
// unconditional.
func (p *BasePart) DropRel(rID string) {
	p.rels.Pop(rID)
}
