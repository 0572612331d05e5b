package opc

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/yuanying/opcpkg/opc/packuri"
)

// XMLPart is a part whose payload is an XML document, parsed on load and
// serialized on demand.
type XMLPart struct {
	*BasePart
	doc *etree.Document
}

// NewXMLPart creates a part around an already built document.
func NewXMLPart(partName packuri.URI, contentType string, pkg *Package, doc *etree.Document) *XMLPart {
	return &XMLPart{
		BasePart: NewBasePart(partName, contentType, pkg, nil),
		doc:      doc,
	}
}

// ParseXMLPart parses blob into an XMLPart. It fails with ErrNotXML when
// blob is not a well-formed document.
func ParseXMLPart(partName packuri.URI, contentType string, pkg *Package, blob []byte) (*XMLPart, error) {
	doc := newDocument()
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotXML, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrNotXML)
	}
	return NewXMLPart(partName, contentType, pkg, doc), nil
}

// LoadXMLPart is the Constructor for XML content types.
func LoadXMLPart(partName packuri.URI, contentType string, pkg *Package, blob []byte) (Part, error) {
	return ParseXMLPart(partName, contentType, pkg, blob)
}

// NewXMLDocument returns a document holding the standalone declaration and
// root, ready for NewXMLPart.
func NewXMLDocument(root *etree.Element) *etree.Document {
	doc := newDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.SetRoot(root)
	return doc
}

// newDocument returns a document that escapes tab, newline and carriage
// return in attribute values, and carriage return in text, so readers that
// normalize whitespace get the original characters back.
func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalAttrVal = true
	doc.WriteSettings.CanonicalText = true
	return doc
}

// Document returns the parsed document backing the part.
func (p *XMLPart) Document() *etree.Document { return p.doc }

// Element returns the root element.
func (p *XMLPart) Element() *etree.Element { return p.doc.Root() }

// Blob serializes the document.
func (p *XMLPart) Blob() ([]byte, error) {
	blob, err := p.doc.WriteToBytes()
	if err != nil {
		return nil, &PartError{Op: "serialize", PartName: p.PartName(), Err: err}
	}
	return blob, nil
}

// DropRel removes rID only when fewer than two attributes of the document
// still refer to it; the caller's own pending removal counts as one.
func (p *XMLPart) DropRel(rID string) {
	if p.RelRefCount(rID) < 2 {
		p.Rels().Pop(rID)
	}
}

// RelRefCount counts attributes in the office-relationships namespace
// (r:id, r:embed, r:link, ...) whose value is rID.
func (p *XMLPart) RelRefCount(rID string) int {
	root := p.doc.Root()
	if root == nil {
		return 0
	}
	return countRelRefs(root, rID)
}

func countRelRefs(el *etree.Element, rID string) int {
	n := 0
	for i := range el.Attr {
		attr := &el.Attr[i]
		if attr.Value == rID && attr.Space != "" && attr.NamespaceURI() == NamespaceOfficeRelationships {
			n++
		}
	}
	for _, child := range el.ChildElements() {
		n += countRelRefs(child, rID)
	}
	return n
}
