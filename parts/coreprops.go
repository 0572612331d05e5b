package parts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/yuanying/opcpkg/opc"
	"github.com/yuanying/opcpkg/opc/packuri"
)

// CorePropertiesPartName is where a new package keeps its core properties.
const CorePropertiesPartName packuri.URI = "/docProps/core.xml"

const (
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsDCTerms = "http://purl.org/dc/terms/"
	nsXSI     = "http://www.w3.org/2001/XMLSchema-instance"

	w3cdtfLayout = "2006-01-02T15:04:05Z"
)

var w3cdtfLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

var canonicalPrefix = map[string]string{
	opc.NamespaceCoreProperties: "cp",
	nsDC:                        "dc",
	nsDCTerms:                   "dcterms",
	nsXSI:                       "xsi",
}

// now is replaced in tests.
var now = time.Now

// CorePropertiesPart holds the Dublin Core metadata of the package
// (title, author, revision, timestamps).
type CorePropertiesPart struct {
	*opc.XMLPart
}

// LoadCorePropertiesPart is the opc.Constructor for the core-properties
// content type.
func LoadCorePropertiesPart(partName packuri.URI, contentType string, pkg *opc.Package, blob []byte) (opc.Part, error) {
	xp, err := opc.ParseXMLPart(partName, contentType, pkg, blob)
	if err != nil {
		return nil, err
	}
	return &CorePropertiesPart{XMLPart: xp}, nil
}

// NewCorePropertiesPart returns a part with the properties a new
// presentation starts with.
func NewCorePropertiesPart(pkg *opc.Package) *CorePropertiesPart {
	root := etree.NewElement("cp:coreProperties")
	root.CreateAttr("xmlns:cp", opc.NamespaceCoreProperties)
	root.CreateAttr("xmlns:dc", nsDC)
	root.CreateAttr("xmlns:dcterms", nsDCTerms)
	root.CreateAttr("xmlns:xsi", nsXSI)

	p := &CorePropertiesPart{
		XMLPart: opc.NewXMLPart(CorePropertiesPartName, opc.ContentTypeCoreProperties, pkg, opc.NewXMLDocument(root)),
	}
	p.SetTitle("PowerPoint Presentation")
	p.SetLastModifiedBy("opcpkg")
	p.setText(opc.NamespaceCoreProperties, "revision", "1")
	p.SetModified(now())
	return p
}

// CoreProperties returns the core-properties part of pkg, adding a default
// one when the package has none.
func CoreProperties(pkg *opc.Package) (*CorePropertiesPart, error) {
	part, err := pkg.PartRelatedBy(opc.RelTypeCoreProperties)
	switch {
	case err == nil:
		cp, ok := part.(*CorePropertiesPart)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T", ErrPartType, part.PartName(), part)
		}
		return cp, nil
	case !errors.Is(err, opc.ErrNotFound):
		return nil, err
	}

	cp := NewCorePropertiesPart(pkg)
	pkg.RelateTo(cp, opc.RelTypeCoreProperties)
	return cp, nil
}

// Title returns dc:title.
func (p *CorePropertiesPart) Title() string { return p.text(nsDC, "title") }

// SetTitle sets dc:title.
func (p *CorePropertiesPart) SetTitle(v string) { p.setText(nsDC, "title", v) }

// Subject returns dc:subject.
func (p *CorePropertiesPart) Subject() string { return p.text(nsDC, "subject") }

// SetSubject sets dc:subject.
func (p *CorePropertiesPart) SetSubject(v string) { p.setText(nsDC, "subject", v) }

// Author is stored as dc:creator.
func (p *CorePropertiesPart) Author() string { return p.text(nsDC, "creator") }

// SetAuthor sets dc:creator.
func (p *CorePropertiesPart) SetAuthor(v string) { p.setText(nsDC, "creator", v) }

// Comments is stored as dc:description.
func (p *CorePropertiesPart) Comments() string { return p.text(nsDC, "description") }

// SetComments sets dc:description.
func (p *CorePropertiesPart) SetComments(v string) { p.setText(nsDC, "description", v) }

// Identifier returns dc:identifier.
func (p *CorePropertiesPart) Identifier() string { return p.text(nsDC, "identifier") }

// SetIdentifier sets dc:identifier.
func (p *CorePropertiesPart) SetIdentifier(v string) { p.setText(nsDC, "identifier", v) }

// Language returns dc:language, an RFC 5646 tag such as "en-US".
func (p *CorePropertiesPart) Language() string { return p.text(nsDC, "language") }

// SetLanguage sets dc:language.
func (p *CorePropertiesPart) SetLanguage(v string) { p.setText(nsDC, "language", v) }

// Category returns cp:category.
func (p *CorePropertiesPart) Category() string { return p.text(opc.NamespaceCoreProperties, "category") }

// SetCategory sets cp:category.
func (p *CorePropertiesPart) SetCategory(v string) { p.setText(opc.NamespaceCoreProperties, "category", v) }

// ContentStatus returns cp:contentStatus, such as "Draft" or "Final".
func (p *CorePropertiesPart) ContentStatus() string { return p.text(opc.NamespaceCoreProperties, "contentStatus") }

// SetContentStatus sets cp:contentStatus.
func (p *CorePropertiesPart) SetContentStatus(v string) { p.setText(opc.NamespaceCoreProperties, "contentStatus", v) }

// Keywords returns cp:keywords as stored, without splitting it.
func (p *CorePropertiesPart) Keywords() string { return p.text(opc.NamespaceCoreProperties, "keywords") }

// SetKeywords sets cp:keywords.
func (p *CorePropertiesPart) SetKeywords(v string) { p.setText(opc.NamespaceCoreProperties, "keywords", v) }

// LastModifiedBy returns cp:lastModifiedBy.
func (p *CorePropertiesPart) LastModifiedBy() string { return p.text(opc.NamespaceCoreProperties, "lastModifiedBy") }

// SetLastModifiedBy sets cp:lastModifiedBy.
func (p *CorePropertiesPart) SetLastModifiedBy(v string) { p.setText(opc.NamespaceCoreProperties, "lastModifiedBy", v) }

// Version returns cp:version.
func (p *CorePropertiesPart) Version() string { return p.text(opc.NamespaceCoreProperties, "version") }

// SetVersion sets cp:version.
func (p *CorePropertiesPart) SetVersion(v string) { p.setText(opc.NamespaceCoreProperties, "version", v) }

// Revision returns the revision number, or 0 when it is absent or not a
// positive integer.
func (p *CorePropertiesPart) Revision() int {
	n, err := strconv.Atoi(p.text(opc.NamespaceCoreProperties, "revision"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// SetRevision stores n, which must be positive.
func (p *CorePropertiesPart) SetRevision(n int) error {
	if n < 1 {
		return fmt.Errorf("revision must be a positive integer, got %d", n)
	}
	p.setText(opc.NamespaceCoreProperties, "revision", strconv.Itoa(n))
	return nil
}

// Created returns the creation time. ok is false when it is absent or
// unparseable.
func (p *CorePropertiesPart) Created() (time.Time, bool) { return p.datetime(nsDCTerms, "created") }

// SetCreated sets dcterms:created.
func (p *CorePropertiesPart) SetCreated(t time.Time) { p.setDatetime(nsDCTerms, "created", t) }

// Modified returns the last modification time.
func (p *CorePropertiesPart) Modified() (time.Time, bool) { return p.datetime(nsDCTerms, "modified") }

// SetModified sets dcterms:modified.
func (p *CorePropertiesPart) SetModified(t time.Time) { p.setDatetime(nsDCTerms, "modified", t) }

// LastPrinted returns the time the document was last printed.
func (p *CorePropertiesPart) LastPrinted() (time.Time, bool) {
	return p.datetime(opc.NamespaceCoreProperties, "lastPrinted")
}

// SetLastPrinted sets cp:lastPrinted.
func (p *CorePropertiesPart) SetLastPrinted(t time.Time) {
	p.setDatetime(opc.NamespaceCoreProperties, "lastPrinted", t)
}

func (p *CorePropertiesPart) child(ns, local string) *etree.Element {
	for _, el := range p.Element().ChildElements() {
		if el.Tag == local && el.NamespaceURI() == ns {
			return el
		}
	}
	return nil
}

func (p *CorePropertiesPart) getOrAddChild(ns, local string) *etree.Element {
	if el := p.child(ns, local); el != nil {
		return el
	}
	return p.Element().CreateElement(p.prefix(ns) + ":" + local)
}

// prefix returns the prefix the root element binds to ns, declaring the
// canonical one when ns is not bound yet.
func (p *CorePropertiesPart) prefix(ns string) string {
	root := p.Element()
	for _, attr := range root.Attr {
		if attr.Space == "xmlns" && attr.Value == ns {
			return attr.Key
		}
	}
	prefix := canonicalPrefix[ns]
	root.CreateAttr("xmlns:"+prefix, ns)
	return prefix
}

func (p *CorePropertiesPart) text(ns, local string) string {
	el := p.child(ns, local)
	if el == nil {
		return ""
	}
	return el.Text()
}

func (p *CorePropertiesPart) setText(ns, local, value string) {
	p.getOrAddChild(ns, local).SetText(value)
}

func (p *CorePropertiesPart) datetime(ns, local string) (time.Time, bool) {
	s := strings.TrimSpace(p.text(ns, local))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range w3cdtfLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *CorePropertiesPart) setDatetime(ns, local string, t time.Time) {
	el := p.getOrAddChild(ns, local)
	el.SetText(t.UTC().Format(w3cdtfLayout))
	if ns == nsDCTerms {
		el.CreateAttr(p.prefix(nsXSI)+":type", p.prefix(nsDCTerms)+":W3CDTF")
	}
}
