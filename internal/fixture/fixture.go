// Package fixture builds small OPC packages for tests.
package fixture

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"path"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

// Items maps member names ("ppt/slides/slide1.xml") to their content.
type Items map[string][]byte

const (
	relsHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	relsOpen   = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`
	relsClose  = `</Relationships>`

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCoreProperties = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

// Rel is one entry of a ".rels" item.
type Rel struct {
	ID, Type, Target string
	External         bool
}

// RelsXML serializes rels as a ".rels" item.
func RelsXML(rels ...Rel) []byte {
	var buf bytes.Buffer
	buf.WriteString(relsHeader)
	buf.WriteString(relsOpen)
	for _, r := range rels {
		buf.WriteString(`<Relationship Id="` + r.ID + `" Type="` + r.Type + `" Target="` + r.Target + `"`)
		if r.External {
			buf.WriteString(` TargetMode="External"`)
		}
		buf.WriteString(`/>`)
	}
	buf.WriteString(relsClose)
	return buf.Bytes()
}

const contentTypes = relsHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>` +
	`<Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>` +
	`<Override PartName="/ppt/slides/slide2.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const presentationXML = relsHeader +
	`<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
	`<p:sldIdLst><p:sldId id="256" r:id="rId1"/><p:sldId id="257" r:id="rId2"/><p:sldId id="258" r:id="rId3"/></p:sldIdLst>` +
	`</p:presentation>`

const slide1XML = relsHeader +
	`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
	`<p:cSld><p:spTree>` +
	`<p:pic><p:blipFill><a:blip r:embed="rId1"/></p:blipFill></p:pic>` +
	`<p:sp><p:txBody><a:p><a:r><a:rPr><a:hlinkClick r:id="rId2"/></a:rPr><a:t>link</a:t></a:r></a:p></p:txBody></p:sp>` +
	`</p:spTree></p:cSld></p:sld>`

const slide2XML = relsHeader +
	`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
	`<p:cSld><p:spTree>` +
	`<p:pic><p:blipFill><a:blip r:embed="rId1"/></p:blipFill></p:pic>` +
	`<p:pic><p:blipFill><a:blip r:embed="rId1"/></p:blipFill></p:pic>` +
	`</p:spTree></p:cSld></p:sld>`

const coreXML = relsHeader +
	`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
	`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
	`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
	`<dc:title>Quarterly Review</dc:title><dc:creator>Ops</dc:creator><cp:revision>3</cp:revision>` +
	`</cp:coreProperties>`

// HyperlinkURL is the External target of slide 1's hyperlink.
const HyperlinkURL = "https://example.com/"

// Presentation returns a small presentation package:
//
//	/_rels/.rels                        rId1 -> ppt/presentation.xml, rId2 -> docProps/core.xml
//	/ppt/presentation.xml               rId1, rId2 -> slides; rId3 -> slides/slide3.xml (absent)
//	/ppt/slides/slide1.xml              rId1 -> ../media/image1.png, rId2 -> HyperlinkURL (External)
//	/ppt/slides/slide2.xml              rId1 -> ../media/image1.png
//	/ppt/media/image1.png               4x3 PNG
//	/docProps/core.xml
//	/ppt/unreferenced.xml               reachable from nothing
func Presentation() Items {
	return Items{
		"[Content_Types].xml": []byte(contentTypes),
		"_rels/.rels": RelsXML(
			Rel{ID: "rId1", Type: relTypeOfficeDocument, Target: "ppt/presentation.xml"},
			Rel{ID: "rId2", Type: relTypeCoreProperties, Target: "docProps/core.xml"},
		),
		"ppt/presentation.xml": []byte(presentationXML),
		"ppt/_rels/presentation.xml.rels": RelsXML(
			Rel{ID: "rId1", Type: relTypeSlide, Target: "slides/slide1.xml"},
			Rel{ID: "rId2", Type: relTypeSlide, Target: "slides/slide2.xml"},
			Rel{ID: "rId3", Type: relTypeSlide, Target: "slides/slide3.xml"},
		),
		"ppt/slides/slide1.xml": []byte(slide1XML),
		"ppt/slides/_rels/slide1.xml.rels": RelsXML(
			Rel{ID: "rId1", Type: relTypeImage, Target: "../media/image1.png"},
			Rel{ID: "rId2", Type: relTypeHyperlink, Target: HyperlinkURL, External: true},
		),
		"ppt/slides/slide2.xml": []byte(slide2XML),
		"ppt/slides/_rels/slide2.xml.rels": RelsXML(
			Rel{ID: "rId1", Type: relTypeImage, Target: "../media/image1.png"},
		),
		"ppt/media/image1.png": PNG(4, 3),
		"docProps/core.xml":    []byte(coreXML),
		"ppt/unreferenced.xml": []byte(relsHeader + `<unreferenced/>`),
	}
}

// PNG returns a w x h PNG image.
func PNG(w, h int) []byte {
	img := imaging.New(w, h, color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff})
	return encode(img, imaging.PNG)
}

// JPEG returns a w x h JPEG image.
func JPEG(w, h int) []byte {
	img := imaging.New(w, h, color.NRGBA{R: 0x99, G: 0x66, B: 0x33, A: 0xff})
	return encode(img, imaging.JPEG)
}

func encode(img image.Image, format imaging.Format) []byte {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Clone returns a copy of items that can be modified independently.
func (items Items) Clone() Items {
	out := make(Items, len(items))
	for name, data := range items {
		out[name] = append([]byte(nil), data...)
	}
	return out
}

// Zip serializes items as a zip archive in member-name order.
func (items Items) Zip() []byte {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(items[name]); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WriteZip stores items as a zip archive at file on fs.
func (items Items) WriteZip(fs afero.Fs, file string) error {
	if err := fs.MkdirAll(path.Dir(file), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, file, items.Zip(), 0o644)
}

// WriteDir stores items as an expanded package below root on fs.
func (items Items) WriteDir(fs afero.Fs, root string) error {
	for name, data := range items {
		p := path.Join(root, name)
		if err := fs.MkdirAll(path.Dir(p), 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(fs, p, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
