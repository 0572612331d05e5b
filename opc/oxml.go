package opc

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// xmlTypes maps the root element of "[Content_Types].xml".
type xmlTypes struct {
	XMLName   xml.Name      `xml:"Types"`
	Namespace string        `xml:"xmlns,attr"`
	Defaults  []xmlDefault  `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// xmlRelationships maps the root element of a ".rels" item.
type xmlRelationships struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Namespace     string            `xml:"xmlns,attr"`
	Relationships []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func (r xmlRelationship) targetMode() TargetMode {
	if r.TargetMode == string(TargetModeExternal) {
		return TargetModeExternal
	}
	return TargetModeInternal
}

// parseRelationships parses a ".rels" item. A nil blob stands for an absent
// item and yields an empty relationship list.
func parseRelationships(blob []byte) (*xmlRelationships, error) {
	rels := &xmlRelationships{}
	if blob == nil {
		return rels, nil
	}
	if err := xml.Unmarshal(blob, rels); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotXML, err)
	}
	return rels, nil
}

func parseTypes(blob []byte) (*xmlTypes, error) {
	var types xmlTypes
	if err := xml.Unmarshal(blob, &types); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotXML, err)
	}
	return &types, nil
}

// marshalPackageXML serializes v with the standalone declaration Office
// applications expect on packaging items.
func marshalPackageXML(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(xmlHeader) + len(out))
	buf.WriteString(xmlHeader)
	buf.Write(out)
	return buf.Bytes(), nil
}
