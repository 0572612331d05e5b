package opc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuanying/opcpkg/opc/packuri"
)

// ContentTypeMap resolves part names to content types using per-part
// overrides and per-extension defaults. Both lookups are case-insensitive.
type ContentTypeMap struct {
	overrides map[string]string
	defaults  map[string]string
}

// NewContentTypeMap returns an empty map.
func NewContentTypeMap() *ContentTypeMap {
	return &ContentTypeMap{
		overrides: make(map[string]string),
		defaults:  make(map[string]string),
	}
}

// ParseContentTypes parses the content of "[Content_Types].xml".
func ParseContentTypes(blob []byte) (*ContentTypeMap, error) {
	types, err := parseTypes(blob)
	if err != nil {
		return nil, err
	}

	m := NewContentTypeMap()
	for _, d := range types.Defaults {
		m.AddDefault(d.Extension, d.ContentType)
	}
	for _, o := range types.Overrides {
		m.AddOverride(packuri.URI(o.PartName), o.ContentType)
	}
	return m, nil
}

// AddDefault maps every part with extension ext (no leading period) to
// contentType unless an override says otherwise.
func (m *ContentTypeMap) AddDefault(ext, contentType string) {
	m.defaults[strings.ToLower(ext)] = contentType
}

// AddOverride maps partName to contentType.
func (m *ContentTypeMap) AddOverride(partName packuri.URI, contentType string) {
	m.overrides[strings.ToLower(string(partName))] = contentType
}

// Lookup returns the content type of partName. An override always wins over
// an extension default.
func (m *ContentTypeMap) Lookup(partName packuri.URI) (string, error) {
	if ct, ok := m.overrides[strings.ToLower(string(partName))]; ok {
		return ct, nil
	}
	if ct, ok := m.defaults[strings.ToLower(partName.Ext())]; ok {
		return ct, nil
	}
	return "", fmt.Errorf("%w: no content type for %s in %s", ErrNoContentType, partName, packuri.ContentTypesURI)
}

// composeContentTypes produces "[Content_Types].xml" for parts. A part whose
// (extension, content type) pair is a well-known default is covered by a
// <Default>; every other part gets an <Override>. Output is sorted so equal
// inputs serialize to identical bytes.
func composeContentTypes(parts []Part) ([]byte, error) {
	defaults := map[string]string{
		"rels": ContentTypeRelationships,
		"xml":  ContentTypeXML,
	}
	overrides := make(map[packuri.URI]string)

	for _, part := range parts {
		ext := strings.ToLower(part.PartName().Ext())
		ct := part.ContentType()
		if defaultContentTypes[[2]string{ext, ct}] {
			// An extension can carry only one default; a second well-known
			// type for the same extension (e.g. "bin") needs an override.
			if existing, ok := defaults[ext]; !ok || existing == ct {
				defaults[ext] = ct
				continue
			}
		}
		overrides[part.PartName()] = ct
	}

	types := xmlTypes{Namespace: NamespaceContentTypes}

	exts := make([]string, 0, len(defaults))
	for ext := range defaults {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		types.Defaults = append(types.Defaults, xmlDefault{Extension: ext, ContentType: defaults[ext]})
	}

	names := make([]packuri.URI, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, name := range names {
		types.Overrides = append(types.Overrides, xmlOverride{PartName: string(name), ContentType: overrides[name]})
	}

	return marshalPackageXML(&types)
}
