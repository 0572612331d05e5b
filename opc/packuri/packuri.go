// Package packuri implements part names: the absolute, slash-delimited paths
// that identify items inside an OPC package.
package packuri

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// URI is a part name such as "/ppt/slides/slide1.xml". It always begins with
// a slash and uses forward slashes regardless of platform.
type URI string

const (
	// PackageURI identifies the package itself; its relationships live at
	// "/_rels/.rels".
	PackageURI URI = "/"
	// ContentTypesURI is the item holding the content-type map.
	ContentTypesURI URI = "/[Content_Types].xml"
)

// ErrInvalid reports a part name that does not begin with a slash.
var ErrInvalid = errors.New("invalid pack URI")

var filenameIdxRe = regexp.MustCompile(`^[a-zA-Z]+([1-9][0-9]*)`)

// New validates s and returns it as a URI.
func New(s string) (URI, error) {
	if !strings.HasPrefix(s, "/") {
		return "", fmt.Errorf("%w: %q must begin with slash", ErrInvalid, s)
	}
	return URI(s), nil
}

// FromRelRef resolves a relationship target reference against baseURI.
// baseURI: directory of the source item (e.g., "/ppt/slides")
// ref: relative reference (e.g., "../media/image1.png")
// returns: absolute part name (e.g., "/ppt/media/image1.png")
func FromRelRef(baseURI, ref string) URI {
	if strings.HasPrefix(ref, "/") {
		return URI(path.Clean(ref))
	}
	return URI(path.Join(baseURI, ref))
}

func (u URI) String() string { return string(u) }

// BaseURI returns the directory portion, "/ppt/slides" for
// "/ppt/slides/slide1.xml". The package URI is its own base.
func (u URI) BaseURI() string {
	return path.Dir(string(u))
}

// Ext returns the extension without the leading period, "xml" for
// "/ppt/presentation.xml". The case is preserved.
func (u URI) Ext() string {
	return strings.TrimPrefix(path.Ext(u.Filename()), ".")
}

// Filename returns the final path segment; empty for the package URI.
func (u URI) Filename() string {
	s := string(u)
	return s[strings.LastIndex(s, "/")+1:]
}

// Idx returns the partname index, 21 for "/ppt/slides/slide21.xml". ok is
// false when the filename stem carries no trailing integer, as in
// "/ppt/presentation.xml".
func (u URI) Idx() (idx int, ok bool) {
	filename := u.Filename()
	if filename == "" {
		return 0, false
	}
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	m := filenameIdxRe.FindStringSubmatch(stem)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MemberName is the zip member name: the part name without its leading slash.
func (u URI) MemberName() string {
	return strings.TrimPrefix(string(u), "/")
}

// RelativeRef returns the reference to this part from an item whose
// directory is baseURI, e.g. "../slideLayouts/slideLayout1.xml" for
// "/ppt/slideLayouts/slideLayout1.xml" relative to "/ppt/slides".
func (u URI) RelativeRef(baseURI string) string {
	if baseURI == "/" {
		return u.MemberName()
	}
	return relPath(string(u), baseURI)
}

// RelsURI returns the part name of the relationships item for this part,
// "/ppt/slides/_rels/slide1.xml.rels" for "/ppt/slides/slide1.xml".
func (u URI) RelsURI() URI {
	return URI(path.Join(u.BaseURI(), "_rels", u.Filename()+".rels"))
}

func relPath(target, base string) string {
	t := segments(target)
	b := segments(base)

	i := 0
	for i < len(t) && i < len(b) && t[i] == b[i] {
		i++
	}

	parts := make([]string, 0, len(b)-i+len(t)-i)
	for range b[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, t[i:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

func segments(p string) []string {
	p = strings.Trim(path.Clean(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
