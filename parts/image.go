package parts

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/opencontainers/go-digest"
	"github.com/yuanying/opcpkg/opc"
	"github.com/yuanying/opcpkg/opc/packuri"
)

const imagePartNameTmpl = "/ppt/media/image%d.%s"

// ImagePart is an image stored in the package, such as a picture on a
// slide.
type ImagePart struct {
	*opc.BasePart
	filename string
}

// NewImagePart creates an image part. filename is the name of the file the
// image came from and may be empty.
func NewImagePart(partName packuri.URI, contentType string, pkg *opc.Package, blob []byte, filename string) *ImagePart {
	return &ImagePart{
		BasePart: opc.NewBasePart(partName, contentType, pkg, blob),
		filename: filename,
	}
}

// LoadImagePart is the opc.Constructor for image content types.
func LoadImagePart(partName packuri.URI, contentType string, pkg *opc.Package, blob []byte) (opc.Part, error) {
	return NewImagePart(partName, contentType, pkg, blob, ""), nil
}

// Digest identifies the image by content. Two parts with equal digests hold
// the same bytes.
func (p *ImagePart) Digest() digest.Digest {
	blob, _ := p.Blob()
	return digest.FromBytes(blob)
}

// Filename returns the original file name, or "image.<ext>" for an image
// loaded from a package.
func (p *ImagePart) Filename() string {
	if p.filename != "" {
		return p.filename
	}
	return "image." + strings.ToLower(p.PartName().Ext())
}

// Dimensions returns the pixel size of the image with EXIF orientation
// applied.
func (p *ImagePart) Dimensions() (width, height int, err error) {
	blob, _ := p.Blob()
	img, err := imaging.Decode(bytes.NewReader(blob), imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, &opc.PartError{Op: "decode", PartName: p.PartName(), Err: err}
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

type imageFormat struct {
	mime        string
	contentType string
	ext         string
}

// sniffedImageFormats are the formats recognized from content.
var sniffedImageFormats = []imageFormat{
	{mime: "image/png", contentType: opc.ContentTypePNG, ext: "png"},
	{mime: "image/jpeg", contentType: opc.ContentTypeJPEG, ext: "jpg"},
	{mime: "image/gif", contentType: opc.ContentTypeGIF, ext: "gif"},
	{mime: "image/bmp", contentType: opc.ContentTypeBMP, ext: "bmp"},
	{mime: "image/tiff", contentType: opc.ContentTypeTIFF, ext: "tiff"},
	{mime: "image/vnd.ms-photo", contentType: opc.ContentTypeMSPhoto, ext: "wdp"},
}

// imageContentTypeByExt covers formats recognized only by file name.
var imageContentTypeByExt = map[string]string{
	"png":  opc.ContentTypePNG,
	"jpg":  opc.ContentTypeJPEG,
	"jpeg": opc.ContentTypeJPEG,
	"jpe":  opc.ContentTypeJPEG,
	"gif":  opc.ContentTypeGIF,
	"bmp":  opc.ContentTypeBMP,
	"tif":  opc.ContentTypeTIFF,
	"tiff": opc.ContentTypeTIFF,
	"emf":  opc.ContentTypeEMF,
	"wmf":  opc.ContentTypeWMF,
	"wdp":  opc.ContentTypeMSPhoto,
}

// detectImage returns the content type and part-name extension of blob.
// Content is sniffed first; the extension of filename decides for formats
// without a reliable signature.
func detectImage(blob []byte, filename string) (contentType, ext string, err error) {
	m := mimetype.Detect(blob)
	for _, f := range sniffedImageFormats {
		if m.Is(f.mime) {
			return f.contentType, f.ext, nil
		}
	}

	ext = strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ct, ok := imageContentTypeByExt[ext]; ok {
		return ct, ext, nil
	}
	return "", "", fmt.Errorf("%w: %s (detected %s)", ErrUnsupportedImage, filename, m.String())
}

// NextImagePartName returns "/ppt/media/image<n>.<ext>" with the lowest n
// not used by any reachable or adopted image part, whatever its extension.
func NextImagePartName(pkg *opc.Package, ext string) packuri.URI {
	return nextMediaName(pkg, "/ppt/media/image", imagePartNameTmpl, ext)
}

// GetOrAddImagePart returns the image part holding blob, creating one when
// no image part of the package has the same content. The new part is adopted
// by pkg and becomes reachable once a part relates to it; AddImageTo does
// both.
func GetOrAddImagePart(pkg *opc.Package, blob []byte, filename string) (*ImagePart, error) {
	dgst := digest.FromBytes(blob)
	for part := range pkg.IterAllParts() {
		if img, ok := part.(*ImagePart); ok && img.Digest() == dgst {
			return img, nil
		}
	}

	contentType, ext, err := detectImage(blob, filename)
	if err != nil {
		return nil, err
	}
	name := NextImagePartName(pkg, ext)
	pkg.Logger().Debug("adding image part", "part", name, "contentType", contentType, "digest", dgst)
	img := NewImagePart(name, contentType, pkg, blob, filename)
	pkg.Adopt(img)
	return img, nil
}

// AddImageTo relates source to the image part holding blob and returns the
// part with the rId of the relationship.
func AddImageTo(source opc.Part, blob []byte, filename string) (*ImagePart, string, error) {
	img, err := GetOrAddImagePart(source.Package(), blob, filename)
	if err != nil {
		return nil, "", err
	}
	return img, source.RelateTo(img, opc.RelTypeImage), nil
}

// nextMediaName returns tmpl filled with the lowest index not taken by a
// reachable or adopted part whose name starts with prefix.
func nextMediaName(pkg *opc.Package, prefix, tmpl, ext string) packuri.URI {
	used := make(map[int]bool)
	for part := range pkg.IterAllParts() {
		name := part.PartName()
		if !strings.HasPrefix(string(name), prefix) {
			continue
		}
		if idx, ok := name.Idx(); ok {
			used[idx] = true
		}
	}
	n := 1
	for used[n] {
		n++
	}
	return packuri.URI(fmt.Sprintf(tmpl, n, ext))
}
