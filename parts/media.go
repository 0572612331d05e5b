package parts

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/opencontainers/go-digest"
	"github.com/yuanying/opcpkg/opc"
	"github.com/yuanying/opcpkg/opc/packuri"
)

const mediaPartNameTmpl = "/ppt/media/media%d.%s"

// MediaPart is an audio or video payload embedded in the package.
type MediaPart struct {
	*opc.BasePart
}

// LoadMediaPart is the opc.Constructor for media content types.
func LoadMediaPart(partName packuri.URI, contentType string, pkg *opc.Package, blob []byte) (opc.Part, error) {
	return &MediaPart{BasePart: opc.NewBasePart(partName, contentType, pkg, blob)}, nil
}

// Digest identifies the media by content.
func (p *MediaPart) Digest() digest.Digest {
	blob, _ := p.Blob()
	return digest.FromBytes(blob)
}

var mediaExtByContentType = map[string]string{
	opc.ContentTypeASF: "asf",
	opc.ContentTypeAVI: "avi",
	opc.ContentTypeMOV: "mov",
	opc.ContentTypeMP4: "mp4",
	opc.ContentTypeMPG: "mpg",
	opc.ContentTypeWMV: "wmv",
}

var sniffedMediaTypes = []struct {
	mime        string
	contentType string
}{
	{mime: "video/mp4", contentType: opc.ContentTypeMP4},
	{mime: "video/quicktime", contentType: opc.ContentTypeMOV},
	{mime: "video/x-msvideo", contentType: opc.ContentTypeAVI},
	{mime: "video/x-ms-asf", contentType: opc.ContentTypeASF},
	{mime: "video/mpeg", contentType: opc.ContentTypeMPG},
}

// detectMedia fills in whichever of contentType and ext the caller left
// empty. An unrecognized blob is "video/unknown" with extension "vid".
func detectMedia(blob []byte, filename, contentType string) (string, string) {
	if contentType == "" {
		contentType = opc.ContentTypeVideo
		m := mimetype.Detect(blob)
		for _, s := range sniffedMediaTypes {
			if m.Is(s.mime) {
				contentType = s.contentType
				break
			}
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = mediaExtByContentType[contentType]
	}
	if ext == "" {
		ext = "vid"
	}
	return contentType, ext
}

// NextMediaPartName returns "/ppt/media/media<n>.<ext>" with the lowest n
// not used by any reachable or adopted media part.
func NextMediaPartName(pkg *opc.Package, ext string) packuri.URI {
	return nextMediaName(pkg, "/ppt/media/media", mediaPartNameTmpl, ext)
}

// GetOrAddMediaPart returns the media part holding blob, creating one when
// no media part of the package has the same content. An empty contentType is
// sniffed from blob. The new part is adopted by pkg.
func GetOrAddMediaPart(pkg *opc.Package, blob []byte, filename, contentType string) *MediaPart {
	dgst := digest.FromBytes(blob)
	for part := range pkg.IterAllParts() {
		if media, ok := part.(*MediaPart); ok && media.Digest() == dgst {
			return media
		}
	}

	contentType, ext := detectMedia(blob, filename, contentType)
	name := NextMediaPartName(pkg, ext)
	pkg.Logger().Debug("adding media part", "part", name, "contentType", contentType, "digest", dgst)
	media := &MediaPart{BasePart: opc.NewBasePart(name, contentType, pkg, blob)}
	pkg.Adopt(media)
	return media
}
