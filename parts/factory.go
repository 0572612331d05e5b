// Package parts provides the specialized parts of a presentation package
// (images, media, core properties) and the factory that builds them on load.
package parts

import (
	"errors"
	"strings"

	"github.com/yuanying/opcpkg/opc"
)

var (
	// ErrUnsupportedImage means an image blob is in a format no image
	// content type covers.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrPartType means a related part was not built as the expected type,
	// usually because the package was opened without this factory.
	ErrPartType = errors.New("unexpected part type")
)

var imageContentTypes = []string{
	opc.ContentTypePNG,
	opc.ContentTypeJPEG,
	opc.ContentTypeGIF,
	opc.ContentTypeBMP,
	opc.ContentTypeTIFF,
	opc.ContentTypeEMF,
	opc.ContentTypeWMF,
	opc.ContentTypeMSPhoto,
}

var mediaContentTypes = []string{
	opc.ContentTypeASF,
	opc.ContentTypeAVI,
	opc.ContentTypeMOV,
	opc.ContentTypeMP4,
	opc.ContentTypeMPG,
	opc.ContentTypeWMV,
	opc.ContentTypeVideo,
}

// NewFactory returns a part factory that builds ImagePart, MediaPart and
// CorePropertiesPart for their content types and parses every other XML
// content type into an opc.XMLPart. Remaining types load as binary parts.
func NewFactory() *opc.PartFactory {
	f := opc.NewPartFactory()
	for _, ct := range imageContentTypes {
		must(f.Register(ct, LoadImagePart))
	}
	for _, ct := range mediaContentTypes {
		must(f.Register(ct, LoadMediaPart))
	}
	must(f.Register(opc.ContentTypeCoreProperties, LoadCorePropertiesPart))
	must(f.RegisterFallback(xmlFallback))
	return f
}

func xmlFallback(contentType string) opc.Constructor {
	if strings.HasSuffix(contentType, "+xml") || contentType == opc.ContentTypeXML {
		return opc.LoadXMLPart
	}
	return nil
}

// must panics on registration errors, which only a sealed factory returns.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
