package opc

// XML namespaces of the packaging vocabularies.
const (
	NamespaceContentTypes        = "http://schemas.openxmlformats.org/package/2006/content-types"
	NamespaceRelationships       = "http://schemas.openxmlformats.org/package/2006/relationships"
	NamespaceOfficeRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceCoreProperties      = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
)

// TargetMode tells whether a relationship points at a part in the package
// or at an external resource.
type TargetMode string

const (
	TargetModeInternal TargetMode = "Internal"
	TargetModeExternal TargetMode = "External"
)

// Content types.
const (
	ContentTypeBMP                = "image/bmp"
	ContentTypeGIF                = "image/gif"
	ContentTypeJPEG               = "image/jpeg"
	ContentTypePNG                = "image/png"
	ContentTypeTIFF               = "image/tiff"
	ContentTypeEMF                = "image/x-emf"
	ContentTypeWMF                = "image/x-wmf"
	ContentTypeMSPhoto            = "image/vnd.ms-photo"
	ContentTypeASF                = "video/x-ms-asf"
	ContentTypeAVI                = "video/x-msvideo"
	ContentTypeMOV                = "video/quicktime"
	ContentTypeMP4                = "video/mp4"
	ContentTypeMPG                = "video/mpeg"
	ContentTypeWMV                = "video/x-ms-wmv"
	ContentTypeVideo              = "video/unknown"
	ContentTypeFontData           = "application/x-fontdata"
	ContentTypeXML                = "application/xml"
	ContentTypeRelationships      = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeCoreProperties     = "application/vnd.openxmlformats-package.core-properties+xml"
	ContentTypeExtendedProperties = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ContentTypeCustomProperties   = "application/vnd.openxmlformats-officedocument.custom-properties+xml"
	ContentTypeTheme              = "application/vnd.openxmlformats-officedocument.theme+xml"
	ContentTypeChart              = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	ContentTypeSpreadsheet        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeOLEObject          = "application/vnd.openxmlformats-officedocument.oleObject"

	ContentTypePresentationMain = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ContentTypeSlideshowMain    = "application/vnd.openxmlformats-officedocument.presentationml.slideshow.main+xml"
	ContentTypeTemplateMain     = "application/vnd.openxmlformats-officedocument.presentationml.template.main+xml"
	ContentTypeSlide            = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ContentTypeSlideLayout      = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ContentTypeSlideMaster      = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ContentTypeNotesSlide       = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ContentTypeNotesMaster      = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ContentTypeHandoutMaster    = "application/vnd.openxmlformats-officedocument.presentationml.handoutMaster+xml"
	ContentTypePresProps        = "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"
	ContentTypeViewProps        = "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"
	ContentTypeTableStyles      = "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"

	ContentTypePMLPrinterSettings = "application/vnd.openxmlformats-officedocument.presentationml.printerSettings"
	ContentTypeSMLPrinterSettings = "application/vnd.openxmlformats-officedocument.spreadsheetml.printerSettings"
	ContentTypeWMLPrinterSettings = "application/vnd.openxmlformats-officedocument.wordprocessingml.printerSettings"
)

// Relationship types.
const (
	RelTypeCoreProperties     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelTypeThumbnail          = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/thumbnail"
	RelTypeOfficeDocument     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeExtendedProperties = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	RelTypeCustomProperties   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/custom-properties"
	RelTypeImage              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelTypeVideo              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/video"
	RelTypeAudio              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/audio"
	RelTypeMedia              = "http://schemas.microsoft.com/office/2007/relationships/media"
	RelTypeHyperlink          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelTypeTheme              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RelTypeChart              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"
	RelTypePackage            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/package"
	RelTypeOLEObject          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/oleObject"
	RelTypeSlide              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RelTypeSlideLayout        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RelTypeSlideMaster        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RelTypeNotesSlide         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	RelTypeNotesMaster        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	RelTypeHandoutMaster      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/handoutMaster"
	RelTypePresProps          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps"
	RelTypeViewProps          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/viewProps"
	RelTypeTableStyles        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/tableStyles"
)

// defaultContentTypes lists the (extension, content type) pairs written as
// <Default> elements on save. Any other pairing gets an <Override>.
var defaultContentTypes = map[[2]string]bool{
	{"bin", ContentTypePMLPrinterSettings}: true,
	{"bin", ContentTypeSMLPrinterSettings}: true,
	{"bin", ContentTypeWMLPrinterSettings}: true,
	{"bmp", ContentTypeBMP}:                true,
	{"emf", ContentTypeEMF}:                true,
	{"fntdata", ContentTypeFontData}:       true,
	{"gif", ContentTypeGIF}:                true,
	{"jpe", ContentTypeJPEG}:               true,
	{"jpeg", ContentTypeJPEG}:              true,
	{"jpg", ContentTypeJPEG}:               true,
	{"mov", ContentTypeMOV}:                true,
	{"mp4", ContentTypeMP4}:                true,
	{"mpg", ContentTypeMPG}:                true,
	{"png", ContentTypePNG}:                true,
	{"rels", ContentTypeRelationships}:     true,
	{"tif", ContentTypeTIFF}:               true,
	{"tiff", ContentTypeTIFF}:              true,
	{"vid", ContentTypeVideo}:              true,
	{"wdp", ContentTypeMSPhoto}:            true,
	{"wmf", ContentTypeWMF}:                true,
	{"wmv", ContentTypeWMV}:                true,
	{"xlsx", ContentTypeSpreadsheet}:       true,
	{"xml", ContentTypeXML}:                true,
}
