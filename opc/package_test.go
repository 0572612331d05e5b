package opc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuanying/opcpkg/internal/fixture"
	"github.com/yuanying/opcpkg/opc/medium"
	"github.com/yuanying/opcpkg/opc/packuri"
)

func TestOpen_PartGraph(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	assert.Equal(t, []packuri.URI{
		"/ppt/presentation.xml",
		"/ppt/slides/slide1.xml",
		"/ppt/media/image1.png",
		"/ppt/slides/slide2.xml",
		"/docProps/core.xml",
	}, partNames(pkg.Parts()))

	main, err := pkg.MainDocumentPart()
	require.NoError(t, err)
	assert.EqualValues(t, "/ppt/presentation.xml", main.PartName())
	assert.Equal(t, ContentTypePresentationMain, main.ContentType())
	assert.IsType(t, &XMLPart{}, main)
	assert.Same(t, pkg, main.Package())

	image := mustPart(t, pkg, "/ppt/media/image1.png")
	assert.IsType(t, &BasePart{}, image)
	assert.Equal(t, ContentTypePNG, image.ContentType())
}

func TestOpen_SharedTargetIsOnePart(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	slide1 := mustPart(t, pkg, "/ppt/slides/slide1.xml")
	slide2 := mustPart(t, pkg, "/ppt/slides/slide2.xml")

	img1, err := slide1.RelatedPart("rId1")
	require.NoError(t, err)
	img2, err := slide2.RelatedPart("rId1")
	require.NoError(t, err)
	assert.Same(t, img1, img2)

	count := 0
	for part := range pkg.IterParts() {
		if part.PartName() == "/ppt/media/image1.png" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestOpen_TwoSlidesShareOneImage(t *testing.T) {
	items := fixture.Presentation()
	items["_rels/.rels"] = fixture.RelsXML(
		fixture.Rel{ID: "rId1", Type: RelTypeOfficeDocument, Target: "ppt/presentation.xml"},
	)
	pkg := openFixture(t, items)

	assert.Len(t, pkg.Parts(), 4)

	image := mustPart(t, pkg, "/ppt/media/image1.png")
	for _, name := range []packuri.URI{"/ppt/slides/slide1.xml", "/ppt/slides/slide2.xml"} {
		got, err := mustPart(t, pkg, name).RelatedPart("rId1")
		require.NoError(t, err)
		assert.Same(t, image, got, name)
	}
}

func TestOpen_DanglingRelationshipDropped(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	main, err := pkg.MainDocumentPart()
	require.NoError(t, err)
	assert.Equal(t, 2, main.Rels().Len())
	assert.False(t, main.Rels().Contains("rId3"))

	_, ok := pkg.PartByName("/ppt/slides/slide3.xml")
	assert.False(t, ok)
}

func TestOpen_ExternalRelationshipKept(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())
	slide1 := mustPart(t, pkg, "/ppt/slides/slide1.xml")

	rel, ok := slide1.Rels().Get("rId2")
	require.True(t, ok)
	assert.True(t, rel.IsExternal())
	assert.Equal(t, fixture.HyperlinkURL, rel.TargetRef())

	_, err := slide1.RelatedPart("rId2")
	assert.True(t, errors.Is(err, ErrExternalTarget))

	ref, err := slide1.TargetRef("rId2")
	require.NoError(t, err)
	assert.Equal(t, fixture.HyperlinkURL, ref)
}

func TestOpen_UnreachableItemIgnored(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	_, ok := pkg.PartByName("/ppt/unreferenced.xml")
	assert.False(t, ok)

	var buf bytes.Buffer
	_, err := pkg.WriteTo(&buf)
	require.NoError(t, err)

	zr, err := medium.NewZipReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.False(t, zr.Contains("/ppt/unreferenced.xml"))
}

func TestIterRels(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	type edge struct {
		rID    string
		target string
	}
	var got []edge
	for rel := range pkg.IterRels() {
		target := rel.TargetRef()
		if !rel.IsExternal() {
			name, err := rel.TargetPartName()
			require.NoError(t, err)
			target = string(name)
		}
		got = append(got, edge{rel.RID(), target})
	}

	assert.Equal(t, []edge{
		{"rId1", "/ppt/presentation.xml"},
		{"rId1", "/ppt/slides/slide1.xml"},
		{"rId1", "/ppt/media/image1.png"},
		{"rId2", fixture.HyperlinkURL},
		{"rId2", "/ppt/slides/slide2.xml"},
		{"rId1", "/ppt/media/image1.png"},
		{"rId2", "/docProps/core.xml"},
	}, got)
}

func TestIterParts_StopsEarly(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	var seen []packuri.URI
	for part := range pkg.IterParts() {
		seen = append(seen, part.PartName())
		if len(seen) == 2 {
			break
		}
	}
	assert.Len(t, seen, 2)
}

func TestOpen_CyclicRelationships(t *testing.T) {
	items := fixture.Presentation()
	items["ppt/slides/_rels/slide2.xml.rels"] = fixture.RelsXML(
		fixture.Rel{ID: "rId1", Type: RelTypeImage, Target: "../media/image1.png"},
		fixture.Rel{ID: "rId2", Type: RelTypeSlide, Target: "../presentation.xml"},
	)

	pkg := openFixture(t, items)
	assert.Len(t, pkg.Parts(), 5)

	slide2 := mustPart(t, pkg, "/ppt/slides/slide2.xml")
	back, err := slide2.RelatedPart("rId2")
	require.NoError(t, err)
	main, _ := pkg.MainDocumentPart()
	assert.Same(t, main, back)
}

func TestOpen_Errors(t *testing.T) {
	t.Run("missing content types", func(t *testing.T) {
		items := fixture.Presentation()
		delete(items, "[Content_Types].xml")
		_, err := OpenBytes(items.Zip(), Options{})
		assert.True(t, errors.Is(err, ErrPackageNotFound))
	})

	t.Run("not a zip", func(t *testing.T) {
		_, err := OpenBytes([]byte("plain text"), Options{})
		assert.Error(t, err)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Open("/nowhere/deck.pptx", Options{Fs: afero.NewMemMapFs()})
		assert.True(t, errors.Is(err, ErrPackageNotFound))
	})

	t.Run("no content type for part", func(t *testing.T) {
		items := fixture.Presentation()
		items["ppt/media/image1.gif"] = []byte("GIF89a")
		items["ppt/slides/_rels/slide2.xml.rels"] = fixture.RelsXML(
			fixture.Rel{ID: "rId1", Type: RelTypeImage, Target: "../media/image1.gif"},
		)
		_, err := OpenBytes(items.Zip(), Options{})
		assert.True(t, errors.Is(err, ErrNoContentType))

		var partErr *PartError
		require.True(t, errors.As(err, &partErr))
		assert.EqualValues(t, "/ppt/media/image1.gif", partErr.PartName)
	})

	t.Run("malformed xml part", func(t *testing.T) {
		items := fixture.Presentation()
		items["ppt/slides/slide2.xml"] = []byte("<p:sld><unclosed></p:sld>")
		_, err := OpenBytes(items.Zip(), Options{Factory: xmlFactory(t)})
		assert.True(t, errors.Is(err, ErrNotXML))
	})

	t.Run("malformed rels item", func(t *testing.T) {
		items := fixture.Presentation()
		items["ppt/_rels/presentation.xml.rels"] = []byte("<Relationships")
		_, err := OpenBytes(items.Zip(), Options{})
		assert.True(t, errors.Is(err, ErrNotXML))
	})
}

func TestOpen_Directory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fixture.Presentation().WriteDir(fs, "/work/deck"))

	pkg, err := Open("/work/deck", Options{Factory: xmlFactory(t), Fs: fs})
	require.NoError(t, err)
	assert.Len(t, pkg.Parts(), 5)
}

func TestSave_RoundTrip(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	var first bytes.Buffer
	n, err := pkg.WriteTo(&first)
	require.NoError(t, err)
	assert.EqualValues(t, first.Len(), n)

	reopened, err := OpenBytes(first.Bytes(), Options{Factory: xmlFactory(t)})
	require.NoError(t, err)
	assert.Equal(t, partNames(pkg.Parts()), partNames(reopened.Parts()))

	for part := range pkg.IterParts() {
		other := mustPart(t, reopened, part.PartName())
		assert.Equal(t, part.ContentType(), other.ContentType(), part.PartName())

		want, err := part.Blob()
		require.NoError(t, err)
		got, err := other.Blob()
		require.NoError(t, err)
		assert.Equal(t, want, got, part.PartName())

		wantRels, err := part.Rels().XML()
		require.NoError(t, err)
		gotRels, err := other.Rels().XML()
		require.NoError(t, err)
		assert.Equal(t, wantRels, gotRels, part.PartName())
	}

	var second bytes.Buffer
	_, err = reopened.WriteTo(&second)
	require.NoError(t, err)
	assert.Equal(t, first.Bytes(), second.Bytes(), "save of an unmodified package should be stable")
}

func TestSave_ItemOrder(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	w := &recordingWriter{}
	require.NoError(t, pkg.SaveTo(w))

	assert.Equal(t, []packuri.URI{
		"/[Content_Types].xml",
		"/_rels/.rels",
		"/ppt/presentation.xml",
		"/ppt/_rels/presentation.xml.rels",
		"/ppt/slides/slide1.xml",
		"/ppt/slides/_rels/slide1.xml.rels",
		"/ppt/media/image1.png",
		"/ppt/slides/slide2.xml",
		"/ppt/slides/_rels/slide2.xml.rels",
		"/docProps/core.xml",
	}, w.uris)
}

func TestSave_File(t *testing.T) {
	fs := afero.NewMemMapFs()
	pkg, err := Open("/in.pptx", Options{Factory: xmlFactory(t), Fs: fs})
	require.Error(t, err)
	require.Nil(t, pkg)

	require.NoError(t, fixture.Presentation().WriteZip(fs, "/in.pptx"))
	pkg, err = Open("/in.pptx", Options{Factory: xmlFactory(t), Fs: fs})
	require.NoError(t, err)

	require.NoError(t, pkg.Save("/out/deck.pptx"))
	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file should be renamed away")

	saved, err := Open("/out/deck.pptx", Options{Factory: xmlFactory(t), Fs: fs})
	require.NoError(t, err)
	assert.Equal(t, partNames(pkg.Parts()), partNames(saved.Parts()))
}

func TestSave_Directory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fixture.Presentation().WriteZip(fs, "/in.pptx"))
	pkg, err := Open("/in.pptx", Options{Factory: xmlFactory(t), Fs: fs})
	require.NoError(t, err)

	require.NoError(t, pkg.SaveDir("/expanded"))
	ok, err := afero.Exists(fs, "/expanded/ppt/slides/_rels/slide1.xml.rels")
	require.NoError(t, err)
	assert.True(t, ok)

	// An existing directory target is written as a directory.
	require.NoError(t, pkg.Save("/expanded"))

	reopened, err := Open("/expanded", Options{Factory: xmlFactory(t), Fs: fs})
	require.NoError(t, err)
	assert.Len(t, reopened.Parts(), 5)
}

func TestSave_FailureKeepsExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out.pptx", []byte("previous"), 0o644))

	pkg := New(Options{Fs: fs})
	pkg.RelateTo(&failingPart{BasePart: NewBasePart("/broken.bin", ContentTypeOLEObject, pkg, nil)}, RelTypeOfficeDocument)

	err := pkg.Save("/out.pptx")
	require.Error(t, err)

	data, err := afero.ReadFile(fs, "/out.pptx")
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNew_EmptyPackage(t *testing.T) {
	pkg := New(Options{})
	assert.Empty(t, pkg.Parts())
	assert.NotNil(t, pkg.Factory())
	assert.NotNil(t, pkg.Logger())

	_, err := pkg.MainDocumentPart()
	assert.True(t, errors.Is(err, ErrNotFound))

	doc := NewBasePart("/word/document.xml", ContentTypeXML, pkg, []byte("<w:document/>"))
	assert.Equal(t, "rId1", pkg.RelateTo(doc, RelTypeOfficeDocument))

	var buf bytes.Buffer
	_, err = pkg.WriteTo(&buf)
	require.NoError(t, err)

	reopened, err := OpenBytes(buf.Bytes(), Options{})
	require.NoError(t, err)
	main, err := reopened.MainDocumentPart()
	require.NoError(t, err)
	blob, err := main.Blob()
	require.NoError(t, err)
	assert.Equal(t, "<w:document/>", string(blob))
}

func TestPackage_DropRel(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())
	pkg.DropRel("rId2")
	assert.False(t, pkg.Rels().Contains("rId2"))

	_, ok := pkg.PartByName("/docProps/core.xml")
	assert.False(t, ok, "part is no longer reachable")
}

func TestXMLPart_DropRel(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	slide1 := mustPart(t, pkg, "/ppt/slides/slide1.xml").(*XMLPart)
	slide2 := mustPart(t, pkg, "/ppt/slides/slide2.xml").(*XMLPart)

	assert.Equal(t, 1, slide1.RelRefCount("rId1"))
	assert.Equal(t, 1, slide1.RelRefCount("rId2"), "r:id on hlinkClick counts")
	assert.Equal(t, 2, slide2.RelRefCount("rId1"))

	slide1.DropRel("rId1")
	assert.False(t, slide1.Rels().Contains("rId1"))

	slide2.DropRel("rId1")
	assert.True(t, slide2.Rels().Contains("rId1"), "still referenced twice")

	assert.Equal(t, 0, slide1.RelRefCount("rId9"))
}

func TestNextPartName(t *testing.T) {
	pkg := openFixture(t, fixture.Presentation())

	name, err := pkg.NextPartName("/ppt/slides/slide%d.xml")
	require.NoError(t, err)
	assert.EqualValues(t, "/ppt/slides/slide3.xml", name)

	name, err = pkg.NextPartName("/ppt/notesSlides/notesSlide%d.xml")
	require.NoError(t, err)
	assert.EqualValues(t, "/ppt/notesSlides/notesSlide1.xml", name)

	main, _ := pkg.MainDocumentPart()
	main.Rels().Pop("rId1")
	name, err = pkg.NextPartName("/ppt/slides/slide%d.xml")
	require.NoError(t, err)
	assert.EqualValues(t, "/ppt/slides/slide1.xml", name, "unreachable names are free")

	for _, tmpl := range []string{"ppt/slide%d.xml", "/ppt/slide.xml", "/ppt/slide%d-%d.xml", "/ppt/slide%s.xml"} {
		_, err := pkg.NextPartName(tmpl)
		assert.True(t, errors.Is(err, ErrInvalidPartName), tmpl)
	}
}

func TestPackage_Adopt(t *testing.T) {
	pkg := New(Options{})
	slide := NewBasePart("/ppt/slides/slide1.xml", ContentTypeSlide, pkg, nil)
	pkg.Adopt(slide)
	pkg.Adopt(slide)

	name, err := pkg.NextPartName("/ppt/slides/slide%d.xml")
	require.NoError(t, err)
	assert.EqualValues(t, "/ppt/slides/slide2.xml", name)
	assert.Empty(t, pkg.Parts(), "adopted parts stay unreachable")

	var all []Part
	for part := range pkg.IterAllParts() {
		all = append(all, part)
	}
	require.Len(t, all, 1)
	assert.Same(t, slide, all[0])

	pkg.RelateTo(slide, RelTypeOfficeDocument)
	all = all[:0]
	for part := range pkg.IterAllParts() {
		all = append(all, part)
	}
	assert.Len(t, all, 1, "a related adopted part is yielded once")
}

func TestPartFactory(t *testing.T) {
	f := NewPartFactory()
	custom := func(name packuri.URI, ct string, pkg *Package, blob []byte) (Part, error) {
		return NewBasePart(name, ct+";custom", pkg, blob), nil
	}
	require.NoError(t, f.Register(ContentTypeSlide, custom))

	part, err := f.Construct("/ppt/slides/slide1.xml", ContentTypeSlide, nil, []byte("<p:sld/>"))
	require.NoError(t, err)
	assert.Equal(t, ContentTypeSlide+";custom", part.ContentType())

	part, err = f.Construct("/ppt/media/image1.png", ContentTypePNG, nil, []byte("PNG"))
	require.NoError(t, err)
	assert.IsType(t, &BasePart{}, part)

	err = f.Register(ContentTypePNG, custom)
	assert.True(t, errors.Is(err, ErrFactorySealed))
	err = f.RegisterFallback(func(string) Constructor { return nil })
	assert.True(t, errors.Is(err, ErrFactorySealed))
}

type recordingWriter struct {
	uris []packuri.URI
}

func (w *recordingWriter) Write(uri packuri.URI, _ []byte) error {
	w.uris = append(w.uris, uri)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

type failingPart struct {
	*BasePart
}

func (p *failingPart) Blob() ([]byte, error) {
	return nil, errors.New("serialization failed")
}
