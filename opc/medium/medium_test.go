package medium

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuanying/opcpkg/opc/packuri"
)

func buildZip(t *testing.T, items map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range items {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

var sampleItems = map[string]string{
	"[Content_Types].xml":     `<Types/>`,
	"_rels/.rels":             `<Relationships/>`,
	"ppt/presentation.xml":    `<p:presentation/>`,
	"ppt/media/image1.png":    "PNG",
	"./ppt/slides/slide1.xml": `<p:sld/>`,
}

func TestOpenReader_Zip(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "deck.pptx", buildZip(t, sampleItems), 0o644))

	r, err := OpenReader(fs, "deck.pptx")
	require.NoError(t, err)
	defer r.Close()

	assert.IsType(t, &ZipReader{}, r)
	assert.True(t, r.Contains("/ppt/presentation.xml"))
	assert.True(t, r.Contains("/ppt/slides/slide1.xml"), "./ prefix should be normalized")
	assert.False(t, r.Contains("/ppt/slides/slide2.xml"))

	blob, err := r.Read("/ppt/media/image1.png")
	require.NoError(t, err)
	assert.Equal(t, "PNG", string(blob))

	_, err = r.Read("/missing.xml")
	assert.True(t, errors.Is(err, ErrItemNotFound))

	uris, err := r.URIs()
	require.NoError(t, err)
	assert.Equal(t, []packuri.URI{
		"/[Content_Types].xml",
		"/_rels/.rels",
		"/ppt/media/image1.png",
		"/ppt/presentation.xml",
		"/ppt/slides/slide1.xml",
	}, uris)
}

func TestOpenReader_Directory(t *testing.T) {
	fs := afero.NewMemMapFs()
	for name, content := range map[string]string{
		"expanded/[Content_Types].xml":  `<Types/>`,
		"expanded/_rels/.rels":          `<Relationships/>`,
		"expanded/ppt/presentation.xml": `<p:presentation/>`,
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	r, err := OpenReader(fs, "expanded")
	require.NoError(t, err)
	defer r.Close()

	assert.IsType(t, &DirReader{}, r)
	assert.True(t, r.Contains("/ppt/presentation.xml"))
	assert.False(t, r.Contains("/ppt"), "directories are not items")

	blob, err := r.Read("/ppt/presentation.xml")
	require.NoError(t, err)
	assert.Equal(t, `<p:presentation/>`, string(blob))

	_, err = r.Read("/ppt/nothing.xml")
	assert.True(t, errors.Is(err, ErrItemNotFound))

	uris, err := r.URIs()
	require.NoError(t, err)
	assert.Equal(t, []packuri.URI{
		"/[Content_Types].xml",
		"/_rels/.rels",
		"/ppt/presentation.xml",
	}, uris)
}

func TestDirReader_URIsOfMissingRoot(t *testing.T) {
	r := NewDirReader(afero.NewMemMapFs(), "gone")
	uris, err := r.URIs()
	assert.Error(t, err)
	assert.Nil(t, uris)
}

func TestOpenReader_PackageNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "notes.txt", []byte("not a zip file"), 0o644))

	_, err := OpenReader(fs, "notes.txt")
	assert.True(t, errors.Is(err, ErrPackageNotFound), "got %v", err)

	_, err = OpenReader(fs, "does-not-exist.pptx")
	assert.True(t, errors.Is(err, ErrPackageNotFound), "got %v", err)
}

func TestPackageReader(t *testing.T) {
	data := buildZip(t, sampleItems)
	zr, err := NewZipReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	r := NewPackageReader(zr)

	ct, err := r.ContentTypesBlob()
	require.NoError(t, err)
	assert.Equal(t, `<Types/>`, string(ct))

	rels, err := r.RelsBlobFor(packuri.PackageURI)
	require.NoError(t, err)
	assert.Equal(t, `<Relationships/>`, string(rels))

	rels, err = r.RelsBlobFor("/ppt/presentation.xml")
	require.NoError(t, err)
	assert.Nil(t, rels, "missing rels item is not an error")
}

func TestCreateWriter_ZipRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := CreateWriter(fs, "out/deck.pptx", false)
	require.NoError(t, err)
	require.NoError(t, w.Write("/ppt/presentation.xml", []byte("<a/>")))
	require.NoError(t, w.Write("/_rels/.rels", []byte("<b/>")))
	require.NoError(t, w.Close())

	r, err := OpenReader(fs, "out/deck.pptx")
	require.NoError(t, err)
	defer r.Close()
	uris, err := r.URIs()
	require.NoError(t, err)
	assert.Equal(t, []packuri.URI{"/_rels/.rels", "/ppt/presentation.xml"}, uris)

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be renamed into place")
}

func TestCreateWriter_Abort(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := CreateWriter(fs, "out/deck.pptx", false)
	require.NoError(t, err)
	require.NoError(t, w.Write("/ppt/presentation.xml", []byte("<a/>")))

	aborter, ok := w.(Aborter)
	require.True(t, ok)
	require.NoError(t, aborter.Abort())

	exists, err := afero.Exists(fs, "out/deck.pptx")
	require.NoError(t, err)
	assert.False(t, exists)
	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateWriter_Directory(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := CreateWriter(fs, "expanded", true)
	require.NoError(t, err)
	require.NoError(t, w.Write("/ppt/slides/slide1.xml", []byte("<s/>")))
	require.NoError(t, w.Close())

	blob, err := afero.ReadFile(fs, "expanded/ppt/slides/slide1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<s/>", string(blob))
}
