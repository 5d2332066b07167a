package components_test

import (
	"bytes"
	"context"
	"hash/crc32"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vispana/apppackage-client/components"
	"github.com/vispana/apppackage-client/remote/remotetest"
)

const contentURL = "http://cfg:19071/application/v2/tenant/default/application/default/content/"

func buildJar(t *testing.T, files map[string]string, names ...string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(f, files[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestBuildFromReader(t *testing.T) {
	files := map[string]string{
		"a/b.java":  "public class B {}",
		"a/c.class": "\xca\xfe\xba\xbe",
		"x.bin":     "\x00\x01\x02",
	}
	jar := buildJar(t, files, "a/", "a/b.java", "a/c.class", "x.bin")

	builder := components.NewBuilder(remotetest.NewGetter())
	fs := builder.BuildFromReader(bytes.NewReader(jar), "components.jar")

	assert.Equal(t, "components.jar", fs.ComponentArchiveName)
	assert.Equal(t, 3, fs.TotalFiles)
	require.NotNil(t, fs.Root)
	assert.Equal(t, components.RootName, fs.Root.Name)
	assert.False(t, fs.Root.IsLeaf)

	a, found := fs.Root.Search("a")
	require.True(t, found)
	assert.False(t, a.IsLeaf)
	assert.Len(t, a.Children, 2)

	b, err := fs.Root.Locate("a/b.java")
	require.NoError(t, err)
	assert.True(t, b.IsLeaf)
	assert.Equal(t, "public class B {}", b.ContentString())

	c, err := fs.Root.Locate("a/c.class")
	require.NoError(t, err)
	assert.Equal(t, components.BytecodePlaceholder("a/c.class"), c.ContentString())
	assert.Contains(t, c.ContentString(), "a/c.class")

	x, found := fs.Root.Search("x.bin")
	require.True(t, found)
	assert.True(t, x.IsLeaf)
	assert.Equal(t, components.BinaryPlaceholder("x.bin"), x.ContentString())
}

func TestBuildFromReaderCorruptEntry(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	// stored text entry with a wrong checksum
	f, err := w.CreateRaw(&zip.FileHeader{
		Name:               "broken.txt",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE([]byte("other")),
		CompressedSize64:   7,
		UncompressedSize64: 7,
	})
	require.NoError(t, err)
	_, err = io.WriteString(f, "payload")
	require.NoError(t, err)

	f, err = w.Create("ok.txt")
	require.NoError(t, err)
	_, err = io.WriteString(f, "fine")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	builder := components.NewBuilder(remotetest.NewGetter())
	fs := builder.BuildFromReader(bytes.NewReader(buf.Bytes()), "broken.jar")

	assert.Equal(t, 2, fs.TotalFiles)

	broken, found := fs.Root.Search("broken.txt")
	require.True(t, found)
	assert.Contains(t, broken.ContentString(), "// Error reading file content:")
	assert.Contains(t, broken.ContentString(), "checksum")

	ok, found := fs.Root.Search("ok.txt")
	require.True(t, found)
	assert.Equal(t, "fine", ok.ContentString())
}

func TestBuildFromReaderCorruptDeflatedEntries(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	// deflated entries with declared sizes whose data is not a deflate stream
	for _, name := range []string{"a/Broken.class", "a/Broken.java"} {
		f, err := w.CreateRaw(&zip.FileHeader{
			Name:               name,
			Method:             zip.Deflate,
			CompressedSize64:   8,
			UncompressedSize64: 32,
		})
		require.NoError(t, err)
		_, err = f.Write(bytes.Repeat([]byte{0xff}, 8))
		require.NoError(t, err)
	}

	f, err := w.Create("ok.txt")
	require.NoError(t, err)
	_, err = io.WriteString(f, "fine")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	builder := components.NewBuilder(remotetest.NewGetter())
	fs := builder.BuildFromReader(bytes.NewReader(buf.Bytes()), "corrupt.jar")

	assert.Equal(t, 3, fs.TotalFiles)
	assert.Equal(t, []string{"a", "ok.txt"}, fs.Root.Names())

	class, err := fs.Root.Locate("a/Broken.class")
	require.NoError(t, err)
	assert.Equal(t, components.BytecodePlaceholder("a/Broken.class"), class.ContentString())

	java, err := fs.Root.Locate("a/Broken.java")
	require.NoError(t, err)
	assert.Contains(t, java.ContentString(), "// Error reading file content:")

	ok, found := fs.Root.Search("ok.txt")
	require.True(t, found)
	assert.Equal(t, "fine", ok.ContentString())
}

func TestBuildFromReaderPathCollision(t *testing.T) {
	jar := buildJar(t, map[string]string{"a": "file", "a/b": "nested", "c.txt": "c"}, "a", "a/b", "c.txt")

	builder := components.NewBuilder(remotetest.NewGetter())
	fs := builder.BuildFromReader(bytes.NewReader(jar), "collision.jar")

	a, found := fs.Root.Search("a")
	require.True(t, found)
	assert.False(t, a.IsLeaf)

	files, _ := fs.Root.Count()
	assert.Equal(t, 2, files)
	assert.Equal(t, files, fs.TotalFiles)
}

func TestBuildFromReaderNotAnArchive(t *testing.T) {
	builder := components.NewBuilder(remotetest.NewGetter())
	fs := builder.BuildFromReader(bytes.NewReader([]byte("<html></html>")), "x.jar")

	require.NotNil(t, fs.Root)
	assert.Empty(t, fs.Root.Children)
	assert.Equal(t, 0, fs.TotalFiles)
}

func TestBuildFromArchiveDownloadFailure(t *testing.T) {
	builder := components.NewBuilder(remotetest.NewGetter())
	fs := builder.BuildFromArchive(context.Background(), contentURL+"components/missing.jar", "missing.jar")

	assert.Equal(t, "missing.jar", fs.ComponentArchiveName)
	assert.Nil(t, fs.Root)
	assert.Equal(t, 0, fs.TotalFiles)
}

func TestComponentFilesystem(t *testing.T) {
	getter := remotetest.NewGetter()
	getter.Listings[contentURL+"components/"] = []string{contentURL + "components/searcher-deploy.jar"}
	getter.Files[contentURL+"components/searcher-deploy.jar"] = buildJar(t,
		map[string]string{"META-INF/MANIFEST.MF": "Manifest-Version: 1.0"},
		"META-INF/MANIFEST.MF")

	builder := components.NewBuilder(getter)
	ctx := context.Background()

	assert.Equal(t, "searcher-deploy.jar", builder.ComponentArchiveName(ctx, contentURL))

	fs := builder.ComponentFilesystem(ctx, contentURL)
	assert.Equal(t, "searcher-deploy.jar", fs.ComponentArchiveName)
	assert.Equal(t, 1, fs.TotalFiles)

	manifest, err := fs.Root.Locate("META-INF/MANIFEST.MF")
	require.NoError(t, err)
	assert.Equal(t, "Manifest-Version: 1.0", manifest.ContentString())
}

func TestComponentFilesystemWithoutComponents(t *testing.T) {
	builder := components.NewBuilder(remotetest.NewGetter())

	fs := builder.ComponentFilesystem(context.Background(), contentURL)
	assert.Equal(t, "", fs.ComponentArchiveName)
	assert.Nil(t, fs.Root)
	assert.Equal(t, 0, fs.TotalFiles)
}
