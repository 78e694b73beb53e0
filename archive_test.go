package zimgo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/zimgo/blobstore"
	"github.com/hupe1980/zimgo/codec"
	"github.com/hupe1980/zimgo/search"
)

const (
	onePage = `<html><head><title>One</title></head><body><p>The quick brown fox jumps over the lazy dog.</p></body></html>`
	twoPage = `<html><head><title>Two</title></head><body><p>A slow green turtle walks under the lazy dog.</p></body></html>`
)

// buildArchive writes a small but complete archive and returns its
// path.
func buildArchive(t *testing.T, optFns ...Option) string {
	t.Helper()
	dest := filepath.Join(t.TempDir(), "test.zim")

	opts := append([]Option{WithIndexing("eng")}, optFns...)
	c, err := NewCreator(dest, opts...)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start())

	front := Hints{HintFrontArticle: 1}
	require.NoError(t, c.AddItem(NewStringItem("A/one", "One", "text/html", onePage).WithHints(front)))
	require.NoError(t, c.AddItem(NewStringItem("A/two", "Two", "text/html", twoPage).WithHints(front)))
	require.NoError(t, c.AddItem(NewStringItem("notes.txt", "Notes", "text/plain", "plain notes")))
	require.NoError(t, c.AddItem(
		NewBytesItem("raw.bin", "Raw", "application/octet-stream", []byte{0x00, 0x01, 0x02, 0xff}).
			WithHints(Hints{HintCompress: 0})))
	require.NoError(t, c.AddItem(NewStringItem("empty", "Empty", "text/plain", "")))
	require.NoError(t, c.AddRedirection("start", "Start", "A/one", front))

	require.NoError(t, c.AddMetadata(MetadataTitle, []byte("Test Archive")))
	require.NoError(t, c.AddMetadata(MetadataLanguage, []byte("eng")))
	require.NoError(t, c.AddIllustration(48, []byte("not really a png")))
	require.NoError(t, c.SetMainPath("A/one"))

	require.NoError(t, c.Finish())
	require.NoError(t, c.Close())
	return dest
}

func TestArchiveRoundTrip(t *testing.T) {
	dest := buildArchive(t)

	a, err := Open(dest)
	require.NoError(t, err)
	defer a.Close()

	require.NotEqual(t, uuid.Nil, a.UUID())
	require.Greater(t, a.EntryCount(), uint32(5))
	require.Equal(t, uint32(3), a.ArticleCount()) // two articles + front redirect

	// Content fidelity.
	item, err := a.Item("A/one")
	require.NoError(t, err)
	require.Equal(t, "text/html", item.Mimetype())
	require.Equal(t, int64(len(onePage)), item.Size())
	data, err := item.Data()
	require.NoError(t, err)
	require.Equal(t, onePage, string(data))

	// Uncompressed-hint item.
	item, err = a.Item("raw.bin")
	require.NoError(t, err)
	data, err = item.Data()
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x01, 0x02, 0xff}, data)

	// Zero-length item.
	item, err = a.Item("empty")
	require.NoError(t, err)
	require.Equal(t, int64(0), item.Size())
	data, err = item.Data()
	require.NoError(t, err)
	require.Empty(t, data)

	// Lookups.
	e, err := a.EntryByPath("A/two")
	require.NoError(t, err)
	require.Equal(t, "Two", e.Title())
	require.Equal(t, "C/A/two", e.FullPath())
	require.False(t, e.IsRedirect())

	_, err = a.EntryByPath("A/missing")
	require.ErrorIs(t, err, ErrNotFound)

	e, err = a.EntryByTitle("Notes")
	require.NoError(t, err)
	require.Equal(t, "notes.txt", e.Path())

	// Redirect resolution.
	e, err = a.EntryByPath("start")
	require.NoError(t, err)
	require.True(t, e.IsRedirect())
	target, err := e.Redirect()
	require.NoError(t, err)
	require.Equal(t, "A/one", target.Path())
	item, err = e.Item()
	require.NoError(t, err)
	require.Equal(t, "A/one", item.Path())

	// Main entry.
	require.True(t, a.HasMainEntry())
	main, err := a.MainEntry()
	require.NoError(t, err)
	require.Equal(t, "A/one", main.Path())

	// Metadata.
	title, err := a.Metadata(MetadataTitle)
	require.NoError(t, err)
	require.Equal(t, "Test Archive", string(title))

	_, err = a.Metadata("Nope")
	require.ErrorIs(t, err, ErrNotFound)

	keys, err := a.MetadataKeys()
	require.NoError(t, err)
	require.Contains(t, keys, "Title")
	require.Contains(t, keys, "Language")

	sizes, err := a.IllustrationSizes()
	require.NoError(t, err)
	require.Equal(t, []int{48}, sizes)
	png, err := a.Illustration(48)
	require.NoError(t, err)
	require.Equal(t, "not really a png", string(png))

	// Checksum.
	ok, err := a.Check()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestArchiveAllCodecs(t *testing.T) {
	for _, kind := range []codec.Kind{codec.None, codec.LZMA, codec.Zstd, codec.LZ4} {
		t.Run(kind.String(), func(t *testing.T) {
			dest := buildArchive(t, WithCompression(kind))

			a, err := Open(dest)
			require.NoError(t, err)
			defer a.Close()

			item, err := a.Item("A/two")
			require.NoError(t, err)
			data, err := item.Data()
			require.NoError(t, err)
			require.Equal(t, twoPage, string(data))

			ok, err := a.Check()
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestArchiveDeduplication(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dedup.zim")
	c, err := NewCreator(dest)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start())

	payload := "identical payload stored once"
	require.NoError(t, c.AddItem(NewStringItem("copy/1", "First", "text/plain", payload)))
	require.NoError(t, c.AddItem(NewStringItem("copy/2", "Second", "text/plain", payload)))
	require.NoError(t, c.Finish())

	a, err := Open(dest)
	require.NoError(t, err)
	defer a.Close()

	e1, err := a.EntryByPath("copy/1")
	require.NoError(t, err)
	e2, err := a.EntryByPath("copy/2")
	require.NoError(t, err)
	require.NotEqual(t, e1.Index(), e2.Index())

	for _, path := range []string{"copy/1", "copy/2"} {
		item, err := a.Item(path)
		require.NoError(t, err)
		data, err := item.Data()
		require.NoError(t, err)
		require.Equal(t, payload, string(data))
	}
}

func TestArchiveMultipleClusters(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "multi.zim")
	c, err := NewCreator(dest, WithClusterSize(256), WithWorkers(2))
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start())

	contents := make(map[string]string)
	for i := 0; i < 32; i++ {
		path := filepath.Join("bulk", string(rune('a'+i%26))+string(rune('0'+i/26)))
		body := ""
		for j := 0; j <= i; j++ {
			body += "lorem ipsum dolor sit amet "
		}
		contents[path] = body
		require.NoError(t, c.AddItem(NewStringItem(path, path, "text/plain", body)))
	}
	require.NoError(t, c.Finish())

	a, err := Open(dest)
	require.NoError(t, err)
	defer a.Close()

	require.Greater(t, a.ClusterCount(), uint32(1))
	for path, body := range contents {
		item, err := a.Item(path)
		require.NoError(t, err)
		data, err := item.Data()
		require.NoError(t, err)
		require.Equal(t, body, string(data), "path %s", path)
	}

	ok, err := a.Check()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestArchiveCheckDetectsCorruption(t *testing.T) {
	dest := buildArchive(t)

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	// Flip a byte in the last cluster, well past the directory
	// sections, so the archive still opens.
	raw[len(raw)-20] ^= 0xff
	require.NoError(t, os.WriteFile(dest, raw, 0o644))

	a, err := Open(dest)
	require.NoError(t, err)
	defer a.Close()

	ok, err := a.Check()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArchiveOpenRejectsGarbage(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "garbage.zim")
	require.NoError(t, os.WriteFile(dest, []byte("this is not a zim archive at all, not even close............"), 0o644))

	_, err := Open(dest)
	require.ErrorIs(t, err, ErrCorruptArchive)
}

func TestArchiveOpenStore(t *testing.T) {
	dest := buildArchive(t)
	ctx := context.Background()

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "remote.zim", raw))

	// Through the block cache, as a remote open would run.
	cached := blobstore.NewCachingStore(store, 1<<20, 4096)
	a, err := OpenStore(ctx, cached, "remote.zim")
	require.NoError(t, err)
	defer a.Close()

	item, err := a.Item("A/one")
	require.NoError(t, err)
	data, err := item.Data()
	require.NoError(t, err)
	require.Equal(t, onePage, string(data))

	ok, err := a.Check()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestArchivePublishRoundTrip(t *testing.T) {
	dest := buildArchive(t)
	ctx := context.Background()

	store := blobstore.NewMemoryStore()
	require.NoError(t, blobstore.Publish(ctx, store, "published.zim", dest, nil))

	a, err := OpenStore(ctx, store, "published.zim")
	require.NoError(t, err)
	defer a.Close()

	ok, err := a.Check()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestArchiveSearch(t *testing.T) {
	dest := buildArchive(t)

	a, err := Open(dest)
	require.NoError(t, err)
	defer a.Close()

	require.True(t, a.HasFulltextIndex())

	s, err := search.NewSearcher(a)
	require.NoError(t, err)
	require.Equal(t, "eng", s.Language())

	q, err := s.Search("quick fox")
	require.NoError(t, err)
	require.GreaterOrEqual(t, q.EstimatedMatches(), 1)

	it, err := q.Results(0, 1)
	require.NoError(t, err)
	require.True(t, it.Next())
	require.Equal(t, "A/one", it.Result().Path)
	require.Equal(t, "One", it.Result().Title)
	require.NoError(t, it.Err())

	// Both pages mention the lazy dog.
	q, err = s.Search("lazy dog")
	require.NoError(t, err)
	require.GreaterOrEqual(t, q.EstimatedMatches(), 2)

	q, err = s.Search("zebra")
	require.NoError(t, err)
	require.Equal(t, 0, q.EstimatedMatches())
}

func TestArchiveSuggestions(t *testing.T) {
	dest := buildArchive(t)

	a, err := Open(dest)
	require.NoError(t, err)
	defer a.Close()

	s, err := search.NewSuggestionSearcher(a)
	require.NoError(t, err)

	sg, err := s.Suggest("on")
	require.NoError(t, err)
	require.GreaterOrEqual(t, sg.EstimatedMatches(), 1)

	it := sg.Results(0, 5)
	require.True(t, it.Next())
	require.Equal(t, "One", it.Result().Title)
	require.NoError(t, it.Err())
}

func TestArchiveNoIndex(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "noindex.zim")
	c, err := NewCreator(dest)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start())
	require.NoError(t, c.AddItem(NewStringItem("a", "A", "text/plain", "x")))
	require.NoError(t, c.Finish())

	a, err := Open(dest)
	require.NoError(t, err)
	defer a.Close()

	require.False(t, a.HasFulltextIndex())
	require.Equal(t, uint32(0), a.ArticleCount())
	require.False(t, a.HasMainEntry())

	_, err = search.NewSearcher(a)
	require.ErrorIs(t, err, search.ErrNoIndex)
}

func TestFileProviderItem(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "big.txt")
	body := make([]byte, 3*1024)
	for i := range body {
		body[i] = byte('a' + i%26)
	}
	require.NoError(t, os.WriteFile(src, body, 0o644))

	provider, err := NewFileProvider(src)
	require.NoError(t, err)

	dest := filepath.Join(dir, "file.zim")
	c, err := NewCreator(dest)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start())

	require.NoError(t, c.AddItem(&fileItem{path: "big.txt", provider: provider}))
	require.NoError(t, c.Finish())

	a, err := Open(dest)
	require.NoError(t, err)
	defer a.Close()

	item, err := a.Item("big.txt")
	require.NoError(t, err)
	data, err := item.Data()
	require.NoError(t, err)
	require.Equal(t, body, data)
}

type fileItem struct {
	path     string
	provider ContentProvider
}

func (it *fileItem) Path() string                     { return it.path }
func (it *fileItem) Title() string                    { return "" }
func (it *fileItem) Mimetype() string                 { return "text/plain" }
func (it *fileItem) ContentProvider() ContentProvider { return it.provider }
func (it *fileItem) Hints() Hints                     { return nil }
