package zimgo

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hupe1980/zimgo/blobstore"
	"github.com/hupe1980/zimgo/internal/cache"
	"github.com/hupe1980/zimgo/internal/cluster"
	"github.com/hupe1980/zimgo/internal/format"
)

// DefaultClusterCacheSize bounds the decoded clusters kept in memory.
const DefaultClusterCacheSize = 32 << 20

type readerOptions struct {
	cacheBytes int64
	logger     *Logger
}

// ReaderOption configures an Archive at open time.
type ReaderOption func(*readerOptions)

// WithClusterCache sets the decoded-cluster cache capacity in bytes.
func WithClusterCache(bytes int64) ReaderOption {
	return func(o *readerOptions) {
		if bytes > 0 {
			o.cacheBytes = bytes
		}
	}
}

// WithReaderLogger sets the archive logger.
func WithReaderLogger(logger *Logger) ReaderOption {
	return func(o *readerOptions) { o.logger = logger }
}

// Archive is a read-only handle to one archive file. Safe for
// concurrent use.
type Archive struct {
	blob blobstore.Blob
	data []byte // whole-file view when the blob is mappable
	size int64

	header    *format.Header
	mimetypes []string

	urlPtrs     []byte
	titlePtrs   []byte
	clusterPtrs []byte

	clusters *cache.ClusterCache
	log      *Logger

	listingOnce sync.Once
	listing     []uint32
	listingErr  error
}

// Open opens the archive file at path. The file is memory-mapped.
func Open(path string, optFns ...ReaderOption) (*Archive, error) {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	return OpenStore(context.Background(), store, filepath.Base(path), optFns...)
}

// OpenStore opens the named archive from a blob store. For remote
// stores, wrap the store in a blobstore.CachingStore; entry lookups
// issue many small reads.
func OpenStore(ctx context.Context, store blobstore.Store, name string, optFns ...ReaderOption) (*Archive, error) {
	opts := readerOptions{cacheBytes: DefaultClusterCacheSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	log := opts.logger
	if log == nil {
		log = NoopLogger()
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		blob:     blob,
		size:     blob.Size(),
		clusters: cache.NewClusterCache(opts.cacheBytes),
		log:      log.WithArchive(name),
	}
	if m, ok := blob.(blobstore.Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			a.data = data
		}
	}

	if err := a.load(); err != nil {
		blob.Close()
		return nil, err
	}
	return a, nil
}

// load parses the header, MIME list and pointer sections.
func (a *Archive) load() error {
	raw, err := a.readRange(0, format.HeaderSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	h, err := format.DecodeHeader(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	if h.ChecksumPos+format.ChecksumSize > uint64(a.size) {
		return fmt.Errorf("%w: checksum position past end of file", ErrCorruptArchive)
	}
	a.header = h

	// The MIME list sits between the header and the first dirent; the
	// URL pointer position is a safe upper bound for its extent.
	if h.MimeListPos >= h.URLPtrPos || h.URLPtrPos > uint64(a.size) {
		return fmt.Errorf("%w: section layout", ErrCorruptArchive)
	}
	span, err := a.readRange(int64(h.MimeListPos), int64(h.URLPtrPos-h.MimeListPos))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	mimetypes, _, err := format.DecodeMimeList(span)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	a.mimetypes = mimetypes

	if a.urlPtrs, err = a.readRange(int64(h.URLPtrPos), 8*int64(h.EntryCount)); err != nil {
		return fmt.Errorf("%w: url pointers: %v", ErrCorruptArchive, err)
	}
	if a.titlePtrs, err = a.readRange(int64(h.TitlePtrPos), 4*int64(h.EntryCount)); err != nil {
		return fmt.Errorf("%w: title pointers: %v", ErrCorruptArchive, err)
	}
	if a.clusterPtrs, err = a.readRange(int64(h.ClusterPtrPos), 8*int64(h.ClusterCount)); err != nil {
		return fmt.Errorf("%w: cluster pointers: %v", ErrCorruptArchive, err)
	}
	return nil
}

// Close releases the underlying blob. Entries and items obtained from
// the archive must not be used afterwards.
func (a *Archive) Close() error {
	return a.blob.Close()
}

// UUID returns the archive's identity recorded at creation time.
func (a *Archive) UUID() uuid.UUID {
	return uuid.UUID(a.header.UUID)
}

// EntryCount returns the total number of entries, redirects included.
func (a *Archive) EntryCount() uint32 {
	return a.header.EntryCount
}

// ClusterCount returns the number of clusters.
func (a *Archive) ClusterCount() uint32 {
	return a.header.ClusterCount
}

// ArticleCount returns the number of front articles (the title
// listing's length). Archives without a listing report zero.
func (a *Archive) ArticleCount() uint32 {
	listing, err := a.TitleListing()
	if err != nil {
		return 0
	}
	return uint32(len(listing))
}

// readRange returns n bytes at off. For mapped archives this is a
// zero-copy slice into the mapping.
func (a *Archive) readRange(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > a.size {
		return nil, fmt.Errorf("range [%d, %d) outside file of %d bytes", off, off+n, a.size)
	}
	if a.data != nil {
		return a.data[off : off+n], nil
	}
	buf := make([]byte, n)
	if _, err := a.blob.ReadAt(buf, off); err != nil && n > 0 {
		return nil, err
	}
	return buf, nil
}

// direntAt decodes the dirent at URL-order index i.
func (a *Archive) direntAt(i uint32) (*format.Dirent, error) {
	if i >= a.header.EntryCount {
		return nil, fmt.Errorf("%w: entry index %d of %d", ErrNotFound, i, a.header.EntryCount)
	}
	off, err := format.DecodeURLPointer(a.urlPtrs, i)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	if a.data != nil {
		end := a.header.ChecksumPos
		if off >= end {
			return nil, fmt.Errorf("%w: dirent offset %d", ErrCorruptArchive, off)
		}
		d, err := format.DecodeDirent(a.data[off:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
		return d, nil
	}

	// Unmapped: read a growing window until the dirent fits.
	for n := int64(1024); ; n *= 2 {
		if max := a.size - int64(off); n > max {
			n = max
		}
		raw, err := a.readRange(int64(off), n)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
		d, err := format.DecodeDirent(raw)
		if err == nil {
			return d, nil
		}
		if n == a.size-int64(off) {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
	}
}

// mimetypeName resolves a dirent's mimetype table index.
func (a *Archive) mimetypeName(id uint16) string {
	if int(id) < len(a.mimetypes) {
		return a.mimetypes[id]
	}
	return ""
}

// clusterAt returns the decoded cluster i, consulting the LRU cache.
func (a *Archive) clusterAt(i uint32) (*cluster.Cluster, error) {
	if v, ok := a.clusters.Get(i); ok {
		return v.(*cluster.Cluster), nil
	}

	if i >= a.header.ClusterCount {
		return nil, fmt.Errorf("%w: cluster %d of %d", ErrCorruptArchive, i, a.header.ClusterCount)
	}
	start, err := format.DecodeClusterPointer(a.clusterPtrs, i)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	end := a.header.ChecksumPos
	if i+1 < a.header.ClusterCount {
		if end, err = format.DecodeClusterPointer(a.clusterPtrs, i+1); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
	}
	if end < start || end > a.header.ChecksumPos {
		return nil, fmt.Errorf("%w: cluster %d span [%d, %d)", ErrCorruptArchive, i, start, end)
	}

	raw, err := a.readRange(int64(start), int64(end-start))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	c, err := cluster.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: cluster %d: %v", ErrCorruptArchive, i, err)
	}
	a.clusters.Set(i, c)
	return c, nil
}

// blobData returns a copy of the blob at (cluster, blob). The copy
// detaches callers from the shared cluster cache.
func (a *Archive) blobData(clusterIdx, blobIdx uint32) ([]byte, error) {
	c, err := a.clusterAt(clusterIdx)
	if err != nil {
		return nil, err
	}
	data, err := c.Blob(blobIdx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return append([]byte(nil), data...), nil
}

// Check verifies the trailing MD5 checksum against the file contents.
// It returns false with a nil error when the file is intact but the
// checksum does not match.
func (a *Archive) Check() (bool, error) {
	h := md5.New()
	if a.data != nil {
		h.Write(a.data[:a.header.ChecksumPos])
	} else {
		r := io.NewSectionReader(a.blob, 0, int64(a.header.ChecksumPos))
		if _, err := io.Copy(h, r); err != nil {
			return false, err
		}
	}

	want, err := a.readRange(int64(a.header.ChecksumPos), format.ChecksumSize)
	if err != nil {
		return false, err
	}
	return bytes.Equal(h.Sum(nil), want), nil
}

// Metadata returns the value stored under the normalized metadata
// name.
func (a *Archive) Metadata(name string) ([]byte, error) {
	e, err := a.entryByURL(format.NamespaceMetadata, NormalizeMetadataName(name))
	if err != nil {
		return nil, err
	}
	item, err := e.Item()
	if err != nil {
		return nil, err
	}
	return item.Data()
}

// MetadataKeys returns all metadata names present, sorted.
func (a *Archive) MetadataKeys() ([]string, error) {
	lo, hi := a.namespaceRange(format.NamespaceMetadata)
	keys := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		d, err := a.direntAt(i)
		if err != nil {
			return nil, err
		}
		keys = append(keys, d.URL)
	}
	return keys, nil
}

// Illustration returns the PNG illustration of the given pixel size.
func (a *Archive) Illustration(size int) ([]byte, error) {
	return a.Metadata(IllustrationMetadataName(size))
}

// IllustrationSizes returns the available illustration sizes, sorted.
func (a *Archive) IllustrationSizes() ([]int, error) {
	keys, err := a.MetadataKeys()
	if err != nil {
		return nil, err
	}
	var sizes []int
	for _, key := range keys {
		if size, ok := illustrationSize(key); ok {
			sizes = append(sizes, size)
		}
	}
	sort.Ints(sizes)
	return sizes, nil
}

// HasFulltextIndex reports whether the archive carries a full-text
// index.
func (a *Archive) HasFulltextIndex() bool {
	_, err := a.entryByURL(format.NamespaceIndex, fulltextIndexPath)
	return err == nil
}

// FulltextIndex returns the raw full-text index payload.
func (a *Archive) FulltextIndex() ([]byte, error) {
	e, err := a.entryByURL(format.NamespaceIndex, fulltextIndexPath)
	if err != nil {
		return nil, err
	}
	item, err := e.Item()
	if err != nil {
		return nil, err
	}
	return item.Data()
}

// TitleListing returns the URL-order indices of front articles in
// title order. Parsed once and cached.
func (a *Archive) TitleListing() ([]uint32, error) {
	a.listingOnce.Do(func() {
		e, err := a.entryByURL(format.NamespaceIndex, titleListingPath)
		if err != nil {
			a.listingErr = err
			return
		}
		item, err := e.Item()
		if err != nil {
			a.listingErr = err
			return
		}
		raw, err := item.Data()
		if err != nil {
			a.listingErr = err
			return
		}
		if len(raw)%4 != 0 {
			a.listingErr = fmt.Errorf("%w: title listing length %d", ErrCorruptArchive, len(raw))
			return
		}
		listing := make([]uint32, len(raw)/4)
		for i := range listing {
			listing[i], _ = format.DecodeTitlePointer(raw, uint32(i))
		}
		a.listing = listing
	})
	return a.listing, a.listingErr
}

// PathAt returns the path of the entry at a URL-order index.
func (a *Archive) PathAt(urlIndex uint32) (string, error) {
	d, err := a.direntAt(urlIndex)
	if err != nil {
		return "", err
	}
	return d.URL, nil
}

// TitleAt returns the title of the entry at a URL-order index.
func (a *Archive) TitleAt(urlIndex uint32) (string, error) {
	d, err := a.direntAt(urlIndex)
	if err != nil {
		return "", err
	}
	return d.DisplayTitle(), nil
}

// namespaceRange returns the half-open URL-order index range of a
// namespace.
func (a *Archive) namespaceRange(ns byte) (uint32, uint32) {
	n := int(a.header.EntryCount)
	lo := sort.Search(n, func(i int) bool {
		d, err := a.direntAt(uint32(i))
		if err != nil {
			return true
		}
		return d.Namespace >= ns
	})
	hi := sort.Search(n, func(i int) bool {
		d, err := a.direntAt(uint32(i))
		if err != nil {
			return true
		}
		return d.Namespace > ns
	})
	return uint32(lo), uint32(hi)
}

// entryByURL binary-searches the URL pointer list for (ns, url).
func (a *Archive) entryByURL(ns byte, url string) (Entry, error) {
	n := int(a.header.EntryCount)
	var searchErr error
	i := sort.Search(n, func(i int) bool {
		d, err := a.direntAt(uint32(i))
		if err != nil {
			if searchErr == nil {
				searchErr = err
			}
			return true
		}
		if d.Namespace != ns {
			return d.Namespace > ns
		}
		return d.URL >= url
	})
	if searchErr != nil {
		return Entry{}, searchErr
	}
	if i < n {
		d, err := a.direntAt(uint32(i))
		if err != nil {
			return Entry{}, err
		}
		if d.Namespace == ns && d.URL == url {
			return Entry{a: a, urlIndex: uint32(i), dirent: d}, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %c/%s", ErrNotFound, ns, url)
}

// EntryByPath looks up an entry by its path within the content
// namespace. A namespace-qualified path of the form "N/rest" (N one of
// C, M, W, X) is accepted as a fallback.
func (a *Archive) EntryByPath(path string) (Entry, error) {
	e, err := a.entryByURL(format.NamespaceContent, path)
	if err == nil {
		return e, nil
	}
	if len(path) >= 2 && path[1] == '/' {
		switch path[0] {
		case format.NamespaceContent, format.NamespaceMetadata, format.NamespaceWellKnown, format.NamespaceIndex:
			return a.entryByURL(path[0], path[2:])
		}
	}
	return Entry{}, err
}

// EntryByTitle looks up a content entry by its exact title. When
// several entries share the title, the one with the smallest path
// wins.
func (a *Archive) EntryByTitle(title string) (Entry, error) {
	n := int(a.header.EntryCount)
	var searchErr error
	titleOf := func(i int) (byte, string, error) {
		urlIdx, err := format.DecodeTitlePointer(a.titlePtrs, uint32(i))
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
		d, err := a.direntAt(urlIdx)
		if err != nil {
			return 0, "", err
		}
		return d.Namespace, d.DisplayTitle(), nil
	}

	i := sort.Search(n, func(i int) bool {
		ns, t, err := titleOf(i)
		if err != nil {
			if searchErr == nil {
				searchErr = err
			}
			return true
		}
		if ns != format.NamespaceContent {
			return ns > format.NamespaceContent
		}
		return t >= title
	})
	if searchErr != nil {
		return Entry{}, searchErr
	}
	if i < n {
		ns, t, err := titleOf(i)
		if err != nil {
			return Entry{}, err
		}
		if ns == format.NamespaceContent && t == title {
			urlIdx, _ := format.DecodeTitlePointer(a.titlePtrs, uint32(i))
			return a.EntryAt(urlIdx)
		}
	}
	return Entry{}, fmt.Errorf("%w: title %q", ErrNotFound, title)
}

// EntryAt returns the entry at a URL-order index.
func (a *Archive) EntryAt(urlIndex uint32) (Entry, error) {
	d, err := a.direntAt(urlIndex)
	if err != nil {
		return Entry{}, err
	}
	return Entry{a: a, urlIndex: urlIndex, dirent: d}, nil
}

// HasMainEntry reports whether the archive records a main entry.
func (a *Archive) HasMainEntry() bool {
	return a.header.HasMainPage()
}

// MainEntry returns the archive's main entry.
func (a *Archive) MainEntry() (Entry, error) {
	if !a.header.HasMainPage() {
		return Entry{}, fmt.Errorf("%w: no main entry", ErrNotFound)
	}
	return a.EntryAt(a.header.MainPage)
}
