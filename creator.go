package zimgo

import (
	"bufio"
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/zimgo/codec"
	"github.com/hupe1980/zimgo/internal/cluster"
	"github.com/hupe1980/zimgo/internal/format"
	"github.com/hupe1980/zimgo/internal/resource"
	"github.com/hupe1980/zimgo/search"
)

// Reserved index entry paths (X namespace).
const (
	titleListingPath  = "listing/titleOrdered/v1"
	fulltextIndexPath = "fulltext/index"
)

type creatorState uint8

const (
	stateConfiguring creatorState = iota
	stateStarted
	stateFinalized
	stateAborted
)

// blobAddr is the (cluster, blob) content address recorded in dirents.
type blobAddr struct {
	cluster uint32
	blob    uint32
}

// pendingEntry is an entry accumulated during the session, encoded as
// a dirent at finalization.
type pendingEntry struct {
	namespace  byte
	url        string
	title      string
	mimetype   string
	redirectTo string
	isRedirect bool
	addr       blobAddr
	front      bool
}

type spoolLoc struct {
	off  int64
	size int64
}

type openCluster struct {
	idx     uint32
	builder *cluster.Builder
}

// Creator writes a new archive. It moves through three states:
// CONFIGURING (construction until Start), STARTED (items accepted),
// and FINALIZED (Finish succeeded) or ABORTED (Close without Finish;
// partial output is discarded).
//
// A Creator must be driven by one goroutine; only cluster compression
// is internally parallel. Ingestion order and cluster sealing order
// may diverge, but every entry's (cluster, blob) address is fixed at
// ingestion time, so reordering never corrupts the path mapping.
type Creator struct {
	dest  string
	opts  creatorOptions
	log   *Logger
	state creatorState

	cancel context.CancelFunc
	g      *errgroup.Group
	gctx   context.Context
	rc     *resource.Controller

	tmp   *os.File // destination temp, renamed into place on Finish
	spool *os.File // sealed compressed clusters, in sealing order

	spoolMu     sync.Mutex
	spoolOff    int64
	clusterLocs map[uint32]spoolLoc

	openComp     *openCluster
	openUncomp   *openCluster
	clusterCount uint32

	dedup    map[[32]byte]blobAddr
	entries  []pendingEntry
	urlSeen  map[string]struct{}
	metadata map[string][]byte
	metaMime map[string]string
	mainPath string
	archUUID uuid.UUID

	fts *search.IndexBuilder

	failure error
}

// NewCreator prepares a Creator for the destination path. The returned
// Creator is in the CONFIGURING state; call Start before adding items.
func NewCreator(dest string, optFns ...Option) (*Creator, error) {
	if dest == "" {
		return nil, fmt.Errorf("%w: empty destination path", ErrNotWritable)
	}

	opts := defaultCreatorOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	log := opts.logger
	if log == nil {
		if opts.verbose {
			log = NewTextLogger(slog.LevelDebug)
		} else {
			log = NoopLogger()
		}
	}

	return &Creator{
		dest:        dest,
		opts:        opts,
		log:         log.WithArchive(dest),
		clusterLocs: make(map[uint32]spoolLoc),
		dedup:       make(map[[32]byte]blobAddr),
		urlSeen:     make(map[string]struct{}),
		metadata:    make(map[string][]byte),
		metaMime:    make(map[string]string),
		archUUID:    uuid.New(),
	}, nil
}

// Configure applies additional options. Fails with ErrInvalidState
// once the creator has started.
func (c *Creator) Configure(optFns ...Option) error {
	if c.state != stateConfiguring {
		return fmt.Errorf("%w: configuration is frozen after Start", ErrInvalidState)
	}
	for _, fn := range optFns {
		fn(&c.opts)
	}
	return nil
}

// Start validates the destination is writable and opens the write
// pipeline, transitioning to STARTED.
func (c *Creator) Start() error {
	if c.state != stateConfiguring {
		return fmt.Errorf("%w: Start from state %d", ErrInvalidState, c.state)
	}
	if _, err := codec.ForKind(c.opts.compression); err != nil {
		return err
	}

	dir := filepath.Dir(c.dest)
	base := filepath.Base(c.dest)

	// Pre-flight: the destination temp and cluster spool are created
	// before any data is accepted.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, err)
	}
	spool, err := os.CreateTemp(dir, base+".spool-*")
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrNotWritable, err)
	}
	c.tmp = tmp
	c.spool = spool

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.g, c.gctx = errgroup.WithContext(ctx)
	c.g.SetLimit(c.opts.workers)

	if c.opts.memoryLimit > 0 {
		c.rc = resource.NewController(resource.Config{MemoryLimitBytes: c.opts.memoryLimit})
	}
	if c.opts.indexing {
		c.fts = search.NewIndexBuilder(c.opts.indexLanguage)
	}

	c.state = stateStarted
	c.log.Debug("creator started",
		"compression", c.opts.compression.String(),
		"cluster_size", c.opts.clusterSize,
		"workers", c.opts.workers,
		"indexing", c.opts.indexing,
	)
	return nil
}

// AddItem drains the item's content provider and records the entry.
// Blocks until the content is fully handed to the cluster store. A
// provider failure aborts the item and poisons the whole session.
func (c *Creator) AddItem(item Item) error {
	if c.state != stateStarted {
		return fmt.Errorf("%w: AddItem requires a started creator", ErrInvalidState)
	}
	path := item.Path()
	if path == "" {
		return fmt.Errorf("item has empty path")
	}
	if err := c.claimURL(format.NamespaceContent, path); err != nil {
		return err
	}

	data, err := c.drain(path, item.ContentProvider())
	if err != nil {
		c.fail(err)
		return err
	}

	compress := true
	front := false
	if hints := item.Hints(); hints != nil {
		if v, ok := hints[HintCompress]; ok {
			compress = v != 0
		}
		front = hints[HintFrontArticle] != 0
	}

	size := int64(len(data))
	addr, dedup, err := c.addContent(data, compress)
	if err != nil {
		c.fail(err)
		return err
	}

	title := item.Title()
	if title == "" {
		title = path
	}
	ref := uint32(len(c.entries))
	c.entries = append(c.entries, pendingEntry{
		namespace: format.NamespaceContent,
		url:       path,
		title:     title,
		mimetype:  item.Mimetype(),
		addr:      addr,
		front:     front,
	})

	if c.fts != nil && front {
		c.fts.AddDocument(ref, title, indexableText(item.Mimetype(), data))
	}

	c.log.LogAddItem(path, size, dedup, nil)
	return nil
}

// AddMetadata stores a metadata value under the normalized name,
// overwriting any prior value. The mimetype defaults to text/plain.
func (c *Creator) AddMetadata(name string, value []byte) error {
	return c.addMetadata(name, value, "text/plain")
}

// AddMetadataDate stores the Date metadata in YYYY-MM-DD form.
func (c *Creator) AddMetadataDate(t time.Time) error {
	return c.AddMetadata(MetadataDate, []byte(t.Format(DateMetadataLayout)))
}

// AddIllustration stores a square PNG illustration of the given pixel
// size under its reserved metadata name.
func (c *Creator) AddIllustration(size int, png []byte) error {
	if size <= 0 {
		return fmt.Errorf("illustration size must be positive, got %d", size)
	}
	return c.addMetadata(IllustrationMetadataName(size), png, "image/png")
}

func (c *Creator) addMetadata(name string, value []byte, mimetype string) error {
	if c.state != stateStarted {
		return fmt.Errorf("%w: AddMetadata requires a started creator", ErrInvalidState)
	}
	if name == "" {
		return fmt.Errorf("metadata name must not be empty")
	}
	normalized := NormalizeMetadataName(name)
	c.metadata[normalized] = value
	c.metaMime[normalized] = mimetype
	return nil
}

// AddRedirection records a redirect entry from path to targetPath. The
// target must exist by the time Finish runs. Self-redirects are
// rejected immediately; they could never terminate.
func (c *Creator) AddRedirection(path, title, targetPath string, hints Hints) error {
	if c.state != stateStarted {
		return fmt.Errorf("%w: AddRedirection requires a started creator", ErrInvalidState)
	}
	if path == "" || targetPath == "" {
		return fmt.Errorf("redirection path and target must not be empty")
	}
	if path == targetPath {
		return fmt.Errorf("redirection %q targets itself", path)
	}
	if err := c.claimURL(format.NamespaceContent, path); err != nil {
		return err
	}

	if title == "" {
		title = path
	}
	front := false
	if hints != nil {
		front = hints[HintFrontArticle] != 0
	}
	c.entries = append(c.entries, pendingEntry{
		namespace:  format.NamespaceContent,
		url:        path,
		title:      title,
		redirectTo: targetPath,
		isRedirect: true,
		front:      front,
	})
	return nil
}

// SetMainPath marks the entry at path as the archive's main entry.
func (c *Creator) SetMainPath(path string) error {
	if c.state != stateStarted {
		return fmt.Errorf("%w: SetMainPath requires a started creator", ErrInvalidState)
	}
	c.mainPath = path
	return nil
}

// Finish seals all clusters, waits for compression, builds the index
// sections and writes the archive atomically. The transition to
// FINALIZED is irreversible.
func (c *Creator) Finish() error {
	if c.state != stateStarted {
		return fmt.Errorf("%w: Finish requires a started creator", ErrInvalidState)
	}
	if c.failure != nil {
		return fmt.Errorf("session failed, refusing to finalize: %w", c.failure)
	}

	err := c.finalize()
	if err != nil {
		c.fail(err)
		c.log.LogFinish(len(c.entries), int(c.clusterCount), err)
		return err
	}

	c.state = stateFinalized
	c.log.LogFinish(len(c.entries), int(c.clusterCount), nil)
	return nil
}

// Close releases the creator's resources. If Finish has not succeeded,
// the session is aborted: spool and temporary output are removed and
// the destination path is left untouched. Idempotent.
func (c *Creator) Close() error {
	switch c.state {
	case stateFinalized, stateAborted:
		c.cleanup()
		return nil
	case stateConfiguring:
		c.state = stateAborted
		return nil
	default:
		c.state = stateAborted
		if c.cancel != nil {
			c.cancel()
		}
		if c.g != nil {
			_ = c.g.Wait()
		}
		c.cleanup()
		c.log.Debug("creator aborted, partial output discarded")
		return nil
	}
}

func (c *Creator) cleanup() {
	if c.spool != nil {
		name := c.spool.Name()
		c.spool.Close()
		os.Remove(name)
		c.spool = nil
	}
	if c.tmp != nil {
		name := c.tmp.Name()
		c.tmp.Close()
		os.Remove(name)
		c.tmp = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Creator) fail(err error) {
	if c.failure == nil {
		c.failure = err
	}
}

func (c *Creator) claimURL(ns byte, url string) error {
	key := string(ns) + url
	if _, ok := c.urlSeen[key]; ok {
		return fmt.Errorf("duplicate path %q", url)
	}
	c.urlSeen[key] = struct{}{}
	return nil
}

// drain pulls the provider to completion and verifies the declared
// size invariant.
func (c *Creator) drain(path string, p ContentProvider) ([]byte, error) {
	if p == nil {
		return nil, &ContentProviderError{Path: path, Err: fmt.Errorf("nil content provider")}
	}
	declared := p.Size()
	if declared < 0 {
		return nil, &ContentProviderError{Path: path, Err: fmt.Errorf("negative declared size %d", declared)}
	}

	buf := make([]byte, 0, declared)
	for {
		blob, err := p.Feed()
		if err != nil {
			return nil, &ContentProviderError{Path: path, Err: err}
		}
		if blob.Empty() {
			break
		}
		buf = append(buf, blob.Data()...)
		if int64(len(buf)) > declared {
			return nil, &ContentProviderError{
				Path: path,
				Err:  fmt.Errorf("produced more than the declared %d bytes", declared),
			}
		}
	}
	if int64(len(buf)) != declared {
		return nil, &ContentProviderError{
			Path: path,
			Err:  fmt.Errorf("declared %d bytes but produced %d", declared, len(buf)),
		}
	}
	return buf, nil
}

// addContent stores data in a cluster, deduplicating identical
// payloads by digest, and returns its address.
func (c *Creator) addContent(data []byte, compress bool) (blobAddr, bool, error) {
	digest := blake3.Sum256(data)
	if addr, ok := c.dedup[digest]; ok {
		return addr, true, nil
	}

	if err := c.rc.AcquireMemory(c.gctx, int64(len(data))); err != nil {
		return blobAddr{}, false, err
	}

	oc, err := c.openFor(compress, int64(len(data)))
	if err != nil {
		c.rc.ReleaseMemory(int64(len(data)))
		return blobAddr{}, false, err
	}
	blob, err := oc.builder.AddBlob(data)
	if err != nil {
		c.rc.ReleaseMemory(int64(len(data)))
		return blobAddr{}, false, err
	}

	addr := blobAddr{cluster: oc.idx, blob: blob}
	c.dedup[digest] = addr
	return addr, false, nil
}

// openFor returns the open cluster for the compression class, sealing
// a full one and opening a fresh one as needed.
func (c *Creator) openFor(compress bool, incoming int64) (*openCluster, error) {
	slot := &c.openUncomp
	kind := codec.None
	if compress {
		slot = &c.openComp
		kind = c.opts.compression
	}

	if oc := *slot; oc != nil && oc.builder.BlobCount() > 0 && oc.builder.Size()+incoming > c.opts.clusterSize {
		c.sealCluster(oc)
		*slot = nil
	}
	if *slot == nil {
		*slot = &openCluster{idx: c.clusterCount, builder: cluster.NewBuilder(kind)}
		c.clusterCount++
	}
	return *slot, nil
}

// sealCluster hands a full cluster to the compression pool. The
// cluster's compressed bytes land in the spool in completion order;
// the cluster index keyed into clusterLocs keeps the directory
// consistent regardless of that order.
func (c *Creator) sealCluster(oc *openCluster) {
	oc.builder.Seal()
	size := oc.builder.Size()
	c.g.Go(func() error {
		defer c.rc.ReleaseMemory(size)

		var buf bytes.Buffer
		if err := oc.builder.Encode(&buf); err != nil {
			return fmt.Errorf("compress cluster %d: %w", oc.idx, err)
		}

		c.spoolMu.Lock()
		defer c.spoolMu.Unlock()
		n, err := c.spool.Write(buf.Bytes())
		if err != nil {
			return fmt.Errorf("spool cluster %d: %w", oc.idx, err)
		}
		c.clusterLocs[oc.idx] = spoolLoc{off: c.spoolOff, size: int64(n)}
		c.spoolOff += int64(n)
		return nil
	})
}

// finalize builds the remaining sections and writes the archive.
func (c *Creator) finalize() error {
	// Metadata becomes M-namespace entries. Sorted for deterministic
	// cluster packing.
	names := make([]string, 0, len(c.metadata))
	for name := range c.metadata {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		addr, _, err := c.addContent(c.metadata[name], true)
		if err != nil {
			return err
		}
		c.entries = append(c.entries, pendingEntry{
			namespace: format.NamespaceMetadata,
			url:       name,
			title:     name,
			mimetype:  c.metaMime[name],
			addr:      addr,
		})
	}

	// Index entries are registered before sorting so their dirents
	// participate in the pointer lists; their content is computed once
	// the final entry order is known.
	listingEntry := -1
	ftsEntry := -1
	if c.hasFrontArticles() {
		listingEntry = len(c.entries)
		c.entries = append(c.entries, pendingEntry{
			namespace: format.NamespaceIndex,
			url:       titleListingPath,
			title:     titleListingPath,
			mimetype:  "application/octet-stream",
		})
	}
	if c.fts != nil {
		ftsEntry = len(c.entries)
		c.entries = append(c.entries, pendingEntry{
			namespace: format.NamespaceIndex,
			url:       fulltextIndexPath,
			title:     fulltextIndexPath,
			mimetype:  "application/octet-stream",
		})
	}

	urlOrder, titleOrder := c.sortOrders()
	urlIndexOf := make(map[int]uint32, len(urlOrder))
	for urlIdx, entryIdx := range urlOrder {
		urlIndexOf[entryIdx] = uint32(urlIdx)
	}

	if listingEntry >= 0 {
		listing := c.buildTitleListing(titleOrder, urlIndexOf)
		addr, _, err := c.addContent(listing, true)
		if err != nil {
			return err
		}
		c.entries[listingEntry].addr = addr
	}
	if ftsEntry >= 0 {
		payload, err := c.fts.Serialize(func(ref uint32) (uint32, bool) {
			idx, ok := urlIndexOf[int(ref)]
			return idx, ok
		})
		if err != nil {
			return err
		}
		addr, _, err := c.addContent(payload, true)
		if err != nil {
			return err
		}
		c.entries[ftsEntry].addr = addr
	}

	// All content is in; seal what is still open and wait for the
	// compression pool.
	if c.openComp != nil {
		c.sealCluster(c.openComp)
		c.openComp = nil
	}
	if c.openUncomp != nil {
		c.sealCluster(c.openUncomp)
		c.openUncomp = nil
	}
	if err := c.g.Wait(); err != nil {
		return err
	}

	return c.writeArchive(urlOrder, titleOrder, urlIndexOf)
}

func (c *Creator) hasFrontArticles() bool {
	for i := range c.entries {
		if c.entries[i].front {
			return true
		}
	}
	return false
}

// sortOrders returns entry indices in URL order and title order. Both
// sort by (namespace, key) byte-wise, matching the reader's binary
// search.
func (c *Creator) sortOrders() (urlOrder, titleOrder []int) {
	urlOrder = make([]int, len(c.entries))
	titleOrder = make([]int, len(c.entries))
	for i := range c.entries {
		urlOrder[i] = i
		titleOrder[i] = i
	}
	sort.Slice(urlOrder, func(a, b int) bool {
		ea, eb := &c.entries[urlOrder[a]], &c.entries[urlOrder[b]]
		if ea.namespace != eb.namespace {
			return ea.namespace < eb.namespace
		}
		return ea.url < eb.url
	})
	sort.Slice(titleOrder, func(a, b int) bool {
		ea, eb := &c.entries[titleOrder[a]], &c.entries[titleOrder[b]]
		if ea.namespace != eb.namespace {
			return ea.namespace < eb.namespace
		}
		if ea.title != eb.title {
			return ea.title < eb.title
		}
		return ea.url < eb.url
	})
	return urlOrder, titleOrder
}

// buildTitleListing serializes the URL-order indices of front articles
// in title order.
func (c *Creator) buildTitleListing(titleOrder []int, urlIndexOf map[int]uint32) []byte {
	var indices []uint32
	for _, entryIdx := range titleOrder {
		if c.entries[entryIdx].front {
			indices = append(indices, urlIndexOf[entryIdx])
		}
	}
	return format.EncodeTitlePointers(indices)
}

// writeArchive lays out and writes every section, checksums the file
// and atomically renames it into place.
func (c *Creator) writeArchive(urlOrder, titleOrder []int, urlIndexOf map[int]uint32) error {
	mimetypes, mimeIDs := c.mimeTable()
	mimeList := format.EncodeMimeList(mimetypes)

	// Encode dirents in URL order and record their section-relative
	// offsets.
	direntBase := uint64(format.HeaderSize + len(mimeList))
	var direntBuf bytes.Buffer
	urlPtrs := make([]uint64, len(urlOrder))
	for urlIdx, entryIdx := range urlOrder {
		e := &c.entries[entryIdx]
		d := format.Dirent{
			Namespace: e.namespace,
			URL:       e.url,
			Title:     e.title,
		}
		if e.isRedirect {
			target, ok := urlIndexOf[c.entryIndexByURL(format.NamespaceContent, e.redirectTo)]
			if !ok {
				return fmt.Errorf("redirection %q: unknown target %q", e.url, e.redirectTo)
			}
			d.MimetypeID = format.RedirectMimetype
			d.RedirectIndex = target
		} else {
			d.MimetypeID = mimeIDs[e.mimetype]
			d.Cluster = e.addr.cluster
			d.Blob = e.addr.blob
		}
		urlPtrs[urlIdx] = direntBase + uint64(direntBuf.Len())
		direntBuf.Write(d.Encode())
	}

	titlePtrs := make([]uint32, len(titleOrder))
	for titleIdx, entryIdx := range titleOrder {
		titlePtrs[titleIdx] = urlIndexOf[entryIdx]
	}

	urlPtrPos := direntBase + uint64(direntBuf.Len())
	titlePtrPos := urlPtrPos + uint64(8*len(urlPtrs))
	clusterPtrPos := titlePtrPos + uint64(4*len(titlePtrs))
	clustersPos := clusterPtrPos + uint64(8*c.clusterCount)

	clusterPtrs := make([]uint64, c.clusterCount)
	pos := clustersPos
	for i := uint32(0); i < c.clusterCount; i++ {
		loc, ok := c.clusterLocs[i]
		if !ok {
			return fmt.Errorf("cluster %d never reached the spool", i)
		}
		clusterPtrs[i] = pos
		pos += uint64(loc.size)
	}
	checksumPos := pos

	mainPage := format.NoPage
	if c.mainPath != "" {
		idx := c.entryIndexByURL(format.NamespaceContent, c.mainPath)
		target, ok := urlIndexOf[idx]
		if !ok {
			return fmt.Errorf("main path %q does not match any entry", c.mainPath)
		}
		mainPage = target
	}

	header := format.Header{
		Magic:         format.Magic,
		MajorVersion:  format.MajorVersion,
		MinorVersion:  format.MinorVersion,
		UUID:          c.archUUID,
		EntryCount:    uint32(len(c.entries)),
		ClusterCount:  c.clusterCount,
		URLPtrPos:     urlPtrPos,
		TitlePtrPos:   titlePtrPos,
		ClusterPtrPos: clusterPtrPos,
		MimeListPos:   format.HeaderSize,
		MainPage:      mainPage,
		LayoutPage:    format.NoPage,
		ChecksumPos:   checksumPos,
	}

	// Everything before the checksum flows through the MD5 hasher.
	hasher := md5.New()
	out := bufio.NewWriterSize(io.MultiWriter(c.tmp, hasher), 256*1024)

	if err := header.EncodeTo(out); err != nil {
		return err
	}
	for _, section := range [][]byte{
		mimeList,
		direntBuf.Bytes(),
		format.EncodeURLPointers(urlPtrs),
		format.EncodeTitlePointers(titlePtrs),
		format.EncodeClusterPointers(clusterPtrs),
	} {
		if _, err := out.Write(section); err != nil {
			return err
		}
	}
	for i := uint32(0); i < c.clusterCount; i++ {
		loc := c.clusterLocs[i]
		if _, err := io.Copy(out, io.NewSectionReader(c.spool, loc.off, loc.size)); err != nil {
			return fmt.Errorf("copy cluster %d: %w", i, err)
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}
	// The checksum itself is not part of the checksummed range.
	if _, err := c.tmp.Write(hasher.Sum(nil)); err != nil {
		return err
	}

	if err := c.tmp.Sync(); err != nil {
		return err
	}
	tmpName := c.tmp.Name()
	if err := c.tmp.Close(); err != nil {
		return err
	}
	c.tmp = nil
	if err := os.Rename(tmpName, c.dest); err != nil {
		return err
	}
	// Best-effort: make the rename durable on POSIX.
	if d, err := os.Open(filepath.Dir(c.dest)); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}

// mimeTable returns the distinct mimetypes of non-redirect entries and
// their table indices.
func (c *Creator) mimeTable() ([]string, map[string]uint16) {
	set := make(map[string]struct{})
	for i := range c.entries {
		if !c.entries[i].isRedirect {
			set[c.entries[i].mimetype] = struct{}{}
		}
	}
	mimetypes := make([]string, 0, len(set))
	for m := range set {
		mimetypes = append(mimetypes, m)
	}
	sort.Strings(mimetypes)

	ids := make(map[string]uint16, len(mimetypes))
	for i, m := range mimetypes {
		ids[m] = uint16(i)
	}
	return mimetypes, ids
}

// entryIndexByURL returns the pending-entry index for (ns, url), or -1.
func (c *Creator) entryIndexByURL(ns byte, url string) int {
	for i := range c.entries {
		if c.entries[i].namespace == ns && c.entries[i].url == url {
			return i
		}
	}
	return -1
}

// indexableText extracts plain text from content for full-text
// indexing. Non-text content contributes only its title.
func indexableText(mimetype string, data []byte) string {
	switch {
	case strings.HasPrefix(mimetype, "text/html"):
		return search.StripHTML(string(data))
	case strings.HasPrefix(mimetype, "text/"):
		return string(data)
	default:
		return ""
	}
}
