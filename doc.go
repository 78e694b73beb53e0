// Package zimgo provides a pure-Go engine for creating and reading ZIM
// archives: clustered, compressed, content-addressed archive files as
// used by offline content distributions.
//
// # Quick Start
//
// Creating an archive:
//
//	c, _ := zimgo.NewCreator("wiki.zim",
//	    zimgo.WithCompression(codec.Zstd),
//	    zimgo.WithWorkers(4),
//	    zimgo.WithIndexing("eng"),
//	)
//	_ = c.Start()
//	_ = c.AddItem(zimgo.NewStringItem("A/one", "One", "text/plain", "hello"))
//	_ = c.SetMainPath("A/one")
//	_ = c.Finish()
//	_ = c.Close()
//
// Reading it back:
//
//	a, _ := zimgo.Open("wiki.zim")
//	defer a.Close()
//	entry, _ := a.EntryByPath("A/one")
//	item, _ := entry.Item()
//	content, _ := item.Data()
//
// # Architecture
//
// Item content is packed into clusters: independently decompressable
// groups of blobs. The writer deduplicates identical content by digest,
// compresses sealed clusters on a bounded worker pool, and finalizes the
// archive sections (header, path index, title index, cluster directory,
// trailing checksum) atomically. The reader memory-maps the finished
// file, serves path/title lookups by binary search over the sorted
// pointer lists, and decompresses clusters on demand behind an LRU
// cache.
//
// Full-text search over titles and content is available through the
// search subpackage when indexing was enabled at creation time.
//
// # Concurrency
//
// A Creator must be driven by a single goroutine; only cluster
// compression runs in parallel internally. A finished Archive is
// immutable and safe for any number of concurrent readers.
package zimgo
