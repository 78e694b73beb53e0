// Package search provides full-text and title-suggestion search over
// zimgo archives.
//
// The full-text index is built at creation time (zimgo.WithIndexing)
// over the titles and text content of front articles, and stored inside
// the archive as the entry X/fulltext/index. Postings are Roaring
// document bitmaps plus aligned term-frequency arrays; queries are
// ranked with BM25 (k1=1.2, b=0.75) using document-at-a-time scoring.
//
// # Usage
//
//	searcher, _ := search.NewSearcher(archive)
//	q, _ := searcher.Search("hello world")
//	total := q.EstimatedMatches()
//	it, _ := q.Results(0, 10)
//	for it.Next() {
//	    fmt.Println(it.Result().Path)
//	}
//
// A result window is a finite, forward-only sequence; re-issue the
// query to iterate again.
package search
