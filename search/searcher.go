package search

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Standard BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

// ErrNoIndex is returned when the archive carries no full-text index.
var ErrNoIndex = errors.New("search: archive has no full-text index")

// Source is the read surface the search engine needs from an archive.
// *zimgo.Archive satisfies it.
type Source interface {
	// FulltextIndex returns the raw index payload, or an error if the
	// archive was created without indexing.
	FulltextIndex() ([]byte, error)
	// TitleListing returns the URL-order indices of front articles in
	// title order.
	TitleListing() ([]uint32, error)
	// PathAt returns the path of the entry at a URL-order index.
	PathAt(urlIndex uint32) (string, error)
	// TitleAt returns the title of the entry at a URL-order index.
	TitleAt(urlIndex uint32) (string, error)
}

// Searcher executes ranked full-text queries against one archive.
// Safe for concurrent use.
type Searcher struct {
	src Source
	idx *ftIndex
}

// NewSearcher loads the archive's full-text index. Returns ErrNoIndex
// if the archive was created without indexing.
func NewSearcher(src Source) (*Searcher, error) {
	payload, err := src.FulltextIndex()
	if err != nil {
		return nil, ErrNoIndex
	}
	idx, err := parseIndex(payload)
	if err != nil {
		return nil, err
	}
	return &Searcher{src: src, idx: idx}, nil
}

// Language returns the index language tag recorded at creation time.
func (s *Searcher) Language() string { return s.idx.lang }

// Search prepares a query. Ranking is deferred until results are
// requested; EstimatedMatches never materializes scores.
func (s *Searcher) Search(query string) (*Search, error) {
	terms := tokenize(query)

	matches := roaring.New()
	for _, term := range terms {
		if td, ok := s.idx.terms[term]; ok {
			matches.Or(td.bm)
		}
	}

	return &Search{searcher: s, terms: terms, matches: matches}, nil
}

// Result is one ranked search hit.
type Result struct {
	Path  string
	Title string
	Score float32
}

// Search is a prepared query over one archive.
type Search struct {
	searcher *Searcher
	terms    []string
	matches  *roaring.Bitmap

	rankOnce sync.Once
	ranked   []rankedDoc
	rankErr  error
}

type rankedDoc struct {
	docID uint32
	score float32
}

// EstimatedMatches returns an upper-bound match count (documents
// containing at least one query term) without ranking anything.
func (q *Search) EstimatedMatches() int {
	return int(q.matches.GetCardinality())
}

// Results returns a forward-only iterator over the ranked window
// [start, start+count). The iterator is not restartable; call Results
// again for another pass.
func (q *Search) Results(start, count int) (*ResultIterator, error) {
	if start < 0 || count < 0 {
		return &ResultIterator{}, nil
	}
	q.rankOnce.Do(q.rank)
	if q.rankErr != nil {
		return nil, q.rankErr
	}

	end := start + count
	if start > len(q.ranked) {
		start = len(q.ranked)
	}
	if end > len(q.ranked) {
		end = len(q.ranked)
	}

	return &ResultIterator{
		searcher: q.searcher,
		window:   q.ranked[start:end],
	}, nil
}

// rank scores every matching document, document-at-a-time, and orders
// them by descending BM25 score (ties broken by ascending docID for
// stable pagination).
func (q *Search) rank() {
	idx := q.searcher.idx
	if len(idx.docs) == 0 || q.matches.IsEmpty() {
		return
	}

	avgdl := idx.avgDocLen()
	k11 := k1 + 1
	k1b := k1 * (1 - b)
	k1bAvg := 0.0
	if avgdl > 0 {
		k1bAvg = k1 * b / avgdl
	}

	iters := make([]termIterator, 0, len(q.terms))
	seen := make(map[string]bool, len(q.terms))
	for _, term := range q.terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		td, ok := idx.terms[term]
		if !ok {
			continue
		}
		iters = append(iters, newTermIterator(td, computeIDF(len(idx.docs), int(td.bm.GetCardinality()))))
	}
	if len(iters) == 0 {
		return
	}

	scores := make([]rankedDoc, 0, q.matches.GetCardinality())
	for {
		minDoc := uint32(math.MaxUint32)
		for i := range iters {
			if d := iters[i].doc(); d < minDoc {
				minDoc = d
			}
		}
		if minDoc == math.MaxUint32 {
			break
		}

		var score float64
		docLen := float64(idx.docs[minDoc].length)
		for i := range iters {
			it := &iters[i]
			if it.doc() != minDoc {
				continue
			}
			tf := float64(it.tf())
			score += it.idf * (tf * k11) / (tf + k1b + k1bAvg*docLen)
			it.next()
		}
		if score > 0 {
			scores = append(scores, rankedDoc{docID: minDoc, score: float32(score)})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].docID < scores[j].docID
	})
	q.ranked = scores
}

// computeIDF is the BM25+ style IDF: log(1 + (N-n+0.5)/(n+0.5)).
func computeIDF(docCount, df int) float64 {
	n := float64(df)
	return math.Log(1 + (float64(docCount)-n+0.5)/(n+0.5))
}

// ResultIterator walks one result window. Forward-only; exhausted
// iterators stay exhausted.
type ResultIterator struct {
	searcher *Searcher
	window   []rankedDoc
	cur      Result
	err      error
}

// Next advances to the next result. It returns false when the window
// is exhausted or a resolution error occurred (see Err).
func (it *ResultIterator) Next() bool {
	if it.err != nil || len(it.window) == 0 {
		return false
	}
	doc := it.window[0]
	it.window = it.window[1:]

	meta := it.searcher.idx.docs[doc.docID]
	path, err := it.searcher.src.PathAt(meta.urlIndex)
	if err != nil {
		it.err = err
		return false
	}
	title, err := it.searcher.src.TitleAt(meta.urlIndex)
	if err != nil {
		it.err = err
		return false
	}
	it.cur = Result{Path: path, Title: title, Score: doc.score}
	return true
}

// Result returns the current result. Valid only after a true Next.
func (it *ResultIterator) Result() Result { return it.cur }

// Err returns the first resolution error encountered, if any.
func (it *ResultIterator) Err() error { return it.err }

// termIterator walks one term's postings in ascending docID order,
// keeping the stored term-frequency array aligned with the bitmap
// iterator.
type termIterator struct {
	it  roaring.IntPeekable
	tfs []uint32
	pos int
	idf float64

	curDoc uint32
	hasDoc bool
}

func newTermIterator(td *termData, idf float64) termIterator {
	ti := termIterator{it: td.bm.Iterator(), tfs: td.tfs, idf: idf}
	ti.advance()
	return ti
}

func (ti *termIterator) advance() {
	if ti.it.HasNext() {
		ti.curDoc = ti.it.Next()
		ti.hasDoc = true
	} else {
		ti.hasDoc = false
	}
}

// doc returns the current docID, or MaxUint32 when exhausted.
func (ti *termIterator) doc() uint32 {
	if !ti.hasDoc {
		return math.MaxUint32
	}
	return ti.curDoc
}

// tf returns the term frequency in the current document.
func (ti *termIterator) tf() uint32 {
	if !ti.hasDoc {
		return 0
	}
	return ti.tfs[ti.pos]
}

// next advances to the next posting.
func (ti *termIterator) next() {
	ti.pos++
	ti.advance()
}
