package search

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// IndexBuilder accumulates documents during archive creation and
// serializes the full-text index payload.
//
// Documents are registered under a caller-chosen reference (the
// creator uses its provisional entry number); the final URL-order
// index of each document is supplied at Serialize time, once the
// archive's entry set is fixed and sorted.
type IndexBuilder struct {
	lang     string
	docs     []builderDoc
	postings map[string]*builderPosting
	totalLen int64
}

type builderDoc struct {
	ref    uint32
	length uint32
}

type builderPosting struct {
	bm  *roaring.Bitmap
	tfs map[uint32]uint32 // docID → term frequency
}

// NewIndexBuilder creates a builder. lang is recorded in the index
// header (ISO 639-3).
func NewIndexBuilder(lang string) *IndexBuilder {
	return &IndexBuilder{
		lang:     lang,
		postings: make(map[string]*builderPosting),
	}
}

// AddDocument indexes the title and text content of one document under
// ref. Content should already be plain text; use StripHTML for markup.
func (b *IndexBuilder) AddDocument(ref uint32, title, content string) {
	docID := uint32(len(b.docs))

	tokens := tokenize(title)
	tokens = append(tokens, tokenize(content)...)

	b.docs = append(b.docs, builderDoc{ref: ref, length: uint32(len(tokens))})
	b.totalLen += int64(len(tokens))

	tf := make(map[string]uint32)
	for _, tok := range tokens {
		tf[tok]++
	}
	for term, count := range tf {
		p, ok := b.postings[term]
		if !ok {
			p = &builderPosting{bm: roaring.New(), tfs: make(map[uint32]uint32)}
			b.postings[term] = p
		}
		p.bm.Add(docID)
		p.tfs[docID] = count
	}
}

// DocCount returns the number of indexed documents.
func (b *IndexBuilder) DocCount() int { return len(b.docs) }

// TermCount returns the number of distinct terms.
func (b *IndexBuilder) TermCount() int { return len(b.postings) }

// StripHTML exposes the indexing tag stripper so callers can feed
// text/html content.
func StripHTML(html string) string { return stripTags(html) }

// Serialize encodes the index payload. urlIndexOf maps a document's
// registration ref to its final URL-order index; it must succeed for
// every registered ref.
func (b *IndexBuilder) Serialize(urlIndexOf func(ref uint32) (uint32, bool)) ([]byte, error) {
	enc := newPayloadEncoder()
	enc.u32(indexMagic)
	enc.u32(indexVersion)
	enc.str16(b.lang)

	enc.u32(uint32(len(b.docs)))
	enc.u64(uint64(b.totalLen))
	for _, d := range b.docs {
		urlIndex, ok := urlIndexOf(d.ref)
		if !ok {
			return nil, errUnknownDocRef(d.ref)
		}
		enc.u32(urlIndex)
		enc.u32(d.length)
	}

	terms := make([]string, 0, len(b.postings))
	for term := range b.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	enc.u32(uint32(len(terms)))
	for _, term := range terms {
		p := b.postings[term]
		enc.str16(term)

		bmBytes, err := p.bm.ToBytes()
		if err != nil {
			return nil, err
		}
		enc.u32(uint32(len(bmBytes)))
		enc.raw(bmBytes)

		// Term frequencies aligned with ascending docID iteration over
		// the bitmap.
		enc.u32(uint32(p.bm.GetCardinality()))
		it := p.bm.Iterator()
		for it.HasNext() {
			enc.u32(p.tfs[it.Next()])
		}
	}

	return enc.bytes(), nil
}
