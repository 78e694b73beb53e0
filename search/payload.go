package search

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

const (
	// indexMagic identifies a zimgo full-text index payload ("ZFTX").
	indexMagic uint32 = 0x5854465A
	// indexVersion is the current payload version.
	indexVersion uint32 = 1
)

// ErrBadIndex is returned when the full-text index payload cannot be
// parsed.
var ErrBadIndex = errors.New("search: malformed full-text index")

func errUnknownDocRef(ref uint32) error {
	return fmt.Errorf("search: no url index for document ref %d", ref)
}

// payloadEncoder builds the little-endian index payload.
type payloadEncoder struct {
	buf []byte
}

func newPayloadEncoder() *payloadEncoder { return &payloadEncoder{} }

func (e *payloadEncoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *payloadEncoder) u64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *payloadEncoder) str16(s string) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *payloadEncoder) raw(b []byte) { e.buf = append(e.buf, b...) }

func (e *payloadEncoder) bytes() []byte { return e.buf }

// payloadDecoder walks the payload with bounds checks.
type payloadDecoder struct {
	buf []byte
	pos int
}

func (d *payloadDecoder) remain() int { return len(d.buf) - d.pos }

func (d *payloadDecoder) u32() (uint32, error) {
	if d.remain() < 4 {
		return 0, ErrBadIndex
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *payloadDecoder) u64() (uint64, error) {
	if d.remain() < 8 {
		return 0, ErrBadIndex
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *payloadDecoder) str16() (string, error) {
	if d.remain() < 2 {
		return "", ErrBadIndex
	}
	n := int(binary.LittleEndian.Uint16(d.buf[d.pos:]))
	d.pos += 2
	if d.remain() < n {
		return "", ErrBadIndex
	}
	s := string(d.buf[d.pos : d.pos+n])
	d.pos += n
	return s, nil
}

func (d *payloadDecoder) raw(n int) ([]byte, error) {
	if n < 0 || d.remain() < n {
		return nil, ErrBadIndex
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ftIndex is the parsed in-memory form of the index payload.
type ftIndex struct {
	lang     string
	docs     []docMeta
	totalLen uint64
	terms    map[string]*termData
}

type docMeta struct {
	urlIndex uint32
	length   uint32
}

type termData struct {
	bm  *roaring.Bitmap
	tfs []uint32 // aligned with ascending docID iteration over bm
}

func (ix *ftIndex) avgDocLen() float64 {
	if len(ix.docs) == 0 {
		return 0
	}
	return float64(ix.totalLen) / float64(len(ix.docs))
}

// parseIndex decodes a serialized index payload.
func parseIndex(payload []byte) (*ftIndex, error) {
	d := &payloadDecoder{buf: payload}

	magic, err := d.u32()
	if err != nil || magic != indexMagic {
		return nil, ErrBadIndex
	}
	version, err := d.u32()
	if err != nil || version != indexVersion {
		return nil, ErrBadIndex
	}

	ix := &ftIndex{terms: make(map[string]*termData)}
	if ix.lang, err = d.str16(); err != nil {
		return nil, err
	}

	docCount, err := d.u32()
	if err != nil {
		return nil, err
	}
	if ix.totalLen, err = d.u64(); err != nil {
		return nil, err
	}
	if int(docCount)*8 > d.remain() {
		return nil, ErrBadIndex
	}
	ix.docs = make([]docMeta, docCount)
	for i := range ix.docs {
		if ix.docs[i].urlIndex, err = d.u32(); err != nil {
			return nil, err
		}
		if ix.docs[i].length, err = d.u32(); err != nil {
			return nil, err
		}
	}

	termCount, err := d.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < termCount; i++ {
		term, err := d.str16()
		if err != nil {
			return nil, err
		}
		bmLen, err := d.u32()
		if err != nil {
			return nil, err
		}
		bmBytes, err := d.raw(int(bmLen))
		if err != nil {
			return nil, err
		}
		bm := roaring.New()
		if err := bm.UnmarshalBinary(bmBytes); err != nil {
			return nil, fmt.Errorf("%w: term %q bitmap: %v", ErrBadIndex, term, err)
		}
		// Every posting must point into the doc table; a docID beyond it
		// would fault during ranking.
		if !bm.IsEmpty() && bm.Maximum() >= docCount {
			return nil, fmt.Errorf("%w: term %q posting %d outside doc table of %d",
				ErrBadIndex, term, bm.Maximum(), docCount)
		}

		tfCount, err := d.u32()
		if err != nil {
			return nil, err
		}
		if tfCount != uint32(bm.GetCardinality()) {
			return nil, ErrBadIndex
		}
		tfs := make([]uint32, tfCount)
		for j := range tfs {
			if tfs[j], err = d.u32(); err != nil {
				return nil, err
			}
		}
		ix.terms[term] = &termData{bm: bm, tfs: tfs}
	}

	return ix, nil
}
