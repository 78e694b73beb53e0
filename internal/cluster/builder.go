// Package cluster implements the cluster unit of zimgo archives: an
// independently decodable group of blob payloads, compressed as a
// whole.
//
// On disk a cluster is one info byte (low nibble: codec kind, bit 0x10:
// 64-bit offsets) followed by a compressed stream holding the blob
// offset table and the concatenated payloads. Offsets are relative to
// the start of the offset table; offset[0] therefore equals the table
// size, and blob i spans [offset[i], offset[i+1]).
package cluster

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/hupe1980/zimgo/codec"
)

const extendedFlag = 0x10

var (
	// ErrSealed is returned when adding a blob to a sealed builder.
	ErrSealed = errors.New("cluster: builder is sealed")
	// ErrCorrupt is returned when a cluster's offset table is
	// inconsistent.
	ErrCorrupt = errors.New("cluster: corrupt offset table")
	// ErrBlobIndex is returned for an out-of-range blob index.
	ErrBlobIndex = errors.New("cluster: blob index out of range")
)

// Builder accumulates blob payloads for one cluster. Blobs keep their
// insertion order; the index returned by AddBlob is the blob number
// recorded in the owning dirents and stays valid across sealing.
type Builder struct {
	kind   codec.Kind
	blobs  [][]byte
	size   int64
	sealed bool
}

// NewBuilder creates a builder for a cluster of the given codec kind.
func NewBuilder(kind codec.Kind) *Builder {
	return &Builder{kind: kind}
}

// Kind returns the cluster's codec kind.
func (b *Builder) Kind() codec.Kind { return b.kind }

// AddBlob appends a payload and returns its blob number. Zero-length
// payloads are valid and occupy an empty span. The builder takes
// ownership of data.
func (b *Builder) AddBlob(data []byte) (uint32, error) {
	if b.sealed {
		return 0, ErrSealed
	}
	b.blobs = append(b.blobs, data)
	b.size += int64(len(data))
	return uint32(len(b.blobs) - 1), nil
}

// BlobCount returns the number of blobs added so far.
func (b *Builder) BlobCount() int { return len(b.blobs) }

// Size returns the accumulated uncompressed payload bytes.
func (b *Builder) Size() int64 { return b.size }

// Seal marks the builder immutable. Further AddBlob calls fail.
func (b *Builder) Seal() { b.sealed = true }

// Encode writes the complete on-disk cluster (info byte plus compressed
// offset table and payloads) to w.
func (b *Builder) Encode(w io.Writer) error {
	n := len(b.blobs)

	// Offsets are relative to the table start; decide table width from
	// the largest offset.
	wide := false
	end := int64(n+1)*4 + b.size
	if end > math.MaxUint32 {
		wide = true
	}

	info := byte(b.kind)
	if wide {
		info |= extendedFlag
	}
	if _, err := w.Write([]byte{info}); err != nil {
		return err
	}

	c, err := codec.ForKind(b.kind)
	if err != nil {
		return err
	}
	cw, err := c.Compress(w)
	if err != nil {
		return err
	}

	if err := b.writeOffsets(cw, wide); err != nil {
		cw.Close()
		return err
	}
	for _, blob := range b.blobs {
		if len(blob) == 0 {
			continue
		}
		if _, err := cw.Write(blob); err != nil {
			cw.Close()
			return err
		}
	}
	return cw.Close()
}

func (b *Builder) writeOffsets(w io.Writer, wide bool) error {
	n := len(b.blobs)
	width := int64(4)
	if wide {
		width = 8
	}

	off := uint64(int64(n+1) * width)
	var buf [8]byte
	writeOne := func(v uint64) error {
		if wide {
			binary.LittleEndian.PutUint64(buf[:8], v)
			_, err := w.Write(buf[:8])
			return err
		}
		binary.LittleEndian.PutUint32(buf[:4], uint32(v))
		_, err := w.Write(buf[:4])
		return err
	}

	if err := writeOne(off); err != nil {
		return err
	}
	for _, blob := range b.blobs {
		off += uint64(len(blob))
		if err := writeOne(off); err != nil {
			return err
		}
	}
	return nil
}
