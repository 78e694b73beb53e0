package cluster

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hupe1980/zimgo/codec"
)

// Cluster is a fully decoded cluster: the decompressed offset table and
// payload area.
type Cluster struct {
	kind    codec.Kind
	data    []byte   // decompressed stream: offset table + payloads
	offsets []uint64 // parsed table, len = BlobCount()+1
}

// Decode decompresses and validates a raw on-disk cluster. raw starts
// at the info byte and may extend to the end of the cluster section;
// decoding stops at the end of the compressed stream.
//
// Decoding is side-effect free: the same raw bytes always produce the
// same Cluster, so results are safe to cache.
func Decode(raw []byte) (*Cluster, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("%w: empty cluster", ErrCorrupt)
	}

	kind := codec.Kind(raw[0] &^ extendedFlag)
	wide := raw[0]&extendedFlag != 0

	c, err := codec.ForKind(kind)
	if err != nil {
		return nil, err
	}
	r, err := c.Decompress(bytes.NewReader(raw[1:]))
	if err != nil {
		return nil, fmt.Errorf("cluster: decompress: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cluster: decompress: %w", err)
	}

	offsets, err := parseOffsets(data, wide)
	if err != nil {
		return nil, err
	}

	return &Cluster{kind: kind, data: data, offsets: offsets}, nil
}

func parseOffsets(data []byte, wide bool) ([]uint64, error) {
	width := 4
	if wide {
		width = 8
	}
	if len(data) < width {
		return nil, fmt.Errorf("%w: missing first offset", ErrCorrupt)
	}

	first := readOffset(data, 0, wide)
	if first < uint64(width) || first%uint64(width) != 0 {
		return nil, fmt.Errorf("%w: first offset %d", ErrCorrupt, first)
	}
	count := int(first / uint64(width)) // table entries, blobs = count-1
	if count < 1 || count*width > len(data) {
		return nil, fmt.Errorf("%w: offset table extends past cluster", ErrCorrupt)
	}

	offsets := make([]uint64, count)
	prev := uint64(0)
	for i := 0; i < count; i++ {
		off := readOffset(data, i*width, wide)
		if i > 0 && off < prev {
			return nil, fmt.Errorf("%w: non-monotonic offset %d", ErrCorrupt, i)
		}
		if off > uint64(len(data)) {
			return nil, fmt.Errorf("%w: offset %d past payload", ErrCorrupt, i)
		}
		offsets[i] = off
		prev = off
	}
	return offsets, nil
}

func readOffset(data []byte, pos int, wide bool) uint64 {
	if wide {
		return uint64(data[pos]) | uint64(data[pos+1])<<8 | uint64(data[pos+2])<<16 | uint64(data[pos+3])<<24 |
			uint64(data[pos+4])<<32 | uint64(data[pos+5])<<40 | uint64(data[pos+6])<<48 | uint64(data[pos+7])<<56
	}
	return uint64(data[pos]) | uint64(data[pos+1])<<8 | uint64(data[pos+2])<<16 | uint64(data[pos+3])<<24
}

// Kind returns the cluster's codec kind.
func (c *Cluster) Kind() codec.Kind { return c.kind }

// BlobCount returns the number of blobs in the cluster.
func (c *Cluster) BlobCount() int { return len(c.offsets) - 1 }

// Blob returns the payload of blob i as a borrow into the decoded
// cluster; callers must copy if they retain it past the cluster's
// lifetime.
func (c *Cluster) Blob(i uint32) ([]byte, error) {
	if int(i) >= c.BlobCount() {
		return nil, fmt.Errorf("%w: %d of %d", ErrBlobIndex, i, c.BlobCount())
	}
	return c.data[c.offsets[i]:c.offsets[i+1]], nil
}

// BlobSize returns the payload length of blob i.
func (c *Cluster) BlobSize(i uint32) (int64, error) {
	if int(i) >= c.BlobCount() {
		return 0, fmt.Errorf("%w: %d of %d", ErrBlobIndex, i, c.BlobCount())
	}
	return int64(c.offsets[i+1] - c.offsets[i]), nil
}

// Size returns the total decompressed bytes held by the cluster,
// used for cache accounting.
func (c *Cluster) Size() int64 { return int64(len(c.data)) }
