package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeMimeList returns the on-disk MIME type list: NUL-terminated
// strings terminated by an empty string.
func EncodeMimeList(mimetypes []string) []byte {
	var buf bytes.Buffer
	for _, m := range mimetypes {
		buf.WriteString(m)
		buf.WriteByte(0)
	}
	buf.WriteByte(0)
	return buf.Bytes()
}

// DecodeMimeList parses the MIME type list starting at data[0] and
// returns the types plus the number of bytes consumed.
func DecodeMimeList(data []byte) ([]string, int, error) {
	var mimetypes []string
	pos := 0
	for {
		if pos >= len(data) {
			return nil, 0, fmt.Errorf("%w: mime list", ErrTruncated)
		}
		s, n, err := readCString(data[pos:])
		if err != nil {
			return nil, 0, fmt.Errorf("%w: mime list", ErrTruncated)
		}
		pos += n
		if s == "" {
			return mimetypes, pos, nil
		}
		mimetypes = append(mimetypes, s)
	}
}

// EncodeURLPointers returns the URL pointer list: one u64 dirent file
// offset per entry, in URL sort order.
func EncodeURLPointers(offsets []uint64) []byte {
	buf := make([]byte, 8*len(offsets))
	for i, off := range offsets {
		binary.LittleEndian.PutUint64(buf[i*8:], off)
	}
	return buf
}

// DecodeURLPointer returns the dirent offset for URL-order index i.
func DecodeURLPointer(data []byte, i uint32) (uint64, error) {
	off := int(i) * 8
	if off+8 > len(data) {
		return 0, fmt.Errorf("%w: url pointer %d", ErrTruncated, i)
	}
	return binary.LittleEndian.Uint64(data[off:]), nil
}

// EncodeTitlePointers returns the title pointer list: one u32 index
// into the URL pointer list per entry, in title sort order.
func EncodeTitlePointers(indices []uint32) []byte {
	buf := make([]byte, 4*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// DecodeTitlePointer returns the URL-order index for title-order
// index i.
func DecodeTitlePointer(data []byte, i uint32) (uint32, error) {
	off := int(i) * 4
	if off+4 > len(data) {
		return 0, fmt.Errorf("%w: title pointer %d", ErrTruncated, i)
	}
	return binary.LittleEndian.Uint32(data[off:]), nil
}

// EncodeClusterPointers returns the cluster pointer list: one u64 file
// offset per cluster.
func EncodeClusterPointers(offsets []uint64) []byte {
	return EncodeURLPointers(offsets)
}

// DecodeClusterPointer returns the file offset of cluster i.
func DecodeClusterPointer(data []byte, i uint32) (uint64, error) {
	off := int(i) * 8
	if off+8 > len(data) {
		return 0, fmt.Errorf("%w: cluster pointer %d", ErrTruncated, i)
	}
	return binary.LittleEndian.Uint64(data[off:]), nil
}
