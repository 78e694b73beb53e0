package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Header is the 80-byte structure at the start of every archive.
// Field order and widths mirror the on-disk layout exactly, so it can
// be read and written with binary.Read/Write.
type Header struct {
	Magic         uint32
	MajorVersion  uint16
	MinorVersion  uint16
	UUID          [16]byte
	EntryCount    uint32
	ClusterCount  uint32
	URLPtrPos     uint64
	TitlePtrPos   uint64
	ClusterPtrPos uint64
	MimeListPos   uint64
	MainPage      uint32
	LayoutPage    uint32
	ChecksumPos   uint64
}

// EncodeTo writes the header in on-disk layout.
func (h *Header) EncodeTo(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// Encode returns the 80-byte on-disk form.
func (h *Header) Encode() []byte {
	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	_ = binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

// DecodeHeader parses and validates a header from the first HeaderSize
// bytes of data.
func DecodeHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}
	var h Header
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrBadMagic, h.Magic)
	}
	if h.MajorVersion < 5 || h.MajorVersion > MajorVersion {
		return nil, fmt.Errorf("%w: major %d", ErrBadVersion, h.MajorVersion)
	}
	return &h, nil
}

// HasMainPage reports whether the header records a main entry.
func (h *Header) HasMainPage() bool { return h.MainPage != NoPage }
