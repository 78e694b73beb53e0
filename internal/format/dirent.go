package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Dirent is a directory entry: a named record pointing either at a
// (cluster, blob) content address or at another entry (redirect).
//
// On disk, content entries are laid out as
//
//	mimetype u16 | paramLen u8 | namespace u8 | revision u32 |
//	cluster u32 | blob u32 | url CStr | title CStr | param
//
// and redirects replace the cluster/blob pair with a single u32 index
// into the URL pointer list. A stored empty title means "title equals
// url".
type Dirent struct {
	MimetypeID    uint16
	Namespace     byte
	Revision      uint32
	Cluster       uint32
	Blob          uint32
	RedirectIndex uint32
	URL           string
	Title         string
}

// IsRedirect reports whether the entry is a redirect.
func (d *Dirent) IsRedirect() bool { return d.MimetypeID == RedirectMimetype }

// DisplayTitle returns the effective title (falls back to URL).
func (d *Dirent) DisplayTitle() string {
	if d.Title == "" {
		return d.URL
	}
	return d.Title
}

// Encode returns the on-disk form of the dirent.
func (d *Dirent) Encode() []byte {
	var buf bytes.Buffer

	var fixed [4]byte
	binary.LittleEndian.PutUint16(fixed[0:2], d.MimetypeID)
	fixed[2] = 0 // parameter length, always zero for zimgo-written archives
	fixed[3] = d.Namespace
	buf.Write(fixed[:])

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], d.Revision)
	buf.Write(u32[:])

	if d.IsRedirect() {
		binary.LittleEndian.PutUint32(u32[:], d.RedirectIndex)
		buf.Write(u32[:])
	} else {
		binary.LittleEndian.PutUint32(u32[:], d.Cluster)
		buf.Write(u32[:])
		binary.LittleEndian.PutUint32(u32[:], d.Blob)
		buf.Write(u32[:])
	}

	buf.WriteString(d.URL)
	buf.WriteByte(0)
	// Title is stored empty when it equals the URL.
	if d.Title != d.URL {
		buf.WriteString(d.Title)
	}
	buf.WriteByte(0)

	return buf.Bytes()
}

// DecodeDirent parses a dirent from data (which may extend beyond the
// entry). The stored-empty-title convention is resolved here: the
// returned Title always carries the effective title.
func DecodeDirent(data []byte) (*Dirent, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: dirent fixed part", ErrTruncated)
	}

	d := &Dirent{
		MimetypeID: binary.LittleEndian.Uint16(data[0:2]),
		Namespace:  data[3],
		Revision:   binary.LittleEndian.Uint32(data[4:8]),
	}
	paramLen := int(data[2])

	pos := 8
	if d.IsRedirect() {
		d.RedirectIndex = binary.LittleEndian.Uint32(data[8:12])
		pos = 12
	} else {
		if len(data) < 16 {
			return nil, fmt.Errorf("%w: dirent content part", ErrTruncated)
		}
		d.Cluster = binary.LittleEndian.Uint32(data[8:12])
		d.Blob = binary.LittleEndian.Uint32(data[12:16])
		pos = 16
	}

	url, n, err := readCString(data[pos:])
	if err != nil {
		return nil, fmt.Errorf("%w: dirent url", ErrTruncated)
	}
	pos += n
	title, n, err := readCString(data[pos:])
	if err != nil {
		return nil, fmt.Errorf("%w: dirent title", ErrTruncated)
	}
	pos += n

	if pos+paramLen > len(data) {
		return nil, fmt.Errorf("%w: dirent parameter", ErrTruncated)
	}

	d.URL = url
	if title == "" {
		d.Title = url
	} else {
		d.Title = title
	}
	return d, nil
}

func readCString(data []byte) (string, int, error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return "", 0, ErrTruncated
	}
	return string(data[:i]), i + 1, nil
}
