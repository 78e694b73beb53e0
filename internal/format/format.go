// Package format implements the on-disk ZIM binary layout: the 80-byte
// header, directory entries, the MIME type list and the sorted pointer
// lists.
//
// The layout is a fixed foreign format (little-endian, NUL-terminated
// strings, mixed-width pointer tables), reproduced byte-exact so
// archives interoperate with other ZIM tooling.
package format

import "errors"

const (
	// Magic identifies a ZIM file ("ZIM\x04" read little-endian).
	Magic uint32 = 0x44D495A

	// MajorVersion / MinorVersion of the produced format. Major 6 is
	// the "new namespace" layout; minor 1 signals the new-style title
	// listing.
	MajorVersion uint16 = 6
	MinorVersion uint16 = 1

	// HeaderSize is the fixed byte size of the file header.
	HeaderSize = 80

	// NoPage marks an unset mainPage/layoutPage header field.
	NoPage uint32 = 0xffffffff

	// RedirectMimetype is the dirent mimetype sentinel for redirects.
	RedirectMimetype uint16 = 0xffff

	// ChecksumSize is the byte size of the trailing MD5 checksum.
	ChecksumSize = 16
)

// Well-known namespaces of the major-6 layout.
const (
	NamespaceContent   byte = 'C'
	NamespaceMetadata  byte = 'M'
	NamespaceWellKnown byte = 'W'
	NamespaceIndex     byte = 'X'
)

var (
	// ErrBadMagic is returned when the header magic does not match.
	ErrBadMagic = errors.New("format: bad magic number")
	// ErrBadVersion is returned for unsupported format versions.
	ErrBadVersion = errors.New("format: unsupported version")
	// ErrTruncated is returned when a structure extends past its
	// section.
	ErrTruncated = errors.New("format: truncated structure")
)
