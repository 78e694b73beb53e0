package zimgo

// Blob is an immutable, contiguous byte range. The zero Blob marks
// end-of-stream when returned from a ContentProvider.
//
// Ownership of the backing bytes transfers to the consumer; producers
// must not retain or mutate the slice after handing it off.
type Blob struct {
	data []byte
}

// NewBlob wraps data in a Blob. The engine takes ownership of data.
func NewBlob(data []byte) Blob {
	return Blob{data: data}
}

// Data returns the backing bytes. Callers must treat the slice as
// read-only.
func (b Blob) Data() []byte { return b.data }

// Size returns the length of the blob in bytes.
func (b Blob) Size() int64 { return int64(len(b.data)) }

// Empty reports whether the blob is the end-of-stream marker.
func (b Blob) Empty() bool { return len(b.data) == 0 }
