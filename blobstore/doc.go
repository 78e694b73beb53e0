// Package blobstore abstracts where archive files live.
//
// An archive is one immutable blob. The Store interface covers the
// operations zimgo needs: open for random-access reads, create for
// streaming a finished archive out, delete and list. Local disk,
// in-memory and object storage (S3, MinIO) implementations are
// provided; CachingStore layers block-level read caching over any of
// them, which makes serving entries straight from object storage
// practical.
package blobstore
