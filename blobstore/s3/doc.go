// Package s3 implements blobstore.Store on Amazon S3.
//
// Reads use ranged GetObject requests, so an archive can be served
// without ever downloading it whole; wrap the store in a
// blobstore.CachingStore to amortize the request latency. Writes
// stream through a multipart upload and only become visible when the
// upload completes, preserving the all-or-nothing publish semantics of
// the local store.
package s3
