// Package minio implements blobstore.Store on MinIO and other
// S3-compatible object storage (Ceph, Garage, SeaweedFS).
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "archives", "zim/")
//	archive, err := zimgo.OpenStore(ctx, store, "wiki.zim")
//
// Reads are ranged GetObject requests; uploads stream and commit on
// Close. No AWS dependencies are required.
package minio
