// Package blobstore abstracts where snapshot frames live.
//
// A Store holds named, immutable blobs. Implementations in this package
// cover the local filesystem (mmap-backed reads), process memory (tests),
// and a read-through cache in front of a remote store. The s3 and minio
// subpackages back a Store with object storage.
//
// Unlike the container itself, stores are shared infrastructure and are
// safe for concurrent use.
package blobstore
