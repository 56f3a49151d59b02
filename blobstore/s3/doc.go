// Package s3 backs a blobstore.Store with Amazon S3.
//
// Store holds snapshot frames as S3 objects under a key prefix. CommitStore
// layers a DynamoDB table on top to give the "latest snapshot" pointer the
// atomic compare-and-swap that S3 itself lacks, so multiple writers can
// publish snapshots without losing commits.
package s3
