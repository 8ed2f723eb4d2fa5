package objectstore

import (
	"context"
)

// BucketClient is the interface of an object storage service to which
// buffered records are flushed. Buckets act as containers of objects.
//
// Errors returned by implementations are gRPC status errors.
type BucketClient interface {
	// BucketExists returns whether a bucket with a given name
	// exists and is accessible.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// CreateBucket creates a bucket. Creating a bucket that already
	// exists is not an error.
	CreateBucket(ctx context.Context, bucket string) error

	// PutObject stores an object in a bucket. The object is made
	// publicly readable.
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}
