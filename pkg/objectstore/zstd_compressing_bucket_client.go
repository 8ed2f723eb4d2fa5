package objectstore

import (
	"context"

	"github.com/klauspost/compress/zstd"
)

// ZstdObjectKeySuffix is appended to the keys of objects that are
// compressed by the BucketClient returned by
// NewZstdCompressingBucketClient().
const ZstdObjectKeySuffix = ".zst"

type zstdCompressingBucketClient struct {
	BucketClient
	encoder *zstd.Encoder
}

// NewZstdCompressingBucketClient creates an adapter for BucketClient
// that compresses the contents of objects using Zstandard before they
// are stored. Bucket operations are forwarded as is.
func NewZstdCompressingBucketClient(base BucketClient, encoder *zstd.Encoder) BucketClient {
	return &zstdCompressingBucketClient{
		BucketClient: base,
		encoder:      encoder,
	}
}

func (bc *zstdCompressingBucketClient) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	return bc.BucketClient.PutObject(ctx, bucket, key+ZstdObjectKeySuffix, bc.encoder.EncodeAll(data, nil))
}
