package objectstore

import (
	"context"
	"errors"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/buildbarn/bb-event-sink/pkg/cloud/gcp"
	"github.com/buildbarn/bb-event-sink/pkg/util"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

type gcsBucketClient struct {
	client    gcp.StorageClient
	projectID string
}

// NewGCSBucketClient creates a BucketClient that is backed by Google
// Cloud Storage. Buckets are created inside the provided project.
func NewGCSBucketClient(client gcp.StorageClient, projectID string) BucketClient {
	return &gcsBucketClient{
		client:    client,
		projectID: projectID,
	}
}

func gcsErrorCode(err error) codes.Code {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return codes.NotFound
		case http.StatusConflict:
			return codes.AlreadyExists
		case http.StatusUnauthorized, http.StatusForbidden:
			return codes.PermissionDenied
		}
	}
	return codes.Unavailable
}

func (bc *gcsBucketClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := bc.client.Bucket(bucket).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrBucketNotExist) || gcsErrorCode(err) == codes.NotFound {
		return false, nil
	}
	return false, util.StatusWrapfWithCode(err, gcsErrorCode(err), "Failed to obtain attributes of bucket %#v", bucket)
}

func (bc *gcsBucketClient) CreateBucket(ctx context.Context, bucket string) error {
	err := bc.client.Bucket(bucket).Create(ctx, bc.projectID, nil)
	if err == nil {
		return nil
	}
	if code := gcsErrorCode(err); code != codes.AlreadyExists {
		return util.StatusWrapfWithCode(err, code, "Failed to create bucket %#v", bucket)
	}
	return nil
}

func (bc *gcsBucketClient) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	w := bc.client.Bucket(bucket).Object(key).NewWriter(ctx, "publicRead")
	if _, err := w.Write(data); err != nil {
		w.Close()
		return util.StatusWrapfWithCode(err, gcsErrorCode(err), "Failed to write object %#v in bucket %#v", key, bucket)
	}
	if err := w.Close(); err != nil {
		return util.StatusWrapfWithCode(err, gcsErrorCode(err), "Failed to store object %#v in bucket %#v", key, bucket)
	}
	return nil
}
