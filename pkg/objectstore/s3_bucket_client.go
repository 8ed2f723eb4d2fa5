package objectstore

import (
	"bytes"
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	cloud_aws "github.com/buildbarn/bb-event-sink/pkg/cloud/aws"
	"github.com/buildbarn/bb-event-sink/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// convertS3Error converts errors returned by the AWS SDK to gRPC
// status errors. Failures of S3 are treated as transient.
func convertS3Error(err error, format string, args ...interface{}) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return util.StatusWrapfWithCode(err, codes.NotFound, format, args...)
		case "AccessDenied", "Forbidden":
			return util.StatusWrapfWithCode(err, codes.PermissionDenied, format, args...)
		}
	}
	return util.StatusWrapfWithCode(err, codes.Unavailable, format, args...)
}

type s3BucketClient struct {
	client cloud_aws.S3Client
	region string
}

// NewS3BucketClient creates a BucketClient that is backed by S3 or an
// S3 compatible service. Buckets are created in the provided region,
// unless it is empty.
func NewS3BucketClient(client cloud_aws.S3Client, region string) BucketClient {
	return &s3BucketClient{
		client: client,
		region: region,
	}
}

func (bc *s3BucketClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := bc.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	err = convertS3Error(err, "Failed to obtain properties of bucket %#v", bucket)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	return false, err
}

func (bc *s3BucketClient) CreateBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	// us-east-1 is the default location, which S3 refuses to
	// accept as an explicit location constraint.
	if bc.region != "" && bc.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(bc.region),
		}
	}
	_, err := bc.client.CreateBucket(ctx, input)
	if err == nil {
		return nil
	}
	var alreadyExists *types.BucketAlreadyExists
	var alreadyOwnedByYou *types.BucketAlreadyOwnedByYou
	if errors.As(err, &alreadyExists) || errors.As(err, &alreadyOwnedByYou) {
		return nil
	}
	return convertS3Error(err, "Failed to create bucket %#v", bucket)
}

func (bc *s3BucketClient) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	if _, err := bc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           types.ObjectCannedACLPublicRead,
	}); err != nil {
		return convertS3Error(err, "Failed to store object %#v in bucket %#v", key, bucket)
	}
	return nil
}
