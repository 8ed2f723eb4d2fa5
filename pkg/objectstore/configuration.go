package objectstore

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/buildbarn/bb-event-sink/pkg/clock"
	cloud_aws "github.com/buildbarn/bb-event-sink/pkg/cloud/aws"
	"github.com/buildbarn/bb-event-sink/pkg/cloud/gcp"
	"github.com/buildbarn/bb-event-sink/pkg/configuration"
	"github.com/buildbarn/bb-event-sink/pkg/util"
	"github.com/klauspost/compress/zstd"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewBucketClientFromConfiguration creates a BucketClient for the
// object storage service described in the configuration. The client
// is decorated with optional compression, Prometheus metrics and
// OpenTelemetry tracing.
func NewBucketClientFromConfiguration(ctx context.Context, configuration *configuration.ObjectStorageConfiguration, clock clock.Clock, tracerProvider trace.TracerProvider) (BucketClient, error) {
	if configuration == nil {
		return nil, status.Error(codes.InvalidArgument, "Object storage configuration not specified")
	}

	var bucketClient BucketClient
	var backendName string
	switch {
	case configuration.S3 != nil:
		s3Client, err := cloud_aws.NewS3ClientFromConfiguration(ctx, configuration.S3.AWSSession)
		if err != nil {
			return nil, util.StatusWrap(err, "Failed to create S3 client")
		}
		bucketClient = NewS3BucketClient(s3Client, configuration.S3.AWSSession.Region)
		backendName = "s3"
	case configuration.GCS != nil:
		storageClient, err := storage.NewClient(ctx, gcp.NewClientOptionsFromConfiguration(configuration.GCS)...)
		if err != nil {
			return nil, util.StatusWrap(err, "Failed to create Google Cloud Storage client")
		}
		bucketClient = NewGCSBucketClient(gcp.NewWrappedStorageClient(storageClient), configuration.GCS.ProjectID)
		backendName = "gcs"
	default:
		return nil, status.Error(codes.InvalidArgument, "Configuration did not contain a supported object storage backend")
	}

	switch configuration.Compression {
	case "":
	case "zstd":
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, util.StatusWrap(err, "Failed to create Zstandard encoder")
		}
		bucketClient = NewZstdCompressingBucketClient(bucketClient, encoder)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "Unknown compression algorithm: %#v", configuration.Compression)
	}

	return NewTracingBucketClient(
		NewMetricsBucketClient(bucketClient, clock, backendName),
		tracerProvider), nil
}
