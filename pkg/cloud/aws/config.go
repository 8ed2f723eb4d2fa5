package aws

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/buildbarn/bb-event-sink/pkg/configuration"
	bb_http "github.com/buildbarn/bb-event-sink/pkg/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewConfigFromConfiguration creates a new AWS SDK config object based
// on options specified in a session configuration message. HTTP
// requests issued by the resulting clients are instrumented with
// Prometheus metrics.
func NewConfigFromConfiguration(ctx context.Context, configuration *configuration.AWSSessionConfiguration, name string) (aws.Config, error) {
	if configuration == nil {
		return aws.Config{}, status.Error(codes.InvalidArgument, "No AWS session configuration provided")
	}
	loadOptions := []func(*config.LoadOptions) error{
		config.WithHTTPClient(&http.Client{
			Transport: bb_http.NewMetricsRoundTripper(http.DefaultTransport, name),
		}),
	}
	if region := configuration.Region; region != "" {
		loadOptions = append(loadOptions, config.WithRegion(region))
	}
	if staticCredentials := configuration.StaticCredentials; staticCredentials != nil {
		loadOptions = append(loadOptions,
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					staticCredentials.AccessKeyID,
					staticCredentials.SecretAccessKey,
					"")))
	}
	return config.LoadDefaultConfig(ctx, loadOptions...)
}

// NewS3ClientFromConfiguration creates an S3 client. A custom endpoint
// and path-style addressing may be configured to talk to S3
// compatible services such as MinIO.
func NewS3ClientFromConfiguration(ctx context.Context, configuration *configuration.AWSSessionConfiguration) (*s3.Client, error) {
	cfg, err := NewConfigFromConfiguration(ctx, configuration, "S3")
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := configuration.Endpoint; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = configuration.ForcePathStyle
	}), nil
}
