package objectstore

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otel_codes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracingBucketClient struct {
	base   BucketClient
	tracer trace.Tracer
}

// NewTracingBucketClient creates an adapter for BucketClient that
// creates an OpenTelemetry span for every operation.
func NewTracingBucketClient(base BucketClient, tracerProvider trace.TracerProvider) BucketClient {
	return &tracingBucketClient{
		base:   base,
		tracer: tracerProvider.Tracer("github.com/buildbarn/bb-event-sink/pkg/objectstore"),
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otel_codes.Error, err.Error())
	}
	span.End()
}

func (bc *tracingBucketClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ctxWithSpan, span := bc.tracer.Start(ctx, "BucketClient.BucketExists", trace.WithAttributes(
		attribute.String("bucket", bucket),
	))
	exists, err := bc.base.BucketExists(ctxWithSpan, bucket)
	span.SetAttributes(attribute.Bool("exists", exists))
	endSpan(span, err)
	return exists, err
}

func (bc *tracingBucketClient) CreateBucket(ctx context.Context, bucket string) error {
	ctxWithSpan, span := bc.tracer.Start(ctx, "BucketClient.CreateBucket", trace.WithAttributes(
		attribute.String("bucket", bucket),
	))
	err := bc.base.CreateBucket(ctxWithSpan, bucket)
	endSpan(span, err)
	return err
}

func (bc *tracingBucketClient) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	ctxWithSpan, span := bc.tracer.Start(ctx, "BucketClient.PutObject", trace.WithAttributes(
		attribute.String("bucket", bucket),
		attribute.String("key", key),
		attribute.Int("size_bytes", len(data)),
	))
	err := bc.base.PutObject(ctxWithSpan, bucket, key, data)
	endSpan(span, err)
	return err
}
