package objectstore_test

import (
	"context"
	"testing"

	"github.com/buildbarn/bb-event-sink/internal/mock"
	"github.com/buildbarn/bb-event-sink/pkg/objectstore"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	otel_codes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestTracingBucketClient(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	baseBucketClient := mock.NewMockBucketClient(ctrl)
	spanRecorder := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	bucketClient := objectstore.NewTracingBucketClient(baseBucketClient, tracerProvider)

	t.Run("BucketExists", func(t *testing.T) {
		baseBucketClient.EXPECT().BucketExists(gomock.Any(), "hash4").Return(true, nil)

		exists, err := bucketClient.BucketExists(ctx, "hash4")
		require.NoError(t, err)
		require.True(t, exists)

		spans := spanRecorder.Ended()
		span := spans[len(spans)-1]
		require.Equal(t, "BucketClient.BucketExists", span.Name())
		require.Equal(t, otel_codes.Unset, span.Status().Code)
		require.Contains(t, span.Attributes(), attribute.String("bucket", "hash4"))
		require.Contains(t, span.Attributes(), attribute.Bool("exists", true))
	})

	t.Run("PutObjectFailure", func(t *testing.T) {
		baseBucketClient.EXPECT().PutObject(gomock.Any(), "hash4", "1700000000/1", []byte("{}")).
			Return(status.Error(codes.Unavailable, "Connection refused"))

		require.Error(t, bucketClient.PutObject(ctx, "hash4", "1700000000/1", []byte("{}")))

		spans := spanRecorder.Ended()
		span := spans[len(spans)-1]
		require.Equal(t, "BucketClient.PutObject", span.Name())
		require.Equal(t, otel_codes.Error, span.Status().Code)
		require.Equal(t, "rpc error: code = Unavailable desc = Connection refused", span.Status().Description)
		require.Contains(t, span.Attributes(), attribute.String("key", "1700000000/1"))
		require.Contains(t, span.Attributes(), attribute.Int("size_bytes", 2))
		require.Len(t, span.Events(), 1)
	})

	t.Run("CreateBucket", func(t *testing.T) {
		// The context passed to the backend must carry the span.
		baseBucketClient.EXPECT().CreateBucket(gomock.Any(), "hash4").DoAndReturn(
			func(ctx context.Context, bucket string) error {
				require.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
				return nil
			})

		require.NoError(t, bucketClient.CreateBucket(ctx, "hash4"))

		spans := spanRecorder.Ended()
		require.Equal(t, "BucketClient.CreateBucket", spans[len(spans)-1].Name())
	})
}
