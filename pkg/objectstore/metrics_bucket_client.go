package objectstore

import (
	"context"
	"sync"
	"time"

	"github.com/buildbarn/bb-event-sink/pkg/clock"
	"github.com/buildbarn/bb-event-sink/pkg/util"
	"github.com/prometheus/client_golang/prometheus"

	"google.golang.org/grpc/status"
)

var (
	bucketClientPrometheusMetrics sync.Once

	bucketClientOperationsDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildbarn",
			Subsystem: "objectstore",
			Name:      "bucket_client_operations_duration_seconds",
			Help:      "Amount of time spent per operation on object storage, in seconds.",
			Buckets:   util.DecimalExponentialBuckets(-3, 6, 2),
		},
		[]string{"name", "operation", "grpc_code"})
	bucketClientPutObjectSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildbarn",
			Subsystem: "objectstore",
			Name:      "bucket_client_put_object_size_bytes",
			Help:      "Size of objects stored in object storage, in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1.0, 2.0, 24),
		},
		[]string{"name"})
)

type metricsBucketClient struct {
	base  BucketClient
	clock clock.Clock

	operationsDurationSeconds prometheus.ObserverVec
	putObjectSizeBytes        prometheus.Observer
}

// NewMetricsBucketClient creates an adapter for BucketClient that adds
// basic instrumentation in the form of Prometheus metrics.
func NewMetricsBucketClient(base BucketClient, clock clock.Clock, name string) BucketClient {
	bucketClientPrometheusMetrics.Do(func() {
		prometheus.MustRegister(bucketClientOperationsDurationSeconds)
		prometheus.MustRegister(bucketClientPutObjectSizeBytes)
	})

	return &metricsBucketClient{
		base:                      base,
		clock:                     clock,
		operationsDurationSeconds: bucketClientOperationsDurationSeconds.MustCurryWith(prometheus.Labels{"name": name}),
		putObjectSizeBytes:        bucketClientPutObjectSizeBytes.WithLabelValues(name),
	}
}

func (bc *metricsBucketClient) updateDuration(operation string, timeStart time.Time, err error) {
	bc.operationsDurationSeconds.WithLabelValues(operation, status.Code(err).String()).Observe(bc.clock.Now().Sub(timeStart).Seconds())
}

func (bc *metricsBucketClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	timeStart := bc.clock.Now()
	exists, err := bc.base.BucketExists(ctx, bucket)
	bc.updateDuration("BucketExists", timeStart, err)
	return exists, err
}

func (bc *metricsBucketClient) CreateBucket(ctx context.Context, bucket string) error {
	timeStart := bc.clock.Now()
	err := bc.base.CreateBucket(ctx, bucket)
	bc.updateDuration("CreateBucket", timeStart, err)
	return err
}

func (bc *metricsBucketClient) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	timeStart := bc.clock.Now()
	err := bc.base.PutObject(ctx, bucket, key, data)
	bc.updateDuration("PutObject", timeStart, err)
	if err == nil {
		bc.putObjectSizeBytes.Observe(float64(len(data)))
	}
	return err
}
