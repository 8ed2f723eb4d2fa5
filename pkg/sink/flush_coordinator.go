package sink

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/buildbarn/bb-event-sink/pkg/chunking"
	"github.com/buildbarn/bb-event-sink/pkg/clock"
	"github.com/buildbarn/bb-event-sink/pkg/eventbuffer"
	"github.com/buildbarn/bb-event-sink/pkg/objectstore"
	"github.com/buildbarn/bb-event-sink/pkg/random"
	"github.com/buildbarn/bb-event-sink/pkg/sharding"
	"github.com/buildbarn/bb-event-sink/pkg/util"
	"github.com/prometheus/client_golang/prometheus"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	flushCoordinatorPrometheusMetrics sync.Once

	flushCoordinatorCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "sink",
			Name:      "flush_coordinator_cycles_total",
			Help:      "Number of flush cycles that were started, and how they terminated.",
		},
		[]string{"result"})
	flushCoordinatorFlushedBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "sink",
			Name:      "flush_coordinator_flushed_bytes_total",
			Help:      "Number of bytes written to object storage, including separators.",
		},
		[]string{"shard"})
	flushCoordinatorUploadedObjectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "sink",
			Name:      "flush_coordinator_uploaded_objects_total",
			Help:      "Number of objects written to object storage.",
		},
		[]string{"shard"})
	flushCoordinatorRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "sink",
			Name:      "flush_coordinator_retries_total",
			Help:      "Number of object storage operations that failed and were retried.",
		},
		[]string{"operation"})
	flushCoordinatorRequeuedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "sink",
			Name:      "flush_coordinator_requeued_bytes_total",
			Help:      "Number of bytes handed back to the store, because a flush was interrupted.",
		})
)

// FlushCoordinatorOptions contains the tunables of FlushCoordinator.
type FlushCoordinatorOptions struct {
	// Amount of time between the start of two flush cycles.
	FlushInterval time.Duration
	// Amount of time to wait before retrying a failed object
	// storage operation.
	RetryInterval time.Duration
	// Bucket names are formed by appending the shard ID to this
	// prefix.
	BucketPrefix string
	// Upper bound on the size of objects.
	ChunkSizeBytes int
	// Byte that separates records in the buffers of the store.
	Separator byte
	// Whether a final flush cycle is performed when Run() is
	// cancelled. It is bounded by ShutdownFlushTimeout.
	FlushOnShutdown      bool
	ShutdownFlushTimeout time.Duration
}

// FlushCoordinator periodically drains the buffers of all shards in a
// Store and writes their contents to object storage. Each shard is
// written to its own bucket, which is created on demand. Buffers are
// split into objects no larger than a configured size, preferring to
// cut at record boundaries.
//
// Failing object storage operations are retried indefinitely. The
// only way to interrupt a flush is by cancelling its context, in which
// case the part of the buffer that was not written is handed back to
// the store.
type FlushCoordinator struct {
	store           eventbuffer.Store
	bucketClient    objectstore.BucketClient
	clock           clock.Clock
	randomGenerator random.ThreadSafeGenerator
	errorLogger     util.ErrorLogger
	options         FlushCoordinatorOptions
}

// NewFlushCoordinator creates a FlushCoordinator. An error is returned
// if the options are invalid.
func NewFlushCoordinator(store eventbuffer.Store, bucketClient objectstore.BucketClient, clock clock.Clock, randomGenerator random.ThreadSafeGenerator, errorLogger util.ErrorLogger, options FlushCoordinatorOptions) (*FlushCoordinator, error) {
	if options.FlushInterval <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Flush interval must be positive, while %s was requested", options.FlushInterval)
	}
	if options.RetryInterval <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Retry interval must be positive, while %s was requested", options.RetryInterval)
	}
	if options.ChunkSizeBytes <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Chunk size must be positive, while %d bytes was requested", options.ChunkSizeBytes)
	}

	flushCoordinatorPrometheusMetrics.Do(func() {
		prometheus.MustRegister(flushCoordinatorCyclesTotal)
		prometheus.MustRegister(flushCoordinatorFlushedBytesTotal)
		prometheus.MustRegister(flushCoordinatorUploadedObjectsTotal)
		prometheus.MustRegister(flushCoordinatorRetriesTotal)
		prometheus.MustRegister(flushCoordinatorRequeuedBytesTotal)
	})

	return &FlushCoordinator{
		store:           store,
		bucketClient:    bucketClient,
		clock:           clock,
		randomGenerator: randomGenerator,
		errorLogger:     errorLogger,
		options:         options,
	}, nil
}

// Run performs a flush cycle every FlushInterval, until the context
// is cancelled.
func (fc *FlushCoordinator) Run(ctx context.Context) error {
	ticker, t := fc.clock.NewTicker(fc.options.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if fc.options.FlushOnShutdown {
				return fc.flushOnShutdown(ctx)
			}
			return nil
		case <-t:
			if err := fc.FlushCycle(ctx); err != nil && status.Code(err) != codes.Canceled {
				fc.errorLogger.Log(util.StatusWrap(err, "Flush cycle failed"))
			}
		}
	}
}

func (fc *FlushCoordinator) flushOnShutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fc.options.ShutdownFlushTimeout)
	defer cancel()
	if err := fc.FlushCycle(shutdownCtx); err != nil {
		return util.StatusWrap(err, "Final flush cycle failed")
	}
	return nil
}

// FlushCycle drains the buffers of all shards that currently have data
// buffered, and writes them to object storage. Shards are processed
// sequentially. All objects written during a single cycle share the
// same timestamp in their key.
func (fc *FlushCoordinator) FlushCycle(ctx context.Context) error {
	timestamp := fc.clock.Now().Unix()
	for _, shard := range fc.store.Keys() {
		if err := util.StatusFromContext(ctx); err != nil {
			flushCoordinatorCyclesTotal.WithLabelValues("Interrupted").Inc()
			return err
		}
		chunks, err := fc.store.Pop(shard)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				// Drained by a concurrent cycle.
				continue
			}
			flushCoordinatorCyclesTotal.WithLabelValues("Failed").Inc()
			return util.StatusWrapf(err, "Failed to drain shard %d", shard)
		}
		buffer := bytes.Join(chunks, nil)
		if len(buffer) == 0 {
			continue
		}
		if err := fc.flushShard(ctx, shard, buffer, timestamp); err != nil {
			flushCoordinatorCyclesTotal.WithLabelValues("Interrupted").Inc()
			return err
		}
	}
	flushCoordinatorCyclesTotal.WithLabelValues("Succeeded").Inc()
	return nil
}

// logErrorAndSleep logs a failed operation and waits for the retry
// interval to pass. An error is returned if the context is cancelled
// while waiting.
func (fc *FlushCoordinator) logErrorAndSleep(ctx context.Context, operation string, err error) error {
	flushCoordinatorRetriesTotal.WithLabelValues(operation).Inc()
	fc.errorLogger.Log(err)
	timer, t := fc.clock.NewTimer(fc.options.RetryInterval)
	select {
	case <-ctx.Done():
		timer.Stop()
		return util.StatusFromContext(ctx)
	case <-t:
		return nil
	}
}

// requeue hands the part of a buffer that was not flushed back to the
// store, so that it is picked up by a subsequent cycle.
func (fc *FlushCoordinator) requeue(shard sharding.ShardID, remaining []byte) {
	flushCoordinatorRequeuedBytesTotal.Add(float64(len(remaining)))
	fc.store.Requeue(shard, remaining, len(remaining)-bytes.Count(remaining, []byte{fc.options.Separator}))
}

func (fc *FlushCoordinator) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := fc.bucketClient.BucketExists(ctx, bucket)
	if err != nil {
		// Treat the bucket as absent.
		fc.errorLogger.Log(err)
	} else if exists {
		return nil
	}

	for {
		err := fc.bucketClient.CreateBucket(ctx, bucket)
		if err == nil {
			return nil
		}
		if err := fc.logErrorAndSleep(ctx, "CreateBucket", err); err != nil {
			return err
		}
	}
}

func (fc *FlushCoordinator) flushShard(ctx context.Context, shard sharding.ShardID, buffer []byte, timestamp int64) error {
	bucket := fc.options.BucketPrefix + strconv.FormatInt(int64(shard), 10)
	if err := fc.ensureBucket(ctx, bucket); err != nil {
		fc.requeue(shard, buffer)
		return util.StatusWrapf(err, "Failed to create bucket %#v", bucket)
	}

	splitter, err := chunking.NewSplitter(buffer, fc.options.Separator, fc.options.ChunkSizeBytes)
	if err != nil {
		fc.requeue(shard, buffer)
		return err
	}
	shardLabel := strconv.FormatInt(int64(shard), 10)
	for {
		chunk, ok := splitter.Next()
		if !ok {
			return nil
		}
		// Retries of a chunk reuse its key.
		key := fmt.Sprintf("%d/%d", timestamp, fc.randomGenerator.Uint32())
		for {
			err := fc.bucketClient.PutObject(ctx, bucket, key, chunk)
			if err == nil {
				break
			}
			if err := fc.logErrorAndSleep(ctx, "PutObject", err); err != nil {
				remaining := buffer[len(buffer)-len(chunk)-splitter.Remaining():]
				fc.requeue(shard, remaining)
				return util.StatusWrapf(err, "Failed to store object %#v in bucket %#v", key, bucket)
			}
		}
		flushCoordinatorFlushedBytesTotal.WithLabelValues(shardLabel).Add(float64(len(chunk)))
		flushCoordinatorUploadedObjectsTotal.WithLabelValues(shardLabel).Inc()
	}
}
