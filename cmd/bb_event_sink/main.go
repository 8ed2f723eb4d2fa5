package main

import (
	"context"
	"log"
	"net"
	"os"

	"github.com/buildbarn/bb-event-sink/pkg/clock"
	"github.com/buildbarn/bb-event-sink/pkg/configuration"
	"github.com/buildbarn/bb-event-sink/pkg/eventbuffer"
	"github.com/buildbarn/bb-event-sink/pkg/global"
	"github.com/buildbarn/bb-event-sink/pkg/ingestion"
	"github.com/buildbarn/bb-event-sink/pkg/objectstore"
	"github.com/buildbarn/bb-event-sink/pkg/program"
	"github.com/buildbarn/bb-event-sink/pkg/random"
	"github.com/buildbarn/bb-event-sink/pkg/sharding"
	"github.com/buildbarn/bb-event-sink/pkg/sink"
	"github.com/buildbarn/bb-event-sink/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// recordSeparator is appended to every payload in the buffer of a
// shard. Payloads are JSON objects, which never contain it.
const recordSeparator = '\n'

func main() {
	program.RunMain(func(ctx context.Context, siblingsGroup, dependenciesGroup program.Group) error {
		if len(os.Args) != 2 {
			return status.Error(codes.InvalidArgument, "Usage: bb_event_sink bb_event_sink.jsonnet")
		}
		applicationConfiguration, err := configuration.GetApplicationConfiguration(os.Args[1])
		if err != nil {
			return util.StatusWrapf(err, "Failed to read configuration from %s", os.Args[1])
		}
		diagnosticsServer, tracerProvider, err := global.ApplyConfiguration(applicationConfiguration.Global)
		if err != nil {
			return util.StatusWrap(err, "Failed to apply global configuration options")
		}

		ring, err := sharding.NewRing(
			applicationConfiguration.Sharding.ShardCount,
			applicationConfiguration.Sharding.ReplicationFactor)
		if err != nil {
			return util.StatusWrap(err, "Failed to create shard ring")
		}
		store := eventbuffer.NewShardedStore(ring, recordSeparator)

		bucketClient, err := objectstore.NewBucketClientFromConfiguration(
			ctx,
			applicationConfiguration.ObjectStorage,
			clock.SystemClock,
			tracerProvider)
		if err != nil {
			return util.StatusWrap(err, "Failed to create object storage client")
		}

		flushConfiguration := applicationConfiguration.Flush
		flushCoordinator, err := sink.NewFlushCoordinator(
			store,
			bucketClient,
			clock.SystemClock,
			random.FastThreadSafeGenerator,
			util.NewPrefixingErrorLogger(util.DefaultErrorLogger, "Flush coordinator"),
			sink.FlushCoordinatorOptions{
				FlushInterval:        flushConfiguration.Interval.AsDuration(),
				RetryInterval:        flushConfiguration.RetryInterval.AsDuration(),
				BucketPrefix:         flushConfiguration.BucketPrefix,
				ChunkSizeBytes:       flushConfiguration.ChunkSizeBytes,
				Separator:            recordSeparator,
				FlushOnShutdown:      flushConfiguration.FlushOnShutdown,
				ShutdownFlushTimeout: flushConfiguration.ShutdownFlushTimeout.AsDuration(),
			})
		if err != nil {
			return util.StatusWrap(err, "Failed to create flush coordinator")
		}

		// The flush coordinator and the diagnostics server are
		// dependencies of the ingestion server, so that they are
		// only shut down after no more records are accepted.
		dependenciesGroup.Go(func(ctx context.Context, siblingsGroup, dependenciesGroup program.Group) error {
			return flushCoordinator.Run(ctx)
		})
		dependenciesGroup.Go(func(ctx context.Context, siblingsGroup, dependenciesGroup program.Group) error {
			return diagnosticsServer.Serve(ctx)
		})

		listener, err := net.Listen("tcp", applicationConfiguration.IngestionListenAddress)
		if err != nil {
			return util.StatusWrapf(err, "Failed to create listening socket for %#v", applicationConfiguration.IngestionListenAddress)
		}
		ingestionServer := ingestion.NewServer(
			store,
			util.NewPrefixingErrorLogger(util.DefaultErrorLogger, "Ingestion"))
		siblingsGroup.Go(func(ctx context.Context, siblingsGroup, dependenciesGroup program.Group) error {
			if err := ingestionServer.Serve(ctx, listener); err != nil {
				return util.StatusWrapf(err, "Ingestion server failed for %#v", applicationConfiguration.IngestionListenAddress)
			}
			return nil
		})

		log.Printf("Accepting records on %s, flushing %d shards every %s", listener.Addr(), ring.ShardCount(), flushConfiguration.Interval.AsDuration())
		diagnosticsServer.SetReady()
		return nil
	})
}
