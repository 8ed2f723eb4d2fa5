package sink_test

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/buildbarn/bb-event-sink/internal/mock"
	bb_clock "github.com/buildbarn/bb-event-sink/pkg/clock"
	"github.com/buildbarn/bb-event-sink/pkg/eventbuffer"
	"github.com/buildbarn/bb-event-sink/pkg/sharding"
	"github.com/buildbarn/bb-event-sink/pkg/sink"
	"github.com/buildbarn/bb-event-sink/pkg/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var defaultOptions = sink.FlushCoordinatorOptions{
	FlushInterval:        5 * time.Minute,
	RetryInterval:        time.Second,
	BucketPrefix:         "hash",
	ChunkSizeBytes:       8,
	Separator:            '\n',
	ShutdownFlushTimeout: time.Minute,
}

// newStore creates a store in which keys of the form "shard=N" are
// routed to shard N.
func newStore(ctrl *gomock.Controller) eventbuffer.Store {
	resolver := mock.NewMockShardResolver(ctrl)
	for shard := 0; shard < 5; shard++ {
		resolver.EXPECT().Resolve("shard=" + strconv.Itoa(shard)).Return(sharding.ShardID(shard)).AnyTimes()
	}
	return eventbuffer.NewShardedStore(resolver, '\n')
}

func TestNewFlushCoordinator(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := newStore(ctrl)
	bucketClient := mock.NewMockBucketClient(ctrl)
	clock := mock.NewMockClock(ctrl)
	randomGenerator := mock.NewMockThreadSafeGenerator(ctrl)
	errorLogger := mock.NewMockErrorLogger(ctrl)

	t.Run("InvalidChunkSize", func(t *testing.T) {
		options := defaultOptions
		options.ChunkSizeBytes = 0
		_, err := sink.NewFlushCoordinator(store, bucketClient, clock, randomGenerator, errorLogger, options)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Chunk size must be positive, while 0 bytes was requested"), err)
	})

	t.Run("InvalidRetryInterval", func(t *testing.T) {
		options := defaultOptions
		options.RetryInterval = 0
		_, err := sink.NewFlushCoordinator(store, bucketClient, clock, randomGenerator, errorLogger, options)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Retry interval must be positive, while 0s was requested"), err)
	})

	t.Run("InvalidFlushInterval", func(t *testing.T) {
		options := defaultOptions
		options.FlushInterval = -time.Second
		_, err := sink.NewFlushCoordinator(store, bucketClient, clock, randomGenerator, errorLogger, options)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Flush interval must be positive, while -1s was requested"), err)
	})
}

func TestFlushCoordinatorFlushCycle(t *testing.T) {
	ctrl, ctx := gomock.WithContext(context.Background(), t)

	store := newStore(ctrl)
	bucketClient := mock.NewMockBucketClient(ctrl)
	clock := mock.NewMockClock(ctrl)
	randomGenerator := mock.NewMockThreadSafeGenerator(ctrl)
	errorLogger := mock.NewMockErrorLogger(ctrl)
	flushCoordinator, err := sink.NewFlushCoordinator(store, bucketClient, clock, randomGenerator, errorLogger, defaultOptions)
	require.NoError(t, err)

	t.Run("Empty", func(t *testing.T) {
		// Nothing is buffered, so object storage must not be
		// contacted.
		clock.EXPECT().Now().Return(time.Unix(1700000000, 0))

		require.NoError(t, flushCoordinator.FlushCycle(ctx))
	})

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, store.Push("shard=0", []byte("aaa")))
		require.NoError(t, store.Push("shard=3", []byte("zz")))
		require.NoError(t, store.Push("shard=0", []byte("bbb")))
		require.NoError(t, store.Push("shard=0", []byte("ccccccccccc")))

		// Shard 0 has no bucket yet. Its buffer is split into
		// four objects, of which the first contains two records.
		// Shard 3 already has a bucket.
		gomock.InOrder(
			clock.EXPECT().Now().Return(time.Unix(1700000000, 0)),
			bucketClient.EXPECT().BucketExists(ctx, "hash0").Return(false, nil),
			bucketClient.EXPECT().CreateBucket(ctx, "hash0"),
			randomGenerator.EXPECT().Uint32().Return(uint32(1)),
			bucketClient.EXPECT().PutObject(ctx, "hash0", "1700000000/1", []byte("aaa\nbbb")),
			randomGenerator.EXPECT().Uint32().Return(uint32(2)),
			bucketClient.EXPECT().PutObject(ctx, "hash0", "1700000000/2", []byte("\nccccccc")),
			randomGenerator.EXPECT().Uint32().Return(uint32(3)),
			bucketClient.EXPECT().PutObject(ctx, "hash0", "1700000000/3", []byte("cccc")),
			randomGenerator.EXPECT().Uint32().Return(uint32(4)),
			bucketClient.EXPECT().PutObject(ctx, "hash0", "1700000000/4", []byte("\n")),

			bucketClient.EXPECT().BucketExists(ctx, "hash3").Return(true, nil),
			randomGenerator.EXPECT().Uint32().Return(uint32(5)),
			bucketClient.EXPECT().PutObject(ctx, "hash3", "1700000000/5", []byte("zz")),
			randomGenerator.EXPECT().Uint32().Return(uint32(6)),
			bucketClient.EXPECT().PutObject(ctx, "hash3", "1700000000/6", []byte("\n")))

		require.NoError(t, flushCoordinator.FlushCycle(ctx))
		require.Empty(t, store.Keys())
	})

	t.Run("RetryUntilSuccess", func(t *testing.T) {
		require.NoError(t, store.Push("shard=2", []byte("abc")))

		timer1 := mock.NewMockTimer(ctrl)
		timerChan1 := make(chan time.Time, 1)
		timerChan1 <- time.Unix(1700000301, 0)
		timer2 := mock.NewMockTimer(ctrl)
		timerChan2 := make(chan time.Time, 1)
		timerChan2 <- time.Unix(1700000302, 0)

		// Failures are logged and followed by a delay of the
		// retry interval, after which the operation is retried.
		// Retries of PutObject() use the same key.
		gomock.InOrder(
			clock.EXPECT().Now().Return(time.Unix(1700000300, 0)),
			bucketClient.EXPECT().BucketExists(ctx, "hash2").Return(false, status.Error(codes.Unavailable, "Connection refused")),
			errorLogger.EXPECT().Log(testutil.EqStatus(status.Error(codes.Unavailable, "Connection refused"))),
			bucketClient.EXPECT().CreateBucket(ctx, "hash2").Return(status.Error(codes.Unavailable, "Connection refused")),
			errorLogger.EXPECT().Log(testutil.EqStatus(status.Error(codes.Unavailable, "Connection refused"))),
			clock.EXPECT().NewTimer(time.Second).Return(timer1, timerChan1),
			bucketClient.EXPECT().CreateBucket(ctx, "hash2"),
			randomGenerator.EXPECT().Uint32().Return(uint32(7)),
			bucketClient.EXPECT().PutObject(ctx, "hash2", "1700000300/7", []byte("abc")).Return(status.Error(codes.Internal, "Server error")),
			errorLogger.EXPECT().Log(testutil.EqStatus(status.Error(codes.Internal, "Server error"))),
			clock.EXPECT().NewTimer(time.Second).Return(timer2, timerChan2),
			bucketClient.EXPECT().PutObject(ctx, "hash2", "1700000300/7", []byte("abc")),
			randomGenerator.EXPECT().Uint32().Return(uint32(8)),
			bucketClient.EXPECT().PutObject(ctx, "hash2", "1700000300/8", []byte("\n")))

		require.NoError(t, flushCoordinator.FlushCycle(ctx))
		require.Empty(t, store.Keys())
	})
}

func TestFlushCoordinatorCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := newStore(ctrl)
	bucketClient := mock.NewMockBucketClient(ctrl)
	clock := mock.NewMockClock(ctrl)
	randomGenerator := mock.NewMockThreadSafeGenerator(ctrl)
	errorLogger := mock.NewMockErrorLogger(ctrl)
	flushCoordinator, err := sink.NewFlushCoordinator(store, bucketClient, clock, randomGenerator, errorLogger, defaultOptions)
	require.NoError(t, err)

	t.Run("DuringPutObject", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, store.Push("shard=0", []byte("aaa")))
		require.NoError(t, store.Push("shard=0", []byte("bbb")))
		require.NoError(t, store.Push("shard=0", []byte("ccccccccccc")))

		// The second object cannot be written. Cancelling the
		// context while waiting to retry must cause everything
		// that was not written to be handed back to the store.
		timer := mock.NewMockTimer(ctrl)
		gomock.InOrder(
			clock.EXPECT().Now().Return(time.Unix(1700000000, 0)),
			bucketClient.EXPECT().BucketExists(gomock.Any(), "hash0").Return(true, nil),
			randomGenerator.EXPECT().Uint32().Return(uint32(1)),
			bucketClient.EXPECT().PutObject(gomock.Any(), "hash0", "1700000000/1", []byte("aaa\nbbb")),
			randomGenerator.EXPECT().Uint32().Return(uint32(2)),
			bucketClient.EXPECT().PutObject(gomock.Any(), "hash0", "1700000000/2", []byte("\nccccccc")).
				Return(status.Error(codes.Unavailable, "Connection refused")),
			errorLogger.EXPECT().Log(testutil.EqStatus(status.Error(codes.Unavailable, "Connection refused"))),
			clock.EXPECT().NewTimer(time.Second).DoAndReturn(func(d time.Duration) (bb_clock.Timer, <-chan time.Time) {
				cancel()
				return timer, nil
			}),
			timer.EXPECT().Stop().Return(true))

		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Canceled, "Failed to store object \"1700000000/2\" in bucket \"hash0\": context canceled"),
			flushCoordinator.FlushCycle(ctx))

		require.Equal(t, []sharding.ShardID{0}, store.Keys())
		require.Equal(t, 11, store.Size(0))
		chunks, err := store.Pop(0)
		require.NoError(t, err)
		require.Equal(t, []byte("\nccccccccccc\n"), bytes.Join(chunks, nil))
	})

	t.Run("DuringCreateBucket", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, store.Push("shard=4", []byte("xyz")))

		timer := mock.NewMockTimer(ctrl)
		gomock.InOrder(
			clock.EXPECT().Now().Return(time.Unix(1700000000, 0)),
			bucketClient.EXPECT().BucketExists(gomock.Any(), "hash4").Return(false, nil),
			bucketClient.EXPECT().CreateBucket(gomock.Any(), "hash4").Return(status.Error(codes.PermissionDenied, "Access denied")),
			errorLogger.EXPECT().Log(testutil.EqStatus(status.Error(codes.PermissionDenied, "Access denied"))),
			clock.EXPECT().NewTimer(time.Second).DoAndReturn(func(d time.Duration) (bb_clock.Timer, <-chan time.Time) {
				cancel()
				return timer, nil
			}),
			timer.EXPECT().Stop().Return(true))

		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Canceled, "Failed to create bucket \"hash4\": context canceled"),
			flushCoordinator.FlushCycle(ctx))

		require.Equal(t, 3, store.Size(4))
		chunks, err := store.Pop(4)
		require.NoError(t, err)
		require.Equal(t, []byte("xyz\n"), bytes.Join(chunks, nil))
	})

	t.Run("BeforeCycle", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, store.Push("shard=1", []byte("abc")))
		clock.EXPECT().Now().Return(time.Unix(1700000000, 0))

		testutil.RequireEqualStatus(t, status.Error(codes.Canceled, "context canceled"), flushCoordinator.FlushCycle(ctx))
		require.Equal(t, 3, store.Size(1))
	})
}

func TestFlushCoordinatorRun(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := newStore(ctrl)
	bucketClient := mock.NewMockBucketClient(ctrl)
	clock := mock.NewMockClock(ctrl)
	randomGenerator := mock.NewMockThreadSafeGenerator(ctrl)
	errorLogger := mock.NewMockErrorLogger(ctrl)

	t.Run("Periodic", func(t *testing.T) {
		flushCoordinator, err := sink.NewFlushCoordinator(store, bucketClient, clock, randomGenerator, errorLogger, defaultOptions)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, store.Push("shard=1", []byte("hi")))

		// A single tick causes a flush cycle. The context is
		// cancelled afterwards, which terminates Run().
		ticker := mock.NewMockTicker(ctrl)
		tickerChan := make(chan time.Time, 1)
		tickerChan <- time.Unix(1700000300, 0)
		gomock.InOrder(
			clock.EXPECT().NewTicker(5*time.Minute).Return(ticker, tickerChan),
			clock.EXPECT().Now().Return(time.Unix(1700000300, 0)),
			bucketClient.EXPECT().BucketExists(gomock.Any(), "hash1").Return(true, nil),
			randomGenerator.EXPECT().Uint32().Return(uint32(1)),
			bucketClient.EXPECT().PutObject(gomock.Any(), "hash1", "1700000300/1", []byte("hi")),
			randomGenerator.EXPECT().Uint32().Return(uint32(2)),
			bucketClient.EXPECT().PutObject(gomock.Any(), "hash1", "1700000300/2", []byte("\n")).
				DoAndReturn(func(ctx context.Context, bucket, key string, data []byte) error {
					cancel()
					return nil
				}),
			ticker.EXPECT().Stop())

		require.NoError(t, flushCoordinator.Run(ctx))
		require.Empty(t, store.Keys())
	})

	t.Run("FlushOnShutdown", func(t *testing.T) {
		options := defaultOptions
		options.FlushOnShutdown = true
		flushCoordinator, err := sink.NewFlushCoordinator(store, bucketClient, clock, randomGenerator, errorLogger, options)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, store.Push("shard=3", []byte("bye")))

		// Even though Run() is cancelled before the first tick,
		// buffered records are written to object storage.
		ticker := mock.NewMockTicker(ctrl)
		gomock.InOrder(
			clock.EXPECT().NewTicker(5*time.Minute).Return(ticker, nil),
			clock.EXPECT().Now().Return(time.Unix(1700000600, 0)),
			bucketClient.EXPECT().BucketExists(gomock.Any(), "hash3").Return(true, nil),
			randomGenerator.EXPECT().Uint32().Return(uint32(3)),
			bucketClient.EXPECT().PutObject(gomock.Any(), "hash3", "1700000600/3", []byte("bye")),
			randomGenerator.EXPECT().Uint32().Return(uint32(4)),
			bucketClient.EXPECT().PutObject(gomock.Any(), "hash3", "1700000600/4", []byte("\n")),
			ticker.EXPECT().Stop())

		require.NoError(t, flushCoordinator.Run(ctx))
		require.Empty(t, store.Keys())
	})
}
