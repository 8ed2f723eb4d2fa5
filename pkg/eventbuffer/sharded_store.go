package eventbuffer

import (
	"bytes"
	"sort"
	"strconv"
	"sync"

	"github.com/buildbarn/bb-event-sink/pkg/sharding"
	"github.com/prometheus/client_golang/prometheus"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	shardedStorePrometheusMetrics sync.Once

	shardedStorePushedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "eventbuffer",
			Name:      "sharded_store_pushed_records_total",
			Help:      "Number of records appended to the buffer of a shard.",
		},
		[]string{"shard"})
	shardedStorePushedBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "eventbuffer",
			Name:      "sharded_store_pushed_bytes_total",
			Help:      "Number of payload bytes appended to the buffer of a shard.",
		},
		[]string{"shard"})
	shardedStorePoppedBuffersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "eventbuffer",
			Name:      "sharded_store_popped_buffers_total",
			Help:      "Number of times the buffer of a shard was drained.",
		},
		[]string{"shard"})
)

// shardBuffer holds the chunks that were appended to a single shard
// since it was last drained.
type shardBuffer struct {
	chunks           [][]byte
	payloadSizeBytes int
}

// ShardedStore is an in-memory Store. Buffers are created lazily upon
// the first push to a shard and discarded when drained.
type ShardedStore struct {
	resolver  sharding.ShardResolver
	separator byte

	lock    sync.RWMutex
	buffers map[sharding.ShardID]*shardBuffer
}

var _ Store = (*ShardedStore)(nil)

// NewShardedStore creates a ShardedStore that uses a ShardResolver to
// determine the shard of every pushed record. Records are delimited
// by the provided separator byte.
func NewShardedStore(resolver sharding.ShardResolver, separator byte) *ShardedStore {
	shardedStorePrometheusMetrics.Do(func() {
		prometheus.MustRegister(shardedStorePushedRecordsTotal)
		prometheus.MustRegister(shardedStorePushedBytesTotal)
		prometheus.MustRegister(shardedStorePoppedBuffersTotal)
	})

	return &ShardedStore{
		resolver:  resolver,
		separator: separator,
		buffers:   map[sharding.ShardID]*shardBuffer{},
	}
}

// Push a record into the buffer of the shard its key resolves to.
func (s *ShardedStore) Push(key string, data []byte) error {
	if i := bytes.IndexByte(data, s.separator); i >= 0 {
		return status.Errorf(codes.InvalidArgument, "Payload contains a record separator at offset %d", i)
	}

	// Resolve outside of the lock, so that pushes for different
	// shards only contend on the map itself.
	shard := s.resolver.Resolve(key)

	s.lock.Lock()
	b, ok := s.buffers[shard]
	if !ok {
		b = &shardBuffer{}
		s.buffers[shard] = b
	}
	b.chunks = append(b.chunks, data, []byte{s.separator})
	b.payloadSizeBytes += len(data)
	s.lock.Unlock()

	shardLabel := strconv.FormatInt(int64(shard), 10)
	shardedStorePushedRecordsTotal.WithLabelValues(shardLabel).Inc()
	shardedStorePushedBytesTotal.WithLabelValues(shardLabel).Add(float64(len(data)))
	return nil
}

// Pop drains the buffer of a shard.
func (s *ShardedStore) Pop(shard sharding.ShardID) ([][]byte, error) {
	s.lock.Lock()
	b, ok := s.buffers[shard]
	if ok {
		delete(s.buffers, shard)
	}
	s.lock.Unlock()

	if !ok {
		return nil, status.Errorf(codes.NotFound, "Shard %d has no buffered records", shard)
	}
	shardedStorePoppedBuffersTotal.WithLabelValues(strconv.FormatInt(int64(shard), 10)).Inc()
	return b.chunks, nil
}

// Requeue data in front of anything that was pushed to the shard
// after it was popped, so that the original append order is retained.
func (s *ShardedStore) Requeue(shard sharding.ShardID, data []byte, payloadSizeBytes int) {
	if len(data) == 0 {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	b, ok := s.buffers[shard]
	if !ok {
		b = &shardBuffer{}
		s.buffers[shard] = b
	}
	b.chunks = append([][]byte{data}, b.chunks...)
	b.payloadSizeBytes += payloadSizeBytes
}

// Size returns the number of payload bytes buffered for a shard.
func (s *ShardedStore) Size(shard sharding.ShardID) int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if b, ok := s.buffers[shard]; ok {
		return b.payloadSizeBytes
	}
	return 0
}

// Keys returns a snapshot of the shards that currently have records
// buffered. Shards that receive their first record after the snapshot
// is taken are picked up by the next call.
func (s *ShardedStore) Keys() []sharding.ShardID {
	s.lock.RLock()
	keys := make([]sharding.ShardID, 0, len(s.buffers))
	for shard := range s.buffers {
		keys = append(keys, shard)
	}
	s.lock.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
