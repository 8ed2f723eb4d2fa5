package eventbuffer

import (
	"github.com/buildbarn/bb-event-sink/pkg/sharding"
)

// Store of records that are pending to be flushed to object storage,
// partitioned by shard. Implementations are shared between all
// ingestion connections and the flush coordinator, meaning they must
// be safe for concurrent use.
type Store interface {
	// Push appends a payload to the buffer of the shard to which
	// the routing key resolves. The payload is followed by a
	// single separator byte. Payloads may not contain the
	// separator themselves, as that would make it impossible to
	// tell records apart.
	Push(key string, data []byte) error

	// Pop atomically removes the buffer of a shard and returns its
	// chunks in append order. A NotFound error is returned if the
	// shard has nothing buffered.
	Pop(shard sharding.ShardID) ([][]byte, error)

	// Requeue places data back at the front of the buffer of a
	// shard. It is used to hand back the part of a popped buffer
	// that could not be flushed. payloadSizeBytes is the number of
	// bytes in data that are not separators, which follows from
	// Push() rejecting payloads containing a separator.
	Requeue(shard sharding.ShardID, data []byte, payloadSizeBytes int)

	// Size returns the total size of all payloads buffered for a
	// shard, excluding separators.
	Size(shard sharding.ShardID) int

	// Keys returns the shards that have data buffered at the time
	// of the call, in ascending order.
	Keys() []sharding.ShardID
}
