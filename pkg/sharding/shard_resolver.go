package sharding

// ShardID identifies one of the fixed set of buffers across which
// records are partitioned. Valid values are in range [0, N), where N is
// fixed at the time the ShardResolver is constructed.
type ShardID int

// ShardResolver is an algorithm that maps a routing key to the shard
// that is responsible for buffering it.
//
// The algorithm must be deterministic: for a given instance, the same
// key must always resolve to the same shard. Implementations must be
// safe for concurrent use.
type ShardResolver interface {
	Resolve(key string) ShardID
}
