package sharding

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/zeebo/blake3"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// DefaultShardCount is the number of shards used when no
	// explicit count is configured.
	DefaultShardCount = 5
	// DefaultReplicationFactor is the number of virtual nodes each
	// shard owns on the ring when no explicit factor is configured.
	DefaultReplicationFactor = 10
)

type ringPosition struct {
	hash  uint64
	shard ShardID
}

// Ring is a ShardResolver that uses consistent hashing with virtual
// nodes. Every shard owns a number of positions on a circular 64-bit
// hash space. A key resolves to the shard owning the first position
// that is at or after the key's hash, wrapping around at the end.
//
// The topology of the ring is fixed at construction time.
type Ring struct {
	lock       sync.Mutex
	positions  []ringPosition
	shardCount int
}

var _ ShardResolver = (*Ring)(nil)

func hashKey(key string) uint64 {
	h := blake3.Sum256([]byte(key))
	return binary.BigEndian.Uint64(h[:8])
}

// NewRing creates a consistent hashing ring for shards [0,
// shardCount), where every shard is placed on the ring
// replicationFactor times.
func NewRing(shardCount, replicationFactor int) (*Ring, error) {
	if shardCount <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Ring must have at least one shard, while %d were requested", shardCount)
	}
	if replicationFactor <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Ring must have a replication factor of at least one, while %d was requested", replicationFactor)
	}

	positions := make([]ringPosition, 0, shardCount*replicationFactor)
	owners := make(map[uint64]ShardID, shardCount*replicationFactor)
	for shard := ShardID(0); int(shard) < shardCount; shard++ {
		for replica := 0; replica < replicationFactor; replica++ {
			hash := hashKey(fmt.Sprintf("%d-%d", shard, replica))
			if collision, ok := owners[hash]; ok {
				return nil, status.Errorf(codes.Internal, "Hash collision between virtual nodes of shards %d and %d", collision, shard)
			}
			owners[hash] = shard
			positions = append(positions, ringPosition{
				hash:  hash,
				shard: shard,
			})
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].hash < positions[j].hash
	})
	return &Ring{
		positions:  positions,
		shardCount: shardCount,
	}, nil
}

// Resolve the shard that owns a given routing key.
func (r *Ring) Resolve(key string) ShardID {
	hash := hashKey(key)

	r.lock.Lock()
	defer r.lock.Unlock()

	i := sort.Search(len(r.positions), func(i int) bool {
		return r.positions[i].hash >= hash
	})
	if i == len(r.positions) {
		i = 0
	}
	return r.positions[i].shard
}

// ShardCount returns the number of shards on the ring.
func (r *Ring) ShardCount() int {
	return r.shardCount
}
