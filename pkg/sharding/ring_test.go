package sharding_test

import (
	"fmt"
	"testing"

	"github.com/buildbarn/bb-event-sink/pkg/sharding"
	"github.com/buildbarn/bb-event-sink/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRingConstruction(t *testing.T) {
	t.Run("NoShards", func(t *testing.T) {
		_, err := sharding.NewRing(0, 10)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Ring must have at least one shard, while 0 were requested"), err)
	})

	t.Run("NoVirtualNodes", func(t *testing.T) {
		_, err := sharding.NewRing(5, 0)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Ring must have a replication factor of at least one, while 0 was requested"), err)
	})

	t.Run("Defaults", func(t *testing.T) {
		r, err := sharding.NewRing(sharding.DefaultShardCount, sharding.DefaultReplicationFactor)
		require.NoError(t, err)
		require.Equal(t, 5, r.ShardCount())
	})
}

func TestRingSingleShard(t *testing.T) {
	r, err := sharding.NewRing(1, 3)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		require.Equal(t, sharding.ShardID(0), r.Resolve(fmt.Sprintf("key-%d", i)))
	}
}

func TestRingDeterminism(t *testing.T) {
	r1, err := sharding.NewRing(5, 10)
	require.NoError(t, err)
	r2, err := sharding.NewRing(5, 10)
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		key := fmt.Sprintf("app=web%dregion=eu", i)
		shard := r1.Resolve(key)
		require.GreaterOrEqual(t, int(shard), 0)
		require.Less(t, int(shard), 5)
		// Repeated lookups and lookups against an identically
		// constructed ring must yield the same shard.
		require.Equal(t, shard, r1.Resolve(key))
		require.Equal(t, shard, r2.Resolve(key))
	}
}

func TestRingDistribution(t *testing.T) {
	const keyCount = 200000

	measure := func(t *testing.T, shardCount, replicationFactor int) []float64 {
		r, err := sharding.NewRing(shardCount, replicationFactor)
		require.NoError(t, err)
		occurrences := make([]int, shardCount)
		for i := 0; i < keyCount; i++ {
			occurrences[r.Resolve(fmt.Sprintf("key-%d", i))]++
		}
		shares := make([]float64, 0, shardCount)
		for _, n := range occurrences {
			shares = append(shares, float64(n)/keyCount)
		}
		return shares
	}

	t.Run("DefaultParameters", func(t *testing.T) {
		// With only ten virtual nodes per shard the load is
		// balanced coarsely, but no shard may be starved or
		// receive the majority of all keys.
		for _, share := range measure(t, 5, 10) {
			require.Greater(t, share, 0.02)
			require.Less(t, share, 0.6)
		}
	})

	t.Run("ManyVirtualNodes", func(t *testing.T) {
		for _, share := range measure(t, 5, 200) {
			require.InDelta(t, 0.2, share, 0.1)
		}
	})
}

func BenchmarkRingResolve(b *testing.B) {
	r, _ := sharding.NewRing(sharding.DefaultShardCount, sharding.DefaultReplicationFactor)
	for i := 0; i < b.N; i++ {
		r.Resolve("app=webregion=eu")
	}
}
