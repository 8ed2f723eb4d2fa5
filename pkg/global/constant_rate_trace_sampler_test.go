package global_test

import (
	"context"
	"testing"
	"time"

	"github.com/buildbarn/bb-event-sink/internal/mock"
	"github.com/buildbarn/bb-event-sink/pkg/global"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestConstantRateTraceSampler(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mock.NewMockClock(ctrl)

	ts := time.Unix(1000, 0)
	parameters := sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		Name:          "BucketClient.PutObject",
	}
	sample := func(s sdktrace.Sampler) bool {
		return s.ShouldSample(parameters).Decision == sdktrace.RecordAndSample
	}

	clock.EXPECT().Now().Return(ts)
	s := global.NewConstantRateTraceSampler(2, 2, 1, clock)

	// The bucket has 2 tokens. Thus, we should be able to consume
	// both tokens and no more.
	clock.EXPECT().Now().Return(ts).Times(3)
	require.True(t, sample(s))
	require.True(t, sample(s))
	require.False(t, sample(s))

	// Advance time 0.25 seconds. There should still be not enough
	// tokens.
	clock.EXPECT().Now().Return(ts.Add(time.Second / 4))
	require.False(t, sample(s))

	// Advance to the next second. There should be enough tokens now.
	clock.EXPECT().Now().Return(ts.Add(time.Second)).Times(3)
	require.True(t, sample(s))
	require.True(t, sample(s))
	require.False(t, sample(s))

	// Advance time 5 seconds. The "max tokens" cap will apply.
	clock.EXPECT().Now().Return(ts.Add(5 * time.Second)).Times(5)
	require.True(t, sample(s))
	require.True(t, sample(s))
	require.False(t, sample(s))
	require.False(t, sample(s))
	require.False(t, sample(s))
}
