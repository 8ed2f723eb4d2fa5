package global

import (
	"fmt"
	"sync"
	"time"

	"github.com/buildbarn/bb-event-sink/pkg/clock"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// constantRateTraceSampler uses a token bucket algorithm to sample
// traces. This is useful as an alternative to probability-based
// sampling when the number of flush operations per second is low.
type constantRateTraceSampler struct {
	clock           clock.Clock
	maxTokens       int64
	tokensPerPeriod int64
	tokensPerSample int64

	lock            sync.Mutex
	availableTokens int64
	lastRefillTime  time.Time
	nextRefillTime  time.Time
}

// NewConstantRateTraceSampler returns a new constant rate trace
// sampler. Tokens are refilled every second.
func NewConstantRateTraceSampler(tokensPerSecond, maxTokens, tokensPerSample int64, clock clock.Clock) sdktrace.Sampler {
	now := clock.Now()
	return &constantRateTraceSampler{
		clock:           clock,
		availableTokens: maxTokens,
		maxTokens:       maxTokens,
		tokensPerPeriod: tokensPerSecond,
		tokensPerSample: tokensPerSample,
		lastRefillTime:  now,
		nextRefillTime:  now.Add(time.Second),
	}
}

func (s *constantRateTraceSampler) ShouldSample(parameters sdktrace.SamplingParameters) sdktrace.SamplingResult {
	psc := trace.SpanContextFromContext(parameters.ParentContext)
	if s.sample() {
		return sdktrace.SamplingResult{
			Decision:   sdktrace.RecordAndSample,
			Tracestate: psc.TraceState(),
		}
	}
	return sdktrace.SamplingResult{
		Decision:   sdktrace.Drop,
		Tracestate: psc.TraceState(),
	}
}

func (s *constantRateTraceSampler) sample() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	// Refill tokens for every full period that has passed.
	now := s.clock.Now()
	if !now.Before(s.nextRefillTime) {
		periods := int64(now.Sub(s.lastRefillTime) / time.Second)
		s.availableTokens = min(s.availableTokens+periods*s.tokensPerPeriod, s.maxTokens)
		s.lastRefillTime = s.lastRefillTime.Add(time.Duration(periods) * time.Second)
		s.nextRefillTime = s.lastRefillTime.Add(time.Second)
	}

	if s.availableTokens >= s.tokensPerSample {
		s.availableTokens -= s.tokensPerSample
		return true
	}
	return false
}

func (s *constantRateTraceSampler) Description() string {
	return fmt.Sprintf("ConstantRateTraceSampler{tokensPerSecond=%d,maxTokens=%d}", s.tokensPerPeriod, s.maxTokens)
}
