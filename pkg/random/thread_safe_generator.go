package random

// ThreadSafeGenerator is a Random Number Generator (RNG) that may be
// used from within multiple goroutines without additional locking.
// It is consulted by the flush coordinator to pick object names.
type ThreadSafeGenerator interface {
	// Generates an arbitrary 32-bit integer value.
	Uint32() uint32

	IsThreadSafe()
}
