package chunking

import (
	"bytes"
	"iter"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Splitter partitions a buffer into chunks of at most a fixed size,
// preferring to cut right before a separator byte so that records
// that were appended to the buffer are not split across chunks.
//
// Chunks are slices of the original buffer. Concatenating all chunks
// yields the original buffer. A Splitter can only be iterated once.
type Splitter struct {
	remaining      []byte
	separator      byte
	chunkSizeBytes int
}

// NewSplitter creates a Splitter for a buffer. The chunk size must be
// positive.
func NewSplitter(data []byte, separator byte, chunkSizeBytes int) (*Splitter, error) {
	if chunkSizeBytes <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Chunk size must be positive, while %d bytes was requested", chunkSizeBytes)
	}
	return &Splitter{
		remaining:      data,
		separator:      separator,
		chunkSizeBytes: chunkSizeBytes,
	}, nil
}

// Next returns the next chunk. The boolean is false once the buffer
// has been fully consumed.
func (s *Splitter) Next() ([]byte, bool) {
	if len(s.remaining) == 0 {
		return nil, false
	}

	window := s.remaining[:min(len(s.remaining), s.chunkSizeBytes)]
	chunkSizeBytes := len(window)
	// Cut right before the last separator in the window. The
	// separator becomes the first byte of the next chunk. If the
	// only separator is at the very start of the window, emit the
	// full window instead of an empty chunk.
	if offset := bytes.LastIndexByte(window, s.separator); offset > 0 {
		chunkSizeBytes = offset
	}

	chunk := s.remaining[:chunkSizeBytes]
	s.remaining = s.remaining[chunkSizeBytes:]
	return chunk, true
}

// Remaining returns the number of bytes that have not been returned
// by Next() yet.
func (s *Splitter) Remaining() int {
	return len(s.remaining)
}

// SizeHint returns an upper bound of the number of chunks that are
// still to be returned.
func (s *Splitter) SizeHint() int {
	return (len(s.remaining) + s.chunkSizeBytes - 1) / s.chunkSizeBytes
}

// Chunks returns an iterator over the chunks that have not been
// returned yet.
func (s *Splitter) Chunks() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for {
			chunk, ok := s.Next()
			if !ok || !yield(chunk) {
				return
			}
		}
	}
}
