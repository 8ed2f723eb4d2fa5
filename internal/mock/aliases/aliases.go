package aliases

import (
	"io"
)

// This file contains aliases for some of the interfaces provided by the
// Go standard library. The only reason this file exists is to allow
// mockgen to emit mocks for them in the same way as for interfaces
// declared by this module.

// WriteCloser is an alias of io.WriteCloser.
type WriteCloser = io.WriteCloser
