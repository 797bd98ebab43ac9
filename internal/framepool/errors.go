package framepool

import (
	"fmt"

	"github.com/Ethkuil/TDB/internal/rc"
)

var (
	// ErrNoFreeFrame is returned by callers that need a frame but the pool
	// is exhausted and eviction didn't free one up. It wraps rc.ErrNoMem.
	ErrNoFreeFrame = fmt.Errorf("framepool: no free frame available: %w", rc.ErrNoMem)
)
