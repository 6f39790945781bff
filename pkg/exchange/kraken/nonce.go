package kraken

import (
	"sync/atomic"

	"ledger/pkg/core"
)

// NonceSource hands out millisecond nonces that never repeat or go
// backwards, even when the clock does.
type NonceSource struct {
	last  atomic.Int64
	clock core.Clock
}

// NewNonceSource draws millisecond nonces from clock, the system clock when nil.
func NewNonceSource(clock core.Clock) *NonceSource {
	if clock == nil {
		clock = core.SystemClock
	}
	return &NonceSource{clock: clock}
}

// Next returns max(now_ms, last+1).
func (n *NonceSource) Next() int64 {
	for {
		last := n.last.Load()
		next := max(n.clock().UnixMilli(), last+1)
		if n.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
