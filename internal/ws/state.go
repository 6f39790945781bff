package ws

import "sync/atomic"

// ConnState is the lifecycle state of a websocket connection. A
// connection is used once: there is no way back from closed.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s ConnState) String() string {
	names := [...]string{
		"disconnected",
		"connecting",
		"connected",
		"closed",
	}
	if s < 0 || int(s) >= len(names) {
		return "unknown"
	}
	return names[s]
}

// State is an atomically updated ConnState.
type State struct {
	state atomic.Int32
}

func (s *State) Load() ConnState {
	return ConnState(s.state.Load())
}

func (s *State) Store(state ConnState) {
	s.state.Store(int32(state))
}

// CompareAndSwap swaps to next when the current state is old.
func (s *State) CompareAndSwap(old, next ConnState) bool {
	return s.state.CompareAndSwap(int32(old), int32(next))
}
