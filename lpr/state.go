package lpr

import "sync/atomic"

// State is the lifecycle state of a session.
type State uint32

const (
	UnconnectedState State = iota
	ConnectingState
	HandshakingState
	ReadyState
	ClosedState
	FailedState
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case UnconnectedState:
		return "Unconnected"
	case ConnectingState:
		return "Connecting"
	case HandshakingState:
		return "Handshaking"
	case ReadyState:
		return "Ready"
	case ClosedState:
		return "Closed"
	case FailedState:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == ClosedState || s == FailedState
}

// AtomicState holds a State and only allows the transitions of the session
// lifecycle.
type AtomicState struct {
	state atomic.Uint32
}

func (st *AtomicState) String() string {
	return st.Get().String()
}

// Get returns the current state.
func (st *AtomicState) Get() State {
	return State(st.state.Load())
}

func (st *AtomicState) IsReady() bool {
	return st.Get() == ReadyState
}

func (st *AtomicState) IsClosed() bool {
	return st.Get() == ClosedState
}

func (st *AtomicState) ToConnecting() bool {
	return st.cas(UnconnectedState, ConnectingState)
}

func (st *AtomicState) ToHandshaking() bool {
	return st.cas(ConnectingState, HandshakingState)
}

func (st *AtomicState) ToReady() bool {
	return st.cas(HandshakingState, ReadyState)
}

// ToFailed moves a connecting or handshaking session to Failed.
func (st *AtomicState) ToFailed() bool {
	if st.cas(ConnectingState, FailedState) {
		return true
	}

	return st.cas(HandshakingState, FailedState)
}

// ToClosed moves a ready session to Closed. It reports true only for the
// call that performed the transition.
func (st *AtomicState) ToClosed() bool {
	return st.cas(ReadyState, ClosedState)
}

func (st *AtomicState) cas(from, to State) bool {
	return st.state.CompareAndSwap(uint32(from), uint32(to))
}
