package passthrough

import "sync/atomic"

// sessionState is the decode session lifecycle state. All admission and
// fallback decisions go through the single transition function below, so
// illegal flag combinations cannot be represented.
type sessionState int32

const (
	// stateUninitialized: constructed but InitDecode has not succeeded.
	stateUninitialized sessionState = iota

	// stateSeekingKeyFrame: only key frames are admitted. Entered after
	// construction, overflow, pipeline reset, or an explicit key frame
	// request; feeding a decoder a delta frame with no preceding key frame
	// produces garbage, so admission here is strict.
	stateSeekingKeyFrame

	// stateStreaming: all complete frames are admitted.
	stateStreaming

	// statePermanentFallback: the platform decoder is unusable for the
	// remaining lifetime of this session. Terminal.
	statePermanentFallback
)

func (s sessionState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateSeekingKeyFrame:
		return "seeking-keyframe"
	case stateStreaming:
		return "streaming"
	case statePermanentFallback:
		return "permanent-fallback"
	default:
		return "unknown"
	}
}

// stateEvent is an input to the session state machine.
type stateEvent int

const (
	eventInitialized   stateEvent = iota // InitDecode accepted settings
	eventKeyFrame                        // a valid key frame was admitted
	eventKeyFrameNeeded                  // overflow, resume, or decoder-side request
	eventFallback                        // permanent software fallback
)

// transition returns the state that follows ev in state s. Permanent
// fallback is absorbing: no event leaves it.
func transition(s sessionState, ev stateEvent) sessionState {
	if s == statePermanentFallback {
		return statePermanentFallback
	}
	switch ev {
	case eventInitialized:
		return stateSeekingKeyFrame
	case eventKeyFrame:
		if s == stateSeekingKeyFrame {
			return stateStreaming
		}
		return s
	case eventKeyFrameNeeded:
		if s == stateUninitialized {
			return stateUninitialized
		}
		return stateSeekingKeyFrame
	case eventFallback:
		return statePermanentFallback
	}
	return s
}

// stateMachine holds the session state with atomic access: Decode runs on
// the caller goroutine while key frame requests and pipeline errors arrive
// from the media runner.
type stateMachine struct {
	v atomic.Int32
}

func (m *stateMachine) load() sessionState {
	return sessionState(m.v.Load())
}

// apply feeds ev through the transition function, retrying on concurrent
// updates, and returns the resulting state.
func (m *stateMachine) apply(ev stateEvent) sessionState {
	for {
		cur := sessionState(m.v.Load())
		next := transition(cur, ev)
		if next == cur || m.v.CompareAndSwap(int32(cur), int32(next)) {
			return next
		}
	}
}

// admit decides whether a frame of type ft may enter the session in the
// current state, moving seeking to streaming when a key frame arrives.
func (m *stateMachine) admit(ft FrameType) bool {
	switch m.load() {
	case stateStreaming:
		return true
	case stateSeekingKeyFrame:
		if ft != FrameTypeKey {
			return false
		}
		m.apply(eventKeyFrame)
		return true
	default:
		return false
	}
}
