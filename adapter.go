package passthrough

import "time"

// FeedType tells the platform pipeline which elementary stream a buffer
// belongs to. Audio is handled by a separate path in practice; it exists in
// the contract because the platform API is shared.
type FeedType int

const (
	FeedVideo FeedType = iota
	FeedAudio
)

// SuspendReason explains why a session is being suspended.
type SuspendReason int

const (
	SuspendBackgrounded SuspendReason = iota // app moved to background
	SuspendByPolicy                          // platform resource policy
)

// RestoreMode selects the playback state a session resumes into.
type RestoreMode int

const (
	RestorePlaying RestoreMode = iota
	RestorePaused
)

// PipelineStatus is the platform pipeline's asynchronous health report.
type PipelineStatus int

const (
	PipelineOK PipelineStatus = iota

	// PipelineErrorDecode is a non-terminal decode failure; the session is
	// stopped but a later key frame may rebuild it.
	PipelineErrorDecode

	// PipelineErrorAbort means the platform aborted the pipeline. Terminal
	// for the pass-through session.
	PipelineErrorAbort

	// PipelineErrorResourceReleased means the hardware decoder was
	// reclaimed by the platform. Terminal for the pass-through session.
	PipelineErrorResourceReleased
)

func (s PipelineStatus) String() string {
	switch s {
	case PipelineOK:
		return "ok"
	case PipelineErrorDecode:
		return "decode-error"
	case PipelineErrorAbort:
		return "abort"
	case PipelineErrorResourceReleased:
		return "resource-released"
	default:
		return "unknown"
	}
}

// Terminal reports whether this status permanently ends the hardware path.
func (s PipelineStatus) Terminal() bool {
	return s == PipelineErrorAbort || s == PipelineErrorResourceReleased
}

// VideoConfig carries the stream parameters the platform pipeline needs to
// open a decode session. There is no audio config: audio decoding and
// rendering stay on the regular in-process path.
type VideoConfig struct {
	Codec  VideoCodec
	Width  int
	Height int
	Live   bool // real-time stream, no rebuffering
}

// DecoderBuffer is one encoded access unit handed to the platform pipeline.
// Ownership of Data transfers with the Feed call.
type DecoderBuffer struct {
	Data      []byte
	Timestamp time.Duration // session-relative
	KeyFrame  bool
}

// Rect is a region in pixels, used for active-region callbacks.
type Rect struct {
	X, Y, Width, Height int
}

// AdapterCallbacks is the set of asynchronous notifications a platform
// decoder delivers. Callbacks may fire on any goroutine; receivers must
// re-post onto their own context. Nil members are simply not invoked.
type AdapterCallbacks struct {
	OnNaturalSizeChanged  func(width, height int)
	OnResumed             func()
	OnSuspended           func()
	OnActiveRegionChanged func(region Rect)
	OnPipelineError       func(status PipelineStatus)
}

// PlatformDecoder is the platform media pipeline this package feeds. It is
// an external collaborator: implementations wrap the vendor decode session
// and are never provided by this package outside of test fakes.
type PlatformDecoder interface {
	// Initialize opens the decode session for config. onReady fires once,
	// asynchronously, with the session outcome; no Feed calls are valid
	// before it reports PipelineOK.
	Initialize(config VideoConfig, onReady func(PipelineStatus))

	// Feed submits one encoded buffer. Buffers must arrive in decode order.
	Feed(buf *DecoderBuffer, feedType FeedType) error

	// SetPlaybackRate sets the pipeline clock rate; 1.0 is real time.
	SetPlaybackRate(rate float64)

	// Suspend releases hardware resources, keeping enough state to resume.
	Suspend(reason SuspendReason)

	// Resume re-acquires the session at position in the given mode.
	Resume(position time.Duration, mode RestoreMode)

	// Finalize tears the session down. No callbacks fire afterwards.
	Finalize()
}

// PlatformDecoderFactory creates a platform decoder wired to the given
// callbacks. Called on the media runner whenever a session is (re)built.
type PlatformDecoderFactory func(callbacks AdapterCallbacks) (PlatformDecoder, error)

// Notification is a status signal flowing from the pipeline side back to
// the decode-session facade.
type Notification int

const (
	// NotifyKeyFrameRequest asks the session to discard deltas until the
	// next key frame, typically after a loss or a pipeline restart.
	NotifyKeyFrameRequest Notification = iota

	// NotifyPipelineError marks the hardware path permanently unavailable.
	NotifyPipelineError
)

func (n Notification) String() string {
	switch n {
	case NotifyKeyFrameRequest:
		return "keyframe-request"
	case NotifyPipelineError:
		return "pipeline-error"
	default:
		return "unknown"
	}
}
