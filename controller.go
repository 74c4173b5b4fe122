package passthrough

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/logging"
)

const noTimestamp = time.Duration(-1)

// pipelineController owns the platform decode session: lazy creation on the
// first key frame, codec switching, ready-gated feeding, suspend/resume and
// teardown. All methods except suspend, resume and closeSync must run on
// the media runner; those three are posted from the caller context.
type pipelineController struct {
	log         logging.LeveledLogger
	runner      TaskRunner
	newPlatform PlatformDecoderFactory

	// notify reports key-frame requests and terminal pipeline errors back
	// to the decode-session facade. May be invoked from the media runner.
	notify func(Notification)

	// onNaturalSize is surfaced to the embedder when the platform reports
	// a new natural video size. Optional.
	onNaturalSize func(width, height int)

	// frameMu guards the feed buffer and the timestamp rebase state, which
	// the suspend path touches from outside the runner.
	frameMu        sync.Mutex
	pending        []*encodedFrame
	startTimestamp time.Duration

	// Runner-context session state.
	adapter   PlatformDecoder
	codec     VideoCodec
	running   bool
	status    PipelineStatus
	suspended bool

	destroying atomic.Bool
}

func newPipelineController(runner TaskRunner, factory PlatformDecoderFactory, notify func(Notification), onNaturalSize func(int, int), log logging.LeveledLogger) *pipelineController {
	return &pipelineController{
		log:            log,
		runner:         runner,
		newPlatform:    factory,
		notify:         notify,
		onNaturalSize:  onNaturalSize,
		startTimestamp: noTimestamp,
		status:         PipelineOK,
	}
}

// handleFrame takes ownership of one drained frame: ensures a session for
// its codec exists, rebases its timestamp onto the session clock, buffers
// it and, if the pipeline is running, feeds the buffer. Runner context.
func (c *pipelineController) handleFrame(frame *encodedFrame) {
	if c.destroying.Load() {
		return
	}
	if c.suspended {
		c.log.Debugf("dropping frame while suspended")
		return
	}
	if c.status != PipelineOK {
		if c.status.Terminal() || !frame.keyFrame {
			c.log.Errorf("dropping frame, pipeline status %s", c.status)
			return
		}
		// Non-terminal error: this key frame rebuilds the session.
		c.destroySession()
	}

	if !c.ensureSession(frame) {
		return
	}

	c.frameMu.Lock()
	if !c.running && frame.keyFrame {
		// The session is still initializing. Everything buffered so far
		// predates this key frame and will never be decodable; restart the
		// session clock here.
		c.startTimestamp = frame.timestamp
		frame.timestamp = 0
		c.pending = c.pending[:0]
	} else {
		if c.startTimestamp == noTimestamp {
			c.startTimestamp = frame.timestamp
		}
		frame.timestamp -= c.startTimestamp
	}
	c.pending = append(c.pending, frame)
	c.frameMu.Unlock()

	if c.running {
		c.feedPending()
	}
}

// ensureSession creates or switches the platform session so it matches the
// frame's codec, reporting whether the frame may proceed. A switch is only
// allowed on a key frame; otherwise the upstream is asked for one and the
// frame is dropped. Runner context.
func (c *pipelineController) ensureSession(frame *encodedFrame) bool {
	if c.adapter != nil && c.codec == frame.codec {
		return true
	}

	if !frame.keyFrame {
		c.notify(NotifyKeyFrameRequest)
		return false
	}

	c.log.Infof("starting platform session, codec %s %dx%d", frame.codec, frame.width, frame.height)
	c.destroySession()
	c.codec = frame.codec

	adapter, err := c.newPlatform(AdapterCallbacks{
		OnNaturalSizeChanged:  c.natSizeChanged,
		OnResumed:             func() { c.log.Debugf("platform session resumed") },
		OnSuspended:           func() { c.log.Debugf("platform session suspended") },
		OnActiveRegionChanged: func(Rect) {},
		OnPipelineError:       c.pipelineErrored,
	})
	if err != nil {
		c.log.Errorf("platform decoder creation failed: %v", err)
		c.status = PipelineErrorAbort
		c.notify(NotifyPipelineError)
		return false
	}
	c.adapter = adapter

	adapter.Initialize(VideoConfig{
		Codec:  frame.codec,
		Width:  frame.width,
		Height: frame.height,
		Live:   true,
	}, c.initialized)
	return true
}

// initialized is the adapter's onReady callback. It may fire on any
// goroutine, so the real work is posted back onto the runner.
func (c *pipelineController) initialized(status PipelineStatus) {
	c.runner.Post(func() {
		if c.destroying.Load() || c.adapter == nil {
			return
		}
		c.log.Infof("platform session initialized, status %s", status)
		c.status = status
		if status != PipelineOK {
			c.errorOnRunner(status)
			return
		}
		c.running = true
		c.adapter.SetPlaybackRate(1.0)
		c.feedPending()
	})
}

// feedPending swaps out the buffered frames and feeds them to the platform
// in FIFO order, without holding the lock across Feed calls. Runner context.
func (c *pipelineController) feedPending() {
	if c.destroying.Load() || c.suspended || c.adapter == nil {
		return
	}

	c.frameMu.Lock()
	frames := c.pending
	c.pending = nil
	c.frameMu.Unlock()

	for _, frame := range frames {
		buf := &DecoderBuffer{
			Data:      frame.data,
			Timestamp: frame.timestamp,
			KeyFrame:  frame.keyFrame,
		}
		if err := c.adapter.Feed(buf, FeedVideo); err != nil {
			c.log.Errorf("platform feed failed: %v", err)
		}
	}
}

// pipelineErrored is the adapter's error callback; work is posted onto the
// runner.
func (c *pipelineController) pipelineErrored(status PipelineStatus) {
	c.runner.Post(func() {
		if c.destroying.Load() {
			return
		}
		c.errorOnRunner(status)
	})
}

func (c *pipelineController) errorOnRunner(status PipelineStatus) {
	c.log.Errorf("pipeline error, status %s", status)

	if status.Terminal() {
		c.notify(NotifyPipelineError)
	}

	c.frameMu.Lock()
	c.pending = c.pending[:0]
	c.frameMu.Unlock()

	c.running = false
	c.status = status
}

func (c *pipelineController) natSizeChanged(width, height int) {
	c.log.Infof("natural size changed to %dx%d", width, height)
	if c.onNaturalSize != nil {
		c.onNaturalSize(width, height)
	}
}

// suspend pauses the session and drops buffered frames; frames arriving
// while suspended are wasted anyway since the platform released its
// resources. Caller context.
func (c *pipelineController) suspend(reason SuspendReason) {
	c.runner.Post(func() {
		if c.suspended {
			return
		}
		c.suspended = true

		c.frameMu.Lock()
		c.pending = c.pending[:0]
		c.frameMu.Unlock()

		if c.adapter != nil {
			c.adapter.Suspend(reason)
		}
	})
}

// resume re-acquires the session and asks upstream for a key frame, since
// everything between suspend and resume was dropped. Caller context.
func (c *pipelineController) resume(position time.Duration, mode RestoreMode) {
	c.runner.Post(func() {
		if !c.suspended {
			return
		}
		c.suspended = false

		c.notify(NotifyKeyFrameRequest)

		if c.adapter != nil {
			c.adapter.Resume(position, mode)
		}
	})
}

// destroySession finalizes the current adapter, if any. Runner context.
func (c *pipelineController) destroySession() {
	if c.adapter == nil {
		return
	}
	c.adapter.Finalize()
	c.adapter = nil
	c.running = false
	c.status = PipelineOK

	c.frameMu.Lock()
	c.pending = c.pending[:0]
	c.startTimestamp = noTimestamp
	c.frameMu.Unlock()
}

// closeSync tears the session down and blocks until the media runner has
// quiesced: once it returns, no further platform calls will occur. This is
// the deliberate blocking point; teardown is not a latency-sensitive path.
// Caller context.
func (c *pipelineController) closeSync() {
	c.destroying.Store(true)
	c.runner.PostAndWait(func() {
		c.destroySession()
	})
}
