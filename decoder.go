package passthrough

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/logging"
)

const implementationName = "PassThroughVideoDecoder"

// maxConsecutiveErrors is how many consecutive overflow errors are tolerated
// before the session gives up on the hardware path for good.
const maxConsecutiveErrors = 60

// Construction errors.
var (
	ErrUnknownCodec      = errors.New("unknown codec name")
	ErrNoHardwareSupport = errors.New("codec has no hardware decode capability")
	ErrNoPlatformFactory = errors.New("platform decoder factory is required")
)

// CodecSettings are the stream parameters the network stack negotiated.
type CodecSettings struct {
	Codec        VideoCodec
	Width        int
	Height       int
	MaxFrameRate int
}

// DecoderConfig configures a pass-through decode session.
type DecoderConfig struct {
	// PlatformFactory creates the platform decode session. Required.
	PlatformFactory PlatformDecoderFactory

	// Runner is the media-processing context. Optional; when nil the
	// session creates and owns a SerialRunner.
	Runner TaskRunner

	// Capabilities answers hardware-support queries. Optional; defaults to
	// DefaultCapabilities().
	Capabilities *CapabilityRegistry

	// LoggerFactory is used for all session logging. Optional; defaults to
	// logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory

	// OnNaturalSizeChanged is surfaced when the platform reports the real
	// video size. Optional.
	OnNaturalSizeChanged func(width, height int)
}

// DecoderStats is a point-in-time snapshot of session counters.
type DecoderStats struct {
	FramesQueued     uint64 // frames accepted into the pending queue
	FramesFed        uint64 // frames handed to the pipeline controller
	FramesForwarded  uint64 // frames delivered to the DecodeSink
	FramesRejected   uint64 // stream-integrity rejections
	StaleDropped     uint64 // decoded output dropped by the timestamp window
	Overflows        uint64 // pending-queue overflow events
	KeyFrameRequests uint64 // key frame demands signalled to upstream
}

// PassThroughDecoder is the decode-session facade the network stack drives.
// Decode, InitDecode, RegisterDecodeCompleteCallback and Release may be
// called from any goroutine; frame hand-off to the platform happens on the
// media runner.
type PassThroughDecoder struct {
	log        logging.LeveledLogger
	runner     TaskRunner
	ownsRunner bool

	codec      VideoCodec // codec from construction
	capability Capability

	state      stateMachine
	controller *pipelineController
	queue      *frameQueue
	history    *timestampWindow

	// Dimensions copied from the most recent key frame. Caller context only.
	frameWidth  int
	frameHeight int
	activeCodec VideoCodec

	consecutiveErrors atomic.Int32
	destroying        atomic.Bool

	sinkMu sync.Mutex
	sink   DecodeSink

	framesQueued     atomic.Uint64
	framesFed        atomic.Uint64
	framesForwarded  atomic.Uint64
	framesRejected   atomic.Uint64
	staleDropped     atomic.Uint64
	overflows        atomic.Uint64
	keyFrameRequests atomic.Uint64
}

// NewPassThroughDecoder creates a session for the given SDP format name
// ("VP8", "VP9", "H264"). It fails fast when the codec is unknown or the
// capability registry has no hardware entry for it, in which case the
// caller should construct a software decoder instead.
func NewPassThroughDecoder(sdpFormatName string, config DecoderConfig) (*PassThroughDecoder, error) {
	codec := ParseCodecName(sdpFormatName)
	if codec == VideoCodecUnknown {
		return nil, ErrUnknownCodec
	}
	if config.PlatformFactory == nil {
		return nil, ErrNoPlatformFactory
	}

	caps := config.Capabilities
	if caps == nil {
		caps = DefaultCapabilities()
	}
	capability, ok := caps.HasHardwareSupport(codec)
	if !ok {
		return nil, ErrNoHardwareSupport
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	d := &PassThroughDecoder{
		log:         loggerFactory.NewLogger("passthrough"),
		runner:      config.Runner,
		codec:       codec,
		activeCodec: codec,
		capability:  capability,
		queue:       newFrameQueue(maxPendingFrames),
		history:     newTimestampWindow(maxDecodeHistory),
	}
	if d.runner == nil {
		d.runner = NewSerialRunner()
		d.ownsRunner = true
	}

	d.controller = newPipelineController(
		d.runner,
		config.PlatformFactory,
		d.onNotification,
		config.OnNaturalSizeChanged,
		loggerFactory.NewLogger("controller"),
	)

	d.log.Infof("created pass-through session, codec %s", codec)
	return d, nil
}

// InitDecode validates the negotiated settings and arms the session: the
// first admitted frame must be a key frame.
func (d *PassThroughDecoder) InitDecode(settings *CodecSettings, workerHint int) Status {
	if settings == nil {
		return StatusErrParameter
	}
	_ = workerHint // sizing hint for software decoders; the platform ignores it

	if settings.Codec != VideoCodecUnknown {
		d.activeCodec = settings.Codec
	}
	if d.state.apply(eventInitialized) == statePermanentFallback {
		return StatusUninitialized
	}

	d.log.Infof("init decode, codec %s %dx%d", d.activeCodec, settings.Width, settings.Height)
	return StatusOK
}

// Decode validates and admits one encoded image. Accepted frames are
// queued and drained asynchronously on the media runner; every returned
// status other than StatusOK leaves the image unqueued.
func (d *PassThroughDecoder) Decode(image *EncodedImage, missingFrames bool, arrivalTime time.Time) Status {
	_ = arrivalTime

	switch d.state.load() {
	case statePermanentFallback:
		return StatusFallbackSoftware
	case stateUninitialized:
		return StatusUninitialized
	}
	if image == nil {
		return StatusErrParameter
	}

	// Hardware sessions cannot demultiplex SVC spatial layers; upper
	// layers always go to the software path. Checked before anything else
	// so no state changes.
	if !d.capability.SupportsSpatialLayer(image.SpatialID) {
		d.log.Infof("spatial layer %d unsupported by hardware, falling back", image.SpatialID)
		return StatusFallbackSoftware
	}

	if missingFrames || !image.Complete {
		d.log.Warnf("missing or incomplete frame, requesting key frame")
		d.framesRejected.Add(1)
		return StatusError
	}

	if !d.state.admit(image.FrameType) {
		d.log.Debugf("waiting for key frame, discarding %s frame", image.FrameType)
		d.framesRejected.Add(1)
		return StatusError
	}

	if image.FrameType == FrameTypeKey {
		d.frameWidth = image.Width
		d.frameHeight = image.Height
		if image.Codec != VideoCodecUnknown {
			d.activeCodec = image.Codec
		}
		d.log.Debugf("key frame %dx%d", d.frameWidth, d.frameHeight)
	}

	frame := newEncodedFrame(image, d.activeCodec, d.frameWidth, d.frameHeight)

	if !d.queue.TryEnqueue(frame) {
		// Severely behind: the queue cleared itself; wait for a key frame
		// to catch up as quickly as possible.
		d.overflows.Add(1)
		d.state.apply(eventKeyFrameNeeded)

		if d.consecutiveErrors.Add(1) > maxConsecutiveErrors {
			d.history.Clear()
			d.log.Errorf("too many consecutive errors, permanent fallback to software")
			d.state.apply(eventFallback)
			return StatusFallbackSoftware
		}

		d.log.Warnf("pending frames overflow, queue cleared")
		return StatusError
	}
	d.framesQueued.Add(1)

	d.runner.Post(d.drain)
	return StatusOK
}

// RegisterDecodeCompleteCallback installs the sink that receives session
// output.
func (d *PassThroughDecoder) RegisterDecodeCompleteCallback(sink DecodeSink) Status {
	d.sinkMu.Lock()
	d.sink = sink
	d.sinkMu.Unlock()

	if d.state.load() == statePermanentFallback {
		return StatusUninitialized
	}
	return StatusOK
}

// Release clears the pending queue and the timestamp history. Idempotent;
// the platform session itself stays up and is reused by the next frames.
func (d *PassThroughDecoder) Release() Status {
	d.queue.Clear()
	d.history.Clear()

	if d.state.load() == statePermanentFallback {
		return StatusUninitialized
	}
	return StatusOK
}

// Suspend pauses the platform session and discards buffered frames.
func (d *PassThroughDecoder) Suspend(reason SuspendReason) {
	d.queue.Clear()
	d.controller.suspend(reason)
}

// Resume re-acquires the platform session; upstream is asked for a key
// frame since everything in between was dropped.
func (d *PassThroughDecoder) Resume(position time.Duration, mode RestoreMode) {
	d.controller.resume(position, mode)
}

// Close tears down the session, blocking until the media runner quiesces:
// after Close returns no platform calls and no sink deliveries will occur.
func (d *PassThroughDecoder) Close() {
	if !d.destroying.CompareAndSwap(false, true) {
		return
	}
	d.queue.Clear()
	d.controller.closeSync()
	if d.ownsRunner {
		if r, ok := d.runner.(*SerialRunner); ok {
			r.Close()
		}
	}
	d.log.Infof("session closed")
}

// ImplementationName identifies this decoder to the network stack.
func (d *PassThroughDecoder) ImplementationName() string {
	return implementationName
}

// Codec returns the codec this session was created for.
func (d *PassThroughDecoder) Codec() VideoCodec {
	return d.codec
}

// Stats returns a snapshot of the session counters.
func (d *PassThroughDecoder) Stats() DecoderStats {
	return DecoderStats{
		FramesQueued:     d.framesQueued.Load(),
		FramesFed:        d.framesFed.Load(),
		FramesForwarded:  d.framesForwarded.Load(),
		FramesRejected:   d.framesRejected.Load(),
		StaleDropped:     d.staleDropped.Load(),
		Overflows:        d.overflows.Load(),
		KeyFrameRequests: d.keyFrameRequests.Load(),
	}
}

// drain moves every queued frame into the pipeline controller and forwards
// the pass-through output. Media runner context.
func (d *PassThroughDecoder) drain() {
	if d.destroying.Load() {
		return
	}

	for _, frame := range d.queue.DrainAll() {
		d.history.Record(frame.timestamp)

		// Snapshot identity before the controller rebases the timestamp
		// onto the session clock.
		out := &DecodedFrame{
			Data:         frame.data,
			Codec:        frame.codec,
			KeyFrame:     frame.keyFrame,
			Width:        frame.width,
			Height:       frame.height,
			Timestamp:    frame.timestamp,
			RTPTimestamp: uint32(frame.timestamp / time.Microsecond),
		}

		d.controller.handleFrame(frame)
		d.framesFed.Add(1)

		d.forward(out)
	}
}

// forward delivers one output frame to the sink, unless its timestamp has
// aged out of the history window, which marks it stale. Media runner
// context.
func (d *PassThroughDecoder) forward(frame *DecodedFrame) {
	if d.destroying.Load() {
		return
	}
	if !d.history.Contains(frame.Timestamp) {
		d.log.Debugf("discarding stale frame, timestamp %s", frame.Timestamp)
		d.staleDropped.Add(1)
		return
	}

	d.sinkMu.Lock()
	sink := d.sink
	d.sinkMu.Unlock()
	if sink == nil {
		return
	}

	sink.Decoded(frame, -1, 0)
	d.framesForwarded.Add(1)
	d.consecutiveErrors.Store(0)
}

// onNotification handles status signals from the pipeline side.
func (d *PassThroughDecoder) onNotification(n Notification) {
	switch n {
	case NotifyPipelineError:
		d.log.Errorf("pipeline error notification, hardware path disabled")
		d.state.apply(eventFallback)
	case NotifyKeyFrameRequest:
		d.log.Infof("key frame requested by pipeline")
		d.keyFrameRequests.Add(1)
		d.state.apply(eventKeyFrameNeeded)
	}
}
