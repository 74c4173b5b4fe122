package passthrough

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/logging"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/samplebuilder"
)

// ErrFallbackSoftware is returned by TrackFeeder.Run when the session has
// permanently fallen back: the caller should rebuild the receive path with
// a software decoder.
var ErrFallbackSoftware = errors.New("session fell back to software decoding")

// DefaultMaxLatePackets is how many packets the sample builder keeps while
// waiting for reordered RTP before giving up on a frame.
const DefaultMaxLatePackets = 64

// TrackFeederConfig configures a TrackFeeder.
type TrackFeederConfig struct {
	// Decoder is the session to feed. Required.
	Decoder *PassThroughDecoder

	// RequestKeyFrame is invoked whenever the session demands a key frame
	// (stream-integrity rejection or recovery), typically by sending a PLI
	// for the track's SSRC. Optional.
	RequestKeyFrame func()

	// MaxLatePackets overrides DefaultMaxLatePackets when > 0.
	MaxLatePackets uint16

	// LoggerFactory defaults to logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory
}

// TrackFeederStats counts feeder activity.
type TrackFeederStats struct {
	PacketsRead     uint64
	FramesAssembled uint64
	FramesAccepted  uint64
	FramesRejected  uint64
	KeyFramesSeen   uint64
}

// TrackFeeder reads RTP from a remote WebRTC track, reassembles encoded
// access units and drives a pass-through decode session with them. It is
// the glue between a pion TrackRemote and PassThroughDecoder.
type TrackFeeder struct {
	log     logging.LeveledLogger
	track   *webrtc.TrackRemote
	decoder *PassThroughDecoder
	codec   VideoCodec
	builder *samplebuilder.SampleBuilder

	requestKeyFrame func()

	packetsRead     atomic.Uint64
	framesAssembled atomic.Uint64
	framesAccepted  atomic.Uint64
	framesRejected  atomic.Uint64
	keyFramesSeen   atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTrackFeeder creates a feeder for track. The track's codec must match
// the codec the decoder session was created for.
func NewTrackFeeder(track *webrtc.TrackRemote, config TrackFeederConfig) (*TrackFeeder, error) {
	if track == nil {
		return nil, fmt.Errorf("track is required")
	}
	if config.Decoder == nil {
		return nil, fmt.Errorf("decoder is required")
	}

	codec := CodecFromMimeType(track.Codec().MimeType)
	if codec == VideoCodecUnknown {
		return nil, fmt.Errorf("unsupported track codec %q", track.Codec().MimeType)
	}
	if codec != config.Decoder.Codec() {
		return nil, fmt.Errorf("track codec %s does not match session codec %s", codec, config.Decoder.Codec())
	}

	depacketizer, err := NewDepacketizer(codec)
	if err != nil {
		return nil, err
	}

	maxLate := config.MaxLatePackets
	if maxLate == 0 {
		maxLate = DefaultMaxLatePackets
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	return &TrackFeeder{
		log:             loggerFactory.NewLogger("feeder"),
		track:           track,
		decoder:         config.Decoder,
		codec:           codec,
		builder:         samplebuilder.New(maxLate, depacketizer, codec.ClockRate()),
		requestKeyFrame: config.RequestKeyFrame,
		done:            make(chan struct{}),
	}, nil
}

// Start runs the feed loop on its own goroutine until the track ends, the
// session falls back to software, or Stop is called.
func (f *TrackFeeder) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()

	go func() {
		defer close(f.done)
		if err := f.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			f.log.Errorf("feed loop ended: %v", err)
		}
	}()
}

// Stop cancels the feed loop and waits for it to exit.
func (f *TrackFeeder) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-f.done
}

// Run reads the track until ctx is cancelled or the track ends. It returns
// ErrFallbackSoftware when the session permanently rejects the hardware
// path.
func (f *TrackFeeder) Run(ctx context.Context) error {
	f.log.Infof("feeding track %s, codec %s", f.track.ID(), f.codec)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pkt, _, err := f.track.ReadRTP()
		if err != nil {
			if errors.Is(err, io.EOF) {
				f.log.Infof("track ended")
				return nil
			}
			return fmt.Errorf("read rtp: %w", err)
		}
		f.packetsRead.Add(1)
		f.builder.Push(pkt)

		for {
			sample := f.builder.Pop()
			if sample == nil {
				break
			}
			f.framesAssembled.Add(1)

			if status := f.feedSample(sample.Data, sample.PacketTimestamp, sample.PrevDroppedPackets > 0); status == StatusFallbackSoftware {
				return ErrFallbackSoftware
			}
		}
	}
}

func (f *TrackFeeder) feedSample(data []byte, rtpTimestamp uint32, missingFrames bool) Status {
	frameType := DetectFrameType(f.codec, data)
	if frameType == FrameTypeKey {
		f.keyFramesSeen.Add(1)
	}

	image := &EncodedImage{
		Data:      data,
		FrameType: frameType,
		Timestamp: rtpTimestamp,
		Codec:     f.codec,
		Complete:  true,
	}
	if frameType == FrameTypeKey && f.codec == VideoCodecVP8 {
		image.Width, image.Height = parseVP8Dimensions(data)
	}

	status := f.decoder.Decode(image, missingFrames, time.Now())
	switch status {
	case StatusOK:
		f.framesAccepted.Add(1)
	case StatusError:
		f.framesRejected.Add(1)
		if f.requestKeyFrame != nil {
			f.requestKeyFrame()
		}
	case StatusFallbackSoftware:
		f.log.Errorf("session requested software fallback")
	}
	return status
}

// Stats returns a snapshot of feeder counters.
func (f *TrackFeeder) Stats() TrackFeederStats {
	return TrackFeederStats{
		PacketsRead:     f.packetsRead.Load(),
		FramesAssembled: f.framesAssembled.Load(),
		FramesAccepted:  f.framesAccepted.Load(),
		FramesRejected:  f.framesRejected.Load(),
		KeyFramesSeen:   f.keyFramesSeen.Load(),
	}
}

// parseVP8Dimensions reads coded width and height from a VP8 key frame.
// Per RFC 6386 Section 9.1 they follow the start code in bytes 6-9, 14
// bits each with 2 scale bits.
func parseVP8Dimensions(data []byte) (width, height int) {
	if len(data) < 10 {
		return 0, 0
	}
	width = int(uint16(data[6]) | uint16(data[7])<<8&0x3FFF)
	height = int(uint16(data[8]) | uint16(data[9])<<8&0x3FFF)
	return width, height
}
