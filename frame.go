package passthrough

import "time"

// FrameType indicates whether an encoded frame is a keyframe or delta frame.
type FrameType int

const (
	FrameTypeUnknown FrameType = iota
	FrameTypeKey               // I-frame, can be decoded independently
	FrameTypeDelta             // P/B-frame, requires previous frames
)

func (f FrameType) String() string {
	switch f {
	case FrameTypeKey:
		return "Key"
	case FrameTypeDelta:
		return "Delta"
	default:
		return "Unknown"
	}
}

// EncodedImage is an encoded video frame as delivered by the network stack.
// The Data slice is only guaranteed valid for the duration of the Decode
// call; the session copies what it keeps.
type EncodedImage struct {
	Data      []byte
	FrameType FrameType
	Timestamp uint32 // RTP timestamp, 90kHz clock
	Width     int    // Coded width in pixels
	Height    int    // Coded height in pixels
	Codec     VideoCodec
	SpatialID int  // SVC spatial layer index (0 = base layer)
	Complete  bool // False if reassembly lost part of the frame
}

// IsKeyframe returns true if this is a keyframe.
func (img *EncodedImage) IsKeyframe() bool {
	return img.FrameType == FrameTypeKey
}

// encodedFrame is a frame accepted into the pending queue. It owns its data
// exclusively: ownership moves from the queue to the pipeline controller on
// drain, never copied again.
type encodedFrame struct {
	data      []byte
	codec     VideoCodec
	keyFrame  bool
	timestamp time.Duration
	width     int
	height    int
}

// newEncodedFrame copies the image payload into a frame the queue can own.
// The RTP timestamp is carried as a monotonic duration, one microsecond per
// timestamp tick, so it survives the rebase arithmetic in the controller.
func newEncodedFrame(img *EncodedImage, codec VideoCodec, width, height int) *encodedFrame {
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	return &encodedFrame{
		data:      data,
		codec:     codec,
		keyFrame:  img.FrameType == FrameTypeKey,
		timestamp: time.Duration(img.Timestamp) * time.Microsecond,
		width:     width,
		height:    height,
	}
}

// DecodedFrame is a frame delivered to the DecodeSink. In a pass-through
// session the payload is still encoded; decoding and rendering happen in the
// platform pipeline, and this value exists so the downstream stack can track
// frame identity and timing.
type DecodedFrame struct {
	Data         []byte
	Codec        VideoCodec
	KeyFrame     bool
	Width        int
	Height       int
	Timestamp    time.Duration // Submitted timestamp, one microsecond per RTP tick
	RTPTimestamp uint32        // Original 90kHz RTP timestamp
}

// DecodeSink receives the output of a decode session. QP is the quantizer
// of the decoded frame, or -1 when unknown; decodeTimeMS is the platform
// decode latency in milliseconds, or 0 when unknown.
type DecodeSink interface {
	Decoded(frame *DecodedFrame, qp int, decodeTimeMS int64)
}
