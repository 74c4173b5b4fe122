package passthrough

import (
	"bytes"
	"testing"
	"time"
)

func TestNewEncodedFrameCopiesData(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	img := &EncodedImage{
		Data:      src,
		FrameType: FrameTypeKey,
		Timestamp: 90000,
		Complete:  true,
	}

	frame := newEncodedFrame(img, VideoCodecVP8, 320, 240)

	src[0] = 0xFF
	if !bytes.Equal(frame.data, []byte{1, 2, 3, 4}) {
		t.Errorf("frame data aliases the caller's buffer: %v", frame.data)
	}
	if !frame.keyFrame {
		t.Error("keyFrame = false, want true")
	}
	if frame.codec != VideoCodecVP8 {
		t.Errorf("codec = %v, want VP8", frame.codec)
	}
	if frame.width != 320 || frame.height != 240 {
		t.Errorf("dimensions = %dx%d, want 320x240", frame.width, frame.height)
	}
}

func TestNewEncodedFrameTimestamp(t *testing.T) {
	// One microsecond per RTP tick keeps the duration arithmetic exact.
	img := &EncodedImage{Timestamp: 90000, FrameType: FrameTypeDelta}
	frame := newEncodedFrame(img, VideoCodecVP8, 0, 0)

	if want := 90000 * time.Microsecond; frame.timestamp != want {
		t.Errorf("timestamp = %v, want %v", frame.timestamp, want)
	}
}

func TestIsKeyframe(t *testing.T) {
	key := &EncodedImage{FrameType: FrameTypeKey}
	delta := &EncodedImage{FrameType: FrameTypeDelta}

	if !key.IsKeyframe() {
		t.Error("key frame not recognized")
	}
	if delta.IsKeyframe() {
		t.Error("delta frame reported as key frame")
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := []struct {
		ft   FrameType
		want string
	}{
		{FrameTypeKey, "Key"},
		{FrameTypeDelta, "Delta"},
		{FrameTypeUnknown, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.ft.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
