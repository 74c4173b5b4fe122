package passthrough

import (
	"testing"

	"github.com/pion/webrtc/v4"
)

func TestParseCodecName(t *testing.T) {
	tests := []struct {
		name string
		want VideoCodec
	}{
		{"VP8", VideoCodecVP8},
		{"vp8", VideoCodecVP8},
		{"VP9", VideoCodecVP9},
		{"H264", VideoCodecH264},
		{"h264", VideoCodecH264},
		{"AV1", VideoCodecUnknown},
		{"", VideoCodecUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCodecName(tt.name); got != tt.want {
				t.Errorf("ParseCodecName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCodecFromMimeType(t *testing.T) {
	tests := []struct {
		mime string
		want VideoCodec
	}{
		{webrtc.MimeTypeVP8, VideoCodecVP8},
		{"video/vp8", VideoCodecVP8},
		{webrtc.MimeTypeVP9, VideoCodecVP9},
		{webrtc.MimeTypeH264, VideoCodecH264},
		{"video/h264", VideoCodecH264},
		{"video/AV1", VideoCodecUnknown},
		{"audio/opus", VideoCodecUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := CodecFromMimeType(tt.mime); got != tt.want {
				t.Errorf("CodecFromMimeType(%q) = %v, want %v", tt.mime, got, tt.want)
			}
		})
	}
}

func TestCodecMimeType(t *testing.T) {
	tests := []struct {
		codec VideoCodec
		want  string
	}{
		{VideoCodecVP8, webrtc.MimeTypeVP8},
		{VideoCodecVP9, webrtc.MimeTypeVP9},
		{VideoCodecH264, webrtc.MimeTypeH264},
		{VideoCodecUnknown, ""},
	}

	for _, tt := range tests {
		if got := tt.codec.MimeType(); got != tt.want {
			t.Errorf("%v.MimeType() = %q, want %q", tt.codec, got, tt.want)
		}
	}
}

func TestCodecString(t *testing.T) {
	tests := []struct {
		codec VideoCodec
		want  string
	}{
		{VideoCodecVP8, "VP8"},
		{VideoCodecVP9, "VP9"},
		{VideoCodecH264, "H264"},
		{VideoCodecUnknown, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.codec.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRTPCodecCapability(t *testing.T) {
	cap := VideoCodecVP8.RTPCodecCapability()
	if cap.MimeType != webrtc.MimeTypeVP8 {
		t.Errorf("MimeType = %q, want %q", cap.MimeType, webrtc.MimeTypeVP8)
	}
	if cap.ClockRate != 90000 {
		t.Errorf("ClockRate = %d, want 90000", cap.ClockRate)
	}
}
