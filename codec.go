package passthrough

import (
	"strings"

	"github.com/pion/webrtc/v4"
)

// VideoCodec identifies the video codec type carried by a session.
type VideoCodec int

const (
	VideoCodecUnknown VideoCodec = iota
	VideoCodecVP8
	VideoCodecVP9
	VideoCodecH264
)

func (c VideoCodec) String() string {
	switch c {
	case VideoCodecVP8:
		return "VP8"
	case VideoCodecVP9:
		return "VP9"
	case VideoCodecH264:
		return "H264"
	default:
		return "Unknown"
	}
}

// MimeType returns the MIME type for this codec.
func (c VideoCodec) MimeType() string {
	switch c {
	case VideoCodecVP8:
		return webrtc.MimeTypeVP8
	case VideoCodecVP9:
		return webrtc.MimeTypeVP9
	case VideoCodecH264:
		return webrtc.MimeTypeH264
	default:
		return ""
	}
}

// ClockRate returns the RTP clock rate for this codec.
func (c VideoCodec) ClockRate() uint32 {
	// All video codecs use 90kHz clock
	return 90000
}

// ParseCodecName maps an SDP format name (e.g. "VP8", "vp9", "H264") to a
// VideoCodec. Returns VideoCodecUnknown for names this package cannot carry.
func ParseCodecName(name string) VideoCodec {
	switch strings.ToUpper(name) {
	case "VP8":
		return VideoCodecVP8
	case "VP9":
		return VideoCodecVP9
	case "H264":
		return VideoCodecH264
	default:
		return VideoCodecUnknown
	}
}

// CodecFromMimeType maps a WebRTC MIME type (e.g. "video/VP8") to a
// VideoCodec. Matching is case-insensitive, like pion's codec matching.
func CodecFromMimeType(mimeType string) VideoCodec {
	switch {
	case strings.EqualFold(mimeType, webrtc.MimeTypeVP8):
		return VideoCodecVP8
	case strings.EqualFold(mimeType, webrtc.MimeTypeVP9):
		return VideoCodecVP9
	case strings.EqualFold(mimeType, webrtc.MimeTypeH264):
		return VideoCodecH264
	default:
		return VideoCodecUnknown
	}
}

// RTPCodecCapability returns the pion codec capability for this codec,
// suitable for registering with a webrtc.MediaEngine.
func (c VideoCodec) RTPCodecCapability() webrtc.RTPCodecCapability {
	return webrtc.RTPCodecCapability{
		MimeType:  c.MimeType(),
		ClockRate: c.ClockRate(),
	}
}
