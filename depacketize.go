package passthrough

import (
	"fmt"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
)

// NewDepacketizer returns the pion depacketizer for codec, for use with a
// sample builder when feeding a session from raw RTP.
func NewDepacketizer(codec VideoCodec) (rtp.Depacketizer, error) {
	switch codec {
	case VideoCodecVP8:
		return &codecs.VP8Packet{}, nil
	case VideoCodecVP9:
		return &codecs.VP9Packet{}, nil
	case VideoCodecH264:
		return &codecs.H264Packet{}, nil
	default:
		return nil, fmt.Errorf("no depacketizer for codec %s", codec)
	}
}

// DetectFrameType classifies an assembled access unit as key or delta by
// inspecting the codec bitstream. Used on the RTP ingest path, where frame
// type is not carried out-of-band.
func DetectFrameType(codec VideoCodec, data []byte) FrameType {
	if len(data) == 0 {
		return FrameTypeUnknown
	}
	switch codec {
	case VideoCodecVP8:
		if isVP8KeyFrame(data) {
			return FrameTypeKey
		}
		return FrameTypeDelta
	case VideoCodecVP9:
		if isVP9KeyFrame(data) {
			return FrameTypeKey
		}
		return FrameTypeDelta
	case VideoCodecH264:
		if h264HasIDR(data) {
			return FrameTypeKey
		}
		return FrameTypeDelta
	default:
		return FrameTypeUnknown
	}
}

// isVP8KeyFrame checks the VP8 uncompressed data chunk.
// Per RFC 6386 Section 9.1: byte 0 carries frame_type in bit 0 (0 = key
// frame); key frames follow the 3-byte frame tag with the start code
// 0x9D 0x01 0x2A.
func isVP8KeyFrame(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	if data[0]&0x01 != 0 {
		return false
	}
	if len(data) >= 6 {
		return data[3] == 0x9D && data[4] == 0x01 && data[5] == 0x2A
	}
	return true
}

// isVP9KeyFrame parses the start of the VP9 uncompressed header.
// Per the VP9 bitstream spec Section 6.2: frame_marker (2 bits, 0b10),
// profile bits, show_existing_frame, then frame_type (0 = key frame).
// Profile 3 inserts a reserved bit that shifts the remaining fields.
func isVP9KeyFrame(data []byte) bool {
	if len(data) < 1 {
		return false
	}
	b := data[0]
	if (b>>6)&0x03 != 0x02 {
		return false
	}
	profile := (b >> 5 & 0x01) | (b >> 4 & 0x01 << 1)

	var showExisting, frameType byte
	if profile == 3 {
		showExisting = b >> 2 & 0x01
		frameType = b >> 1 & 0x01
	} else {
		showExisting = b >> 3 & 0x01
		frameType = b >> 2 & 0x01
	}
	return showExisting == 0 && frameType == 0
}

// h264HasIDR scans an Annex-B access unit for an IDR slice (NAL type 5).
// Per ITU-T H.264 Section 7.3.1 the NAL type is the lower 5 bits of the
// first byte after the start code.
func h264HasIDR(data []byte) bool {
	found := false
	forEachNALU(data, func(nalu []byte) {
		if len(nalu) > 0 && nalu[0]&0x1F == 5 {
			found = true
		}
	})
	return found
}

// forEachNALU walks Annex-B data (3- or 4-byte start codes) and invokes fn
// with each NAL unit, start code stripped.
func forEachNALU(data []byte, fn func(nalu []byte)) {
	start := -1
	i := 0
	for i+2 < len(data) {
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			if start >= 0 {
				end := i
				if end > 0 && data[end-1] == 0 {
					end-- // 4-byte start code of the next NALU
				}
				if end > start {
					fn(data[start:end])
				}
			}
			i += 3
			start = i
			continue
		}
		i++
	}
	if start >= 0 && start < len(data) {
		fn(data[start:])
	}
}
