// Package passthrough implements a pass-through video decode session for
// WebRTC streams: encoded frames received from the network are not decoded
// in-process but handed, in submission order, to a platform media pipeline
// that decodes and renders them out-of-band.
//
// # Architecture
//
//	Network goroutine -> PassThroughDecoder.Decode -> bounded frame queue
//	                                                   |
//	                     media runner (serial) --------+--> pipelineController -> PlatformDecoder
//	                                                   |
//	                     timestamp window filter ------+--> DecodeSink (downstream)
//
// Two execution contexts are load-bearing: the arbitrary caller context that
// invokes Decode/InitDecode/Release (typically a real-time network-receive
// goroutine), and a single serial media runner that owns the
// pipelineController and every call into the PlatformDecoder. The bounded
// frame queue is the only state shared between the two; handoff is always a
// posted task, never a direct call.
//
// # Recovery model
//
// Any loss event (queue overflow, pipeline error, suspend/resume) forces the
// session back into key-frame seeking: non-key frames are rejected until a
// self-contained frame arrives. Repeated consecutive overflows trip a circuit
// breaker that permanently routes the session to software decoding.
//
// # Platform boundary
//
// The actual hardware decode session is an external collaborator behind the
// PlatformDecoder interface; this package never reimplements it. Capability
// lookup at construction time decides whether a pass-through session can be
// created for a codec at all.
package passthrough
