package passthrough

import "sync"

// Capability describes what the platform hardware decoder can do for one
// codec. Absence of a Capability for a codec means the pass-through path
// cannot be used for it at all.
type Capability struct {
	Codec        VideoCodec
	MaxWidth     int // 0 = no limit
	MaxHeight    int // 0 = no limit
	MaxFrameRate int // 0 = no limit

	// MaxSpatialLayers is how many SVC spatial layers the hardware session
	// can multiplex. Streams using a spatial index at or above this limit
	// must fall back to software decoding.
	MaxSpatialLayers int
}

// SupportsSpatialLayer reports whether the hardware path can carry a frame
// with the given spatial layer index.
func (c Capability) SupportsSpatialLayer(index int) bool {
	if index <= 0 {
		return true
	}
	return index < c.MaxSpatialLayers
}

// CapabilityRegistry answers hardware-support queries per codec. It stands
// in for the platform's media preferences service and is queried exactly
// once per session, at construction time.
type CapabilityRegistry struct {
	mu   sync.RWMutex
	caps map[VideoCodec]Capability
}

// NewCapabilityRegistry creates an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{caps: make(map[VideoCodec]Capability)}
}

// DefaultCapabilities returns a registry advertising hardware support for
// VP8, VP9 and H264, each limited to a single spatial layer: hardware
// decoders don't demultiplex SVC layers, so anything above the base layer
// is software territory.
func DefaultCapabilities() *CapabilityRegistry {
	r := NewCapabilityRegistry()
	for _, codec := range []VideoCodec{VideoCodecVP8, VideoCodecVP9, VideoCodecH264} {
		r.Register(Capability{Codec: codec, MaxSpatialLayers: 1})
	}
	return r
}

// Register adds or replaces the capability entry for its codec.
func (r *CapabilityRegistry) Register(c Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c.Codec] = c
}

// Remove deletes the capability entry for codec, if any.
func (r *CapabilityRegistry) Remove(codec VideoCodec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.caps, codec)
}

// HasHardwareSupport returns the capability for codec and whether one is
// registered.
func (r *CapabilityRegistry) HasHardwareSupport(codec VideoCodec) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[codec]
	return c, ok
}
