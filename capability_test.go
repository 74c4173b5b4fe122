package passthrough

import "testing"

func TestSupportsSpatialLayer(t *testing.T) {
	tests := []struct {
		name      string
		maxLayers int
		index     int
		want      bool
	}{
		{"base layer always allowed", 1, 0, true},
		{"negative index treated as base", 1, -1, true},
		{"single layer rejects index 1", 1, 1, false},
		{"three layers allow index 1", 3, 1, true},
		{"three layers allow index 2", 3, 2, true},
		{"three layers reject index 3", 3, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Capability{Codec: VideoCodecVP9, MaxSpatialLayers: tt.maxLayers}
			if got := c.SupportsSpatialLayer(tt.index); got != tt.want {
				t.Errorf("SupportsSpatialLayer(%d) = %v, want %v", tt.index, got, tt.want)
			}
		})
	}
}

func TestDefaultCapabilities(t *testing.T) {
	r := DefaultCapabilities()

	for _, codec := range []VideoCodec{VideoCodecVP8, VideoCodecVP9, VideoCodecH264} {
		c, ok := r.HasHardwareSupport(codec)
		if !ok {
			t.Errorf("no default capability for %v", codec)
			continue
		}
		if c.MaxSpatialLayers != 1 {
			t.Errorf("%v MaxSpatialLayers = %d, want 1", codec, c.MaxSpatialLayers)
		}
	}

	if _, ok := r.HasHardwareSupport(VideoCodecUnknown); ok {
		t.Error("unknown codec reported as hardware supported")
	}
}

func TestRegistryRegisterRemove(t *testing.T) {
	r := NewCapabilityRegistry()

	if _, ok := r.HasHardwareSupport(VideoCodecVP8); ok {
		t.Fatal("empty registry reported support")
	}

	r.Register(Capability{Codec: VideoCodecVP8, MaxWidth: 3840, MaxSpatialLayers: 1})
	c, ok := r.HasHardwareSupport(VideoCodecVP8)
	if !ok {
		t.Fatal("registered codec not found")
	}
	if c.MaxWidth != 3840 {
		t.Errorf("MaxWidth = %d, want 3840", c.MaxWidth)
	}

	// Register replaces.
	r.Register(Capability{Codec: VideoCodecVP8, MaxSpatialLayers: 3})
	c, _ = r.HasHardwareSupport(VideoCodecVP8)
	if c.MaxSpatialLayers != 3 {
		t.Errorf("MaxSpatialLayers after re-register = %d, want 3", c.MaxSpatialLayers)
	}

	r.Remove(VideoCodecVP8)
	if _, ok := r.HasHardwareSupport(VideoCodecVP8); ok {
		t.Error("removed codec still reported")
	}
}
