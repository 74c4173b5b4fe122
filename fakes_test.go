package passthrough

import (
	"sync"
	"time"
)

// inlineRunner runs every task on the calling goroutine, making the decode
// path fully synchronous in tests.
type inlineRunner struct{}

func (inlineRunner) Post(task func())        { task() }
func (inlineRunner) PostAndWait(task func()) { task() }

// manualRunner queues tasks until the test flushes them, so tests can hold
// frames in the pending queue and exercise overflow.
type manualRunner struct {
	tasks []func()
}

func (r *manualRunner) Post(task func()) { r.tasks = append(r.tasks, task) }

func (r *manualRunner) PostAndWait(task func()) { task() }

func (r *manualRunner) flush() {
	for len(r.tasks) > 0 {
		task := r.tasks[0]
		r.tasks = r.tasks[1:]
		task()
	}
}

// fakePlatform records every call a session makes to the platform pipeline.
// Tests drive it from a single goroutine via inlineRunner or manualRunner.
type fakePlatform struct {
	callbacks   AdapterCallbacks
	autoReady   bool
	readyStatus PipelineStatus

	config    VideoConfig
	onReady   func(PipelineStatus)
	fed       []*DecoderBuffer
	rates     []float64
	suspends  []SuspendReason
	resumes   int
	finalized bool
}

func (p *fakePlatform) Initialize(config VideoConfig, onReady func(PipelineStatus)) {
	p.config = config
	if p.autoReady {
		onReady(p.readyStatus)
		return
	}
	p.onReady = onReady
}

func (p *fakePlatform) Feed(buf *DecoderBuffer, _ FeedType) error {
	p.fed = append(p.fed, buf)
	return nil
}

func (p *fakePlatform) SetPlaybackRate(rate float64) { p.rates = append(p.rates, rate) }
func (p *fakePlatform) Suspend(reason SuspendReason) { p.suspends = append(p.suspends, reason) }
func (p *fakePlatform) Resume(time.Duration, RestoreMode) { p.resumes++ }
func (p *fakePlatform) Finalize()                         { p.finalized = true }

// fakePlatformFactory creates fakePlatforms and remembers each one.
type fakePlatformFactory struct {
	autoReady   bool
	readyStatus PipelineStatus
	err         error
	created     []*fakePlatform
}

func (f *fakePlatformFactory) new(callbacks AdapterCallbacks) (PlatformDecoder, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := &fakePlatform{
		callbacks:   callbacks,
		autoReady:   f.autoReady,
		readyStatus: f.readyStatus,
	}
	f.created = append(f.created, p)
	return p, nil
}

func (f *fakePlatformFactory) last() *fakePlatform {
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

// fakeSink records delivered frames.
type fakeSink struct {
	mu     sync.Mutex
	frames []*DecodedFrame
	qps    []int
}

func (s *fakeSink) Decoded(frame *DecodedFrame, qp int, _ int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
	s.qps = append(s.qps, qp)
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *fakeSink) frame(i int) *DecodedFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[i]
}

func keyImage(ts uint32) *EncodedImage {
	return &EncodedImage{
		Data:      []byte{0x00, 0x01, 0x02},
		FrameType: FrameTypeKey,
		Timestamp: ts,
		Width:     320,
		Height:    240,
		Codec:     VideoCodecVP8,
		Complete:  true,
	}
}

func deltaImage(ts uint32) *EncodedImage {
	return &EncodedImage{
		Data:      []byte{0x03, 0x04},
		FrameType: FrameTypeDelta,
		Timestamp: ts,
		Codec:     VideoCodecVP8,
		Complete:  true,
	}
}
