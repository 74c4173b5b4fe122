package passthrough

import "sync"

// TaskRunner is the task-submission contract for the media-processing
// context. Post never blocks the caller; PostAndWait is the one deliberate
// blocking primitive, reserved for teardown and codec switches where the
// caller needs the postcondition "no further platform calls will happen".
type TaskRunner interface {
	Post(task func())
	PostAndWait(task func())
}

// SerialRunner runs posted tasks one at a time on a single dedicated
// goroutine, in submission order. It is the default media runner.
type SerialRunner struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewSerialRunner starts the runner goroutine.
func NewSerialRunner() *SerialRunner {
	r := &SerialRunner{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *SerialRunner) run() {
	defer close(r.done)
	for {
		r.mu.Lock()
		tasks := r.tasks
		r.tasks = nil
		r.mu.Unlock()

		for _, task := range tasks {
			task()
		}

		select {
		case <-r.wake:
		case <-r.quit:
			// Drain what was posted before Close so PostAndWait callers
			// are never left hanging.
			r.mu.Lock()
			tasks := r.tasks
			r.tasks = nil
			r.closed = true
			r.mu.Unlock()
			for _, task := range tasks {
				task()
			}
			return
		}
	}
}

// Post queues task for execution. After Close the task runs inline on the
// caller goroutine, preserving the guarantee that posted work always runs.
func (r *SerialRunner) Post(task func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		task()
		return
	}
	r.tasks = append(r.tasks, task)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// PostAndWait queues task and blocks until it has run. This is the only
// blocking call in the package; confine it to teardown paths.
func (r *SerialRunner) PostAndWait(task func()) {
	ran := make(chan struct{})
	r.Post(func() {
		defer close(ran)
		task()
	})
	<-ran
}

// Close stops the runner after draining already-posted tasks. Idempotent.
func (r *SerialRunner) Close() {
	r.once.Do(func() { close(r.quit) })
	<-r.done
}
