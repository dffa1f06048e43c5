package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"

	"github.com/san-kum/fmriviz/internal/events"
	"github.com/san-kum/fmriviz/internal/scene"
)

// MaxPollTimeout bounds how long Poll may wait for a finished load.
const MaxPollTimeout = 50 * time.Millisecond

var (
	// ErrNotReady indicates navigation while no sequence is installed.
	ErrNotReady = errors.New("navigation: not ready")

	// ErrLoadInFlight indicates a load was started while another is pending.
	ErrLoadInFlight = errors.New("navigation: load already in flight")

	// ErrLoadFailed wraps the error a load worker returned.
	ErrLoadFailed = errors.New("navigation: load failed")

	// ErrNoSamples indicates a ready sequence that holds no samples.
	ErrNoSamples = errors.New("navigation: sequence is empty")
)

type Status int

const (
	Empty Status = iota
	Loading
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "empty"
	}
}

// BuildFunc produces a complete sequence. It runs on the load worker.
type BuildFunc func(ctx context.Context) ([]scene.SampleResult, error)

type loadResult struct {
	samples []scene.SampleResult
	err     error
}

type State struct {
	mu      sync.Mutex
	status  Status
	samples []scene.SampleResult
	cursor  int

	pending chan loadResult
	loadID  string
	started time.Time

	ctx     context.Context
	timeout time.Duration
}

type Option func(*State)

// WithPollTimeout lets Poll wait up to d for a load to finish. d is
// clamped to [0, MaxPollTimeout].
func WithPollTimeout(d time.Duration) Option {
	return func(s *State) {
		switch {
		case d < 0:
			d = 0
		case d > MaxPollTimeout:
			d = MaxPollTimeout
		}
		s.timeout = d
	}
}

// WithContext sets the context handed to build functions. Loads are not
// cancelled individually; cancelling ctx is for process shutdown.
func WithContext(ctx context.Context) Option {
	return func(s *State) {
		s.ctx = ctx
	}
}

func New(opts ...Option) *State {
	s := &State{ctx: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BeginLoad starts build on a new goroutine and returns immediately.
// An installed sequence stays in memory until the new one replaces it.
func (s *State) BeginLoad(build BuildFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return ErrLoadInFlight
	}

	ch := make(chan loadResult, 1)
	s.pending = ch
	s.status = Loading
	s.loadID = uuid.New().String()
	s.started = time.Now()

	capitan.Info(s.ctx, events.LoadStarted, events.LoadIDKey.Field(s.loadID))

	ctx := s.ctx
	go func() {
		samples, err := build(ctx)
		ch <- loadResult{samples: samples, err: err}
	}()
	return nil
}

// Poll checks for a finished load without blocking past the poll timeout.
// The wait happens outside the lock, so readers are not held up by it.
// A failed load is returned wrapped in ErrLoadFailed and leaves the
// previous sequence, if any, installed.
func (s *State) Poll() (Status, error) {
	s.mu.Lock()
	pending, timeout := s.pending, s.timeout
	status := s.status
	s.mu.Unlock()

	if pending == nil {
		return status, nil
	}

	var (
		r  loadResult
		ok bool
	)
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		select {
		case r = <-pending:
			ok = true
		case <-timer.C:
		}
		timer.Stop()
	} else {
		select {
		case r = <-pending:
			ok = true
		default:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		return s.status, nil
	}

	s.pending = nil
	elapsed := time.Since(s.started)

	if r.err != nil {
		if s.samples != nil {
			s.status = Ready
		} else {
			s.status = Empty
		}
		capitan.Error(s.ctx, events.LoadFailed,
			events.LoadIDKey.Field(s.loadID),
			events.ErrorKey.Field(r.err.Error()),
		)
		return s.status, fmt.Errorf("%w: %w", ErrLoadFailed, r.err)
	}

	s.samples = r.samples
	if s.samples == nil {
		s.samples = []scene.SampleResult{}
	}
	s.cursor = 0
	s.status = Ready

	capitan.Info(s.ctx, events.LoadCompleted,
		events.LoadIDKey.Field(s.loadID),
		events.SamplesKey.Field(len(s.samples)),
		events.DurationMsKey.Field(int(elapsed.Milliseconds())),
	)
	return s.status, nil
}

func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Next moves the cursor forward, wrapping to the first sample.
func (s *State) Next() error {
	return s.move(1)
}

// Previous moves the cursor back, wrapping to the last sample.
func (s *State) Previous() error {
	return s.move(-1)
}

func (s *State) move(step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != Ready {
		return ErrNotReady
	}
	n := len(s.samples)
	if n == 0 {
		return ErrNoSamples
	}
	s.cursor = ((s.cursor+step)%n + n) % n
	return nil
}

// Current returns the sample under the cursor. The result is shared and
// must not be modified.
func (s *State) Current() (*scene.SampleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != Ready {
		return nil, ErrNotReady
	}
	if len(s.samples) == 0 {
		return nil, ErrNoSamples
	}
	return &s.samples[s.cursor], nil
}

func (s *State) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Len is the size of the installed sequence, which stays readable while a
// reload is in flight.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// Elapsed is the wall clock time since the pending load started, or zero
// when nothing is loading.
func (s *State) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return 0
	}
	return time.Since(s.started)
}

// LoadID identifies the most recent load in emitted events.
func (s *State) LoadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadID
}
