package tray

import (
	"context"
	"sync"
)

// LiveSwitch runs at most one live session at a time behind the tray
// toggle. A new session starts only after the previous one has returned,
// so the camera is never opened twice.
type LiveSwitch struct {
	run    func(ctx context.Context) error
	onStop func(err error)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLiveSwitch creates a switch over run. onStop is called when the
// current session returns without having been stopped through the switch,
// for example after a camera failure.
func NewLiveSwitch(run func(ctx context.Context) error, onStop func(err error)) *LiveSwitch {
	return &LiveSwitch{run: run, onStop: onStop}
}

// Start begins a session under ctx. It does nothing if one is running.
func (s *LiveSwitch) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	s.gen++
	gen := s.gen
	prev := s.done
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		var err error
		if ctx.Err() == nil {
			err = s.run(ctx)
		}
		s.finish(gen, err)
	}()
}

// Stop cancels the running session, if any. It does not wait for it.
func (s *LiveSwitch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.gen++
}

// Running reports whether a session is started and not stopped.
func (s *LiveSwitch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Wait blocks until the most recent session has returned.
func (s *LiveSwitch) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *LiveSwitch) finish(gen uint64, err error) {
	s.mu.Lock()
	current := gen == s.gen && s.cancel != nil
	if current {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	if current && s.onStop != nil {
		s.onStop(err)
	}
}
