package tray

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeLive stands in for a live session holding the camera. It keeps
// running for a short while after cancellation, like a frame loop
// finishing its current frame.
type fakeLive struct {
	mu     sync.Mutex
	active int
	peak   int
	starts int
	fail   chan struct{}
}

func newFakeLive() *fakeLive {
	return &fakeLive{fail: make(chan struct{})}
}

func (f *fakeLive) run(ctx context.Context) error {
	f.mu.Lock()
	f.active++
	f.starts++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		time.Sleep(30 * time.Millisecond)
		return nil
	case <-f.fail:
		return errors.New("failed to grab frame")
	}
}

func (f *fakeLive) stats() (active, peak, starts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, f.peak, f.starts
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestLiveSwitch_RestartWaitsForPreviousSession(t *testing.T) {
	f := newFakeLive()
	var stops int
	var mu sync.Mutex
	sw := NewLiveSwitch(f.run, func(error) {
		mu.Lock()
		stops++
		mu.Unlock()
	})

	sw.Start(context.Background())
	waitUntil(t, func() bool { a, _, _ := f.stats(); return a == 1 })

	// Off then on again while the first session is still shutting down.
	sw.Stop()
	sw.Start(context.Background())
	sw.Start(context.Background())

	waitUntil(t, func() bool { _, _, s := f.stats(); return s == 2 })
	if _, peak, _ := f.stats(); peak != 1 {
		t.Errorf("peak concurrent sessions = %d, want 1", peak)
	}
	if !sw.Running() {
		t.Error("second session should be running")
	}
	mu.Lock()
	if stops != 0 {
		t.Errorf("onStop called %d times for a session stopped by the operator", stops)
	}
	mu.Unlock()

	sw.Stop()
	sw.Wait()
	if a, _, starts := f.stats(); a != 0 || starts != 2 {
		t.Errorf("active=%d starts=%d, want 0 and 2", a, starts)
	}
}

func TestLiveSwitch_SessionEndingOnItsOwn(t *testing.T) {
	f := newFakeLive()
	stopped := make(chan error, 1)
	sw := NewLiveSwitch(f.run, func(err error) { stopped <- err })

	sw.Start(context.Background())
	waitUntil(t, func() bool { a, _, _ := f.stats(); return a == 1 })
	close(f.fail)

	select {
	case err := <-stopped:
		if err == nil {
			t.Error("expected the session error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onStop not called")
	}
	if sw.Running() {
		t.Error("switch still reports a running session")
	}

	// The switch can be turned on again afterwards.
	f.fail = make(chan struct{})
	sw.Start(context.Background())
	waitUntil(t, func() bool { _, _, s := f.stats(); return s == 2 })
	sw.Stop()
	sw.Wait()
}

func TestLiveSwitch_StopWithoutSession(t *testing.T) {
	sw := NewLiveSwitch(func(context.Context) error { return nil }, nil)
	sw.Stop()
	sw.Wait()
	if sw.Running() {
		t.Error("nothing should be running")
	}
}

func TestLiveSwitch_WithTrayToggle(t *testing.T) {
	f := newFakeLive()
	tr := New()
	sw := NewLiveSwitch(f.run, func(error) { tr.SetLive(false) })
	tr.OnLive(func(on bool) {
		if on {
			sw.Start(context.Background())
		} else {
			sw.Stop()
		}
	})

	tr.handleLive()
	waitUntil(t, func() bool { a, _, _ := f.stats(); return a == 1 })
	tr.handleLive()
	tr.handleLive()

	// The first session winding down must not switch the tray off.
	waitUntil(t, func() bool { _, _, s := f.stats(); return s == 2 })
	if !tr.IsLive() {
		t.Error("tray shows off while the new session runs")
	}

	close(f.fail)
	waitUntil(t, func() bool { return !tr.IsLive() })
	sw.Wait()
	if _, peak, _ := f.stats(); peak != 1 {
		t.Errorf("peak concurrent sessions = %d, want 1", peak)
	}
}
