package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDisplay records overlays and replays scripted key presses.
type MockDisplay struct {
	mu       sync.Mutex
	keys     []int
	overlays []Overlay
	closed   bool
}

// NewMockDisplay returns a display whose n-th WaitKey call returns keys[n].
// Calls beyond the script return KeyNone.
func NewMockDisplay(keys ...int) *MockDisplay {
	return &MockDisplay{keys: keys}
}

func (d *MockDisplay) Show(frame *gocv.Mat, overlay Overlay) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overlays = append(d.overlays, overlay)
}

func (d *MockDisplay) WaitKey(delayMs int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.keys) == 0 {
		return KeyNone
	}
	key := d.keys[0]
	d.keys = d.keys[1:]
	return key
}

func (d *MockDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Overlays returns every overlay shown so far.
func (d *MockDisplay) Overlays() []Overlay {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Overlay(nil), d.overlays...)
}

// Closed reports whether Close was called.
func (d *MockDisplay) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
