// Package tray provides a menu-bar front end: train the model, switch live
// recognition on and off, and show the last recognized gesture.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onLive  func(enabled bool)
	onTrain func()
	onQuit  func()
	live    bool
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuLive        *systray.MenuItem
	menuTrain       *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray with live recognition off.
func New() *Tray {
	return &Tray{}
}

// OnLive sets the callback called when live recognition is switched.
func (t *Tray) OnLive(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onLive = fn
}

// OnTrain sets the callback called when "Train Model" is clicked.
func (t *Tray) OnTrain(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTrain = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture recognition")

	t.mu.Lock()
	t.menuLive = systray.AddMenuItem(liveTitle(false), "Start or stop live recognition")
	systray.AddSeparator()
	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last recognized gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()
	t.menuTrain = systray.AddMenuItem("Train Model", "Train on the collected samples")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")
	menuLive, menuTrain := t.menuLive, t.menuTrain
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-menuLive.ClickedCh:
				t.handleLive()
			case <-menuTrain.ClickedCh:
				t.handleTrain()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func liveTitle(on bool) string {
	if on {
		return "● Live: on"
	}
	return "○ Live: off"
}

// handleLive flips live recognition and notifies the callback outside
// the lock.
func (t *Tray) handleLive() {
	t.mu.Lock()
	t.live = !t.live
	live := t.live
	if t.menuLive != nil {
		t.menuLive.SetTitle(liveTitle(live))
	}
	callback := t.onLive
	t.mu.Unlock()

	if callback != nil {
		callback(live)
	}
}

func (t *Tray) handleTrain() {
	t.mu.RLock()
	callback := t.onTrain
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetLive records that live recognition stopped or started on its own,
// for example when the camera fails.
func (t *Tray) SetLive(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = on
	if t.menuLive != nil {
		t.menuLive.SetTitle(liveTitle(on))
	}
}

// SetTraining shows that a training run is in progress.
func (t *Tray) SetTraining(busy bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuTrain == nil {
		return
	}
	if busy {
		t.menuTrain.SetTitle("Training...")
		t.menuTrain.Disable()
	} else {
		t.menuTrain.SetTitle("Train Model")
		t.menuTrain.Enable()
	}
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture != nil {
		if name == "" {
			t.menuLastGesture.SetTitle("Last: none")
		} else {
			t.menuLastGesture.SetTitle("Last: " + name)
		}
	}
}

// IsLive returns whether live recognition is on.
func (t *Tray) IsLive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}
