// Package app wires cameras, detectors, the gesture pipeline and speech
// into the three operator actions: collect, train and live.
package app

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/speech"
	"github.com/ayusman/mudra/internal/store"
)

// Options holds the configuration and the device factories of an App.
// Nil factories are replaced by the real devices.
type Options struct {
	Config config.Config
	// Store records history. Nil disables it.
	Store *store.Store

	NewCamera   func() capture.Camera
	NewDetector func() (detector.Detector, error)
	NewDisplay  func(title string) capture.Display
	NewSpeaker  func() (speech.Speaker, error)
	Now         func() time.Time
}

// App runs the operator actions. Each action owns its devices for its
// own duration and releases them before returning.
type App struct {
	cfg   config.Config
	store *store.Store

	newCamera   func() capture.Camera
	newDetector func() (detector.Detector, error)
	newDisplay  func(title string) capture.Display
	newSpeaker  func() (speech.Speaker, error)
	now         func() time.Time

	mu        sync.RWMutex
	last      string
	listeners []func(label string)
}

// New creates a new App.
func New(opts Options) *App {
	cfg := opts.Config
	a := &App{
		cfg:         cfg,
		store:       opts.Store,
		newCamera:   opts.NewCamera,
		newDetector: opts.NewDetector,
		newDisplay:  opts.NewDisplay,
		newSpeaker:  opts.NewSpeaker,
		now:         opts.Now,
	}

	if a.newCamera == nil {
		a.newCamera = func() capture.Camera {
			cam := capture.NewCamera(capture.Options{DeviceID: cfg.CameraID, Mirror: cfg.Mirror})
			cam.SetFPS(cfg.CameraFPS)
			return cam
		}
	}
	if a.newDetector == nil {
		a.newDetector = func() (detector.Detector, error) {
			return detector.NewMediaPipeDetector(cfg.Detector)
		}
	}
	if a.newDisplay == nil {
		a.newDisplay = func(title string) capture.Display {
			return capture.NewWindowDisplay(title)
		}
	}
	if a.newSpeaker == nil {
		a.newSpeaker = func() (speech.Speaker, error) {
			if cfg.Speech.Disable {
				return nil, fmt.Errorf("%w: disabled in config", speech.ErrUnavailable)
			}
			return speech.NewCommandSpeaker(cfg.Speech.Command, cfg.Speech.Rate, cfg.Speech.Timeout)
		}
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Config returns the configuration the App was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// LastLabel returns the most recent live prediction, or "" if none.
func (a *App) LastLabel() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// OnPrediction registers fn to be called when the live label changes.
func (a *App) OnPrediction(fn func(label string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) setLast(label string) {
	a.mu.Lock()
	if label == a.last {
		a.mu.Unlock()
		return
	}
	a.last = label
	listeners := append([]func(string){}, a.listeners...)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(label)
	}
}

// openSpeech returns a sink for announcements, or nil when no engine is
// available. Live mode then runs visual-only.
func (a *App) openSpeech() speech.Sink {
	s, err := a.newSpeaker()
	if err != nil {
		logger.Log().Warn("text-to-speech not available, continuing without audio", zap.Error(err))
		return nil
	}
	return speech.NewSink(s, a.cfg.Live.AsyncSpeech)
}
