// Package speech speaks gesture labels aloud. A Speaker wraps a
// text-to-speech engine; a Worker moves speaking off the frame loop.
package speech

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable means no speech engine could be found. Callers treat it
// as a degraded mode and continue without audio.
var ErrUnavailable = errors.New("speech engine unavailable")

// Speaker renders text as audio. Speak blocks until the utterance is done
// or ctx ends.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Close() error
}

// Sink accepts utterances from the live loop. Implementations decide
// whether Say blocks.
type Sink interface {
	Say(text string)
	Close() error
}

// Discard is a Speaker that says nothing.
type Discard struct{}

func (Discard) Speak(context.Context, string) error { return nil }
func (Discard) Close() error                        { return nil }

// Transcript is a Speaker that records what it was asked to say.
type Transcript struct {
	mu    sync.Mutex
	lines []string
	err   error
}

// NewTranscript returns an empty Transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// SetError makes subsequent Speak calls fail with err.
func (t *Transcript) SetError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Speak records text.
func (t *Transcript) Speak(_ context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.lines = append(t.lines, text)
	return nil
}

// Lines returns a copy of everything spoken so far.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

func (t *Transcript) Close() error { return nil }
