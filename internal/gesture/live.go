package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// NoHandText is shown when no hand is in the frame.
const NoHandText = "No hand"

// Frame is the outcome of processing one camera frame in live mode.
type Frame struct {
	Text   string
	NoHand bool
	// Prediction is nil when there was no hand or classification failed.
	Prediction *Prediction
	// Announce is the text to speak, empty when nothing should be said.
	Announce string
	Err      error
}

// LiveSession classifies frames and applies the announcement policy.
type LiveSession struct {
	classifier *Classifier
	announcer  *Announcer
}

// NewLiveSession creates a session over c and a.
func NewLiveSession(c *Classifier, a *Announcer) *LiveSession {
	return &LiveSession{classifier: c, announcer: a}
}

// Step processes the hands detected in one frame. With no hand, no
// inference runs and nothing is announced.
func (s *LiveSession) Step(hands []detector.HandLandmarks, now time.Time) Frame {
	if len(hands) == 0 {
		return Frame{Text: NoHandText, NoHand: true}
	}

	p, err := s.classifier.Classify(&hands[0])
	if err != nil {
		return Frame{Text: NoHandText, Err: err}
	}

	f := Frame{Text: p.Text(), Prediction: &p}
	if text, ok := s.announcer.Offer(p, now); ok {
		f.Announce = text
	}
	return f
}
