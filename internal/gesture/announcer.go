package gesture

import "time"

// Announcer decides when a prediction is worth saying aloud. It speaks a
// label only when the label differs from the last one spoken, confidence
// is above Threshold and at least Interval has passed since the last
// utterance.
type Announcer struct {
	Threshold float64
	Interval  time.Duration

	last      string
	lastAt    time.Time
	announced bool
}

// NewAnnouncer returns an Announcer in the silent state.
func NewAnnouncer(threshold float64, interval time.Duration) *Announcer {
	return &Announcer{Threshold: threshold, Interval: interval}
}

// Offer returns the text to speak for p, if any, and records the
// utterance.
func (a *Announcer) Offer(p Prediction, now time.Time) (string, bool) {
	if a.announced && p.Label == a.last {
		return "", false
	}
	if p.Confidence <= a.Threshold {
		return "", false
	}
	if a.announced && now.Sub(a.lastAt) < a.Interval {
		return "", false
	}
	a.last = p.Label
	a.lastAt = now
	a.announced = true
	return p.Label, true
}

// Last returns the last announced label.
func (a *Announcer) Last() (string, bool) {
	return a.last, a.announced
}

// Reset returns to the silent state.
func (a *Announcer) Reset() {
	a.last = ""
	a.lastAt = time.Time{}
	a.announced = false
}
