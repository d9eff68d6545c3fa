// Package gesture turns hand landmarks into labeled samples, trained
// models and live, debounced predictions.
package gesture

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/detector"
)

// ErrSample marks a single frame whose landmarks could not become a valid
// sample. The frame is dropped and the session carries on.
var ErrSample = errors.New("malformed sample")

// Outcome is the result of one save trigger.
type Outcome int

const (
	// OutcomeNoHand means no hand was in the frame; nothing was written.
	OutcomeNoHand Outcome = iota
	// OutcomeCooldown means the previous save was too recent.
	OutcomeCooldown
	// OutcomeSaved means one sample was appended to the dataset.
	OutcomeSaved
	// OutcomeDropped means the sample was malformed and discarded.
	OutcomeDropped
	// OutcomeDone means the session already reached its target.
	OutcomeDone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoHand:
		return "no_hand"
	case OutcomeCooldown:
		return "cooldown"
	case OutcomeSaved:
		return "saved"
	case OutcomeDropped:
		return "dropped"
	case OutcomeDone:
		return "done"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Recorder appends labeled samples to a dataset file for one collection
// session. Saves are explicit and rate limited.
type Recorder struct {
	DatasetPath string
	Label       string
	Target      int
	Cooldown    time.Duration

	saved    int
	dropped  int
	lastSave time.Time
}

// NewRecorder starts a session collecting target samples of label.
func NewRecorder(datasetPath, label string, target int, cooldown time.Duration) (*Recorder, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, errors.New("label is empty")
	}
	if strings.ContainsAny(label, "\r\n") {
		return nil, errors.New("label contains a line break")
	}
	if target <= 0 {
		return nil, fmt.Errorf("target must be positive, got %d", target)
	}
	return &Recorder{
		DatasetPath: datasetPath,
		Label:       label,
		Target:      target,
		Cooldown:    cooldown,
	}, nil
}

// Trigger handles a save request for the hands detected in the current
// frame. Only the first hand is used. A non-nil error wrapping ErrSample
// is per-sample. Any other error means the dataset file cannot take the
// sample (unwritable, or a schema the session cannot append to) and the
// session should end.
func (r *Recorder) Trigger(hands []detector.HandLandmarks, now time.Time) (Outcome, error) {
	if r.Done() {
		return OutcomeDone, nil
	}
	if len(hands) == 0 {
		return OutcomeNoHand, nil
	}
	if !r.lastSave.IsZero() && now.Sub(r.lastSave) < r.Cooldown {
		return OutcomeCooldown, nil
	}

	features, err := detector.Features(&hands[0])
	if err != nil {
		r.dropped++
		return OutcomeDropped, fmt.Errorf("%w: %v", ErrSample, err)
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			r.dropped++
			return OutcomeDropped, fmt.Errorf("%w: feature %d is not finite", ErrSample, i)
		}
	}

	if err := dataset.Append(r.DatasetPath, r.Label, features); err != nil {
		return OutcomeDropped, fmt.Errorf("append to %s: %w", r.DatasetPath, err)
	}

	r.saved++
	r.lastSave = now
	return OutcomeSaved, nil
}

// Done reports whether the target has been reached.
func (r *Recorder) Done() bool {
	return r.saved >= r.Target
}

// Saved returns the number of samples written this session.
func (r *Recorder) Saved() int {
	return r.saved
}

// Dropped returns the number of malformed samples discarded.
func (r *Recorder) Dropped() int {
	return r.dropped
}

// Status is the overlay text for a frame.
func (r *Recorder) Status(handVisible bool) string {
	if !handVisible {
		return "No hand detected"
	}
	return fmt.Sprintf("Detected. Press S to save (%d/%d)", r.saved, r.Target)
}
