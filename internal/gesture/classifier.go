package gesture

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ayusman/mudra/internal/artifact"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/ml"
)

// ConfidenceMode records how Prediction.Confidence was obtained.
type ConfidenceMode int

const (
	// ConfidenceProbability is the maximum per-class probability.
	ConfidenceProbability ConfidenceMode = iota
	// ConfidenceFallback is a fixed 1.0 used when probabilities are
	// unavailable or failed.
	ConfidenceFallback
)

func (m ConfidenceMode) String() string {
	if m == ConfidenceFallback {
		return "fallback"
	}
	return "probability"
}

// DecodeMode records how Prediction.Label was obtained.
type DecodeMode int

const (
	// DecodeEncoder means the label came from the stored encoder.
	DecodeEncoder DecodeMode = iota
	// DecodeRawIndex means decoding failed and Label is the class index.
	DecodeRawIndex
)

func (m DecodeMode) String() string {
	if m == DecodeRawIndex {
		return "raw_index"
	}
	return "encoder"
}

// Prediction is the classification of one hand pose.
type Prediction struct {
	Label          string
	Index          int
	Confidence     float64
	ConfidenceMode ConfidenceMode
	DecodeMode     DecodeMode
}

// Text is the overlay string, e.g. "fist (0.87)".
func (p Prediction) Text() string {
	return fmt.Sprintf("%s (%.2f)", p.Label, p.Confidence)
}

// Classifier applies a trained bundle to hand landmarks.
type Classifier struct {
	model   ml.Classifier
	encoder *ml.LabelEncoder
	scaler  *ml.StandardScaler
}

// NewClassifier builds a classifier from a loaded bundle.
func NewClassifier(b *artifact.Bundle) (*Classifier, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", artifact.ErrArtifact, err)
	}
	if b.Scaler.Width() != detector.NumFeatures {
		return nil, fmt.Errorf("%w: model expects %d features, hands produce %d",
			artifact.ErrArtifact, b.Scaler.Width(), detector.NumFeatures)
	}
	return &Classifier{model: b.Model, encoder: b.Encoder, scaler: b.Scaler}, nil
}

// Classes returns the labels the classifier can predict.
func (c *Classifier) Classes() []string {
	if c.encoder == nil {
		return nil
	}
	return c.encoder.Classes
}

// Classify predicts the gesture of hand. Errors are limited to a hand
// whose landmarks cannot be turned into features, or a model that fails
// on both the probability and the plain prediction path.
func (c *Classifier) Classify(hand *detector.HandLandmarks) (Prediction, error) {
	features, err := detector.Features(hand)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrSample, err)
	}
	x, err := c.scaler.TransformRow(features)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrSample, err)
	}

	var p Prediction
	if probas, err := c.probabilities(x); err == nil && len(probas) > 0 {
		p.Index = argmax(probas)
		p.Confidence = probas[p.Index]
		p.ConfidenceMode = ConfidenceProbability
	} else {
		idx, err := c.predict(x)
		if err != nil {
			return Prediction{}, fmt.Errorf("classify: %w", err)
		}
		p.Index = idx
		p.Confidence = 1.0
		p.ConfidenceMode = ConfidenceFallback
	}

	if label, err := c.decode(p.Index); err == nil {
		p.Label = label
		p.DecodeMode = DecodeEncoder
	} else {
		p.Label = strconv.Itoa(p.Index)
		p.DecodeMode = DecodeRawIndex
	}
	return p, nil
}

func (c *Classifier) probabilities(x []float64) (probas []float64, err error) {
	pe, ok := c.model.(ml.ProbabilityEstimator)
	if !ok {
		return nil, errors.New("model has no probabilities")
	}
	defer recoverInto(&err)
	return pe.PredictProba(x)
}

func (c *Classifier) predict(x []float64) (idx int, err error) {
	defer recoverInto(&err)
	return c.model.Predict(x)
}

func (c *Classifier) decode(idx int) (label string, err error) {
	if c.encoder == nil {
		return "", errors.New("no label encoder")
	}
	defer recoverInto(&err)
	return c.encoder.Decode(idx)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
