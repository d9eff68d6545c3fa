// Package ml implements the small supervised-learning toolkit behind the
// gesture classifier: label encoding, feature standardization, a seeded
// train/holdout split, CART decision trees and a random forest.
package ml

import "errors"

var (
	// ErrNotFitted is returned when a model is used before Fit.
	ErrNotFitted = errors.New("ml: model is not fitted")
	// ErrDimension is returned when a vector has the wrong number of features.
	ErrDimension = errors.New("ml: feature dimension mismatch")
	// ErrEmpty is returned when there is nothing to fit on.
	ErrEmpty = errors.New("ml: empty input")
)

// Classifier maps a feature vector to an encoded class index.
type Classifier interface {
	Predict(x []float64) (int, error)
}

// ProbabilityEstimator is implemented by classifiers that expose a
// per-class probability distribution, indexed by class.
type ProbabilityEstimator interface {
	PredictProba(x []float64) ([]float64, error)
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
