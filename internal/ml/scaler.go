package ml

import (
	"fmt"
	"math"
)

// StandardScaler standardizes features to zero mean and unit variance
// using statistics captured by Fit. Features with zero variance are only
// centered.
type StandardScaler struct {
	Mean []float64 `msgpack:"mean"`
	Std  []float64 `msgpack:"std"`
}

// Fit computes per-feature mean and population standard deviation.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return fmt.Errorf("scaler: %w", ErrEmpty)
	}
	r, c := len(X), len(X[0])
	for i := range X {
		if len(X[i]) != c {
			return fmt.Errorf("scaler: row %d: %w", i, ErrDimension)
		}
	}

	mean := make([]float64, c)
	std := make([]float64, c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			mean[j] += X[i][j]
		}
		mean[j] /= float64(r)

		v := 0.0
		for i := 0; i < r; i++ {
			d := X[i][j] - mean[j]
			v += d * d
		}
		std[j] = math.Sqrt(v / float64(r))
		if std[j] == 0 {
			std[j] = 1
		}
	}

	s.Mean = mean
	s.Std = std
	return nil
}

// Width returns the number of features the scaler was fitted on.
func (s *StandardScaler) Width() int {
	return len(s.Mean)
}

// TransformRow scales a single vector.
func (s *StandardScaler) TransformRow(x []float64) ([]float64, error) {
	if len(s.Mean) == 0 {
		return nil, fmt.Errorf("scaler: %w", ErrNotFitted)
	}
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler: got %d features, want %d: %w", len(x), len(s.Mean), ErrDimension)
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// Transform scales every row of X.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
