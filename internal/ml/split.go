package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// TrainTestSplit partitions the indices 0..n-1 into a training and a
// holdout set. The holdout size is ceil(n*testRatio), kept within [1, n-1].
// The assignment depends only on n, testRatio and seed.
func TrainTestSplit(n int, testRatio float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("split: need at least 2 samples, got %d", n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("split: test ratio %v outside (0, 1)", testRatio)
	}

	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	return train, test, nil
}

// Rows selects the rows of X at idx.
func Rows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

// Ints selects the values of y at idx.
func Ints(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
