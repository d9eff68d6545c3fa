package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// RandomForest is a bagged ensemble of decision trees. Each tree is grown
// on a bootstrap sample with a random feature subset per split, and the
// forest predicts the class with the highest mean tree probability.
type RandomForest struct {
	NumTrees  int   `msgpack:"num_trees"`
	MaxDepth  int   `msgpack:"max_depth"`
	Bootstrap bool  `msgpack:"bootstrap"`
	Seed      int64 `msgpack:"seed"`

	NumClasses  int             `msgpack:"num_classes"`
	NumFeatures int             `msgpack:"num_features"`
	Trees       []*DecisionTree `msgpack:"trees"`
}

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

// WithTrees sets the number of trees.
func WithTrees(n int) ForestOption { return func(rf *RandomForest) { rf.NumTrees = n } }

// WithMaxDepth limits tree depth. 0 means unlimited.
func WithMaxDepth(d int) ForestOption { return func(rf *RandomForest) { rf.MaxDepth = d } }

// WithSeed sets the seed all tree randomness derives from.
func WithSeed(seed int64) ForestOption { return func(rf *RandomForest) { rf.Seed = seed } }

// WithBootstrap toggles bootstrap sampling.
func WithBootstrap(b bool) ForestOption { return func(rf *RandomForest) { rf.Bootstrap = b } }

// NewRandomForest returns a 100-tree forest with unlimited depth.
func NewRandomForest(opts ...ForestOption) *RandomForest {
	rf := &RandomForest{
		NumTrees:  100,
		Bootstrap: true,
		Seed:      42,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the forest on X and labels y in [0, numClasses). Trees are
// grown concurrently; tree i always uses seed Seed+i so results do not
// depend on scheduling.
func (rf *RandomForest) Fit(X [][]float64, y []int, numClasses int) error {
	n := len(X)
	if n == 0 {
		return fmt.Errorf("randomforest: %w", ErrEmpty)
	}
	if len(y) != n {
		return fmt.Errorf("randomforest: %d rows but %d labels", n, len(y))
	}
	if rf.NumTrees <= 0 {
		return fmt.Errorf("randomforest: need at least one tree")
	}
	p := len(X[0])
	if p == 0 {
		return fmt.Errorf("randomforest: %w", ErrDimension)
	}

	maxFeatures := int(math.Sqrt(float64(p)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	trees := make([]*DecisionTree, rf.NumTrees)
	errs := make([]error, rf.NumTrees)
	var wg sync.WaitGroup

	for i := 0; i < rf.NumTrees; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			rnd := rand.New(rand.NewSource(rf.Seed + int64(i)))
			idx := make([]int, n)
			for j := range idx {
				if rf.Bootstrap {
					idx[j] = rnd.Intn(n)
				} else {
					idx[j] = j
				}
			}

			tree := NewDecisionTree(rf.MaxDepth, maxFeatures)
			if err := tree.Fit(X, y, idx, numClasses, rnd); err != nil {
				errs[i] = fmt.Errorf("tree %d: %w", i, err)
				return
			}
			trees[i] = tree
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("randomforest: %w", err)
		}
	}

	rf.Trees = trees
	rf.NumClasses = numClasses
	rf.NumFeatures = p
	return nil
}

// PredictProba averages the leaf distributions of all trees.
func (rf *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, fmt.Errorf("randomforest: %w", ErrNotFitted)
	}
	if len(x) != rf.NumFeatures {
		return nil, fmt.Errorf("randomforest: got %d features, want %d: %w", len(x), rf.NumFeatures, ErrDimension)
	}

	out := make([]float64, rf.NumClasses)
	for _, t := range rf.Trees {
		p, err := t.PredictProba(x)
		if err != nil {
			return nil, err
		}
		for c := range out {
			if c < len(p) {
				out[c] += p[c]
			}
		}
	}
	for c := range out {
		out[c] /= float64(len(rf.Trees))
	}
	return out, nil
}

// Predict returns the class with the highest mean probability.
func (rf *RandomForest) Predict(x []float64) (int, error) {
	p, err := rf.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(p), nil
}

// PredictAll predicts every row of X.
func (rf *RandomForest) PredictAll(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		c, err := rf.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}
