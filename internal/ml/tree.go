package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// leaf marks a Node without children.
const leaf = -1

// Node is one node of a fitted tree, stored in a flat slice. Internal nodes
// send x to Left when x[Feature] <= Threshold.
type Node struct {
	Feature   int       `msgpack:"f"`
	Threshold float64   `msgpack:"t"`
	Left      int       `msgpack:"l"`
	Right     int       `msgpack:"r"`
	Probas    []float64 `msgpack:"p,omitempty"`
}

// DecisionTree is a CART classifier using Gini impurity.
type DecisionTree struct {
	MaxDepth        int `msgpack:"max_depth"` // 0 => no limit
	MinSamplesSplit int `msgpack:"min_samples_split"`
	// MaxFeatures is the number of features examined per split. 0 => all.
	MaxFeatures int `msgpack:"max_features"`

	NumClasses  int    `msgpack:"num_classes"`
	NumFeatures int    `msgpack:"num_features"`
	Nodes       []Node `msgpack:"nodes"`
}

// NewDecisionTree returns a tree with sklearn-like defaults.
func NewDecisionTree(maxDepth, maxFeatures int) *DecisionTree {
	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: 2,
		MaxFeatures:     maxFeatures,
	}
}

// Fit grows the tree on the rows of X selected by idx. Labels in y must be
// in [0, numClasses). Duplicate indices (bootstrap samples) count once per
// occurrence.
func (t *DecisionTree) Fit(X [][]float64, y []int, idx []int, numClasses int, rnd *rand.Rand) error {
	if len(idx) == 0 || len(X) == 0 {
		return fmt.Errorf("tree: %w", ErrEmpty)
	}
	if len(X) != len(y) {
		return fmt.Errorf("tree: %d rows but %d labels", len(X), len(y))
	}
	if numClasses < 1 {
		return fmt.Errorf("tree: need at least one class")
	}
	p := len(X[0])
	for _, i := range idx {
		if len(X[i]) != p {
			return fmt.Errorf("tree: row %d: %w", i, ErrDimension)
		}
		if y[i] < 0 || y[i] >= numClasses {
			return fmt.Errorf("tree: label %d outside [0,%d)", y[i], numClasses)
		}
	}

	t.NumClasses = numClasses
	t.NumFeatures = p
	t.Nodes = t.Nodes[:0]
	b := &treeBuilder{tree: t, X: X, y: y, rnd: rnd}
	b.build(append([]int(nil), idx...), 0)
	return nil
}

// PredictProba returns the class distribution of the leaf x falls into.
func (t *DecisionTree) PredictProba(x []float64) ([]float64, error) {
	if len(t.Nodes) == 0 {
		return nil, fmt.Errorf("tree: %w", ErrNotFitted)
	}
	if len(x) != t.NumFeatures {
		return nil, fmt.Errorf("tree: got %d features, want %d: %w", len(x), t.NumFeatures, ErrDimension)
	}
	n := 0
	for t.Nodes[n].Feature != leaf {
		node := t.Nodes[n]
		if x[node.Feature] <= node.Threshold {
			n = node.Left
		} else {
			n = node.Right
		}
	}
	return t.Nodes[n].Probas, nil
}

// Predict returns the majority class of the leaf x falls into.
func (t *DecisionTree) Predict(x []float64) (int, error) {
	probas, err := t.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(probas), nil
}

// Depth returns the length of the longest root-to-leaf path.
func (t *DecisionTree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(n, d int) int
	walk = func(n, d int) int {
		node := t.Nodes[n]
		if node.Feature == leaf {
			return d
		}
		return max(walk(node.Left, d+1), walk(node.Right, d+1))
	}
	return walk(0, 0)
}

type treeBuilder struct {
	tree *DecisionTree
	X    [][]float64
	y    []int
	rnd  *rand.Rand
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// build appends the subtree for idx and returns its node index.
func (b *treeBuilder) build(idx []int, depth int) int {
	t := b.tree
	counts := b.counts(idx)

	at := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Feature: leaf})

	stop := isPure(counts) ||
		len(idx) < t.MinSamplesSplit ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth)

	var best split
	found := false
	if !stop {
		best, found = b.bestSplit(idx, counts)
	}
	if !found {
		t.Nodes[at].Probas = probas(counts)
		return at
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		t.Nodes[at].Probas = probas(counts)
		return at
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	t.Nodes[at] = Node{Feature: best.feature, Threshold: best.threshold, Left: l, Right: r}
	return at
}

// bestSplit visits features in random order and stops after MaxFeatures
// features that are not constant on idx.
func (b *treeBuilder) bestSplit(idx []int, counts []int) (split, bool) {
	t := b.tree
	features := b.rnd.Perm(t.NumFeatures)
	limit := t.MaxFeatures
	if limit <= 0 || limit > t.NumFeatures {
		limit = t.NumFeatures
	}

	parent := gini(counts, len(idx))
	best := split{gain: 1e-12}
	found := false
	visited := 0

	sorted := append([]int(nil), idx...)
	for _, f := range features {
		if visited >= limit {
			break
		}
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })
		lo, hi := b.X[sorted[0]][f], b.X[sorted[len(sorted)-1]][f]
		if lo == hi {
			continue
		}
		visited++

		s, ok := b.sweep(sorted, f, counts, parent)
		if ok && s.gain > best.gain {
			best = s
			found = true
		}
	}
	return best, found
}

// sweep scans the thresholds of feature f over rows sorted by that feature.
func (b *treeBuilder) sweep(sorted []int, f int, counts []int, parent float64) (split, bool) {
	n := len(sorted)
	left := make([]int, len(counts))
	right := append([]int(nil), counts...)

	best := split{feature: f, gain: math.Inf(-1)}
	found := false
	for i := 0; i < n-1; i++ {
		c := b.y[sorted[i]]
		left[c]++
		right[c]--

		v, next := b.X[sorted[i]][f], b.X[sorted[i+1]][f]
		if v == next {
			continue
		}
		nl, nr := i+1, n-i-1
		impurity := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
		gain := parent - impurity
		if gain > best.gain {
			best.gain = gain
			best.threshold = v + (next-v)/2
			if best.threshold >= next {
				best.threshold = v
			}
			found = true
		}
	}
	return best, found
}

func (b *treeBuilder) counts(idx []int) []int {
	counts := make([]int, b.tree.NumClasses)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		g -= p * p
	}
	return g
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func probas(counts []int) []float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(total)
	}
	return out
}
