package regress

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sectorlab/factorwalk/internal/model"
)

// Forest is a bagged regression forest of depth-limited CART trees. The
// seed is explicit: two forests fitted with the same data and seed produce
// identical predictions.
type Forest struct {
	Trees       int     // number of trees (default 100)
	MaxDepth    int     // maximum tree depth (default 5)
	MinLeaf     int     // minimum rows per leaf (default 2)
	FeatureFrac float64 // fraction of features tried per node (default 1/3)
	Seed        int64
}

// ForestModel is a fitted Forest.
type ForestModel struct {
	trees []*treeNode
}

type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) leaf() bool {
	return n.left == nil
}

// Fit trains the forest on bootstrap samples of the analysis window.
func (f Forest) Fit(features [][]float64, target []float64) (model.Predictor, error) {
	n := len(features)
	if n == 0 || n != len(target) {
		return nil, fmt.Errorf("fit needs matching rows, got %d features and %d targets", n, len(target))
	}
	trees := f.Trees
	if trees <= 0 {
		trees = 100
	}
	maxDepth := f.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}
	minLeaf := f.MinLeaf
	if minLeaf <= 0 {
		minLeaf = 2
	}
	frac := f.FeatureFrac
	if frac <= 0 || frac > 1 {
		frac = 1.0 / 3.0
	}
	nFeatures := len(features[0])
	mtry := int(math.Ceil(frac * float64(nFeatures)))

	rng := rand.New(rand.NewSource(f.Seed))
	fitted := &ForestModel{trees: make([]*treeNode, trees)}
	for t := 0; t < trees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		fitted.trees[t] = buildTree(features, target, idx, maxDepth, minLeaf, mtry, rng)
	}
	return fitted, nil
}

// Predict averages the per-tree predictions for each feature row.
func (m *ForestModel) Predict(features [][]float64) ([]float64, error) {
	if len(m.trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	out := make([]float64, len(features))
	for i, row := range features {
		sum := 0.0
		for _, tree := range m.trees {
			sum += tree.predict(row)
		}
		out[i] = sum / float64(len(m.trees))
	}
	return out, nil
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.leaf() {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func buildTree(features [][]float64, target []float64, idx []int, depth, minLeaf, mtry int, rng *rand.Rand) *treeNode {
	node := &treeNode{value: meanAt(target, idx)}
	if depth <= 0 || len(idx) < 2*minLeaf {
		return node
	}

	bestSSE := math.Inf(1)
	bestFeature, bestLeft, bestRight := -1, []int(nil), []int(nil)
	var bestThreshold float64

	for _, feature := range sampleFeatures(len(features[0]), mtry, rng) {
		for _, i := range idx {
			threshold := features[i][feature]
			var left, right []int
			for _, j := range idx {
				if features[j][feature] <= threshold {
					left = append(left, j)
				} else {
					right = append(right, j)
				}
			}
			if len(left) < minLeaf || len(right) < minLeaf {
				continue
			}
			sse := sseAt(target, left) + sseAt(target, right)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = feature
				bestThreshold = threshold
				bestLeft, bestRight = left, right
			}
		}
	}
	if bestFeature == -1 {
		return node
	}

	node.feature = bestFeature
	node.threshold = bestThreshold
	node.left = buildTree(features, target, bestLeft, depth-1, minLeaf, mtry, rng)
	node.right = buildTree(features, target, bestRight, depth-1, minLeaf, mtry, rng)
	return node
}

func sampleFeatures(n, k int, rng *rand.Rand) []int {
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return rng.Perm(n)[:k]
}

func meanAt(values []float64, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += values[i]
	}
	return sum / float64(len(idx))
}

func sseAt(values []float64, idx []int) float64 {
	mean := meanAt(values, idx)
	sum := 0.0
	for _, i := range idx {
		diff := values[i] - mean
		sum += diff * diff
	}
	return sum
}
