package model

import (
	"math"
	"sort"
)

// treeNode is one node of a CART decision tree. Leaves carry the positive
// class fraction of their training samples.
type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
	Leaf      bool      `json:"leaf"`
	Prob      float64   `json:"prob"`
}

// buildTree grows a tree on the indexed samples using Gini impurity.
// minLeaf samples are required to keep splitting.
func buildTree(X [][]float64, y []float64, indexes []int, depth, maxDepth, minLeaf int, featureSubset []int) *treeNode {
	prob := positiveFraction(y, indexes)

	if depth >= maxDepth || len(indexes) < 2*minLeaf || prob == 0 || prob == 1 {
		return &treeNode{Leaf: true, Prob: prob}
	}

	feature, threshold, ok := bestSplit(X, y, indexes, minLeaf, featureSubset)
	if !ok {
		return &treeNode{Leaf: true, Prob: prob}
	}

	var left, right []int
	for _, i := range indexes {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(X, y, left, depth+1, maxDepth, minLeaf, featureSubset),
		Right:     buildTree(X, y, right, depth+1, maxDepth, minLeaf, featureSubset),
	}
}

// predict walks the tree to a leaf probability
func (n *treeNode) predict(x []float64) float64 {
	node := n
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Prob
}

// bestSplit finds the feature/threshold pair minimizing weighted Gini
// impurity over the candidate features
func bestSplit(X [][]float64, y []float64, indexes []int, minLeaf int, features []int) (int, float64, bool) {
	bestGini := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	for _, f := range features {
		values := make([]float64, 0, len(indexes))
		for _, i := range indexes {
			values = append(values, X[i][f])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			var leftPos, leftN, rightPos, rightN float64
			for _, i := range indexes {
				if X[i][f] <= threshold {
					leftN++
					leftPos += y[i]
				} else {
					rightN++
					rightPos += y[i]
				}
			}

			if int(leftN) < minLeaf || int(rightN) < minLeaf {
				continue
			}

			gini := (leftN*giniImpurity(leftPos/leftN) + rightN*giniImpurity(rightPos/rightN)) / (leftN + rightN)
			if gini < bestGini {
				bestGini = gini
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func giniImpurity(p float64) float64 {
	return 2 * p * (1 - p)
}

func positiveFraction(y []float64, indexes []int) float64 {
	if len(indexes) == 0 {
		return 0
	}
	var pos float64
	for _, i := range indexes {
		pos += y[i]
	}
	return pos / float64(len(indexes))
}
