package model

import (
	"fmt"
	"math"
	"math/rand"
)

// RandomForest is a bagged ensemble of CART trees. Each tree trains on a
// bootstrap sample with a random sqrt(d) feature subset.
type RandomForest struct {
	Trees    []*treeNode `json:"trees"`
	NumTrees int         `json:"num_trees"`
	MaxDepth int         `json:"max_depth"`
	MinLeaf  int         `json:"min_leaf"`
	Seed     int64       `json:"seed"`
	Features int         `json:"features"` // trained feature width
}

// NewRandomForest creates an untrained random forest
func NewRandomForest(trees, maxDepth int, seed int64) *RandomForest {
	if trees <= 0 {
		trees = 100
	}
	if maxDepth <= 0 {
		maxDepth = 8
	}
	return &RandomForest{
		NumTrees: trees,
		MaxDepth: maxDepth,
		MinLeaf:  2,
		Seed:     seed,
	}
}

// Fit trains the ensemble on feature matrix X and binary labels y
func (m *RandomForest) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}

	n := len(X)
	width := len(X[0])
	m.Features = width
	m.Trees = make([]*treeNode, 0, m.NumTrees)

	rng := rand.New(rand.NewSource(m.Seed))
	subsetSize := int(math.Ceil(math.Sqrt(float64(width))))

	for t := 0; t < m.NumTrees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}

		subset := rng.Perm(width)[:subsetSize]
		m.Trees = append(m.Trees, buildTree(X, y, sample, 0, m.MaxDepth, m.MinLeaf, subset))
	}

	return nil
}

// PredictProba averages leaf probabilities across the ensemble
func (m *RandomForest) PredictProba(x []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, ErrNotTrained
	}
	if len(x) != m.Features {
		return 0, fmt.Errorf("vector has %d features, model expects %d", len(x), m.Features)
	}

	var sum float64
	for _, tree := range m.Trees {
		sum += tree.predict(x)
	}
	return sum / float64(len(m.Trees)), nil
}

// Type returns the model type tag
func (m *RandomForest) Type() string {
	return TypeRandomForest
}
