package analytics

import (
	"math"
	"math/rand"
)

// Isolation forest over small feature matrices. Rows that can be separated
// from the bulk with fewer random axis-aligned splits receive shorter path
// lengths and therefore higher anomaly scores in (0, 1).
const (
	isoTreeCount = 100
	isoSubsample = 256
)

const eulerMascheroni = 0.5772156649015329

// unsuccessfulSearchLength is c(n), the average path length of an
// unsuccessful BST search over n points; it normalizes tree depths.
func unsuccessfulSearchLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		h := math.Log(float64(n-1)) + eulerMascheroni
		return 2*h - 2*float64(n-1)/float64(n)
	}
}

// isoNode is one node of an isolation tree. Leaves have nil children and
// remember how many sample points they absorbed.
type isoNode struct {
	feature     int
	split       float64
	left, right *isoNode
	size        int
}

type isolationForest struct {
	trees       []*isoNode
	heightLimit int
	norm        float64 // c(psi)
}

// fitIsolationForest trains the forest on data using the supplied seeded
// source. The caller owns the rng; passing the same seed and data yields an
// identical forest.
func fitIsolationForest(data [][]float64, rng *rand.Rand) *isolationForest {
	psi := isoSubsample
	if len(data) < psi {
		psi = len(data)
	}
	limit := int(math.Ceil(math.Log2(float64(psi))))
	f := &isolationForest{
		heightLimit: limit,
		norm:        unsuccessfulSearchLength(psi),
		trees:       make([]*isoNode, 0, isoTreeCount),
	}
	for t := 0; t < isoTreeCount; t++ {
		perm := rng.Perm(len(data))
		sample := make([][]float64, psi)
		for i := 0; i < psi; i++ {
			sample[i] = data[perm[i]]
		}
		f.trees = append(f.trees, buildIsoTree(sample, 0, limit, rng))
	}
	return f
}

func buildIsoTree(data [][]float64, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(data) <= 1 {
		return &isoNode{size: len(data)}
	}

	// Only features with spread in this partition are splittable.
	nFeatures := len(data[0])
	var candidates []int
	for j := 0; j < nFeatures; j++ {
		lo, hi := data[0][j], data[0][j]
		for _, row := range data[1:] {
			if row[j] < lo {
				lo = row[j]
			}
			if row[j] > hi {
				hi = row[j]
			}
		}
		if hi > lo {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return &isoNode{size: len(data)}
	}

	feature := candidates[rng.Intn(len(candidates))]
	lo, hi := data[0][feature], data[0][feature]
	for _, row := range data[1:] {
		if row[feature] < lo {
			lo = row[feature]
		}
		if row[feature] > hi {
			hi = row[feature]
		}
	}
	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, row := range data {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildIsoTree(left, depth+1, limit, rng),
		right:   buildIsoTree(right, depth+1, limit, rng),
	}
}

// score returns the anomaly score of x in (0, 1); higher is more anomalous.
func (f *isolationForest) score(x []float64) float64 {
	var total float64
	for _, tree := range f.trees {
		total += pathLength(tree, x, 0)
	}
	avg := total / float64(len(f.trees))
	return math.Pow(2, -avg/f.norm)
}

func pathLength(n *isoNode, x []float64, depth int) float64 {
	if n.left == nil {
		return float64(depth) + unsuccessfulSearchLength(n.size)
	}
	if x[n.feature] < n.split {
		return pathLength(n.left, x, depth+1)
	}
	return pathLength(n.right, x, depth+1)
}
