package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// GradientBoosting is a binary classifier: an additive ensemble of
// shallow regression trees fit to logistic-loss gradients. Trees are
// stored as flattened node slices so the whole model serializes to
// plain JSON.
type GradientBoosting struct {
	Trees        []Tree  `json:"trees"`
	LearningRate float64 `json:"learning_rate"`
	InitScore    float64 `json:"init_score"`
}

// Tree is one boosting stage.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode uses child indexes into the flattened slice; leaves carry
// the additive score contribution.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// TrainConfig mirrors the offline run's hyperparameters.
type TrainConfig struct {
	Estimators     int
	MaxDepth       int
	LearningRate   float64
	Subsample      float64
	ScalePosWeight float64
	Seed           int64
}

// DefaultTrainConfig returns the standard training setup.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Estimators:     200,
		MaxDepth:       5,
		LearningRate:   0.1,
		Subsample:      0.8,
		ScalePosWeight: 1,
		Seed:           42,
	}
}

const (
	minLeafSamples = 2
	hessianLambda  = 1.0
	maxLeafValue   = 4.0
)

// Train fits the ensemble on a binary target. ScalePosWeight weights
// positive-class gradients, the secondary imbalance counter on top of
// oversampling.
func (gb *GradientBoosting) Train(features [][]float64, labels []int, config TrainConfig) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	if config.Estimators <= 0 {
		config.Estimators = 200
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 5
	}
	if config.LearningRate <= 0 {
		config.LearningRate = 0.1
	}
	if config.Subsample <= 0 || config.Subsample > 1 {
		config.Subsample = 1
	}
	if config.ScalePosWeight <= 0 {
		config.ScalePosWeight = 1
	}

	n := len(features)
	weights := make([]float64, n)
	weightedPos := 0.0
	weightTotal := 0.0
	for i, label := range labels {
		if label != 0 && label != 1 {
			return errors.New("labels must be binary")
		}
		weights[i] = 1
		if label == 1 {
			weights[i] = config.ScalePosWeight
			weightedPos += weights[i]
		}
		weightTotal += weights[i]
	}

	gb.LearningRate = config.LearningRate
	gb.InitScore = logOdds(weightedPos / weightTotal)
	gb.Trees = nil

	rnd := rand.New(rand.NewSource(config.Seed))
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = gb.InitScore
	}

	gradients := make([]float64, n)
	hessians := make([]float64, n)
	for round := 0; round < config.Estimators; round++ {
		for i := range features {
			p := sigmoid(scores[i])
			gradients[i] = weights[i] * (float64(labels[i]) - p)
			hessians[i] = weights[i] * p * (1 - p)
		}

		sample := subsampleIndexes(n, config.Subsample, rnd)
		nodes := buildRegressionNode(features, gradients, hessians, sample, 0, config.MaxDepth)
		tree := Tree{Nodes: nodes}
		gb.Trees = append(gb.Trees, tree)

		for i := range features {
			scores[i] += config.LearningRate * tree.score(features[i])
		}
	}

	return nil
}

// PredictProba returns the positive-class probability.
func (gb *GradientBoosting) PredictProba(features []float64) (float64, error) {
	if len(gb.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	score := gb.InitScore
	for _, tree := range gb.Trees {
		score += gb.LearningRate * tree.score(features)
	}
	return sigmoid(score), nil
}

// Predict returns the label at the 0.5 threshold plus the probability.
func (gb *GradientBoosting) Predict(features []float64) (int, float64, error) {
	proba, err := gb.PredictProba(features)
	if err != nil {
		return 0, 0, err
	}
	if proba > 0.5 {
		return 1, proba, nil
	}
	return 0, proba, nil
}

func (t Tree) score(features []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0
		}
	}
}

func buildRegressionNode(features [][]float64, gradients, hessians []float64, indexes []int, depth, maxDepth int) []TreeNode {
	leaf := func() []TreeNode {
		return []TreeNode{{
			FeatureIdx: -1,
			LeftChild:  -1,
			RightChild: -1,
			Value:      leafValue(gradients, hessians, indexes),
			IsLeaf:     true,
		}}
	}

	if depth >= maxDepth || len(indexes) < 2*minLeafSamples {
		return leaf()
	}

	bestFeature, threshold, ok := findBestRegressionSplit(features, gradients, hessians, indexes)
	if !ok {
		return leaf()
	}

	left := make([]int, 0, len(indexes))
	right := make([]int, 0, len(indexes))
	for _, i := range indexes {
		if features[i][bestFeature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minLeafSamples || len(right) < minLeafSamples {
		return leaf()
	}

	leftNodes := buildRegressionNode(features, gradients, hessians, left, depth+1, maxDepth)
	rightNodes := buildRegressionNode(features, gradients, hessians, right, depth+1, maxDepth)

	// Children are appended after the root, so their indexes shift by
	// the root plus the whole left subtree.
	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
	}
	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, shiftChildren(leftNodes, 1)...)
	nodes = append(nodes, shiftChildren(rightNodes, 1+len(leftNodes))...)
	return nodes
}

func shiftChildren(nodes []TreeNode, offset int) []TreeNode {
	for i := range nodes {
		if !nodes[i].IsLeaf {
			nodes[i].LeftChild += offset
			nodes[i].RightChild += offset
		}
	}
	return nodes
}

func findBestRegressionSplit(features [][]float64, gradients, hessians []float64, indexes []int) (int, float64, bool) {
	featureCount := len(features[indexes[0]])

	totalGrad := 0.0
	totalHess := 0.0
	for _, i := range indexes {
		totalGrad += gradients[i]
		totalHess += hessians[i]
	}
	parentGain := gainTerm(totalGrad, totalHess)

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0

	values := make([]float64, len(indexes))
	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		for k, i := range indexes {
			values[k] = features[i][featureIdx]
		}
		for _, threshold := range quantileThresholds(values) {
			leftGrad, leftHess := 0.0, 0.0
			leftCount := 0
			for _, i := range indexes {
				if features[i][featureIdx] <= threshold {
					leftGrad += gradients[i]
					leftHess += hessians[i]
					leftCount++
				}
			}
			rightCount := len(indexes) - leftCount
			if leftCount < minLeafSamples || rightCount < minLeafSamples {
				continue
			}
			gain := gainTerm(leftGrad, leftHess) + gainTerm(totalGrad-leftGrad, totalHess-leftHess) - parentGain
			if gain > bestGain {
				bestGain = gain
				bestFeature = featureIdx
				bestThreshold = threshold
			}
		}
	}

	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func gainTerm(grad, hess float64) float64 {
	return grad * grad / (hess + hessianLambda)
}

// quantileThresholds proposes the quartiles of the node's values as
// candidate split points.
func quantileThresholds(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	thresholds := make([]float64, 0, 3)
	for _, q := range []float64{0.25, 0.5, 0.75} {
		idx := int(q * float64(len(sorted)-1))
		candidate := sorted[idx]
		duplicate := false
		for _, existing := range thresholds {
			if existing == candidate {
				duplicate = true
				break
			}
		}
		if !duplicate {
			thresholds = append(thresholds, candidate)
		}
	}
	return thresholds
}

func leafValue(gradients, hessians []float64, indexes []int) float64 {
	grad, hess := 0.0, 0.0
	for _, i := range indexes {
		grad += gradients[i]
		hess += hessians[i]
	}
	value := grad / (hess + hessianLambda)
	if value > maxLeafValue {
		return maxLeafValue
	}
	if value < -maxLeafValue {
		return -maxLeafValue
	}
	return value
}

func subsampleIndexes(n int, fraction float64, rnd *rand.Rand) []int {
	if fraction >= 1 {
		indexes := make([]int, n)
		for i := range indexes {
			indexes[i] = i
		}
		return indexes
	}
	keep := int(math.Round(float64(n) * fraction))
	if keep < 2*minLeafSamples {
		keep = n
	}
	perm := rnd.Perm(n)[:keep]
	sort.Ints(perm)
	return perm
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logOdds(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}
