package gbdt

import (
	"fmt"
	"math"
	"sort"

	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// TrainingParams contains all training hyperparameters
type TrainingParams struct {
	NumIterations  int     `yaml:"num_iterations" envconfig:"NUM_ITERATIONS" validate:"gte=0"`
	LearningRate   float64 `yaml:"learning_rate" envconfig:"LEARNING_RATE" validate:"gte=0,lte=1"`
	NumLeaves      int     `yaml:"num_leaves" envconfig:"NUM_LEAVES" validate:"gte=0"`
	MaxDepth       int     `yaml:"max_depth" envconfig:"MAX_DEPTH" validate:"gte=0"` // 0 means unlimited
	MinDataInLeaf  int     `yaml:"min_data_in_leaf" envconfig:"MIN_DATA_IN_LEAF" validate:"gte=0"`
	Lambda         float64 `yaml:"lambda_l2" envconfig:"LAMBDA_L2" validate:"gte=0"`
	MinGainToSplit float64 `yaml:"min_gain_to_split" envconfig:"MIN_GAIN_TO_SPLIT" validate:"gte=0"`
	Objective      string  `yaml:"objective" envconfig:"OBJECTIVE"`
	Verbosity      int     `yaml:"verbosity" envconfig:"VERBOSITY"`
}

// withDefaults fills zero fields the way LightGBM does.
func (p TrainingParams) withDefaults() TrainingParams {
	if p.NumIterations == 0 {
		p.NumIterations = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.NumLeaves == 0 {
		p.NumLeaves = 31
	}
	if p.MinDataInLeaf == 0 {
		p.MinDataInLeaf = 20
	}
	return p
}

// SplitInfo contains information about a potential split
type SplitInfo struct {
	Feature     int
	Threshold   float64
	Gain        float64
	DefaultLeft bool
}

// Trainer grows trees on exact (pre-sorted) split points.
type Trainer struct {
	params TrainingParams

	X *mat.Dense
	y []float64

	gradients []float64
	hessians  []float64
	scores    []float64 // cached raw ensemble score per row

	trees     []Tree
	iteration int

	objective ObjectiveFunction
	initScore float64
}

// NewTrainer creates a new trainer
func NewTrainer(params TrainingParams) *Trainer {
	return &Trainer{params: params.withDefaults()}
}

// Fit trains the ensemble on X and 0/1 labels y.
func (t *Trainer) Fit(X mat.Matrix, y []float64) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("Trainer.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != rows {
		return errors.NewDimensionError("Trainer.Fit", rows, len(y), 0)
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return errors.NewValidationError("y", fmt.Sprintf("labels must be 0 or 1 (row %d)", i), v)
		}
	}

	t.X = mat.DenseCopyOf(X)
	t.y = y

	objFunc, err := CreateObjectiveFunction(t.params.Objective)
	if err != nil {
		return err
	}
	t.objective = objFunc
	t.initScore = t.objective.GetInitScore(y)

	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)
	t.scores = make([]float64, rows)
	for i := range t.scores {
		t.scores[i] = t.initScore
	}
	t.trees = nil

	logger := log.GetLoggerWithName("gbdt.trainer")
	for iter := 0; iter < t.params.NumIterations; iter++ {
		t.iteration = iter
		t.calculateGradients()

		tree := t.buildTree()
		t.trees = append(t.trees, tree)
		t.updatePredictions(&tree)

		if t.params.Verbosity > 0 && iter%10 == 0 {
			logger.Debug("Training progress",
				log.IterationKey, iter,
				log.LossKey, t.calculateLoss(),
				"tree_depth", tree.Depth(),
				"tree_leaves", tree.NumLeaves)
		}

		// A single-leaf tree with zero value means the gradients vanished.
		if len(tree.Nodes) == 1 && tree.Nodes[0].LeafValue == 0 {
			break
		}
	}
	return nil
}

func (t *Trainer) calculateGradients() {
	for i, target := range t.y {
		t.gradients[i] = t.objective.CalculateGradient(t.scores[i], target)
		t.hessians[i] = t.objective.CalculateHessian(t.scores[i], target)
	}
}

// updatePredictions adds the new tree's output to the cached scores.
func (t *Trainer) updatePredictions(tree *Tree) {
	rows, _ := t.X.Dims()
	for i := 0; i < rows; i++ {
		t.scores[i] += tree.Predict(t.X.RawRowView(i))
	}
}

func (t *Trainer) calculateLoss() float64 {
	loss := 0.0
	for i, target := range t.y {
		loss += t.objective.CalculateLoss(t.scores[i], target)
	}
	return loss / float64(len(t.y))
}

func (t *Trainer) buildTree() Tree {
	tree := Tree{
		TreeIndex:     t.iteration,
		ShrinkageRate: t.params.LearningRate,
	}
	rows, _ := t.X.Dims()
	root := make([]int, rows)
	for i := range root {
		root[i] = i
	}
	t.buildNode(&tree, root, -1, 0)
	for _, n := range tree.Nodes {
		if n.NodeType == LeafNode {
			tree.NumLeaves++
		}
	}
	return tree
}

// buildNode grows the subtree for indices depth-first and returns its node ID.
func (t *Trainer) buildNode(tree *Tree, indices []int, parentIdx, depth int) int {
	nodeIdx := len(tree.Nodes)

	// Splitting here adds one leaf; never exceed NumLeaves.
	leaves := t.countLeavesInTree(tree)
	if (t.params.MaxDepth > 0 && depth >= t.params.MaxDepth) ||
		len(indices) < 2*t.params.MinDataInLeaf ||
		leaves+1 >= t.params.NumLeaves {
		return t.appendLeaf(tree, indices, parentIdx)
	}

	best := t.findBestSplit(indices)
	if best.Gain <= t.params.MinGainToSplit {
		return t.appendLeaf(tree, indices, parentIdx)
	}

	tree.Nodes = append(tree.Nodes, Node{
		NodeID:       nodeIdx,
		ParentID:     parentIdx,
		NodeType:     NumericalNode,
		SplitFeature: best.Feature,
		Threshold:    best.Threshold,
		DefaultLeft:  best.DefaultLeft,
		Gain:         best.Gain,
		LeftChild:    -2, // placeholder until children are built
		RightChild:   -2,
	})

	left, right := t.splitData(indices, best)
	tree.Nodes[nodeIdx].LeftChild = t.buildNode(tree, left, nodeIdx, depth+1)
	tree.Nodes[nodeIdx].RightChild = t.buildNode(tree, right, nodeIdx, depth+1)
	return nodeIdx
}

func (t *Trainer) appendLeaf(tree *Tree, indices []int, parentIdx int) int {
	nodeIdx := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, Node{
		NodeID:     nodeIdx,
		ParentID:   parentIdx,
		NodeType:   LeafNode,
		LeafValue:  t.calculateLeafValue(indices),
		LeafCount:  len(indices),
		LeftChild:  -1,
		RightChild: -1,
	})
	return nodeIdx
}

// countLeavesInTree counts finished leaves plus internal nodes whose right
// child is still pending.
func (t *Trainer) countLeavesInTree(tree *Tree) int {
	count := 0
	for _, n := range tree.Nodes {
		if n.NodeType == LeafNode || n.RightChild == -2 {
			count++
		}
	}
	return count
}

func (t *Trainer) findBestSplit(indices []int) SplitInfo {
	_, cols := t.X.Dims()
	best := SplitInfo{Gain: -math.MaxFloat64}
	for j := 0; j < cols; j++ {
		if split := t.findBestSplitForFeature(indices, j); split.Gain > best.Gain {
			best = split
		}
	}
	return best
}

// findBestSplitForFeature scans sorted non-missing values of one feature.
// Missing rows are tried on both sides and the better side is kept as the
// default direction.
func (t *Trainer) findBestSplitForFeature(indices []int, feature int) SplitInfo {
	type entry struct {
		value float64
		idx   int
	}
	values := make([]entry, 0, len(indices))
	var missGrad, missHess float64
	missCount := 0
	totalGrad, totalHess := 0.0, 0.0
	for _, idx := range indices {
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]
		v := t.X.At(idx, feature)
		if math.IsNaN(v) {
			missGrad += t.gradients[idx]
			missHess += t.hessians[idx]
			missCount++
			continue
		}
		values = append(values, entry{v, idx})
	}
	sort.Slice(values, func(a, b int) bool { return values[a].value < values[b].value })

	best := SplitInfo{Feature: feature, Gain: -math.MaxFloat64}
	leftGrad, leftHess := 0.0, 0.0
	for i := 0; i < len(values)-1; i++ {
		leftGrad += t.gradients[values[i].idx]
		leftHess += t.hessians[values[i].idx]
		if values[i].value == values[i+1].value {
			continue
		}
		threshold := (values[i].value + values[i+1].value) / 2
		leftCount := i + 1

		for _, missLeft := range []bool{false, true} {
			lg, lh, lc := leftGrad, leftHess, leftCount
			if missLeft {
				lg += missGrad
				lh += missHess
				lc += missCount
			}
			rc := len(indices) - lc
			if lc < t.params.MinDataInLeaf || rc < t.params.MinDataInLeaf {
				continue
			}
			gain := t.calculateSplitGain(lg, lh, totalGrad-lg, totalHess-lh, totalGrad, totalHess)
			if gain > best.Gain {
				best.Gain = gain
				best.Threshold = threshold
				best.DefaultLeft = missLeft
			}
			if missCount == 0 {
				break
			}
		}
	}
	return best
}

func (t *Trainer) calculateSplitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := t.params.Lambda
	leftScore := (leftGrad * leftGrad) / (leftHess + lambda)
	rightScore := (rightGrad * rightGrad) / (rightHess + lambda)
	totalScore := (totalGrad * totalGrad) / (totalHess + lambda)
	return 0.5 * (leftScore + rightScore - totalScore)
}

func (t *Trainer) splitData(indices []int, split SplitInfo) (left, right []int) {
	for _, idx := range indices {
		v := t.X.At(idx, split.Feature)
		if (math.IsNaN(v) && split.DefaultLeft) || v <= split.Threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

// calculateLeafValue returns the Newton step -G/(H+lambda).
func (t *Trainer) calculateLeafValue(indices []int) float64 {
	sumGrad, sumHess := 0.0, 0.0
	for _, idx := range indices {
		sumGrad += t.gradients[idx]
		sumHess += t.hessians[idx]
	}
	const epsilon = 1e-10
	return -sumGrad / (sumHess + t.params.Lambda + epsilon)
}

// Trees returns the fitted trees.
func (t *Trainer) Trees() []Tree { return t.trees }

// InitScore returns the raw score every prediction starts from.
func (t *Trainer) InitScore() float64 { return t.initScore }

// Params returns the effective parameters, defaults included.
func (t *Trainer) Params() TrainingParams { return t.params }
