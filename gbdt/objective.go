package gbdt

import (
	"math"

	"github.com/YuminosukeSato/leadconv/pkg/errors"
)

// ObjectiveFunction supplies per-sample derivatives of a loss with respect to
// the raw (pre-link) score.
type ObjectiveFunction interface {
	// CalculateGradient calculates the gradient for a single sample
	CalculateGradient(prediction, target float64) float64

	// CalculateHessian calculates the hessian for a single sample
	CalculateHessian(prediction, target float64) float64

	// CalculateLoss calculates the loss for a single sample
	CalculateLoss(prediction, target float64) float64

	// GetInitScore returns the initial score for this objective
	GetInitScore(targets []float64) float64

	// Name returns the name of the objective
	Name() string
}

// BinaryLogLoss is the logistic loss on 0/1 targets.
type BinaryLogLoss struct{}

// NewBinaryLogLoss returns the binary log-loss objective.
func NewBinaryLogLoss() *BinaryLogLoss {
	return &BinaryLogLoss{}
}

func (o *BinaryLogLoss) CalculateGradient(prediction, target float64) float64 {
	return Sigmoid(prediction) - target
}

func (o *BinaryLogLoss) CalculateHessian(prediction, target float64) float64 {
	p := Sigmoid(prediction)
	return math.Max(p*(1-p), 1e-16)
}

func (o *BinaryLogLoss) CalculateLoss(prediction, target float64) float64 {
	p := clip(Sigmoid(prediction))
	return -(target*math.Log(p) + (1-target)*math.Log(1-p))
}

// GetInitScore returns log(p/(1-p)) of the positive rate.
func (o *BinaryLogLoss) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range targets {
		sum += t
	}
	p := clip(sum / float64(len(targets)))
	return math.Log(p / (1 - p))
}

func (o *BinaryLogLoss) Name() string { return "binary" }

// CreateObjectiveFunction resolves an objective by name. Only the binary
// objective is supported.
func CreateObjectiveFunction(name string) (ObjectiveFunction, error) {
	switch name {
	case "", "binary", "binary_logloss", "logistic":
		return NewBinaryLogLoss(), nil
	default:
		return nil, errors.NewValidationError("objective", "unsupported objective", name)
	}
}

// Sigmoid maps a raw score to a probability.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clip(p float64) float64 {
	const eps = 1e-15
	return math.Min(math.Max(p, eps), 1-eps)
}
