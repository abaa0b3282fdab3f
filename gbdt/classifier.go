// Package gbdt implements a binary gradient-boosted decision tree classifier
// trained with the logistic loss.
//
// Trees are grown depth-first on exact split points with LightGBM's gain
// formula. Missing feature values (NaN) are routed to whichever side gave the
// larger gain during training. Every field of Classifier is exported so a
// fitted model can be stored with encoding/gob.
package gbdt

import (
	"strconv"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/core/model"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Classifier は二値分類用の勾配ブースティング決定木
type Classifier struct {
	model.BaseEstimator

	Params    TrainingParams
	Trees     []Tree
	InitScore float64
	Features  []string
	// Threshold は Predict が陽性と判定する確率の下限 (デフォルト 0.5)
	Threshold float64
}

var _ model.BinaryClassifier = (*Classifier)(nil)

// NewClassifier は新しい Classifier を作成する
//
// 使用例:
//
//	clf := gbdt.NewClassifier(gbdt.TrainingParams{NumIterations: 200, MaxDepth: 4})
//	err := clf.FitTable(XTrain, yTrain)
//	labels, err := clf.PredictTable(XTest)
func NewClassifier(params TrainingParams) *Classifier {
	return &Classifier{Params: params.withDefaults(), Threshold: 0.5}
}

// Fit trains on X and 0/1 labels y. Feature names default to f0, f1, ...
func (c *Classifier) Fit(X mat.Matrix, y []float64) error {
	_, cols := X.Dims()
	if len(c.Features) != cols {
		c.Features = make([]string, cols)
		for j := range c.Features {
			c.Features[j] = "f" + strconv.Itoa(j)
		}
	}

	trainer := NewTrainer(c.Params)
	if err := trainer.Fit(X, y); err != nil {
		return err
	}
	c.Params = trainer.Params()
	c.Trees = trainer.Trees()
	c.InitScore = trainer.InitScore()
	if c.Threshold == 0 {
		c.Threshold = 0.5
	}
	c.SetFitted()

	rows, _ := X.Dims()
	log.GetLoggerWithName("gbdt.classifier").Info("Model fitted",
		log.OperationKey, log.OperationFit,
		log.ModelNameKey, "gbdt.Classifier",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"trees", len(c.Trees),
	)
	return nil
}

// FitTable trains on an all-numeric feature table and a numeric 0/1 label
// column, remembering the feature column names.
func (c *Classifier) FitTable(X frame.Table, y frame.Column) error {
	m, err := X.Matrix()
	if err != nil {
		return err
	}
	if y.Kind() != frame.Numeric {
		return errors.NewTypeMismatchError("FitTable", y.Name(), frame.Numeric.String(), y.Kind().String())
	}
	if y.MissingCount() > 0 {
		return errors.NewValidationError("y", "labels must not be missing", y.Name())
	}
	c.Features = X.Names()
	return c.Fit(m, y.Floats())
}

// FeatureNames returns the feature columns seen during fitting.
func (c *Classifier) FeatureNames() []string {
	out := make([]string, len(c.Features))
	copy(out, c.Features)
	return out
}

// DecisionFunction returns the raw (log-odds) score for every row of X.
func (c *Classifier) DecisionFunction(X mat.Matrix) ([]float64, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("gbdt.Classifier", "DecisionFunction")
	}
	rows, cols := X.Dims()
	if cols != len(c.Features) {
		return nil, errors.NewDimensionError("DecisionFunction", len(c.Features), cols, 1)
	}

	out := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		score := c.InitScore
		for k := range c.Trees {
			score += c.Trees[k].Predict(row)
		}
		out[i] = score
	}
	return out, nil
}

// PredictProba returns P(y=1) for every row of X.
func (c *Classifier) PredictProba(X mat.Matrix) ([]float64, error) {
	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	for i, s := range scores {
		scores[i] = Sigmoid(s)
	}
	return scores, nil
}

// Predict returns 1 where PredictProba reaches Threshold, 0 elsewhere.
func (c *Classifier) Predict(X mat.Matrix) ([]int, error) {
	proba, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(proba))
	for i, p := range proba {
		if p >= c.Threshold {
			labels[i] = 1
		}
	}
	return labels, nil
}

// PredictTable selects the fitted feature columns from X by name and
// predicts. Extra columns are ignored; a missing one is an error.
func (c *Classifier) PredictTable(X frame.Table) ([]int, error) {
	m, err := c.alignedMatrix(X)
	if err != nil {
		return nil, err
	}
	return c.Predict(m)
}

// PredictProbaTable is PredictTable for probabilities.
func (c *Classifier) PredictProbaTable(X frame.Table) ([]float64, error) {
	m, err := c.alignedMatrix(X)
	if err != nil {
		return nil, err
	}
	return c.PredictProba(m)
}

func (c *Classifier) alignedMatrix(X frame.Table) (*mat.Dense, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("gbdt.Classifier", "Predict")
	}
	selected, err := X.Select(c.Features...)
	if err != nil {
		return nil, err
	}
	return selected.Matrix()
}
