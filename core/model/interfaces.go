package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is a model that learns from a feature matrix and 0/1 labels.
type Estimator interface {
	// Fit trains the model. X is n_samples × n_features, y has n_samples entries.
	Fit(X mat.Matrix, y []float64) error

	// IsFitted reports whether Fit has completed.
	IsFitted() bool
}

// BinaryClassifier is what the pipeline trains, stores and predicts with.
type BinaryClassifier interface {
	Estimator

	// PredictProba returns P(y=1) for every row of X.
	PredictProba(X mat.Matrix) ([]float64, error)

	// Predict returns the predicted 0/1 class for every row of X.
	Predict(X mat.Matrix) ([]int, error)

	// FeatureNames returns the column names seen during Fit, in order.
	FeatureNames() []string
}
