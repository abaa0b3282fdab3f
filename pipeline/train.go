package pipeline

import (
	"time"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/dataset"
	"github.com/YuminosukeSato/leadconv/gbdt"
	"github.com/YuminosukeSato/leadconv/metrics"
	"github.com/YuminosukeSato/leadconv/pkg/log"
)

// TrainResult describes a finished training run.
type TrainResult struct {
	Model     *gbdt.Classifier
	Report    metrics.Report
	ModelPath string
	TrainRows int
	TestRows  int
}

// Train fits the classifier on the processed table and stores the model
// together with the held-out test split.
//
// The test labels are written as floating point (0.0 / 1.0) so the file
// reads the same as one produced by other tooling.
func (p *Pipeline) Train() (*TrainResult, error) {
	logger := p.logger.With(log.PhaseKey, log.PhaseTraining)
	tc := p.cfg.Training

	t, err := p.store.LoadData(p.cfg.Paths.ProcessedName)
	if err != nil {
		return nil, err
	}
	split, err := dataset.TrainTestSplit(t, tc.Target, tc.TestFraction, tc.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info("Split data",
		log.SamplesKey, t.Nrow(),
		"train_rows", split.XTrain.Nrow(),
		"test_rows", split.XTest.Nrow(),
		log.RandomSeedKey, tc.Seed,
	)

	clf := gbdt.NewClassifier(tc.Params)
	start := time.Now()
	if err := clf.FitTable(split.XTrain, split.YTrain.At(0)); err != nil {
		return nil, err
	}
	logger.Info("Training finished",
		log.OperationKey, log.OperationFit,
		log.LearningRateKey, clf.Params.LearningRate,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	pred, err := clf.PredictTable(split.XTest)
	if err != nil {
		return nil, err
	}
	proba, err := clf.PredictProbaTable(split.XTest)
	if err != nil {
		return nil, err
	}
	report, err := metrics.Evaluate(split.YTest.At(0).Floats(), pred, proba)
	if err != nil {
		return nil, err
	}
	logger.Info("Test metrics",
		log.AccuracyKey, report.Accuracy,
		"metrics.error_rate", report.ErrorRate,
		log.LossKey, report.LogLoss,
		log.AUCKey, report.AUC,
	)

	modelPath, err := p.store.SaveModel(clf, p.cfg.Paths.ModelName)
	if err != nil {
		return nil, err
	}
	if _, err := p.store.SaveData(split.XTest, p.cfg.Paths.TestFeatures); err != nil {
		return nil, err
	}
	if _, err := p.store.SaveData(floatLabels(split.YTest.At(0)), p.cfg.Paths.TestLabels); err != nil {
		return nil, err
	}

	return &TrainResult{
		Model:     clf,
		Report:    report,
		ModelPath: modelPath,
		TrainRows: split.XTrain.Nrow(),
		TestRows:  split.XTest.Nrow(),
	}, nil
}

// floatLabels renders a label column with one decimal place ("1.0").
// Reading the file back infers a numeric column again.
func floatLabels(y frame.Column) frame.Table {
	out := make([]string, y.Len())
	for i := range out {
		out[i] = formatLabel(y.Float(i))
	}
	return frame.MustTable(frame.Strings(y.Name(), out...))
}
