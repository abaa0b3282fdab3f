// Package leadconv is a small lead-conversion prediction pipeline.
//
// It loads tabular lead exports (CSV or XLSX), summarizes numeric columns,
// imputes missing values, one-hot encodes categorical columns, trains a
// binary gradient-boosted decision tree and runs inference against a fixed
// test split.
//
// # Installation
//
//	go install github.com/YuminosukeSato/leadconv/cmd/leadconv@latest
//
// # Quick Start
//
//	leadconv describe --raw data/raw/leads.csv --plot-dir reports/figures
//	leadconv prepare  --raw data/raw/leads.csv
//	leadconv train
//	leadconv predict -n 5
//
// Settings are read from leadconv.yaml (or --config / LEADCONV_CONFIG) and
// LEADCONV_* environment variables, e.g. LEADCONV_TRAINING_TARGET=converted
// or LEADCONV_PATHS_MODELS_DIR=/srv/models.
//
// The building blocks can be used directly:
//
//	col := frame.Floats("lead_time", 1, 2, math.NaN())
//	filled, err := preprocessing.Impute(col, preprocessing.Mean) // [1 2 1.5]
//
//	t := frame.MustTable(frame.Strings("origin", "A", "B", "A"))
//	encoded, err := preprocessing.CreateDummies(t, "origin") // origin_B = [0 1 0]
//
//	store := storage.New(storage.Config{ModelsDir: "models"})
//	path, err := store.SaveModel(clf, "lead_model_gbdt.gob")
//
// # Packages
//
//   - core/frame: numeric and categorical columns with missing masks, tables
//   - core/model: estimator state, classifier interface, gob encoding
//   - dataset: loading, Describe, train/test split, histograms, CSV writing
//   - preprocessing: Impute and CreateDummies
//   - storage: model and processed-data persistence
//   - gbdt: binary gradient boosting classifier
//   - metrics: accuracy, log loss, ROC AUC
//   - config: YAML + environment configuration
//   - pipeline: prepare, train and predict stages
//   - pkg/errors, pkg/log: error types and structured logging
//
// # License
//
// leadconv is released under the MIT License.
package leadconv
