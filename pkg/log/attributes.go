// Package log defines standard attribute keys for pipeline operations.
//
// Using these keys across every stage keeps the logs of a single run
// filterable by stage, column, and artifact path.

package log

// Operation context.
const (
	// ComponentKey identifies the package emitting the record.
	// Examples: "dataset", "preprocessing", "storage", "gbdt"
	ComponentKey = "ml.component"

	// OperationKey names the operation being performed.
	OperationKey = "ml.operation"

	// PhaseKey indicates the pipeline stage.
	PhaseKey = "ml.phase"

	// RunIDKey carries the identifier shared by every record of one CLI run.
	RunIDKey = "run.id"

	// ModelNameKey identifies the model type, e.g. "gbdt.Classifier".
	ModelNameKey = "model.name"
)

// Data shape and columns.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// ColumnKey names the column an operation applies to.
	ColumnKey = "data.column"

	// DataTypeKey is the column kind: "numeric" or "categorical".
	DataTypeKey = "data.type"

	// MissingKey is the number of missing entries in a column.
	MissingKey = "data.missing"

	// MethodKey is the imputation method applied to a column.
	MethodKey = "data.impute_method"
)

// Storage.
const (
	// PathKey is the filesystem path of an artifact or dataset.
	PathKey = "storage.path"

	// ArtifactKey is the logical name of a stored artifact.
	ArtifactKey = "storage.artifact"
)

// Metrics and training.
const (
	DurationMsKey   = "perf.duration_ms"
	AccuracyKey     = "metrics.accuracy"
	LossKey         = "metrics.loss"
	AUCKey          = "metrics.auc"
	IterationKey    = "training.iteration"
	LearningRateKey = "hyperparams.learning_rate"
	RandomSeedKey   = "config.random_seed"
)

// Standard attribute values.
const (
	OperationDescribe = "describe"
	OperationImpute   = "impute"
	OperationEncode   = "encode"
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationSave     = "save"
	OperationLoad     = "load"

	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseInference     = "inference"
)
