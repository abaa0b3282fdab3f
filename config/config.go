// Package config loads pipeline settings from an optional YAML file and the
// environment.
//
// Precedence, lowest first: Default, the YAML file, LEADCONV_* environment
// variables. Command-line flags are applied by the caller afterwards.
package config

import (
	"os"
	"strings"

	"github.com/YuminosukeSato/leadconv/gbdt"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/storage"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "LEADCONV"

// DefaultFile is read when Load is given no path and LEADCONV_CONFIG is unset.
const DefaultFile = "leadconv.yaml"

// Config holds all pipeline settings.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Training TrainingConfig `yaml:"training" envconfig:"TRAINING"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig locates inputs and artifacts.
type PathsConfig struct {
	RawData       string `yaml:"raw_data" envconfig:"RAW_DATA" validate:"required"`
	ProcessedDir  string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	ModelsDir     string `yaml:"models_dir" envconfig:"MODELS_DIR" validate:"required"`
	ProcessedName string `yaml:"processed_name" envconfig:"PROCESSED_NAME" validate:"required"`
	ModelName     string `yaml:"model_name" envconfig:"MODEL_NAME" validate:"required"`
	TestFeatures  string `yaml:"test_features" envconfig:"TEST_FEATURES" validate:"required"`
	TestLabels    string `yaml:"test_labels" envconfig:"TEST_LABELS" validate:"required"`
	PlotDir       string `yaml:"plot_dir" envconfig:"PLOT_DIR"`
}

// TrainingConfig controls preprocessing, the split and the booster.
type TrainingConfig struct {
	Target       string  `yaml:"target" envconfig:"TARGET" validate:"required"`
	TestFraction float64 `yaml:"test_fraction" envconfig:"TEST_FRACTION" validate:"gt=0,lt=1"`
	Seed         int64   `yaml:"seed" envconfig:"SEED"`
	// Impute maps column names to "mean", "median" or "mode". Columns not
	// listed use the default for their kind.
	Impute map[string]string `yaml:"impute" envconfig:"IMPUTE"`
	// Drop lists columns removed before encoding (identifiers and the like).
	Drop        []string            `yaml:"drop" envconfig:"DROP"`
	PredictRows int                 `yaml:"predict_rows" envconfig:"PREDICT_ROWS" validate:"gte=1"`
	Params      gbdt.TrainingParams `yaml:"params" envconfig:"PARAMS"`
}

// LoggingConfig configures pkg/log.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json console"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Paths: PathsConfig{
			RawData:       "data/raw/leads.csv",
			ProcessedDir:  storage.DefaultProcessedDir,
			ModelsDir:     storage.DefaultModelsDir,
			ProcessedName: "leads_processed.csv",
			ModelName:     "lead_model_gbdt.gob",
			TestFeatures:  "X_test.csv",
			TestLabels:    "y_test.csv",
		},
		Training: TrainingConfig{
			Target:       "converted",
			TestFraction: 0.2,
			Seed:         42,
			PredictRows:  5,
			Params: gbdt.TrainingParams{
				NumIterations: 100,
				LearningRate:  0.1,
				NumLeaves:     31,
				MinDataInLeaf: 20,
				Objective:     "binary",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load は設定を読み込んで検証する
//
// path が空の場合は LEADCONV_CONFIG、次に DefaultFile を探す。暗黙の
// 設定ファイルが存在しないのはエラーではないが、明示的に指定された
// ファイルが存在しない場合はエラーになる。
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPrefix + "_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err == nil || explicit {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Unset variables leave the file and default values untouched.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "config: load from environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "config: parse %s", path)
	}
	return nil
}

// Validate checks field constraints. The first failing field is reported as
// a ValidationError.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fieldPath(fe.Namespace()), "failed "+fe.Tag()+" constraint", fe.Value())
		}
		return errors.Wrap(err, "config: validate")
	}
	return nil
}

// fieldPath drops the root struct name: "Config.Paths.RawData" -> "Paths.RawData".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Storage returns the storage roots.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		ModelsDir:    c.Paths.ModelsDir,
		ProcessedDir: c.Paths.ProcessedDir,
	}
}
