package main

import (
	"github.com/YuminosukeSato/leadconv/config"
	"github.com/YuminosukeSato/leadconv/pipeline"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	rawData    string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "leadconv",
		Short: "Lead conversion prediction pipeline",
		Long: `leadconv turns raw lead exports into a gradient-boosted conversion model.

Settings come from an optional YAML file (--config, LEADCONV_CONFIG or
./leadconv.yaml) and LEADCONV_* environment variables; flags win over both.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: json or console")
	flags.StringVar(&a.rawData, "raw", "", "raw data file (.csv or .xlsx)")

	root.AddCommand(
		newDescribeCmd(a),
		newPrepareCmd(a),
		newTrainCmd(a),
		newPredictCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if a.rawData != "" {
		cfg.Paths.RawData = a.rawData
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// run executes fn with panic recovery so a crash in any stage is reported
// like an ordinary error.
func (a *app) run(stage string, fn func(p *pipeline.Pipeline) error) error {
	p := pipeline.New(*a.cfg)
	logger := log.GetLoggerWithName("cli").With(log.RunIDKey, p.RunID())
	logger.Info("Starting "+stage, log.PathKey, a.cfg.Paths.RawData)

	if err := errors.SafeExecute(stage, func() error { return fn(p) }); err != nil {
		return err
	}
	logger.Info("Finished " + stage)
	return nil
}
