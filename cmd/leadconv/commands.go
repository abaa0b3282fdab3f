package main

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/leadconv/dataset"
	"github.com/YuminosukeSato/leadconv/pipeline"
	"github.com/spf13/cobra"
)

func newDescribeCmd(a *app) *cobra.Command {
	var plotDir string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print summary statistics of the numeric raw columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if plotDir == "" {
				plotDir = a.cfg.Paths.PlotDir
			}
			return a.run("describe", func(p *pipeline.Pipeline) error {
				summaries, err := p.Describe(plotDir)
				if err != nil {
					return err
				}
				printSummaries(cmd, summaries)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&plotDir, "plot-dir", "", "write one histogram per numeric column into this directory")
	return cmd
}

func printSummaries(cmd *cobra.Command, summaries []dataset.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s", "column")
	for _, k := range dataset.SummaryKeys {
		fmt.Fprintf(out, " %12s", k)
	}
	fmt.Fprintln(out)
	for _, s := range summaries {
		fmt.Fprintf(out, "%-20s", s.Column)
		m := s.Map()
		for _, k := range dataset.SummaryKeys {
			fmt.Fprintf(out, " %12.4g", m[k])
		}
		fmt.Fprintln(out)
	}
}

func newPrepareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Impute, encode and save the raw data for training",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run("prepare", func(p *pipeline.Pipeline) error {
				t, path, err := p.Prepare()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows x %d columns to %s\n", t.Nrow(), t.Ncol(), path)
				return nil
			})
		},
	}
}

func newTrainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the classifier and save it with the test split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run("train", func(p *pipeline.Pipeline) error {
				res, err := p.Train()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "accuracy=%.4f logloss=%.4f auc=%.4f model=%s\n",
					res.Report.Accuracy, res.Report.LogLoss, res.Report.AUC, res.ModelPath)
				return nil
			})
		},
	}
}

func newPredictCmd(a *app) *cobra.Command {
	var (
		opts            pipeline.PredictOptions
		wantPredictions string
		wantLabels      string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the first rows of the test split with the saved model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run("predict", func(p *pipeline.Pipeline) error {
				res, err := p.Predict(opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, res.RenderPredictions())
				fmt.Fprintln(out, res.RenderLabels())
				return res.Check(wantPredictions, unescape(wantLabels))
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.ModelPath, "model", "", "model file (default: <models_dir>/<model_name>)")
	f.StringVar(&opts.FeaturesPath, "features", "", "test features CSV (default: <processed_dir>/X_test.csv)")
	f.StringVar(&opts.LabelsPath, "labels", "", "test labels CSV (default: <processed_dir>/y_test.csv)")
	f.IntVarP(&opts.Rows, "rows", "n", 0, "number of leading rows to predict (default from config)")
	f.StringVar(&wantPredictions, "expect-predictions", "", `fail unless predictions render exactly like this, e.g. "[0 1 0 1 0]"`)
	f.StringVar(&wantLabels, "expect-labels", "", `fail unless labels render exactly like this; "\n" separates lines`)
	return cmd
}

// unescape turns a literal "\n" typed on the command line into a newline.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
