package pipeline

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/gbdt"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"github.com/YuminosukeSato/leadconv/storage"
)

// ErrOutputMismatch is returned by PredictResult.Check when the rendered
// output differs from the expected text.
var ErrOutputMismatch = errors.New("output mismatch")

// PredictOptions selects the inference inputs. Empty paths fall back to the
// configured artifact names under the store roots.
type PredictOptions struct {
	ModelPath    string
	FeaturesPath string
	LabelsPath   string
	// Rows is the number of leading rows to predict; 0 uses the configured
	// Training.PredictRows.
	Rows int
}

// PredictResult holds predictions for the first rows of the test split.
type PredictResult struct {
	Predictions []int
	Labels      frame.Column
}

// Predict は保存済みモデルでテスト分割の先頭行を推論する
//
// ModelPath 等が指定された場合はそのファイルを直接読み込み、指定が
// なければ Store の既定のパスを使う。
func (p *Pipeline) Predict(opts PredictOptions) (*PredictResult, error) {
	logger := p.logger.With(log.PhaseKey, log.PhaseInference)
	rows := opts.Rows
	if rows <= 0 {
		rows = p.cfg.Training.PredictRows
	}

	var clf gbdt.Classifier
	modelStore, modelName := p.locate(opts.ModelPath, p.cfg.Paths.ModelName, false)
	if err := modelStore.LoadModel(modelName, &clf); err != nil {
		return nil, err
	}

	featStore, featName := p.locate(opts.FeaturesPath, p.cfg.Paths.TestFeatures, true)
	X, err := featStore.LoadData(featName)
	if err != nil {
		return nil, err
	}
	labelStore, labelName := p.locate(opts.LabelsPath, p.cfg.Paths.TestLabels, true)
	y, err := labelStore.LoadData(labelName)
	if err != nil {
		return nil, err
	}
	if y.Ncol() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "pipeline: label file has no columns")
	}
	logger.Info("Loaded test data", log.SamplesKey, X.Nrow())

	pred, err := clf.PredictTable(X.Head(rows))
	if err != nil {
		return nil, err
	}
	logger.Info("Inference complete",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, len(pred),
	)
	return &PredictResult{
		Predictions: pred,
		Labels:      y.Head(rows).At(0),
	}, nil
}

// locate returns a store and name for an explicit path, or the pipeline's
// store and the default name when path is empty.
func (p *Pipeline) locate(path, name string, data bool) (*storage.Store, string) {
	if path == "" {
		return p.store, name
	}
	dir := filepath.Dir(path)
	cfg := storage.Config{ModelsDir: dir}
	if data {
		cfg = storage.Config{ProcessedDir: dir}
	}
	return storage.New(cfg, storage.WithLogger(p.logger)), filepath.Base(path)
}

// RenderPredictions formats labels the way a NumPy integer array prints:
// "[0 1 0 1 0]".
func (r *PredictResult) RenderPredictions() string {
	parts := make([]string, len(r.Predictions))
	for i, v := range r.Predictions {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// RenderLabels prints one "<row>  <label>" line per row, row numbers left
// aligned and labels right aligned, e.g. "0  0.0".
func (r *PredictResult) RenderLabels() string {
	n := r.Labels.Len()
	idx := make([]string, n)
	vals := make([]string, n)
	idxWidth, valWidth := 0, 0
	for i := 0; i < n; i++ {
		idx[i] = strconv.Itoa(i)
		vals[i] = labelText(r.Labels, i)
		idxWidth = max(idxWidth, len(idx[i]))
		valWidth = max(valWidth, len(vals[i]))
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(idx[i])
		b.WriteString(strings.Repeat(" ", idxWidth-len(idx[i])+2+valWidth-len(vals[i])))
		b.WriteString(vals[i])
	}
	return b.String()
}

// Check compares the rendered output with the expected text, ignoring
// surrounding whitespace. An empty expectation is not checked.
func (r *PredictResult) Check(wantPredictions, wantLabels string) error {
	if wantPredictions != "" {
		if got := r.RenderPredictions(); strings.TrimSpace(got) != strings.TrimSpace(wantPredictions) {
			return errors.Wrapf(ErrOutputMismatch, "predictions: expected %q, got %q", wantPredictions, got)
		}
	}
	if wantLabels != "" {
		if got := r.RenderLabels(); strings.TrimSpace(got) != strings.TrimSpace(wantLabels) {
			return errors.Wrapf(ErrOutputMismatch, "labels: expected %q, got %q", wantLabels, got)
		}
	}
	return nil
}

func labelText(c frame.Column, i int) string {
	switch {
	case c.IsMissing(i):
		return "NaN"
	case c.Kind() == frame.Numeric:
		return formatLabel(c.Float(i))
	default:
		return c.Text(i)
	}
}

// formatLabel keeps one decimal place for integral values: 1 -> "1.0".
func formatLabel(v float64) string {
	s := frame.FormatFloat(v)
	if !strings.ContainsAny(s, ".eENI") {
		s += ".0"
	}
	return s
}
