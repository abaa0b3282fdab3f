package pipeline

import (
	"path/filepath"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/dataset"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"github.com/YuminosukeSato/leadconv/preprocessing"
)

// Describe loads the raw file, logs a summary of every numeric column and,
// when plotDir is non-empty, writes one histogram per column into it.
func (p *Pipeline) Describe(plotDir string) ([]dataset.Summary, error) {
	raw, err := p.loadRaw()
	if err != nil {
		return nil, err
	}
	summaries, err := p.describe(raw)
	if err != nil {
		return nil, err
	}
	if plotDir == "" {
		return summaries, nil
	}
	for _, s := range summaries {
		col, _ := raw.Col(s.Column)
		path := filepath.Join(plotDir, s.Column+".png")
		if err := dataset.SaveHistogram(col, path, dataset.DefaultBins); err != nil {
			return nil, err
		}
		p.logger.Info("Histogram saved", log.ColumnKey, s.Column, log.PathKey, path)
	}
	return summaries, nil
}

// Prepare は生データを学習用のテーブルに変換して保存する
//
// 処理の流れ:
//  1. Paths.RawData を読み込み、Training.Drop の列を除く
//  2. 数値列の要約統計をログに出力する
//  3. 欠損のある特徴量列を補完する (Training.Impute、なければ DefaultMethod)
//  4. ターゲット以外のカテゴリ列をダミー変数に変換する
//  5. Paths.ProcessedName として保存する
//
// ターゲット列は数値で欠損がないことが必要。
func (p *Pipeline) Prepare() (frame.Table, string, error) {
	logger := p.logger.With(log.PhaseKey, log.PhasePreprocessing)

	t, err := p.loadRaw()
	if err != nil {
		return frame.Table{}, "", err
	}
	for _, name := range p.cfg.Training.Drop {
		if t, err = t.Drop(name); err != nil {
			return frame.Table{}, "", err
		}
	}
	if err := checkTarget(t, p.cfg.Training.Target); err != nil {
		return frame.Table{}, "", err
	}
	if _, err := p.describe(t); err != nil {
		return frame.Table{}, "", err
	}

	plan, err := p.imputePlan(t)
	if err != nil {
		return frame.Table{}, "", err
	}
	if t, err = preprocessing.ImputeTable(t, plan); err != nil {
		return frame.Table{}, "", err
	}

	categorical := preprocessing.CategoricalNames(t, p.cfg.Training.Target)
	if t, err = preprocessing.CreateDummiesAll(t, categorical...); err != nil {
		return frame.Table{}, "", err
	}
	logger.Info("Encoded categorical columns",
		log.OperationKey, log.OperationEncode,
		"columns", categorical,
		log.FeaturesKey, t.Ncol()-1,
	)

	path, err := p.store.SaveData(t, p.cfg.Paths.ProcessedName)
	if err != nil {
		return frame.Table{}, "", err
	}
	logger.Info("Prepared data",
		log.SamplesKey, t.Nrow(),
		log.PathKey, path,
	)
	return t, path, nil
}

func (p *Pipeline) loadRaw() (frame.Table, error) {
	t, err := dataset.Load(p.cfg.Paths.RawData)
	if err != nil {
		return frame.Table{}, err
	}
	p.logger.Info("Loaded raw data",
		log.OperationKey, log.OperationLoad,
		log.PathKey, p.cfg.Paths.RawData,
		log.SamplesKey, t.Nrow(),
		log.FeaturesKey, t.Ncol(),
	)
	return t, nil
}

func (p *Pipeline) describe(t frame.Table) ([]dataset.Summary, error) {
	summaries, err := dataset.DescribeTable(t)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		fields := append([]any{log.OperationKey, log.OperationDescribe, log.ColumnKey, s.Column}, s.Fields()...)
		p.logger.Info("Numeric summary", fields...)
	}
	return summaries, nil
}

// imputePlan covers every feature column with missing values. Configured
// methods win over the per-kind default.
func (p *Pipeline) imputePlan(t frame.Table) (map[string]preprocessing.Method, error) {
	plan := make(map[string]preprocessing.Method)
	for name, text := range p.cfg.Training.Impute {
		m, err := preprocessing.ParseMethod(text)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline: impute method for %s", name)
		}
		plan[name] = m
	}
	for _, c := range t.Columns() {
		if c.Name() == p.cfg.Training.Target || c.MissingCount() == 0 {
			continue
		}
		if _, ok := plan[c.Name()]; !ok {
			plan[c.Name()] = preprocessing.DefaultMethod(c.Kind())
		}
	}
	return plan, nil
}

func checkTarget(t frame.Table, target string) error {
	col, ok := t.Col(target)
	if !ok {
		return errors.NewColumnNotFoundError("Prepare", target)
	}
	if col.Kind() != frame.Numeric {
		return errors.NewTypeMismatchError("Prepare", target, frame.Numeric.String(), col.Kind().String())
	}
	if n := col.MissingCount(); n > 0 {
		return errors.NewValidationError(target, "target must not have missing values", n)
	}
	return nil
}
