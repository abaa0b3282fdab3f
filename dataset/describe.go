// Package dataset loads raw lead tables and summarizes their numeric columns.
package dataset

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary は数値列の記述統計
//
// Count は非欠損値の数で、他の統計量はすべて非欠損値のみから計算される。
type Summary struct {
	Column  string
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Q1      float64
	Median  float64
	Q3      float64
	Max     float64
}

// SummaryKeys は Map のキーを表示順に並べたもの
var SummaryKeys = []string{"Count", "Missing", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"}

// Map renders the summary keyed by SummaryKeys.
func (s Summary) Map() map[string]float64 {
	return map[string]float64{
		"Count":   float64(s.Count),
		"Missing": float64(s.Missing),
		"Mean":    s.Mean,
		"Std":     s.Std,
		"Min":     s.Min,
		"25%":     s.Q1,
		"50%":     s.Median,
		"75%":     s.Q3,
		"Max":     s.Max,
	}
}

// Fields returns the summary as alternating key/value pairs for structured
// logging.
func (s Summary) Fields() []any {
	m := s.Map()
	out := make([]any, 0, 2*len(SummaryKeys))
	for _, k := range SummaryKeys {
		out = append(out, k, m[k])
	}
	return out
}

// Describe は数値列の記述統計を計算する
//
// パラメータ:
//   - col: 数値列
//
// 戻り値:
//   - Summary: 非欠損値の件数・平均・標準偏差 (n-1)・最小・四分位・最大
//   - error: カテゴリ列なら TypeMismatchError、非欠損値がなければ EmptyColumnError
//
// 四分位は最も近い2つの順位の線形補間で求める。
func Describe(col frame.Column) (Summary, error) {
	if col.Kind() != frame.Numeric {
		return Summary{}, errors.NewTypeMismatchError("Describe", col.Name(), frame.Numeric.String(), col.Kind().String())
	}
	values := col.Present()
	if len(values) == 0 {
		return Summary{}, errors.NewEmptyColumnError("Describe", col.Name())
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		Column:  col.Name(),
		Count:   len(values),
		Missing: col.MissingCount(),
		Mean:    stat.Mean(values, nil),
		Min:     floats.Min(values),
		Max:     floats.Max(values),
		Q1:      quantile(sorted, 0.25),
		Median:  quantile(sorted, 0.5),
		Q3:      quantile(sorted, 0.75),
	}
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	return s, nil
}

// DescribeTable describes every numeric column of t in column order.
// Columns without any value are skipped.
func DescribeTable(t frame.Table) ([]Summary, error) {
	var out []Summary
	for _, c := range t.Columns() {
		if c.Kind() != frame.Numeric {
			continue
		}
		s, err := Describe(c)
		if err != nil {
			var empty *errors.EmptyColumnError
			if errors.As(err, &empty) {
				continue
			}
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)]*(1-frac) + sorted[int(hi)]*frac
}
