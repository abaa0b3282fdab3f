package preprocessing

import (
	"sort"
	"strings"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"gonum.org/v1/gonum/stat"
)

// Method は欠損値の補完方法を表す
type Method int

const (
	// Mode は最頻値で補完する（デフォルト、数値・カテゴリ両対応）
	Mode Method = iota
	// Mean は平均値で補完する（数値のみ）
	Mean
	// Median は中央値で補完する（数値のみ）
	Median
)

func (m Method) String() string {
	switch m {
	case Mean:
		return "mean"
	case Median:
		return "median"
	default:
		return "mode"
	}
}

// ParseMethod はテキストから補完方法を解析する
//
// 空文字列は Mode として扱う。未知の名前は ValidationError を返す。
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mode":
		return Mode, nil
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	default:
		return Mode, errors.NewValidationError("method", "must be mean, median or mode", s)
	}
}

// DefaultMethod は列の種類ごとの既定の補完方法を返す
//
// 数値列は中央値、カテゴリ列は最頻値。
func DefaultMethod(kind frame.Kind) Method {
	if kind == frame.Numeric {
		return Median
	}
	return Mode
}

// Impute は欠損値を補完した新しい列を返す
//
// パラメータ:
//   - col: 補完対象の列（変更されない）
//   - m: 補完方法
//
// 戻り値:
//   - frame.Column: 同じ長さ・同じ種類で欠損のない列
//   - error: 未知の Method なら ValidationError、カテゴリ列に Mean/Median を
//     指定した場合は TypeMismatchError、非欠損値が一つもない場合は EmptyColumnError
//
// 使用例:
//
//	filled, err := preprocessing.Impute(frame.Floats("age", 1, 2, math.NaN()), preprocessing.Mean)
//	// filled: [1 2 1.5]
func Impute(col frame.Column, m Method) (frame.Column, error) {
	if m != Mode && m != Mean && m != Median {
		return frame.Column{}, errors.NewValidationError("method", "unknown imputation method", int(m))
	}
	if m != Mode && col.Kind() != frame.Numeric {
		return frame.Column{}, errors.NewTypeMismatchError("Impute", col.Name(), frame.Numeric.String(), col.Kind().String())
	}
	if col.MissingCount() == col.Len() {
		return frame.Column{}, errors.NewEmptyColumnError("Impute", col.Name())
	}
	if col.MissingCount() == 0 {
		return col, nil
	}

	if col.Kind() == frame.Categorical {
		fill := modeOf(col.Labels(), col.MissingMask())
		out := col.Labels()
		for i := range out {
			if col.IsMissing(i) {
				out[i] = fill
			}
		}
		return frame.NewCategorical(col.Name(), out, make([]bool, len(out))), nil
	}

	present := col.Present()
	var fill float64
	switch m {
	case Mean:
		fill = stat.Mean(present, nil)
	case Median:
		fill = median(present)
	default:
		fill = modeOfFloats(col)
	}

	out := col.Floats()
	for i := range out {
		if col.IsMissing(i) {
			out[i] = fill
		}
	}
	return frame.NewNumeric(col.Name(), out, make([]bool, len(out))), nil
}

// ImputeTable applies plan to t. Columns absent from plan are left as is.
func ImputeTable(t frame.Table, plan map[string]Method) (frame.Table, error) {
	logger := log.GetLoggerWithName("preprocessing.impute")

	// Iterate in table order so results and logs are deterministic.
	names := make([]string, 0, len(plan))
	for name := range plan {
		if t.Index(name) < 0 {
			return frame.Table{}, errors.NewColumnNotFoundError("ImputeTable", name)
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return t.Index(names[i]) < t.Index(names[j]) })

	out := t
	for _, name := range names {
		col, _ := out.Col(name)
		filled, err := Impute(col, plan[name])
		if err != nil {
			return frame.Table{}, err
		}
		if out, err = out.With(filled); err != nil {
			return frame.Table{}, err
		}
		logger.Debug("Imputed column",
			log.OperationKey, log.OperationImpute,
			log.ColumnKey, name,
			log.MethodKey, plan[name].String(),
			log.MissingKey, col.MissingCount(),
		)
	}
	return out, nil
}

// median returns the middle value, averaging the two central values for
// even counts. values must be non-empty.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// modeOf returns the most frequent non-missing label. Ties go to the label
// seen first.
func modeOf(labels []string, missing []bool) string {
	counts := make(map[string]int)
	for i, v := range labels {
		if !missing[i] {
			counts[v]++
		}
	}
	best, bestCount := "", 0
	for i, v := range labels {
		if !missing[i] && counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func modeOfFloats(col frame.Column) float64 {
	counts := make(map[float64]int)
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			counts[col.Float(i)]++
		}
	}
	best, bestCount := 0.0, 0
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		if v := col.Float(i); counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
