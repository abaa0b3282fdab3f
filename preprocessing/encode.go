package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
)

// CreateDummies は列を drop-first 方式で one-hot エンコードする
//
// 非欠損のカテゴリを辞書順に並べ、先頭以外のカテゴリごとに
// "<name>_<category>" という 1/0 の数値列を作る。元の列は取り除かれ、
// 他の列は元の順序のまま残り、指標列はその後ろに追加される。
// 欠損の行はすべての指標列で 0 になる。数値列はテキスト表現
// (整数値は小数点なし) でエンコードする。
//
// 入力テーブルは変更されない。列が存在しない場合は ColumnNotFoundError を返す。
//
// 使用例:
//
//	t := frame.MustTable(frame.Strings("col", "A", "B", "A"))
//	out, err := preprocessing.CreateDummies(t, "col")
//	// out: col_B = [0 1 0]
func CreateDummies(t frame.Table, name string) (frame.Table, error) {
	col, ok := t.Col(name)
	if !ok {
		return frame.Table{}, errors.NewColumnNotFoundError("CreateDummies", name)
	}

	labels := col.Records()
	categories := distinct(labels, col.MissingMask())

	rest, err := t.Drop(name)
	if err != nil {
		return frame.Table{}, err
	}
	cols := rest.Columns()
	if len(categories) > 1 {
		for _, cat := range categories[1:] {
			values := make([]float64, len(labels))
			for i, v := range labels {
				if !col.IsMissing(i) && v == cat {
					values[i] = 1
				}
			}
			cols = append(cols, frame.NewNumeric(name+"_"+cat, values, make([]bool, len(values))))
		}
	}
	// An indicator can collide with an existing column name; NewTable
	// reports that as a ValidationError.
	return frame.NewTable(cols...)
}

// CreateDummiesAll encodes each named column in turn.
func CreateDummiesAll(t frame.Table, names ...string) (frame.Table, error) {
	out := t
	for _, name := range names {
		var err error
		if out, err = CreateDummies(out, name); err != nil {
			return frame.Table{}, err
		}
	}
	return out, nil
}

// CategoricalNames returns the names of the categorical columns of t,
// skipping any listed in exclude.
func CategoricalNames(t frame.Table, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	var names []string
	for _, c := range t.Columns() {
		if c.Kind() == frame.Categorical && !skip[c.Name()] {
			names = append(names, c.Name())
		}
	}
	return names
}

func distinct(labels []string, missing []bool) []string {
	seen := make(map[string]bool)
	var out []string
	for i, v := range labels {
		if missing[i] || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
