// Package frame defines the tabular values passed between pipeline stages.
//
// A Column is a tagged variant: it is either Numeric (float64 values) or
// Categorical (string values). Missing entries are tracked by an explicit
// mask, never by a sentinel value, so a categorical "NaN" read from a file and
// a numeric NaN both end up as the same thing: a missing entry. Columns and
// Tables are immutable; every transformation returns a new value.
package frame

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the semantic type of a column.
type Kind int

const (
	// Numeric columns hold float64 values.
	Numeric Kind = iota
	// Categorical columns hold string labels.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// MissingMarkers are the textual values read as missing.
var MissingMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<NA>"}

// IsMissingText reports whether s is one of MissingMarkers after trimming spaces.
func IsMissingText(s string) bool {
	s = strings.TrimSpace(s)
	for _, m := range MissingMarkers {
		if s == m {
			return true
		}
	}
	return false
}

// Column is an ordered sequence of scalar values with a missing mask.
type Column struct {
	name    string
	kind    Kind
	nums    []float64
	strs    []string
	missing []bool
}

// NewNumeric builds a numeric column. A nil mask marks NaN entries as missing.
// Missing entries are stored as NaN regardless of the value passed in.
func NewNumeric(name string, values []float64, missing []bool) Column {
	nums := make([]float64, len(values))
	mask := make([]bool, len(values))
	for i, v := range values {
		isMissing := math.IsNaN(v)
		if missing != nil {
			isMissing = missing[i]
		}
		mask[i] = isMissing
		if isMissing {
			nums[i] = math.NaN()
		} else {
			nums[i] = v
		}
	}
	return Column{name: name, kind: Numeric, nums: nums, missing: mask}
}

// NewCategorical builds a categorical column. A nil mask marks every value
// matching IsMissingText as missing. Missing entries are stored as "".
func NewCategorical(name string, values []string, missing []bool) Column {
	strs := make([]string, len(values))
	mask := make([]bool, len(values))
	for i, v := range values {
		isMissing := IsMissingText(v)
		if missing != nil {
			isMissing = missing[i]
		}
		mask[i] = isMissing
		if !isMissing {
			strs[i] = v
		}
	}
	return Column{name: name, kind: Categorical, strs: strs, missing: mask}
}

// Floats is shorthand for a numeric column where NaN marks missing entries.
func Floats(name string, values ...float64) Column {
	return NewNumeric(name, values, nil)
}

// Strings is shorthand for a categorical column using MissingMarkers.
func Strings(name string, values ...string) Column {
	return NewCategorical(name, values, nil)
}

// ParseFloat parses a numeric record, accepting surrounding spaces.
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Infer builds a column from raw text records. The column is numeric when
// every non-missing record parses as a float, categorical otherwise. A column
// with no non-missing records is numeric.
func Infer(name string, records []string) Column {
	nums := make([]float64, len(records))
	mask := make([]bool, len(records))
	for i, r := range records {
		if IsMissingText(r) {
			mask[i] = true
			continue
		}
		v, ok := ParseFloat(r)
		if !ok {
			return NewCategorical(name, records, nil)
		}
		nums[i] = v
	}
	return NewNumeric(name, nums, mask)
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Kind returns the column kind.
func (c Column) Kind() Kind { return c.kind }

// Len returns the number of entries, missing included.
func (c Column) Len() int { return len(c.missing) }

// IsMissing reports whether entry i is missing.
func (c Column) IsMissing(i int) bool { return c.missing[i] }

// MissingCount returns the number of missing entries.
func (c Column) MissingCount() int {
	n := 0
	for _, m := range c.missing {
		if m {
			n++
		}
	}
	return n
}

// Float returns entry i of a numeric column (NaN when missing).
// It panics on a categorical column.
func (c Column) Float(i int) float64 {
	if c.kind != Numeric {
		panic("frame: Float called on categorical column " + strconv.Quote(c.name))
	}
	return c.nums[i]
}

// Text renders entry i. Numeric values use the shortest decimal form that
// round-trips, so integral values have no decimal point. Missing is "".
func (c Column) Text(i int) string {
	if c.missing[i] {
		return ""
	}
	if c.kind == Numeric {
		return FormatFloat(c.nums[i])
	}
	return c.strs[i]
}

// Records renders every entry with Text.
func (c Column) Records() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Text(i)
	}
	return out
}

// Floats returns a copy of the numeric values with NaN for missing entries.
func (c Column) Floats() []float64 {
	if c.kind != Numeric {
		return nil
	}
	out := make([]float64, len(c.nums))
	copy(out, c.nums)
	return out
}

// Present returns the non-missing numeric values in order.
func (c Column) Present() []float64 {
	if c.kind != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if !c.missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Labels returns a copy of the categorical values ("" for missing entries).
func (c Column) Labels() []string {
	if c.kind != Categorical {
		return nil
	}
	out := make([]string, len(c.strs))
	copy(out, c.strs)
	return out
}

// MissingMask returns a copy of the missing mask.
func (c Column) MissingMask() []bool {
	out := make([]bool, len(c.missing))
	copy(out, c.missing)
	return out
}

// Rename returns the column under a new name.
func (c Column) Rename(name string) Column {
	c.name = name
	return c
}

// Take returns a column holding the entries at idx, in that order.
func (c Column) Take(idx []int) Column {
	mask := make([]bool, len(idx))
	for j, i := range idx {
		mask[j] = c.missing[i]
	}
	if c.kind == Numeric {
		vals := make([]float64, len(idx))
		for j, i := range idx {
			vals[j] = c.nums[i]
		}
		return NewNumeric(c.name, vals, mask)
	}
	vals := make([]string, len(idx))
	for j, i := range idx {
		vals[j] = c.strs[i]
	}
	return NewCategorical(c.name, vals, mask)
}

// FormatFloat renders v in the shortest form that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
