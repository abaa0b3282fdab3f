package frame

import (
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Table is an ordered list of equally long, uniquely named columns.
// The zero value is an empty table.
type Table struct {
	cols  []Column
	index map[string]int
}

// NewTable builds a table, rejecting duplicate names and ragged lengths.
func NewTable(cols ...Column) (Table, error) {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c.Name()]; dup {
			return Table{}, errors.NewValidationError("column", "duplicate column name", c.Name())
		}
		if i > 0 && c.Len() != cols[0].Len() {
			return Table{}, errors.NewDimensionError("NewTable", cols[0].Len(), c.Len(), 0)
		}
		index[c.Name()] = i
	}
	owned := make([]Column, len(cols))
	copy(owned, cols)
	return Table{cols: owned, index: index}, nil
}

// MustTable is NewTable for literals known to be well formed.
func MustTable(cols ...Column) Table {
	t, err := NewTable(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Ncol returns the number of columns.
func (t Table) Ncol() int { return len(t.cols) }

// Nrow returns the number of rows.
func (t Table) Nrow() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// Names returns the column names in order.
func (t Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Col returns the named column.
func (t Table) Col(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// At returns the column at position i.
func (t Table) At(i int) Column { return t.cols[i] }

// Columns returns the columns in order.
func (t Table) Columns() []Column {
	out := make([]Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Drop returns the table without the named column.
func (t Table) Drop(name string) (Table, error) {
	i := t.Index(name)
	if i < 0 {
		return Table{}, errors.NewColumnNotFoundError("Drop", name)
	}
	cols := make([]Column, 0, len(t.cols)-1)
	cols = append(cols, t.cols[:i]...)
	cols = append(cols, t.cols[i+1:]...)
	return NewTable(cols...)
}

// With returns the table with c replacing the column of the same name in
// place, or appended at the end when no such column exists.
func (t Table) With(c Column) (Table, error) {
	cols := t.Columns()
	if i := t.Index(c.Name()); i >= 0 {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return NewTable(cols...)
}

// Select returns the named columns in the given order.
func (t Table) Select(names ...string) (Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c, ok := t.Col(name)
		if !ok {
			return Table{}, errors.NewColumnNotFoundError("Select", name)
		}
		cols = append(cols, c)
	}
	return NewTable(cols...)
}

// Take returns the rows at idx, in that order.
func (t Table) Take(idx []int) Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Take(idx)
	}
	return MustTable(cols...)
}

// Head returns the first n rows (all rows when n exceeds Nrow).
func (t Table) Head(n int) Table {
	if n > t.Nrow() {
		n = t.Nrow()
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Take(idx)
}

// Matrix converts an all-numeric table into a dense rows×cols matrix.
// Missing entries become NaN.
func (t Table) Matrix() (*mat.Dense, error) {
	if t.Ncol() == 0 || t.Nrow() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame: Matrix")
	}
	m := mat.NewDense(t.Nrow(), t.Ncol(), nil)
	for j, c := range t.cols {
		if c.Kind() != Numeric {
			return nil, errors.NewTypeMismatchError("Matrix", c.Name(), Numeric.String(), c.Kind().String())
		}
		for i := 0; i < c.Len(); i++ {
			m.Set(i, j, c.Float(i))
		}
	}
	return m, nil
}
