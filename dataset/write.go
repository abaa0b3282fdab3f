package dataset

import (
	"encoding/csv"
	"io"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// WriteCSV writes t as comma-separated text with a header row and no index
// column. Missing entries become empty fields; numbers use the shortest
// decimal form that reads back to the same value.
func WriteCSV(w io.Writer, t frame.Table) error {
	if t.Ncol() == 0 || t.Nrow() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "dataset: WriteCSV")
	}

	records := make([][]string, 0, t.Nrow()+1)
	records = append(records, t.Names())
	cols := t.Columns()
	for i := 0; i < t.Nrow(); i++ {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.Text(i)
		}
		records = append(records, row)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return errors.Wrap(df.Err, "dataset: WriteCSV")
	}
	if t.Ncol() > 1 {
		if err := df.WriteCSV(w, dataframe.WriteHeader(true)); err != nil {
			return errors.Wrap(err, "dataset: WriteCSV")
		}
		return nil
	}
	return writeSingleColumn(w, df.Records())
}

// writeSingleColumn writes a one-column file. encoding/csv renders an empty
// lone field as a blank line, which readers skip, so missing entries are
// written as a quoted empty field instead.
func writeSingleColumn(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	for _, rec := range records {
		if rec[0] == "" {
			cw.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return errors.Wrap(err, "dataset: WriteCSV")
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "dataset: WriteCSV")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "dataset: WriteCSV")
	}
	return nil
}
