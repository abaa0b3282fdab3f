package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Load reads a raw table, choosing the reader from the file extension.
// A missing file yields an ArtifactNotFoundError.
func Load(path string) (frame.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return frame.Table{}, errors.NewArtifactNotFoundError(path)
		}
		return frame.Table{}, errors.Wrapf(err, "dataset: stat %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return frame.Table{}, errors.Wrapf(err, "dataset: open %s", path)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		return ReadExcel(path, "")
	default:
		return frame.Table{}, errors.NewValidationError("path", "unsupported file extension", ext)
	}
}

// ReadCSV は先頭行をヘッダとする CSV を読み込む
//
// 値はすべて文字列として読み込み、列ごとに数値かカテゴリかを推論する。
// frame.MissingMarkers に一致する値は欠損として扱う。数値とそれ以外が
// 混在する列はカテゴリ列となり、DataConversionWarning が発行される。
func ReadCSV(r io.Reader) (frame.Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(frame.MissingMarkers),
	)
	if df.Err != nil {
		if strings.Contains(df.Err.Error(), "empty") {
			return frame.Table{}, errors.Wrap(errors.ErrEmptyData, "dataset: ReadCSV")
		}
		return frame.Table{}, errors.Wrap(df.Err, "dataset: ReadCSV")
	}
	return fromRecords(df.Records())
}

// ReadExcel reads a sheet of an .xlsx workbook; an empty sheet name selects
// the first sheet. The first row holds the column names.
func ReadExcel(path, sheet string) (frame.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return frame.Table{}, errors.Wrapf(err, "dataset: open workbook %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return frame.Table{}, errors.Wrapf(errors.ErrEmptyData, "dataset: workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return frame.Table{}, errors.Wrapf(err, "dataset: read sheet %q", sheet)
	}
	if len(rows) < 2 {
		return frame.Table{}, errors.Wrapf(errors.ErrEmptyData, "dataset: sheet %q", sheet)
	}

	// excelize drops trailing empty cells, so rows can be shorter than the header.
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		} else {
			rows[i] = row[:width]
		}
	}
	return fromRecords(rows)
}

// fromRecords converts a header row plus data rows into a table.
func fromRecords(records [][]string) (frame.Table, error) {
	if len(records) < 2 {
		return frame.Table{}, errors.Wrap(errors.ErrEmptyData, "dataset: no data rows")
	}
	header := records[0]
	cols := make([]frame.Column, len(header))
	for j, name := range header {
		raw := make([]string, len(records)-1)
		for i, row := range records[1:] {
			raw[i] = row[j]
		}
		cols[j] = inferColumn(name, raw)
	}
	return frame.NewTable(cols...)
}

// inferColumn wraps frame.Infer and warns when a column holding numeric
// values is demoted to categorical by unparsable ones.
func inferColumn(name string, raw []string) frame.Column {
	col := frame.Infer(name, raw)
	if col.Kind() == frame.Numeric {
		return col
	}
	var parsed int
	var firstBad string
	for i, v := range raw {
		if col.IsMissing(i) {
			continue
		}
		if _, ok := frame.ParseFloat(v); ok {
			parsed++
		} else if firstBad == "" {
			firstBad = v
		}
	}
	if parsed > 0 {
		errors.Warn(errors.NewDataConversionWarning(name, frame.Numeric.String(), frame.Categorical.String(),
			fmt.Sprintf("non-numeric value %q", firstBad)))
	}
	return col
}
