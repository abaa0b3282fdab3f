package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDescribe(t *testing.T) {
	s, err := Describe(frame.Floats("score", 1, 2, 3, 4, math.NaN()))
	require.NoError(t, err)

	assert.Equal(t, "score", s.Column)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.InDelta(t, 1.75, s.Q1, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, 3.25, s.Q3, 1e-12)
	assert.Equal(t, 4.0, s.Max)

	m := s.Map()
	assert.Len(t, m, len(SummaryKeys))
	assert.Equal(t, 4.0, m["Count"])
	assert.Equal(t, 2.5, m["50%"])
	assert.Len(t, s.Fields(), 2*len(SummaryKeys))
}

func TestDescribeCountExcludesMissing(t *testing.T) {
	s, err := Describe(frame.Floats("x", math.NaN(), 7, math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 2, s.Missing)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 7.0, s.Q1)
	assert.Equal(t, 7.0, s.Q3)
}

func TestDescribeErrors(t *testing.T) {
	_, err := Describe(frame.Floats("x", math.NaN()))
	var empty *errors.EmptyColumnError
	assert.True(t, errors.As(err, &empty))

	_, err = Describe(frame.Strings("source", "web"))
	var mismatch *errors.TypeMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestDescribeTable(t *testing.T) {
	tbl := frame.MustTable(
		frame.Floats("a", 1, 2),
		frame.Strings("s", "x", "y"),
		frame.Floats("empty", math.NaN(), math.NaN()),
		frame.Floats("b", 5, 5),
	)
	got, err := DescribeTable(tbl)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Column)
	assert.Equal(t, "b", got[1].Column)
}

func TestReadCSV(t *testing.T) {
	var warnings []error
	errors.SetZerologWarnFunc(func(w error) { warnings = append(warnings, w) })
	defer errors.SetZerologWarnFunc(nil)

	input := "age,source,score\n30,web,1.5\n,NA,2\n45,email,x\n"
	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "source", "score"}, tbl.Names())
	assert.Equal(t, 3, tbl.Nrow())

	age, _ := tbl.Col("age")
	assert.Equal(t, frame.Numeric, age.Kind())
	assert.True(t, age.IsMissing(1))
	assert.Equal(t, 45.0, age.Float(2))

	source, _ := tbl.Col("source")
	assert.Equal(t, frame.Categorical, source.Kind())
	assert.True(t, source.IsMissing(1))

	score, _ := tbl.Col("score")
	assert.Equal(t, frame.Categorical, score.Kind())
	require.Len(t, warnings, 1)
	var conv *errors.DataConversionWarning
	require.True(t, errors.As(warnings[0], &conv))
	assert.Equal(t, "score", conv.Column)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n"))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("x,y\n1,a\n2,b\n"), 0o644))
	tbl, err := Load(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tbl.Names())

	xlsxPath := filepath.Join(dir, "raw.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"lead_time", "origin"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{12, "api"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{7}))
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	tbl, err = Load(xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"lead_time", "origin"}, tbl.Names())
	lead, _ := tbl.Col("lead_time")
	assert.Equal(t, []float64{12, 7}, lead.Floats())
	origin, _ := tbl.Col("origin")
	assert.True(t, origin.IsMissing(1))

	_, err = Load(filepath.Join(dir, "missing.csv"))
	var notFound *errors.ArtifactNotFoundError
	assert.True(t, errors.As(err, &notFound))

	jsonPath := filepath.Join(dir, "raw.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0o644))
	_, err = Load(jsonPath)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestTrainTestSplit(t *testing.T) {
	ids := make([]float64, 10)
	labels := make([]float64, 10)
	for i := range ids {
		ids[i] = float64(i)
		labels[i] = float64(i % 2)
	}
	tbl := frame.MustTable(frame.Floats("id", ids...), frame.Floats("converted", labels...))

	split, err := TrainTestSplit(tbl, "converted", 0.3, 42)
	require.NoError(t, err)

	assert.Equal(t, 7, split.XTrain.Nrow())
	assert.Equal(t, 3, split.XTest.Nrow())
	assert.Equal(t, []string{"id"}, split.XTrain.Names())
	assert.Equal(t, []string{"converted"}, split.YTest.Names())

	trainIDs, _ := split.XTrain.Col("id")
	testIDs, _ := split.XTest.Col("id")
	all := append(trainIDs.Floats(), testIDs.Floats()...)
	assert.ElementsMatch(t, ids, all)

	// labels stay aligned with their rows
	testY, _ := split.YTest.Col("converted")
	for i, id := range testIDs.Floats() {
		assert.Equal(t, float64(int(id)%2), testY.Float(i))
	}

	again, err := TrainTestSplit(tbl, "converted", 0.3, 42)
	require.NoError(t, err)
	againIDs, _ := again.XTest.Col("id")
	assert.Equal(t, testIDs.Floats(), againIDs.Floats())
}

func TestTrainTestSplitErrors(t *testing.T) {
	tbl := frame.MustTable(frame.Floats("x", 1, 2), frame.Floats("y", 0, 1))

	_, err := TrainTestSplit(tbl, "y", 1.5, 1)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	_, err = TrainTestSplit(tbl, "missing", 0.5, 1)
	var notFound *errors.ColumnNotFoundError
	assert.True(t, errors.As(err, &notFound))

	_, err = TrainTestSplit(frame.MustTable(frame.Floats("x", 1), frame.Floats("y", 0)), "y", 0.5, 1)
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))
}

func TestSaveHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "score.png")
	require.NoError(t, SaveHistogram(frame.Floats("score", 1, 2, 2, 3, math.NaN()), path, 0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	err = SaveHistogram(frame.Strings("s", "a"), path, 5)
	var mismatch *errors.TypeMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := frame.MustTable(
		frame.Floats("lead_time", 12, math.NaN(), 0.25),
		frame.Strings("origin", "api", "web", ""),
		frame.Floats("converted", 1, 0, 1),
	)

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, tbl))
	assert.Equal(t, "lead_time,origin,converted\n12,api,1\n,web,0\n0.25,,1\n", sb.String())

	back, err := ReadCSV(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, tbl.Names(), back.Names())
	for _, c := range tbl.Columns() {
		got, _ := back.Col(c.Name())
		assert.Equal(t, c.Kind(), got.Kind(), c.Name())
		assert.Equal(t, c.Records(), got.Records(), c.Name())
	}

	assert.True(t, errors.Is(WriteCSV(&sb, frame.Table{}), errors.ErrEmptyData))
}
