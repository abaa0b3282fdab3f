package storage

import (
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	Trees  []float64
	Labels map[string]int
}

func newTestStore(t *testing.T) (*Store, string, *log.TestLogger) {
	t.Helper()
	root := t.TempDir()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	s := New(Config{
		ModelsDir:    filepath.Join(root, "models"),
		ProcessedDir: filepath.Join(root, "data", "processed"),
	}, WithLogger(logger))
	return s, root, logger
}

func TestPathResolution(t *testing.T) {
	s := New(Config{ModelsDir: "m", ProcessedDir: "p"})
	assert.Equal(t, filepath.Join("m", "lead_model.gob"), s.ModelPath("lead_model.gob"))
	assert.Equal(t, filepath.Join("p", "X_test.csv"), s.ProcessedDataPath("X_test.csv"))
	// resolution is pure and repeatable
	assert.Equal(t, s.ModelPath("a"), s.ModelPath("a"))

	defaults := New(Config{})
	assert.Equal(t, filepath.Join(DefaultModelsDir, "x"), defaults.ModelPath("x"))
	assert.Equal(t, filepath.Join(DefaultProcessedDir, "x"), defaults.ProcessedDataPath("x"))
}

type prefixResolver struct{ root string }

func (r prefixResolver) ModelPath(name string) string {
	return filepath.Join(r.root, "custom-models", name)
}

func (r prefixResolver) ProcessedDataPath(name string) string {
	return filepath.Join(r.root, "custom-data", name)
}

func TestWithResolver(t *testing.T) {
	root := t.TempDir()
	s := New(Config{}, WithResolver(prefixResolver{root: root}))

	path, err := s.SaveModel(fakeModel{Trees: []float64{1}}, "m.gob")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "custom-models", "m.gob"), path)
}

func TestModelRoundTrip(t *testing.T) {
	s, root, logger := newTestStore(t)
	want := fakeModel{Trees: []float64{0.1, -0.2}, Labels: map[string]int{"web": 1}}

	path, err := s.SaveModel(want, "lead_model.gob")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(root, "models", "lead_model.gob"), path)
	assert.FileExists(t, path)
	assert.True(t, logger.ContainsMessage("Model saved"))

	var got fakeModel
	require.NoError(t, s.LoadModel("lead_model.gob", &got))
	assert.Equal(t, want, got)
}

func TestSaveModelOverwrites(t *testing.T) {
	s, _, _ := newTestStore(t)

	_, err := s.SaveModel(fakeModel{Trees: []float64{1}}, "m.gob")
	require.NoError(t, err)
	_, err = s.SaveModel(fakeModel{Trees: []float64{2}}, "m.gob")
	require.NoError(t, err)

	var got fakeModel
	require.NoError(t, s.LoadModel("m.gob", &got))
	assert.Equal(t, []float64{2}, got.Trees)
}

func TestSaveModelInDir(t *testing.T) {
	s, root, _ := newTestStore(t)
	dir := filepath.Join(root, "nested", "deeper")

	path, err := s.SaveModel(fakeModel{}, "m.gob", InDir(dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "m.gob"), path)
	assert.FileExists(t, path)
	assert.NoFileExists(t, s.ModelPath("m.gob"))
}

func TestLoadModelMissing(t *testing.T) {
	s, _, _ := newTestStore(t)

	var got fakeModel
	err := s.LoadModel("missing.gob", &got)

	var notFound *errors.ArtifactNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, s.ModelPath("missing.gob"), notFound.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.NoFileExists(t, s.ModelPath("missing.gob"))
	_, statErr := os.Stat(filepath.Dir(s.ModelPath("missing.gob")))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveModelUnencodable(t *testing.T) {
	s, _, _ := newTestStore(t)

	_, err := s.SaveModel(func() {}, "bad.gob")
	var modelErr *errors.ModelError
	require.True(t, errors.As(err, &modelErr))
	assert.NoFileExists(t, s.ModelPath("bad.gob"))

	entries, err := os.ReadDir(filepath.Dir(s.ModelPath("bad.gob")))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDataRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		table   frame.Table
		wantRaw string
	}{
		{
			name: "mixed kinds with missing values",
			table: frame.MustTable(
				frame.Floats("lead_time", 3, math.NaN(), 1.5),
				frame.Floats("lead_source_web", 1, 0, 1),
				frame.Strings("stage", "new", "won", ""),
			),
			wantRaw: "lead_time,lead_source_web,stage\n3,1,new\n,0,won\n1.5,1,\n",
		},
		{
			name:    "single column with missing value keeps the row",
			table:   frame.MustTable(frame.Floats("y", 1, math.NaN(), 0)),
			wantRaw: "y\n1\n\"\"\n0\n",
		},
		{
			name: "header whitespace is preserved",
			table: frame.MustTable(
				frame.Floats(" a", 1, 2),
				frame.Strings("code", "x", "y"),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, root, _ := newTestStore(t)

			path, err := s.SaveData(tt.table, "train.csv")
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, "data", "processed", "train.csv"), path)

			if tt.wantRaw != "" {
				raw, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, tt.wantRaw, string(raw))
			}

			got, err := s.LoadData("train.csv")
			require.NoError(t, err)
			assert.Equal(t, tt.table.Names(), got.Names())
			assert.Equal(t, tt.table.Nrow(), got.Nrow())
			for _, c := range tt.table.Columns() {
				back, _ := got.Col(c.Name())
				assert.Equal(t, c.Records(), back.Records(), c.Name())
				assert.Equal(t, c.MissingMask(), back.MissingMask(), c.Name())
			}
		})
	}
}

func TestSavedFilesAreWorldReadable(t *testing.T) {
	s, _, _ := newTestStore(t)

	dataPath, err := s.SaveData(frame.MustTable(frame.Floats("y", 1, 0)), "y.csv")
	require.NoError(t, err)
	modelPath, err := s.SaveModel(fakeModel{Trees: []float64{1}}, "m.gob")
	require.NoError(t, err)

	for _, p := range []string{dataPath, modelPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), p)
	}
}

func TestLoadDataMissing(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, err := s.LoadData("nope.csv")
	var notFound *errors.ArtifactNotFoundError
	assert.True(t, errors.As(err, &notFound))
}
