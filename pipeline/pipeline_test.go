package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/leadconv/config"
	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/gbdt"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/YuminosukeSato/leadconv/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLeads writes 40 leads where conversion depends only on lead_time:
// short lead times (0..19) convert, long ones (100..119) do not.
func writeLeads(t *testing.T, dir string) string {
	t.Helper()
	origins := []string{"web", "api", "email", ""}
	var b strings.Builder
	b.WriteString("lead_id,lead_time,origin,converted\n")
	for i := 0; i < 40; i++ {
		leadTime, converted := i, 1
		if i%2 == 1 {
			leadTime, converted = 100+i/2, 0
		} else {
			leadTime = i / 2
		}
		fmt.Fprintf(&b, "L%03d,%d,%s,%d\n", i, leadTime, origins[i%4], converted)
	}
	path := filepath.Join(dir, "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RawData = writeLeads(t, root)
	cfg.Paths.ProcessedDir = filepath.Join(root, "data", "processed")
	cfg.Paths.ModelsDir = filepath.Join(root, "models")
	cfg.Training.Drop = []string{"lead_id"}
	cfg.Training.TestFraction = 0.25
	cfg.Training.Params = gbdt.TrainingParams{NumIterations: 20, LearningRate: 0.3, MaxDepth: 3, MinDataInLeaf: 2}
	return cfg
}

func newTestPipeline(t *testing.T, cfg config.Config) (*Pipeline, *log.TestLogger) {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return New(cfg, WithLogger(logger), WithRunID("run-1")), logger
}

func TestNewGeneratesRunID(t *testing.T) {
	a := New(config.Default())
	b := New(config.Default())
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
	assert.Equal(t, "fixed", New(config.Default(), WithRunID("fixed")).RunID())
}

func TestDescribe(t *testing.T) {
	cfg := testConfig(t)
	p, logger := newTestPipeline(t, cfg)

	plotDir := filepath.Join(t.TempDir(), "plots")
	summaries, err := p.Describe(plotDir)
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "lead_time", summaries[0].Column)
	assert.Equal(t, "converted", summaries[1].Column)
	assert.Equal(t, 40, summaries[0].Count)
	assert.InDelta(t, 0.5, summaries[1].Mean, 1e-12)

	assert.FileExists(t, filepath.Join(plotDir, "lead_time.png"))
	assert.FileExists(t, filepath.Join(plotDir, "converted.png"))
	assert.True(t, logger.ContainsMessage("Numeric summary"))
	assert.True(t, logger.ContainsField(log.RunIDKey, "run-1"))
}

func TestPrepare(t *testing.T) {
	cfg := testConfig(t)
	p, logger := newTestPipeline(t, cfg)

	out, path, err := p.Prepare()
	require.NoError(t, err)

	assert.Equal(t, []string{"lead_time", "converted", "origin_email", "origin_web"}, out.Names())
	wantPath, err := filepath.Abs(p.Store().ProcessedDataPath(cfg.Paths.ProcessedName))
	require.NoError(t, err)
	assert.Equal(t, wantPath, path)
	for _, c := range out.Columns() {
		assert.Equal(t, frame.Numeric, c.Kind(), c.Name())
		assert.Zero(t, c.MissingCount(), c.Name())
	}

	// the missing origin is imputed with the mode; ties go to the first
	// value seen, which is "web"
	web, _ := out.Col("origin_web")
	assert.Equal(t, 1.0, web.Float(3))

	loaded, err := p.Store().LoadData(cfg.Paths.ProcessedName)
	require.NoError(t, err)
	assert.Equal(t, out.Names(), loaded.Names())
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationEncode))
}

func TestPrepareErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing raw file",
			mutate: func(c *config.Config) { c.Paths.RawData = filepath.Join(t.TempDir(), "nope.csv") },
			check: func(t *testing.T, err error) {
				var nf *errors.ArtifactNotFoundError
				assert.True(t, errors.As(err, &nf))
			},
		},
		{
			name:   "unknown target",
			mutate: func(c *config.Config) { c.Training.Target = "is_customer" },
			check: func(t *testing.T, err error) {
				var nf *errors.ColumnNotFoundError
				assert.True(t, errors.As(err, &nf))
			},
		},
		{
			name:   "categorical target",
			mutate: func(c *config.Config) { c.Training.Target = "origin" },
			check: func(t *testing.T, err error) {
				var tm *errors.TypeMismatchError
				assert.True(t, errors.As(err, &tm))
			},
		},
		{
			name:   "mean on categorical column",
			mutate: func(c *config.Config) { c.Training.Impute = map[string]string{"origin": "mean"} },
			check: func(t *testing.T, err error) {
				var tm *errors.TypeMismatchError
				assert.True(t, errors.As(err, &tm))
			},
		},
		{
			name:   "unknown impute method",
			mutate: func(c *config.Config) { c.Training.Impute = map[string]string{"origin": "random"} },
			check: func(t *testing.T, err error) {
				var ve *errors.ValidationError
				assert.True(t, errors.As(err, &ve))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			p, _ := newTestPipeline(t, cfg)
			_, _, err := p.Prepare()
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTrainAndPredict(t *testing.T) {
	cfg := testConfig(t)
	p, logger := newTestPipeline(t, cfg)

	_, _, err := p.Prepare()
	require.NoError(t, err)

	res, err := p.Train()
	require.NoError(t, err)
	assert.Equal(t, 30, res.TrainRows)
	assert.Equal(t, 10, res.TestRows)
	assert.GreaterOrEqual(t, res.Report.Accuracy, 0.8)
	assert.GreaterOrEqual(t, res.Report.AUC, 0.8)
	assert.FileExists(t, res.ModelPath)
	assert.True(t, logger.ContainsMessage("Test metrics"))

	labels, err := os.ReadFile(p.Store().ProcessedDataPath(cfg.Paths.TestLabels))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(labels)), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "converted", lines[0])
	for _, l := range lines[1:] {
		assert.Contains(t, []string{"0.0", "1.0"}, l)
	}

	out, err := p.Predict(PredictOptions{})
	require.NoError(t, err)
	require.Len(t, out.Predictions, 5)
	assert.Equal(t, 5, out.Labels.Len())

	for _, v := range out.Predictions {
		assert.Contains(t, []int{0, 1}, v)
	}
	assert.NoError(t, out.Check(out.RenderPredictions(), out.RenderLabels()))

	explicit, err := p.Predict(PredictOptions{
		ModelPath:    res.ModelPath,
		FeaturesPath: p.Store().ProcessedDataPath(cfg.Paths.TestFeatures),
		LabelsPath:   p.Store().ProcessedDataPath(cfg.Paths.TestLabels),
		Rows:         3,
	})
	require.NoError(t, err)
	assert.Equal(t, out.Predictions[:3], explicit.Predictions)
}

func TestPredictWithoutModel(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig(t))
	_, err := p.Predict(PredictOptions{})
	var nf *errors.ArtifactNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestRender(t *testing.T) {
	r := &PredictResult{
		Predictions: []int{0, 1, 0, 1, 0},
		Labels:      frame.Floats("converted", 0, 1, 0, 1, 0),
	}
	assert.Equal(t, "[0 1 0 1 0]", r.RenderPredictions())
	assert.Equal(t, "0  0.0\n1  1.0\n2  0.0\n3  1.0\n4  0.0", r.RenderLabels())

	assert.NoError(t, r.Check("[0 1 0 1 0]\n", "0  0.0\n1  1.0\n2  0.0\n3  1.0\n4  0.0\n"))
	assert.NoError(t, r.Check("", ""))

	err := r.Check("[1 1 0 1 0]", "")
	assert.True(t, errors.Is(err, ErrOutputMismatch))
	err = r.Check("", "0  1.0")
	assert.True(t, errors.Is(err, ErrOutputMismatch))

	wide := &PredictResult{Labels: frame.Floats("y", 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0.5)}
	lines := strings.Split(wide.RenderLabels(), "\n")
	assert.Equal(t, "0   0.0", lines[0])
	assert.Equal(t, "10  0.5", lines[10])
}
