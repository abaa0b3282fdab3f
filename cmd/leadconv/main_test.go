package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/leadconv/pipeline"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	var b strings.Builder
	b.WriteString("lead_time,origin,converted\n")
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%d,web,1\n", i)
		} else {
			fmt.Fprintf(&b, "%d,api,0\n", 100+i)
		}
	}
	raw := filepath.Join(root, "leads.csv")
	require.NoError(t, os.WriteFile(raw, []byte(b.String()), 0o600))

	cfg := fmt.Sprintf(`paths:
  raw_data: %s
  processed_dir: %s
  models_dir: %s
training:
  params:
    num_iterations: 10
    min_data_in_leaf: 2
logging:
  level: error
`, raw, filepath.Join(root, "processed"), filepath.Join(root, "models"))
	path := filepath.Join(root, "leadconv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cfg := setupProject(t)

	out, err := execute(t, "describe", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "lead_time")
	assert.Contains(t, out, "25%")

	out, err = execute(t, "prepare", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 40 rows x 3 columns")

	out, err = execute(t, "train", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "accuracy=")

	out, err = execute(t, "predict", "--config", cfg, "-n", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "["))
	assert.True(t, strings.HasPrefix(lines[1], "0  "))

	_, err = execute(t, "predict", "--config", cfg, "--expect-predictions", "[2 2 2]")
	assert.True(t, errors.Is(err, pipeline.ErrOutputMismatch))
}

func TestSetupErrors(t *testing.T) {
	cfg := setupProject(t)

	_, err := execute(t, "prepare", "--config", cfg, "--log-level", "loud")
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	_, err = execute(t, "prepare", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "prepare", "--config", cfg, "--raw", filepath.Join(t.TempDir(), "none.csv"))
	var nf *errors.ArtifactNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "0  0.0\n1  1.0", unescape(`0  0.0\n1  1.0`))
}
