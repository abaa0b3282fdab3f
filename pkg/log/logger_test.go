package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestZerologProvider_Fields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	logger := p.GetLoggerWithName("storage").With(RunIDKey, "run-1")
	logger.Info("saved model", PathKey, "/tmp/models/m.gob", SamplesKey, 10)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "saved model", entry["message"])
	assert.Equal(t, "storage", entry[ComponentKey])
	assert.Equal(t, "run-1", entry[RunIDKey])
	assert.Equal(t, "/tmp/models/m.gob", entry[PathKey])
	assert.Equal(t, 10.0, entry[SamplesKey])
}

func TestZerologProvider_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelWarn)
	logger := p.GetLogger()

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible warn")

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestZerologProvider_ErrorStacktrace(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)

	err := errors.Wrap(errors.NewColumnNotFoundError("CreateDummies", "col"), "encode lead source")
	p.GetLogger().Error("prepare failed", ErrAttrKey, err)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0][ErrAttrKey], `column "col" not found`)
	assert.NotEmpty(t, entries[0][StacktraceAttrKey])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	testLogger.Debug("dropped")
	testLogger.With(ColumnKey, "age").Info("imputed column", MethodKey, "median", MissingKey, 3)
	testLogger.Error("failed", ErrAttrKey, fmt.Errorf("boom"))

	assert.NotContains(t, buffer.String(), "dropped")
	assert.True(t, testLogger.ContainsMessage("imputed column"))
	assert.True(t, testLogger.ContainsField(ColumnKey, "age"))
	assert.True(t, testLogger.ContainsField(MissingKey, 3.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "boom"))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestTestLoggerProvider(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)
	provider.GetLoggerWithName("gbdt").Debug("tree built", IterationKey, 1)

	assert.Contains(t, buffer.String(), `"ml.component":"gbdt"`)
}
