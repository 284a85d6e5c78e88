package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/axon/internal/config"
)

func newTestLogger(t *testing.T, mutate func(*config.Config)) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	if mutate != nil {
		mutate(&cfg)
	}
	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	var out, errOut bytes.Buffer
	l.SetOutput(&out, &errOut)
	return l, &out, &errOut
}

func TestLogger_Console(t *testing.T) {
	l, out, errOut := newTestLogger(t, nil)
	l.Info("checked %d files", 3)
	l.Success("done")
	l.Warn("careful")
	l.Error("broken")
	l.Debug("hidden")

	assert.Contains(t, out.String(), "[INFO] checked 3 files\n")
	assert.Contains(t, out.String(), "[SUCCESS] done\n")
	assert.Contains(t, out.String(), "[WARN] careful\n")
	assert.NotContains(t, out.String(), "broken")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, errOut.String(), "[ERROR] broken\n")
}

func TestLogger_Verbose(t *testing.T) {
	l, out, _ := newTestLogger(t, func(c *config.Config) { c.Verbose = true })
	assert.True(t, l.Verbose())
	l.Debug("shown")
	assert.Contains(t, out.String(), "[DEBUG] shown")
}

func TestLogger_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "axon.log")
	l, _, _ := newTestLogger(t, func(c *config.Config) { c.LogFile = path })
	l.Info("to file")
	l.Error("failed")
	l.Slog().Info("structured", "batch", "b1")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "to file", rec["msg"])
	assert.Equal(t, "INFO", rec["tag"])
	assert.Equal(t, "axon", rec["app"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "ERROR", rec["level"])

	require.NoError(t, json.Unmarshal([]byte(lines[2]), &rec))
	assert.Equal(t, "b1", rec["batch"])
}
