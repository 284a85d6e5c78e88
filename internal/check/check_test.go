package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/axon/internal/config"
)

type recordingLogger struct{ lines []string }

func (r *recordingLogger) add(level, format string, args ...any) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Info(f string, a ...any)    { r.add("INFO", f, a...) }
func (r *recordingLogger) Success(f string, a ...any) { r.add("OK", f, a...) }
func (r *recordingLogger) Warn(f string, a ...any)    { r.add("WARN", f, a...) }
func (r *recordingLogger) Error(f string, a ...any)   { r.add("ERROR", f, a...) }
func (r *recordingLogger) Debug(f string, a ...any)   { r.add("DEBUG", f, a...) }

func (r *recordingLogger) has(level, substr string) bool {
	for _, l := range r.lines {
		if strings.HasPrefix(l, level+" ") && strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.NotesDir = dir
	cfg.Pattern = "{date:date}-{slug}.md"
	return &cfg
}

func TestRunCheck_Healthy(t *testing.T) {
	log := &recordingLogger{}
	require.NoError(t, RunCheck(context.Background(), testConfig(t.TempDir()), log))
	assert.True(t, log.has("OK", "is writable"))
	assert.True(t, log.has("OK", "2 fields"))
	assert.True(t, log.has("INFO", "none yet"))
	assert.True(t, log.has("OK", "no staging leftovers"))
}

func TestRunCheck_Problems(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".a.md.axon-1234abcd-0"), nil, 0o644))
	cfg := testConfig(dir)
	cfg.Pattern = "{date:date"

	log := &recordingLogger{}
	err := RunCheck(context.Background(), cfg, log)
	assert.ErrorIs(t, err, ErrFailed)
	assert.True(t, log.has("ERROR", "pattern"))
	assert.True(t, log.has("WARN", "staging leftover"))
}

func TestRunCheck_MissingDir(t *testing.T) {
	log := &recordingLogger{}
	err := RunCheck(context.Background(), testConfig(filepath.Join(t.TempDir(), "nope")), log)
	assert.ErrorIs(t, err, ErrFailed)
	assert.True(t, log.has("ERROR", "does not exist"))
}

func TestPreflight(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name    string
		dir     string
		pattern string
		wantErr error
		errText string
	}{
		{name: "ok", dir: dir, pattern: "{slug}.md"},
		{name: "missing", dir: filepath.Join(dir, "nope"), pattern: "{slug}.md", wantErr: ErrNotesDirMissing},
		{name: "not a dir", dir: file, pattern: "{slug}.md", wantErr: ErrNotesDirNotDir},
		{name: "bad pattern", dir: dir, pattern: "{slug", errText: "pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.dir)
			cfg.Pattern = tt.pattern
			err := Preflight(cfg)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunCheck_LeavesJournalAlone(t *testing.T) {
	for _, backend := range []config.JournalBackend{config.JournalFile, config.JournalBadger} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := testConfig(t.TempDir())
			cfg.Journal.Backend = backend

			require.NoError(t, RunCheck(context.Background(), cfg, &recordingLogger{}))
			assert.NoFileExists(t, cfg.JournalPath())
			assert.NoDirExists(t, cfg.JournalPath())
		})
	}
}

func TestRunCheck_ExistingJournal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".axon-rollback.json"), []byte("[]"), 0o644))

	log := &recordingLogger{}
	require.NoError(t, RunCheck(context.Background(), testConfig(dir), log))
	assert.True(t, log.has("OK", "0 batch(es)"))
}
