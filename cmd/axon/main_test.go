package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/axon/internal/check"
	"github.com/backmassage/axon/internal/executor"
	"github.com/backmassage/axon/internal/pattern"
	"github.com/backmassage/axon/internal/pipeline"
	"github.com/backmassage/axon/internal/planner"
)

const testPattern = "{date:date}-{slug}.md"

// execute runs one command line against a fresh app whose prompt always
// answers answer.
func execute(t *testing.T, answer bool, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.confirm = func(string) (bool, error) { return answer, nil }
	root := a.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--color", "never"}, args...))
	err := root.Execute()
	if a.log != nil {
		require.NoError(t, a.log.Close())
	}
	return out.String(), err
}

func notes(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
	}
	return dir
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"invalid", errInvalid, exitInvalid},
		{"pattern", &pattern.CompileError{Kind: pattern.ErrUnbalancedBrace}, exitPattern},
		{"config", &configError{errors.New("bad")}, exitPattern},
		{"conflict", fmt.Errorf("plan: %w", planner.ErrConflictUnresolved), exitConflict},
		{"preview", pipeline.ErrPreviewFailed, exitConflict},
		{"precondition", executor.ErrPreconditionFailed, exitConflict},
		{"mid batch", executor.ErrMidBatchFailure, exitIO},
		{"read only", check.ErrNotesDirReadOnly, exitIO},
		{"field mismatch", &planner.FieldMismatchError{OnlyInSource: []string{"a"}}, exitPattern},
		{"bad filter", fmt.Errorf("%w: x", pipeline.ErrBadFilter), exitPattern},
		{"no matches", pipeline.ErrNoMatches, exitInvalid},
		{"exempt", pipeline.ErrExempt, exitInvalid},
		{"other", errors.New("boom"), exitInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestHealthCommand(t *testing.T) {
	dir := notes(t, "2024-01-02-ok.md", "bad name.md")

	out, err := execute(t, true, "health", "-d", dir, "-p", testPattern)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "Valid:   1")
	assert.Contains(t, out, "Invalid: 1")
	assert.Contains(t, out, "Health: FAIL")

	out, err = execute(t, true, "health", "-d", dir, "-p", testPattern, "--json")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `"invalid": 1`)
}

func TestValidateCommand(t *testing.T) {
	dir := notes(t)
	out, err := execute(t, true, "validate", "-d", dir, "-p", testPattern,
		filepath.Join(dir, "2024-01-02-ok.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "valid 2024-01-02-ok.md")

	_, err = execute(t, true, "validate", "-d", dir, "-p", testPattern, filepath.Join(dir, "nope.md"))
	assert.ErrorIs(t, err, errInvalid)
}

func TestRefactorAndRollback(t *testing.T) {
	dir := notes(t, "2024-3-1-My Note.md")

	out, err := execute(t, true, "refactor", "-d", dir, "-p", testPattern, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "-> 2024-03-01-my-note.md")
	assert.True(t, exists(dir, "2024-3-1-My Note.md"))

	_, err = execute(t, false, "refactor", "-d", dir, "-p", testPattern)
	require.NoError(t, err)
	assert.True(t, exists(dir, "2024-3-1-My Note.md"), "declined prompt renames nothing")

	out, err = execute(t, true, "refactor", "-d", dir, "-p", testPattern)
	require.NoError(t, err)
	assert.Contains(t, out, "Done: 1 renamed")
	assert.True(t, exists(dir, "2024-03-01-my-note.md"))

	_, err = execute(t, true, "rollback", "-d", dir, "-p", testPattern, "--yes")
	require.NoError(t, err)
	assert.True(t, exists(dir, "2024-3-1-My Note.md"))
	assert.False(t, exists(dir, "2024-03-01-my-note.md"))
}

func TestRefactorConflict(t *testing.T) {
	dir := notes(t, "2024-01-02-A Note.md", "2024-01-02-a note.md")
	_, err := execute(t, true, "refactor", "-d", dir, "-p", testPattern, "--yes")
	assert.Equal(t, exitConflict, exitCode(err))
}

func TestConfigErrors(t *testing.T) {
	dir := notes(t)
	_, err := execute(t, true, "health", "-d", dir, "-p", "{date:date")
	assert.Equal(t, exitPattern, exitCode(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "axon.yaml"), []byte("on_conflict: overwrite\n"), 0o644))
	_, err = execute(t, true, "health", "-d", dir)
	assert.Equal(t, exitPattern, exitCode(err))
}

func TestRollbackEmptyJournal(t *testing.T) {
	_, err := execute(t, true, "rollback", "-d", notes(t), "-p", testPattern, "--yes")
	assert.Error(t, err)
	assert.Equal(t, exitInvalid, exitCode(err))
}

func TestRefactorMigrate(t *testing.T) {
	const to = "{slug}-{date:date}.md"
	dir := notes(t, "2024-01-02-first.md", "2024-01-03-second.md", "stray.md")

	out, err := execute(t, true, "refactor", "-d", dir, "--from", testPattern, "--to", to, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "-> first-2024-01-02.md")
	assert.True(t, exists(dir, "2024-01-02-first.md"))

	_, err = execute(t, true, "refactor", "-d", dir, "--from", testPattern, "--to", to, "--yes")
	require.NoError(t, err)
	assert.True(t, exists(dir, "first-2024-01-02.md"))
	assert.True(t, exists(dir, "second-2024-01-03.md"))
	assert.True(t, exists(dir, "stray.md"))

	_, err = execute(t, true, "rollback", "-d", dir, "--yes")
	require.NoError(t, err)
	assert.True(t, exists(dir, "2024-01-02-first.md"))
}

func TestRefactorMigrateErrors(t *testing.T) {
	dir := notes(t, "2024-01-02-first.md")
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"fields differ", []string{"--from", testPattern, "--to", "{slug}.md"}, exitPattern},
		{"bad target pattern", []string{"--from", testPattern, "--to", "{slug"}, exitPattern},
		{"nothing matches", []string{"--from", "{slug}.txt", "--to", "x-{slug}.txt"}, exitInvalid},
		{"from without to", []string{"--from", testPattern}, exitPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, true, append([]string{"refactor", "-d", dir, "--yes"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.want, exitCode(err))
			assert.True(t, exists(dir, "2024-01-02-first.md"))
		})
	}
}

func TestParseCommand(t *testing.T) {
	dir := notes(t)
	out, err := execute(t, true, "parse", "-d", dir, "-p", testPattern, "2024-01-02-my-note.md")
	require.NoError(t, err)
	assert.Equal(t, "date: 2024-01-02\nslug: my-note\n", out)

	out, err = execute(t, true, "parse", "-d", dir, "-p", testPattern, "--json", "2024-01-02-my-note.md")
	require.NoError(t, err)
	assert.JSONEq(t, `{"date": "2024-01-02", "slug": "my-note"}`, out)

	out, err = execute(t, true, "parse", "-d", dir, "-p", testPattern, "my note.md")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "invalid my note.md")

	_, err = execute(t, true, "parse", "-d", dir, "-p", testPattern, "README.md")
	assert.ErrorIs(t, err, pipeline.ErrExempt)
	assert.Equal(t, exitInvalid, exitCode(err))
}

func TestListCommand(t *testing.T) {
	dir := notes(t, "2024-01-02-b.md", "2024-01-02-a.md", "2024-01-03-c.md", "junk.md", "README.md")

	out, err := execute(t, true, "list", "-d", dir, "-p", testPattern)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02-a.md\n2024-01-02-b.md\n2024-01-03-c.md\n", out)

	out, err = execute(t, true, "list", "-d", dir, "-p", testPattern, "--where", "date=2024-1-2", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `["2024-01-02-a.md", "2024-01-02-b.md"]`, out)

	_, err = execute(t, true, "list", "-d", dir, "-p", testPattern, "--where", "repo=axon")
	assert.ErrorIs(t, err, pipeline.ErrBadFilter)
	assert.Equal(t, exitPattern, exitCode(err))
}
