package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func names(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	touch(t, dir, "b.md")
	touch(t, dir, "a.md")
	touch(t, dir, ".axon-rollback.json")
	touch(t, dir, ".a.md.axon-1234abcd-0")
	touch(t, filepath.Join(dir, "sub"), "c.md")
	touch(t, filepath.Join(dir, ".git"), "HEAD")
	return dir
}

func TestProbe_NonRecursive(t *testing.T) {
	dir := fixture(t)
	snap, err := Probe(context.Background(), dir, false)
	require.NoError(t, err)

	assert.Equal(t, []string{".a.md.axon-1234abcd-0", ".axon-rollback.json", ".git", "a.md", "b.md", "sub"}, names(snap.Entries))
	assert.Equal(t, []string{"a.md", "b.md"}, names(snap.Files()))
	assert.True(t, snap.Has(filepath.Join(dir, "sub")))
	assert.False(t, snap.Has(filepath.Join(dir, "sub", "c.md")))
	assert.Equal(t, []string{".a.md.axon-1234abcd-0"}, names(snap.Leftovers()))
}

func TestProbe_Recursive(t *testing.T) {
	dir := fixture(t)
	snap, err := Probe(context.Background(), dir, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, names(snap.Files()))
	assert.False(t, snap.Has(filepath.Join(dir, ".git", "HEAD")), "hidden directories are not descended into")

	e, ok := snap.Lookup(filepath.Join(dir, "sub", "c.md"))
	require.True(t, ok)
	assert.Equal(t, int64(1), e.Size)
	assert.Len(t, snap.Paths(), len(snap.Entries))
}

func TestProbe_Errors(t *testing.T) {
	_, err := Probe(context.Background(), filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Probe(ctx, fixture(t), true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsStaging(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".note.md.axon-1234abcd-0", true},
		{".note.md.axon-1234abcd-0.1", true},
		{".axon-rollback.json", false},
		{".axon-probe-123", false},
		{"note.axon-x.md", false},
		{"note.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStaging(tt.name))
		})
	}
}

func TestWritable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Writable(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, Writable(filepath.Join(dir, "missing")))
}

func TestRelative(t *testing.T) {
	tests := []struct {
		name, root, path, want string
	}{
		{"inside", "/notes", "/notes/a.md", "a.md"},
		{"nested", "/notes", "/notes/sub/a.md", filepath.Join("sub", "a.md")},
		{"outside", "/notes", "/other/a.md", "/other/a.md"},
		{"parent", "/notes/sub", "/notes", "/notes"},
		{"no root", "", "a.md", "a.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Relative(tt.root, tt.path))
		})
	}
}
