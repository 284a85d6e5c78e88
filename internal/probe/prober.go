package probe

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Probe lists root and returns a Snapshot. Without recursive only root's
// own entries are listed. Hidden directories are never descended into.
func Probe(ctx context.Context, root string, recursive bool) (*Snapshot, error) {
	root = filepath.Clean(root)
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Path:    path,
			Name:    d.Name(),
			Dir:     d.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		if d.IsDir() && (!recursive || IsHidden(d.Name())) {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return newSnapshot(root, recursive, entries), nil
}
