package executor

import (
	"io/fs"
	"os"
)

// FS is the filesystem surface the executor needs. Tests substitute a
// fault-injecting implementation.
type FS interface {
	Rename(oldpath, newpath string) error
	Lstat(name string) (fs.FileInfo, error)
}

// OSFS is the real filesystem.
type OSFS struct{}

func (OSFS) Rename(oldpath, newpath string) error   { return os.Rename(oldpath, newpath) }
func (OSFS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }
