package system

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem handles file system operations
type FileSystem struct{}

// NewFileSystem creates a new FileSystem instance
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// TreeStats summarizes a directory tree
type TreeStats struct {
	Files int
	Dirs  int
	Bytes int64
}

// FileExists checks if a file exists
func (f *FileSystem) FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if file exists %s: %w", path, err)
}

// DirectoryExists checks if a directory exists
func (f *FileSystem) DirectoryExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if directory exists %s: %w", path, err)
}

// RemoveDirectory removes a directory and all its contents. A missing
// directory is not an error.
func (f *FileSystem) RemoveDirectory(path string) error {
	if err := checkRemovable(path); err != nil {
		return err
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", path, err)
	}
	return nil
}

// checkRemovable refuses paths whose removal would take out the working
// directory, a filesystem root, or the user's home
func checkRemovable(path string) error {
	if path == "" {
		return fmt.Errorf("refusing to remove empty path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	if abs == filepath.Dir(abs) {
		return fmt.Errorf("refusing to remove filesystem root: %s", path)
	}

	if cwd, err := os.Getwd(); err == nil && isWithin(cwd, abs) {
		return fmt.Errorf("refusing to remove %s: it contains the working directory", path)
	}

	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == abs {
		return fmt.Errorf("refusing to remove home directory: %s", path)
	}

	return nil
}

// isWithin reports whether path equals dir or lies below it
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CopyTree recursively copies the directory src to dst. dst must not exist;
// its parents are created as needed. Symlinks are followed and their
// targets copied as regular content. Modes and modification times of files
// and directories are preserved.
func (f *FileSystem) CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination %s: %w", dst, fs.ErrExist)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check destination %s: %w", dst, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", dst, err)
	}

	return copyDir(src, dst, info)
}

func copyDir(src, dst string, info os.FileInfo) error {
	perm := info.Mode().Perm()

	// Owner write is required while populating; the real mode is applied last
	if err := os.Mkdir(dst, perm|0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		entryInfo, err := os.Stat(srcPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", srcPath, err)
		}

		switch {
		case entryInfo.IsDir():
			if err := copyDir(srcPath, dstPath, entryInfo); err != nil {
				return err
			}
		case entryInfo.Mode().IsRegular():
			if err := copyFile(srcPath, dstPath, entryInfo); err != nil {
				return err
			}
		default:
			return fmt.Errorf("cannot copy %s: unsupported file type %s", srcPath, entryInfo.Mode().Type())
		}
	}

	if err := os.Chmod(dst, perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}

	// Populating dst bumped its mtime, so times go last
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set times on %s: %w", dst, err)
	}
	return nil
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	// Explicitly check close error so short writes are not lost
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	// OpenFile applies the umask; restore the exact source mode
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set times on %s: %w", dst, err)
	}

	return nil
}

// Stats walks a tree and counts files, directories and bytes. The root
// itself is not counted as a directory.
func (f *FileSystem) Stats(root string) (TreeStats, error) {
	var stats TreeStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			stats.Dirs++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return TreeStats{}, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return stats, nil
}

// ListDirectory lists all entries in a directory
func (f *FileSystem) ListDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names, nil
}
