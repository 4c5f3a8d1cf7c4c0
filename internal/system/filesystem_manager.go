package system

// FileSystemManager defines the file system operations the copier needs.
// This allows for mocking the file system in tests.
type FileSystemManager interface {
	RemoveDirectory(path string) error
	CopyTree(src, dst string) error
}
