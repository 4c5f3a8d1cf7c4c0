package system

import (
	"sync"
)

// MockFileSystem is a mock of the FileSystem for testing purposes.
// It records every call in order and can fail chosen operations.
type MockFileSystem struct {
	mu    sync.Mutex
	Calls []string

	// Errors maps "remove:<path>" or "copy:<src>" to the error to return
	Errors map[string]error
}

// NewMockFileSystem creates a new MockFileSystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Errors: make(map[string]error),
	}
}

// RemoveDirectory records the removal and returns any configured error.
func (m *MockFileSystem) RemoveDirectory(path string) error {
	return m.record("remove:" + path)
}

// CopyTree records the copy and returns any configured error.
func (m *MockFileSystem) CopyTree(src, dst string) error {
	return m.record("copy:" + src)
}

func (m *MockFileSystem) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
	return m.Errors[call]
}
