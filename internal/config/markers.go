package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Markers manages completion marker files. Each marker stores the RFC3339
// time it was written.
type Markers struct {
	dir string
}

// NewMarkers creates a new Markers instance. An empty dir selects
// ~/.local/copy-skill. Use ForDestination to scope markers to one
// destination.
func NewMarkers(dir string) *Markers {
	if dir == "" {
		dir = filepath.Join(homeDir(), ".local", "copy-skill")
	}

	return &Markers{
		dir: dir,
	}
}

// validateMarkerName ensures the marker name cannot escape the marker directory
func validateMarkerName(name string) error {
	if name == "" {
		return fmt.Errorf("marker name cannot be empty")
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("marker name cannot contain path separators: %s", name)
	}
	if name == ".." || name == "." {
		return fmt.Errorf("marker name cannot be '.' or '..': %s", name)
	}
	return nil
}

// ForDestination returns the markers recorded for one destination directory.
// Each destination gets its own subdirectory named from a hash of its
// absolute path, so runs into different destinations never share markers.
func (m *Markers) ForDestination(dest string) (*Markers, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination %s: %w", dest, err)
	}

	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return &Markers{
		dir: filepath.Join(m.dir, hex.EncodeToString(sum[:8])),
	}, nil
}

// Create writes a marker file stamped with the current time
func (m *Markers) Create(name string) error {
	if err := validateMarkerName(name); err != nil {
		return err
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}

	markerPath := filepath.Join(m.dir, name)
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(markerPath, []byte(stamp), 0644); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	return nil
}

// Time returns when a marker was written. The boolean is false when the
// marker does not exist.
func (m *Markers) Time(name string) (time.Time, bool, error) {
	if err := validateMarkerName(name); err != nil {
		return time.Time{}, false, err
	}

	content, err := os.ReadFile(filepath.Join(m.dir, name))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read marker %s: %w", name, err)
	}

	stamp, err := time.Parse(time.RFC3339, strings.TrimSpace(string(content)))
	if err != nil {
		return time.Time{}, true, fmt.Errorf("marker %s has invalid timestamp: %w", name, err)
	}

	return stamp, true, nil
}

// RemoveAll removes all marker files
func (m *Markers) RemoveAll() error {
	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		return nil
	}

	return os.RemoveAll(m.dir)
}

// List returns all marker names
func (m *Markers) List() ([]string, error) {
	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker directory: %w", err)
	}

	var markers []string
	for _, entry := range entries {
		if !entry.IsDir() {
			markers = append(markers, entry.Name())
		}
	}

	return markers, nil
}

// Dir returns the marker directory path
func (m *Markers) Dir() string {
	return m.dir
}
