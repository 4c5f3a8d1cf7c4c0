package skill

import (
	"fmt"
	"time"

	"github.com/zoro11031/copy-skill/internal/config"
	"github.com/zoro11031/copy-skill/internal/system"
)

// SubtreeStatus describes one subtree on both sides of the copy
type SubtreeStatus struct {
	Entry
	SourceExists bool
	SourceStats  system.TreeStats
	DestExists   bool
	DestStats    system.TreeStats
	CopiedAt     time.Time // zero when no marker is recorded
}

// InSync reports whether the destination holds as many files and bytes as
// the source
func (s SubtreeStatus) InSync() bool {
	return s.SourceExists && s.DestExists && s.SourceStats == s.DestStats
}

// Status inspects every planned subtree without modifying anything.
// markers is the base marker directory given to NewCopier.
func Status(fsys *system.FileSystem, markers *config.Markers, source, dest string, subtrees []string) ([]SubtreeStatus, error) {
	entries, err := Plan(source, dest, subtrees)
	if err != nil {
		return nil, err
	}

	destMarkers, err := destinationMarkers(markers, dest)
	if err != nil {
		return nil, err
	}

	statuses := make([]SubtreeStatus, 0, len(entries))
	for _, entry := range entries {
		st := SubtreeStatus{Entry: entry}

		if st.SourceExists, err = fsys.DirectoryExists(entry.Source); err != nil {
			return nil, err
		}
		if st.SourceExists {
			if st.SourceStats, err = fsys.Stats(entry.Source); err != nil {
				return nil, fmt.Errorf("failed to inspect source %s: %w", entry.Name, err)
			}
		}

		if st.DestExists, err = fsys.DirectoryExists(entry.Dest); err != nil {
			return nil, err
		}
		if st.DestExists {
			if st.DestStats, err = fsys.Stats(entry.Dest); err != nil {
				return nil, fmt.Errorf("failed to inspect destination %s: %w", entry.Name, err)
			}
		}

		if destMarkers != nil {
			copiedAt, ok, err := destMarkers.Time(entry.MarkerName())
			if err != nil {
				return nil, err
			}
			if ok {
				st.CopiedAt = copiedAt
			}
		}

		statuses = append(statuses, st)
	}

	return statuses, nil
}

// Strays lists destination entries and completion markers that belong to
// none of the given subtrees, e.g. after the subtree list was changed
func Strays(fsys *system.FileSystem, markers *config.Markers, dest string, subtrees []string) (entries, markerNames []string, err error) {
	known := make(map[string]bool, len(subtrees))
	knownMarkers := make(map[string]bool, len(subtrees))
	for _, name := range subtrees {
		known[name] = true
		knownMarkers[MarkerName(name)] = true
	}

	exists, err := fsys.DirectoryExists(dest)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		names, err := fsys.ListDirectory(dest)
		if err != nil {
			return nil, nil, err
		}
		for _, name := range names {
			if !known[name] {
				entries = append(entries, name)
			}
		}
	}

	destMarkers, err := destinationMarkers(markers, dest)
	if err != nil {
		return nil, nil, err
	}
	if destMarkers != nil {
		names, err := destMarkers.List()
		if err != nil {
			return nil, nil, err
		}
		for _, name := range names {
			if !knownMarkers[name] {
				markerNames = append(markerNames, name)
			}
		}
	}

	return entries, markerNames, nil
}
