// Package skill replaces a skill destination directory with fresh copies of
// the subtrees found under a skill source root.
package skill

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/zoro11031/copy-skill/internal/common"
	"github.com/zoro11031/copy-skill/internal/config"
	"github.com/zoro11031/copy-skill/internal/system"
	"github.com/zoro11031/copy-skill/internal/ui"
)

// Entry is one subtree copy: Source is copied to Dest
type Entry struct {
	Name   string
	Source string
	Dest   string
}

// MarkerName returns the completion marker recorded after the entry is copied
func (e Entry) MarkerName() string {
	return MarkerName(e.Name)
}

// MarkerName returns the completion marker name for a subtree
func MarkerName(subtree string) string {
	return "copied-" + subtree
}

// Plan returns the copies Run performs, in processing order
func Plan(source, dest string, subtrees []string) ([]Entry, error) {
	if err := common.ValidatePath(source); err != nil {
		return nil, fmt.Errorf("invalid source: %w", err)
	}
	if err := common.ValidatePath(dest); err != nil {
		return nil, fmt.Errorf("invalid destination: %w", err)
	}
	if len(subtrees) == 0 {
		return nil, fmt.Errorf("no subtrees to copy")
	}

	entries := make([]Entry, 0, len(subtrees))
	for _, name := range subtrees {
		if err := common.ValidateSubtreeName(name); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name:   name,
			Source: filepath.Join(source, name),
			Dest:   filepath.Join(dest, name),
		})
	}

	return entries, nil
}

// Copier resets a destination and copies subtrees into it
type Copier struct {
	fs      system.FileSystemManager
	out     io.Writer
	ui      *ui.UI
	markers *config.Markers
}

// NewCopier creates a Copier. Per-subtree result lines go to out. markers is
// the base marker directory; each destination is tracked separately below
// it. It may be nil when completion tracking is not wanted.
func NewCopier(fs system.FileSystemManager, out io.Writer, u *ui.UI, markers *config.Markers) *Copier {
	return &Copier{
		fs:      fs,
		out:     out,
		ui:      u,
		markers: markers,
	}
}

// Run removes dest, then copies each subtree of source into it in order.
// It stops at the first failure; subtrees copied before the failure stay in
// place.
func (c *Copier) Run(source, dest string, subtrees []string) error {
	entries, err := Plan(source, dest, subtrees)
	if err != nil {
		return err
	}

	if err := c.Reset(dest); err != nil {
		return err
	}

	markers, err := destinationMarkers(c.markers, dest)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := c.fs.CopyTree(entry.Source, entry.Dest); err != nil {
			return fmt.Errorf("failed to copy %s: %w", entry.Name, err)
		}
		fmt.Fprintf(c.out, "Copied %s to %s\n", entry.Name, entry.Dest)

		if markers != nil {
			if err := markers.Create(entry.MarkerName()); err != nil {
				c.ui.Warningf("Failed to record completion of %s: %v", entry.Name, err)
			}
		}
	}

	return nil
}

// Reset removes dest and everything below it. The destination's completion
// markers are cleared only once the removal succeeded.
func (c *Copier) Reset(dest string) error {
	if err := c.fs.RemoveDirectory(dest); err != nil {
		return fmt.Errorf("failed to reset destination: %w", err)
	}

	markers, err := destinationMarkers(c.markers, dest)
	if err != nil {
		return err
	}
	if markers != nil {
		if err := markers.RemoveAll(); err != nil {
			return fmt.Errorf("failed to clear completion markers: %w", err)
		}
	}
	return nil
}

// destinationMarkers scopes base to dest; a nil base yields nil
func destinationMarkers(base *config.Markers, dest string) (*config.Markers, error) {
	if base == nil {
		return nil, nil
	}
	return base.ForDestination(dest)
}
