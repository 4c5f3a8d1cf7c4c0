package common

import (
	"fmt"
	"strings"
)

// ValidatePath validates that a path is usable as a source or destination
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains NUL byte: %q", path)
	}
	return nil
}

// ValidateSubtreeName validates a top-level subtree name such as "scripts".
// A subtree is always a single path element directly under the source root.
func ValidateSubtreeName(name string) error {
	if name == "" {
		return fmt.Errorf("subtree name cannot be empty")
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("subtree name cannot contain path separators: %s", name)
	}
	if name == ".." || name == "." {
		return fmt.Errorf("subtree name cannot be '.' or '..': %s", name)
	}
	return nil
}

// ParseSubtrees splits a comma-separated subtree list, keeping order and
// dropping duplicates
func ParseSubtrees(list string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	for _, part := range strings.Split(list, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if err := ValidateSubtreeName(name); err != nil {
			return nil, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no subtrees specified in %q", list)
	}

	return names, nil
}
