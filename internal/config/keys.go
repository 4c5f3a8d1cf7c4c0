package config

import (
	"path/filepath"
	"strings"
)

// Configuration key constants
const (
	KeySourceDir = "SKILL_SOURCE_DIR" // Root containing the subtrees to copy
	KeyDestDir   = "SKILL_DEST_DIR"   // Directory replaced on every run
	KeySubtrees  = "SKILL_SUBTREES"   // Comma-separated subtree names, copied in order
)

// DefaultSubtrees are copied in this order when nothing else is configured
var DefaultSubtrees = []string{"scripts", "data"}

// Defaults returns the default values for configuration keys
func Defaults() map[string]string {
	return map[string]string{
		KeySourceDir: filepath.Join(homeDir(), "Downloads", "skills", "ui-ux-pro-max-skill", "src", "ui-ux-pro-max"),
		KeyDestDir:   ".skill",
		KeySubtrees:  strings.Join(DefaultSubtrees, ","),
	}
}
