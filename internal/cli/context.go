// Package cli wires configuration, output and the filesystem together for the
// copy-skill commands.
package cli

import (
	"fmt"
	"os"

	"github.com/zoro11031/copy-skill/internal/common"
	"github.com/zoro11031/copy-skill/internal/config"
	"github.com/zoro11031/copy-skill/internal/skill"
	"github.com/zoro11031/copy-skill/internal/system"
	"github.com/zoro11031/copy-skill/internal/ui"
)

// Options holds command-line overrides. Empty fields fall back to the
// configuration file and then to defaults.
type Options struct {
	ConfigPath     string
	MarkerDir      string
	Source         string
	Dest           string
	Subtrees       string
	NonInteractive bool
}

// Context holds all dependencies needed by the commands
type Context struct {
	Config  *config.Config
	Markers *config.Markers
	UI      *ui.UI
	FS      *system.FileSystem

	Source   string
	Dest     string
	Subtrees []string
}

// NewContext loads configuration and resolves source, destination and
// subtrees from opts
func NewContext(opts Options) (*Context, error) {
	cfg := config.New(opts.ConfigPath)
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	u := ui.New()
	u.SetNonInteractive(opts.NonInteractive)

	ctx := &Context{
		Config:  cfg,
		Markers: config.NewMarkers(opts.MarkerDir),
		UI:      u,
		FS:      system.NewFileSystem(),
		Source:  cfg.Resolve(config.KeySourceDir, opts.Source),
		Dest:    cfg.Resolve(config.KeyDestDir, opts.Dest),
	}

	if err := common.ValidatePath(ctx.Source); err != nil {
		return nil, fmt.Errorf("invalid source directory: %w", err)
	}
	if err := common.ValidatePath(ctx.Dest); err != nil {
		return nil, fmt.Errorf("invalid destination directory: %w", err)
	}

	subtrees, err := common.ParseSubtrees(cfg.Resolve(config.KeySubtrees, opts.Subtrees))
	if err != nil {
		return nil, fmt.Errorf("invalid subtree list: %w", err)
	}
	ctx.Subtrees = subtrees

	return ctx, nil
}

// Copier returns a copier writing its per-subtree lines to stdout
func (c *Context) Copier() *skill.Copier {
	return skill.NewCopier(c.FS, os.Stdout, c.UI, c.Markers)
}
