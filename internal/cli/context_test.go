package cli

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/zoro11031/copy-skill/internal/config"
)

func TestNewContextDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	ctx, err := NewContext(Options{
		ConfigPath: filepath.Join(tmpDir, "copy-skill.conf"),
		MarkerDir:  filepath.Join(tmpDir, "markers"),
	})
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	if ctx.Dest != ".skill" {
		t.Errorf("Dest = %q, want %q", ctx.Dest, ".skill")
	}
	if ctx.Source != config.Defaults()[config.KeySourceDir] {
		t.Errorf("Source = %q, want default", ctx.Source)
	}
	if want := []string{"scripts", "data"}; !reflect.DeepEqual(ctx.Subtrees, want) {
		t.Errorf("Subtrees = %v, want %v", ctx.Subtrees, want)
	}
	if ctx.Markers.Dir() != filepath.Join(tmpDir, "markers") {
		t.Errorf("Markers.Dir() = %q", ctx.Markers.Dir())
	}
}

func TestNewContextPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "copy-skill.conf")

	cfg := config.New(configPath)
	cfg.Set(config.KeySourceDir, "/configured/source")
	cfg.Set(config.KeyDestDir, "configured-dest")
	cfg.Set(config.KeySubtrees, "data")

	ctx, err := NewContext(Options{
		ConfigPath: configPath,
		MarkerDir:  filepath.Join(tmpDir, "markers"),
		Dest:       "flag-dest",
	})
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}

	if ctx.Source != "/configured/source" {
		t.Errorf("Source = %q, want config value", ctx.Source)
	}
	if ctx.Dest != "flag-dest" {
		t.Errorf("Dest = %q, want flag value", ctx.Dest)
	}
	if !reflect.DeepEqual(ctx.Subtrees, []string{"data"}) {
		t.Errorf("Subtrees = %v, want [data]", ctx.Subtrees)
	}
}

func TestNewContextRejectsInvalidSubtrees(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := NewContext(Options{
		ConfigPath: filepath.Join(tmpDir, "copy-skill.conf"),
		MarkerDir:  filepath.Join(tmpDir, "markers"),
		Subtrees:   "scripts,../etc",
	})
	if err == nil {
		t.Error("NewContext() error = nil, want invalid subtree error")
	}
}

func TestNewContextNonInteractive(t *testing.T) {
	tmpDir := t.TempDir()

	ctx, err := NewContext(Options{
		ConfigPath:     filepath.Join(tmpDir, "copy-skill.conf"),
		MarkerDir:      filepath.Join(tmpDir, "markers"),
		NonInteractive: true,
	})
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	if !ctx.UI.IsNonInteractive() {
		t.Error("UI not in non-interactive mode")
	}
}
