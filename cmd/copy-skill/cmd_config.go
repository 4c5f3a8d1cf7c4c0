package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zoro11031/copy-skill/internal/cli"
	"github.com/zoro11031/copy-skill/internal/common"
	"github.com/zoro11031/copy-skill/internal/config"
)

// settableKeys maps user-facing names to configuration keys
var settableKeys = map[string]string{
	"source":   config.KeySourceDir,
	"dest":     config.KeyDestDir,
	"subtrees": config.KeySubtrees,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
	Long: `Show the effective settings, or persist defaults for later runs.

Keys: source, dest, subtrees`,
	Args: cobra.NoArgs,
	RunE: showConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  setConfig,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a saved setting so the default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  unsetConfig,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func lookupKey(name string) (string, error) {
	key, ok := settableKeys[name]
	if !ok {
		names := make([]string, 0, len(settableKeys))
		for n := range settableKeys {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", fmt.Errorf("unknown setting %q (valid: %v)", name, names)
	}
	return key, nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewContext(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx.UI.Bold("Effective settings")
	ctx.UI.Infof("Configuration file: %s", ctx.Config.FilePath())
	ctx.UI.Printf("source   = %s%s", ctx.Source, origin(ctx.Config, config.KeySourceDir, opts.Source))
	ctx.UI.Printf("dest     = %s%s", ctx.Dest, origin(ctx.Config, config.KeyDestDir, opts.Dest))
	ctx.UI.Printf("subtrees = %s%s", strings.Join(ctx.Subtrees, ","), origin(ctx.Config, config.KeySubtrees, opts.Subtrees))
	return nil
}

// origin labels where an effective value came from
func origin(cfg *config.Config, key, flagValue string) string {
	if flagValue != "" {
		return "  (flag)"
	}
	if _, err := cfg.Get(key); err == nil {
		return "  (saved)"
	}
	return "  (default)"
}

func setConfig(cmd *cobra.Command, args []string) error {
	key, err := lookupKey(args[0])
	if err != nil {
		return err
	}

	value := args[1]
	if key == config.KeySubtrees {
		if _, err := common.ParseSubtrees(value); err != nil {
			return err
		}
	} else if err := common.ValidatePath(value); err != nil {
		return err
	}

	cfg := config.New(opts.ConfigPath)
	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", args[0], err)
	}
	fmt.Printf("%s = %s\n", args[0], value)
	return nil
}

func unsetConfig(cmd *cobra.Command, args []string) error {
	key, err := lookupKey(args[0])
	if err != nil {
		return err
	}

	cfg := config.New(opts.ConfigPath)
	if !cfg.Exists(key) {
		fmt.Printf("%s is not set\n", args[0])
		return nil
	}
	if err := cfg.Delete(key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", args[0], err)
	}
	return nil
}
