package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoro11031/copy-skill/internal/cli"
)

var (
	resetForce  bool
	resetConfig bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the destination directory",
	Long: `Delete the destination directory and clear completion markers.

By default, this command asks for confirmation and does NOT delete your
configuration file.

Use --config to also delete the configuration file and start completely fresh.`,
	Args: cobra.NoArgs,
	RunE: resetDestination,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")
	resetCmd.Flags().BoolVarP(&resetConfig, "config-file", "c", false, "Also delete configuration file")
	resetCmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false, "Never prompt; without --force the reset is cancelled")
	rootCmd.AddCommand(resetCmd)
}

func resetDestination(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewContext(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if !resetForce && ctx.UI.IsNonInteractive() {
		ctx.UI.Warning("Reset skipped: --non-interactive requires --force")
		return nil
	}

	if !resetForce {
		ctx.UI.Header("Reset Skill Copy")
		ctx.UI.Warningf("This will delete %s and everything in it", ctx.Dest)
		if resetConfig {
			ctx.UI.Warning("Configuration file will also be DELETED")
			ctx.UI.Warningf("  %s", ctx.Config.FilePath())
		}
		ctx.UI.Print("")

		confirm, err := ctx.UI.PromptYesNo("Are you sure you want to reset?", false)
		if err != nil {
			return err
		}

		if !confirm {
			ctx.UI.Info("Reset cancelled")
			return nil
		}
	}

	if err := ctx.Copier().Reset(ctx.Dest); err != nil {
		return err
	}
	ctx.UI.Successf("✓ Removed %s", ctx.Dest)

	if resetConfig {
		configPath := ctx.Config.FilePath()
		exists, err := ctx.FS.FileExists(configPath)
		if err != nil {
			return err
		}
		if !exists {
			ctx.UI.Info("  (Config file did not exist)")
			return nil
		}
		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to remove config file: %w", err)
		}
		ctx.UI.Successf("✓ Configuration file deleted: %s", configPath)
	}

	return nil
}
