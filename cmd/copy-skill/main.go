package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoro11031/copy-skill/internal/cli"
	"github.com/zoro11031/copy-skill/internal/ui"
	"github.com/zoro11031/copy-skill/pkg/version"
)

var opts cli.Options

var rootCmd = &cobra.Command{
	Use:   "copy-skill",
	Short: "Copy a skill's scripts and data into a local .skill directory",
	Long: `Replace the destination directory with fresh copies of the skill's
subtrees (scripts, then data) taken from the source directory.

The destination is deleted without confirmation before copying. Each copied
subtree is reported on stdout as "Copied <name> to <path>".

Run without arguments to copy using the configured paths.`,
	Version:       version.Short(),
	Args:          cobra.NoArgs,
	SilenceUsage:  true, // Usage is noise for filesystem errors
	SilenceErrors: true, // main formats errors
	RunE:          runCopy,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.Source, "source", "s", "", "Skill source directory (default from config)")
	flags.StringVarP(&opts.Dest, "dest", "d", "", "Destination directory (default from config, .skill)")
	flags.StringVar(&opts.Subtrees, "subtrees", "", "Comma-separated subtrees to copy, in order (default scripts,data)")
	flags.StringVar(&opts.ConfigPath, "config", "", "Configuration file (default ~/.copy-skill.conf)")
	flags.StringVar(&opts.MarkerDir, "marker-dir", "", "Completion marker directory (default ~/.local/copy-skill)")

	rootCmd.AddCommand(versionCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewContext(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if err := ctx.Copier().Run(ctx.Source, ctx.Dest, ctx.Subtrees); err != nil {
		return err
	}

	if stats, err := ctx.FS.Stats(ctx.Dest); err == nil {
		ctx.UI.Successf("%s ready: %d files, %s", ctx.Dest, stats.Files, ui.HumanSize(stats.Bytes))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
