package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zoro11031/copy-skill/internal/cli"
	"github.com/zoro11031/copy-skill/internal/skill"
	"github.com/zoro11031/copy-skill/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show source and destination status",
	Long:  `Display which subtrees exist on each side, their sizes, and when each was last copied.`,
	Args:  cobra.NoArgs,
	RunE:  showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewContext(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	statuses, err := skill.Status(ctx.FS, ctx.Markers, ctx.Source, ctx.Dest, ctx.Subtrees)
	if err != nil {
		return err
	}

	ctx.UI.Header("Skill Copy Status")
	ctx.UI.Infof("Source:      %s", ctx.Source)
	ctx.UI.Infof("Destination: %s", ctx.Dest)
	ctx.UI.Print("")

	inSync := 0
	for _, st := range statuses {
		switch {
		case !st.SourceExists:
			ctx.UI.Errorf("%s: missing from source (%s)", st.Name, st.Source)
		case !st.DestExists:
			ctx.UI.Warningf("%s: not copied (%d files, %s in source)",
				st.Name, st.SourceStats.Files, ui.HumanSize(st.SourceStats.Bytes))
		case st.InSync():
			inSync++
			ctx.UI.Successf("%s: %d files, %s", st.Name, st.DestStats.Files, ui.HumanSize(st.DestStats.Bytes))
		default:
			ctx.UI.Warningf("%s: differs (source %d files/%s, destination %d files/%s)",
				st.Name,
				st.SourceStats.Files, ui.HumanSize(st.SourceStats.Bytes),
				st.DestStats.Files, ui.HumanSize(st.DestStats.Bytes))
		}

		if !st.CopiedAt.IsZero() {
			ctx.UI.Printf("    last copied %s", st.CopiedAt.Local().Format("2006-01-02 15:04:05"))
		}
	}

	strayEntries, strayMarkers, err := skill.Strays(ctx.FS, ctx.Markers, ctx.Dest, ctx.Subtrees)
	if err != nil {
		return err
	}
	for _, name := range strayEntries {
		ctx.UI.Warningf("%s: in destination but not a configured subtree", name)
	}
	if len(strayMarkers) > 0 {
		ctx.UI.Warningf("Stale completion markers: %s", strings.Join(strayMarkers, ", "))
	}

	ctx.UI.Print("")
	ctx.UI.Separator()
	ctx.UI.Infof("%d/%d subtrees in sync", inSync, len(statuses))
	ctx.UI.Infof("Configuration file: %s", ctx.Config.FilePath())

	return nil
}
