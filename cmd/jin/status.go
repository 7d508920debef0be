package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/staging"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "core",
	Short:   "Show the active context, staged changes, and workspace drift",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		fmt.Printf("%s\n", ui.RenderAccent("context"))
		fmt.Printf("  mode=%q scope=%q project=%q\n", ctx.Mode, ctx.Scope, ctx.Project)

		if workspace.IsPaused(projectDir) {
			paused, err := workspace.LoadPaused(projectDir)
			if err != nil {
				exitWith(err)
			}
			fmt.Printf("\n%s apply paused since %s: %d conflicting path(s)\n",
				ui.RenderWarn("⏸"), paused.Timestamp.Format("2006-01-02 15:04:05"), paused.ConflictCount)
			for _, c := range paused.ConflictFiles {
				fmt.Printf("  %s.jinmerge\n", c)
			}
		}

		idx, err := staging.Load(projectDir)
		if err != nil {
			exitWith(err)
		}
		fmt.Printf("\n%s (%d path(s))\n", ui.RenderAccent("staged"), idx.Len())
		for _, l := range idx.AffectedLayers() {
			fmt.Printf("  %s:\n", l)
			for _, e := range idx.EntriesForLayer(l) {
				fmt.Printf("    %s %s\n", e.Op, e.Path)
			}
		}

		meta, err := workspace.LoadMetadata(projectDir)
		if err != nil {
			exitWith(err)
		}
		if meta == nil {
			fmt.Printf("\n%s workspace has never been applied\n", ui.RenderDim("note:"))
			return
		}
		changes, err := workspace.ScanForExternalChanges(projectDir, meta)
		if err != nil {
			exitWith(err)
		}
		fmt.Printf("\n%s (last applied %s)\n", ui.RenderAccent("workspace drift"), meta.Timestamp.Format("2006-01-02 15:04:05"))
		if len(changes) == 0 {
			fmt.Println("  clean")
			return
		}
		for _, c := range changes {
			fmt.Printf("  %s %s\n", c.Op, c.Path)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
