package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/apply"
	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/staging"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var resetCmd = &cobra.Command{
	Use:     "reset {soft|mixed|hard}",
	GroupID: "core",
	Short:   "Unstage pending changes, and optionally discard workspace drift",
	Long: `soft clears the staging index only. mixed does the same and
additionally discards a paused apply's conflict state (the
.jinmerge files themselves are left for the user to clean up by
hand). hard additionally re-materializes the workspace from the
current committed layer state, overwriting any uncommitted workspace
edits; it refuses when the workspace is detached from its last
recorded apply, exactly like 'apply --force'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mode := args[0]
		if mode != "soft" && mode != "mixed" && mode != "hard" {
			exitWith(jinerr.Newf(jinerr.KindConfig, "reset mode must be one of soft, mixed, hard (got %q)", mode))
		}

		idx, err := staging.Load(projectDir)
		if err != nil {
			exitWith(err)
		}
		idx.Clear()
		if err := idx.Save(); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s staging index cleared\n", ui.RenderPass("✓"))

		if mode == "soft" {
			return
		}

		if workspace.IsPaused(projectDir) {
			if err := workspace.RemovePaused(projectDir); err != nil {
				exitWith(err)
			}
			if err := workspace.RemovePausedBuffer(projectDir); err != nil {
				exitWith(err)
			}
			fmt.Printf("%s discarded paused apply state\n", ui.RenderPass("✓"))
		}

		if mode == "mixed" {
			return
		}

		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		cfg, err := loadStoreConfig()
		if err != nil {
			exitWith(err)
		}
		if err := workspace.ValidateWorkspaceAttached(store, projectDir, ctx); err != nil {
			exitWith(err)
		}
		result, err := apply.Run(store, projectDir, ctx, apply.Options{KeyFields: cfg.Merge.KeyFields, Logger: logger})
		if err != nil {
			exitWith(err)
		}
		if result.Paused {
			fmt.Printf("%s re-apply paused: %d conflicting path(s)\n", ui.RenderWarn("⏸"), len(result.Conflicts))
			return
		}
		fmt.Printf("%s workspace reset to last committed state (%d file(s))\n", ui.RenderPass("✓"), len(result.FilesWritten))
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
