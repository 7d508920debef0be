package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/apply"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var applyForce bool

var applyCmd = &cobra.Command{
	Use:     "apply",
	GroupID: "core",
	Short:   "Materialize committed layer state into the workspace",
	Long: `Collect every applicable layer's committed tree, merge each
contributing path across layers, and write the result into the
project directory. A path that collides across layers in a way the
merge engine cannot resolve automatically pauses the apply: a
.jinmerge file is written for each conflicting path and the run exits
0 with a paused-state summary, not an error.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		cfg, err := loadStoreConfig()
		if err != nil {
			exitWith(err)
		}

		result, err := apply.Run(store, projectDir, ctx, apply.Options{
			Force:     applyForce,
			KeyFields: cfg.Merge.KeyFields,
			Logger:    logger,
		})
		if err != nil {
			exitWith(err)
		}

		if result.Paused {
			fmt.Printf("%s apply paused: %d conflicting path(s)\n", ui.RenderWarn("⏸"), len(result.Conflicts))
			for _, c := range result.Conflicts {
				fmt.Printf("  %s.jinmerge\n", c)
			}
			fmt.Println("edit each .jinmerge file, remove the conflict markers, then run 'jin resolve <path>'")
			return
		}

		fmt.Printf("%s applied %d file(s) from %d layer(s)\n", ui.RenderPass("✓"), len(result.FilesWritten), len(result.AppliedRefs))
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyForce, "force", false, "validate workspace attachment before applying, refusing on divergence")
	rootCmd.AddCommand(applyCmd)
}
