package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/apply"
	"github.com/jinvcs/jin/internal/jin/ui"
)

var resolveCmd = &cobra.Command{
	Use:     "resolve <path>",
	GroupID: "core",
	Short:   "Resolve one conflicting path from a paused apply",
	Long: `Reads a previously paused apply, replaces <path>.jinmerge
(edited and stripped of conflict markers) at its original path, and
removes the path from the conflict set. When every conflict is
resolved, the run completes the apply; otherwise the paused state
stays alive for the remaining paths.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := apply.Resolve(store, projectDir, args[0])
		if err != nil {
			exitWith(err)
		}
		if result.Paused {
			fmt.Printf("%s %d conflicting path(s) remaining\n", ui.RenderWarn("⏸"), len(result.Conflicts))
			for _, c := range result.Conflicts {
				fmt.Printf("  %s.jinmerge\n", c)
			}
			return
		}
		fmt.Printf("%s apply complete, %d file(s) written\n", ui.RenderPass("✓"), len(result.FilesWritten))
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
