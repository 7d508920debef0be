package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/commit"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/objstore"
	"github.com/jinvcs/jin/internal/jin/staging"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var (
	commitMessage string
	commitDryRun  bool
)

var commitCmd = &cobra.Command{
	Use:     "commit",
	GroupID: "core",
	Short:   "Create one commit per affected layer from the staging index",
	Long: `Group every staged entry by target layer, build one tree and
one commit per affected layer, and advance all their refs atomically.
On any failure no ref moves and the staging index is left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		idx, err := staging.Load(projectDir)
		if err != nil {
			exitWith(err)
		}

		cfg, err := loadStoreConfig()
		if err != nil {
			exitWith(err)
		}
		author := objstore.Signature{Name: cfg.Author.Name, Email: cfg.Author.Email}
		if author.Name == "" {
			author.Name = "jin"
		}

		if commitDryRun {
			affected := idx.AffectedLayers()
			if len(affected) == 0 {
				fmt.Println("nothing to commit")
				return
			}
			fmt.Println("would commit the following layers:")
			for _, l := range affected {
				fmt.Printf("  %s (%d files)\n", l, len(idx.EntriesForLayer(l)))
			}
			return
		}

		result, err := commit.Run(store, idx, ctx, author, commitMessage)
		if err != nil {
			exitWith(err)
		}

		var layers []layer.Layer
		for l := range result.LayerCommits {
			layers = append(layers, l)
		}
		sort.Slice(layers, func(i, j int) bool { return layer.Precedence(layers[i]) < layer.Precedence(layers[j]) })
		for _, l := range layers {
			fmt.Printf("%s %s -> %s\n", ui.RenderPass("✓"), l, result.LayerCommits[l])
		}
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	commitCmd.Flags().BoolVar(&commitDryRun, "dry-run", false, "show which layers would be committed, without committing")
	rootCmd.AddCommand(commitCmd)
}
