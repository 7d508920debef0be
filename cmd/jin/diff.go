package main

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/staging"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var diffCmd = &cobra.Command{
	Use:     "diff [path]...",
	GroupID: "core",
	Short:   "Show what staged changes would change relative to the target layer's current committed content",
	Long: `For every staged path (or only the given paths, if any), diff
the staged content against the content currently committed to its
target layer's ref, if one exists. A path staged against an
as-yet-uncommitted layer diffs against an empty base.`,
	Run: func(cmd *cobra.Command, args []string) {
		idx, err := staging.Load(projectDir)
		if err != nil {
			exitWith(err)
		}
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}

		want := map[string]bool{}
		for _, a := range args {
			want[a] = true
		}

		paths := idx.Paths()
		any := false
		for _, path := range paths {
			if len(want) > 0 && !want[path] {
				continue
			}
			e, ok := idx.Get(path)
			if !ok {
				continue
			}
			staged, err := store.FindBlob(e.ContentOID)
			if err != nil {
				exitWith(err)
			}

			var before []byte
			refPath, err := layer.RefPath(e.TargetLayer, ctx)
			if err == nil && store.RefExists(refPath) {
				commitOID, err := store.ResolveRef(refPath)
				if err != nil {
					exitWith(err)
				}
				commitObj, err := store.FindCommit(commitOID)
				if err != nil {
					exitWith(err)
				}
				walked, err := store.WalkTree(commitObj.Tree, true)
				if err != nil {
					exitWith(err)
				}
				for _, w := range walked {
					if w.Path == path {
						data, err := store.FindBlob(w.OID)
						if err != nil {
							exitWith(err)
						}
						before = data
						break
					}
				}
			}

			any = true
			fmt.Printf("%s %s (%s)\n", ui.RenderAccent("---"), path, e.TargetLayer)
			dmp := diffmatchpatch.New()
			diffs := dmp.DiffMain(string(before), string(staged), false)
			diffs = dmp.DiffCleanupSemantic(diffs)
			fmt.Println(dmp.DiffPrettyText(diffs))
		}
		if !any {
			fmt.Println("no staged changes to diff")
		}
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
