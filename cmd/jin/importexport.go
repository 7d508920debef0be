package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/mergeengine"
	"github.com/jinvcs/jin/internal/jin/staging"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var importFlags staging.TargetFlags

// importCmd stages a file found anywhere on the filesystem under a
// project-relative path, for cases where the source document does not
// already live inside the project directory (spec.md §6 names
// import(paths) as a distinct operation from add(paths), which only
// ever reads from inside the project).
var importCmd = &cobra.Command{
	Use:     "import <source> <project-relative-path>",
	GroupID: "core",
	Short:   "Stage an external file into the project under a given path",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		source, relPath := args[0], filepath.ToSlash(args[1])

		data, err := os.ReadFile(source)
		if err != nil {
			exitWith(jinerr.Wrap(jinerr.KindIO, "read import source "+source, err))
		}

		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		cfg, err := loadStoreConfig()
		if err != nil {
			exitWith(err)
		}
		defaultLayer := layer.ProjectBase
		if l, err := layer.Parse(cfg.Stage.DefaultLayer); err == nil {
			defaultLayer = l
		}
		target, err := importFlags.Resolve(defaultLayer)
		if err != nil {
			exitWith(err)
		}
		if !layer.Applicable(target, ctx) {
			exitWith(jinerr.Newf(jinerr.KindConfig, "target layer %s is not applicable under the active context", target))
		}

		oid, err := store.CreateBlob(data)
		if err != nil {
			exitWith(err)
		}

		idx, err := staging.Load(projectDir)
		if err != nil {
			exitWith(err)
		}
		idx.Add(staging.Entry{Path: relPath, TargetLayer: target, ContentOID: oid, Op: staging.OpUpsert})
		if err := idx.Save(); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s imported %s as %s -> %s\n", ui.RenderPass("+"), source, relPath, target)
	},
}

// exportCmd writes the cross-layer merged view of one or more
// committed paths out to an arbitrary destination, bypassing the
// workspace and its attachment bookkeeping entirely — a read-only
// snapshot rather than a materialization (spec.md §6 names export as
// the dual of import).
var exportCmd = &cobra.Command{
	Use:     "export <path> <destination>",
	GroupID: "core",
	Short:   "Write the merged, committed view of a path to a destination file",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		path, dest := filepath.ToSlash(args[0]), args[1]

		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		cfg, err := loadStoreConfig()
		if err != nil {
			exitWith(err)
		}

		applicable := layer.ApplicableLayers(ctx)
		var contents []mergeengine.LayerContent
		for _, l := range applicable {
			refPath, err := layer.RefPath(l, ctx)
			if err != nil {
				continue
			}
			if !store.RefExists(refPath) {
				continue
			}
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
				if w.Path != path {
					continue
				}
				data, err := store.FindBlob(w.OID)
				if err != nil {
					exitWith(err)
				}
				contents = append(contents, mergeengine.LayerContent{RefPath: refPath, Content: data})
			}
		}

		if len(contents) == 0 {
			exitWith(jinerr.Newf(jinerr.KindNotFound, "%s is not present in any applicable committed layer", path))
		}

		result := mergeengine.MergePath(path, contents, cfg.Merge.KeyFields)
		if result.Conflict {
			exitWith(jinerr.Newf(jinerr.KindMergeConflict, "%s has an unresolved cross-layer collision; run 'jin apply' to see the conflict", path))
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			exitWith(jinerr.Wrap(jinerr.KindIO, "create export destination directory", err))
		}
		if err := os.WriteFile(dest, result.Merged, 0o644); err != nil {
			exitWith(jinerr.Wrap(jinerr.KindIO, "write export destination", err))
		}
		fmt.Printf("%s exported %s -> %s\n", ui.RenderPass("✓"), path, dest)
	},
}

func init() {
	importCmd.Flags().StringVar(&importFlags.Mode, "mode", "", "target layer's mode component")
	importCmd.Flags().StringVar(&importFlags.Scope, "scope", "", "target layer's scope component")
	importCmd.Flags().StringVar(&importFlags.Project, "project", "", "target layer's project component")
	importCmd.Flags().BoolVar(&importFlags.Local, "local", false, "stage to UserLocal (mutually exclusive with other layer flags)")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}
