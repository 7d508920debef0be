package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/txn"
	"github.com/jinvcs/jin/internal/jin/ui"
)

var (
	repairCheck  bool
	repairDryRun bool
)

var repairCmd = &cobra.Command{
	Use:     "repair",
	GroupID: "maint",
	Short:   "Diagnose and fix store-level integrity problems",
	Long: `Walks every layer ref under the store, verifying that its
commit and tree decode and that every blob they reference is present,
and looks for leftover .tmp files from an interrupted write. With
--check, only reports; without it, --dry-run shows what repair would
do and omitting both applies fixes (clearing a crashed transaction
journal, removing orphaned .tmp files).`,
	Run: func(cmd *cobra.Command, args []string) {
		var problems []string

		refs, err := store.ListRefs("refs/jin/layers")
		if err != nil {
			exitWith(err)
		}
		for _, refPath := range refs {
			commitOID, err := store.ResolveRef(refPath)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: cannot resolve: %v", refPath, err))
				continue
			}
			c, err := store.FindCommit(commitOID)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: commit %s unreadable: %v", refPath, commitOID, err))
				continue
			}
			walked, err := store.WalkTree(c.Tree, true)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: tree %s unreadable: %v", refPath, c.Tree, err))
				continue
			}
			for _, w := range walked {
				if _, err := store.FindBlob(w.OID); err != nil {
					problems = append(problems, fmt.Sprintf("%s: blob %s for %s missing: %v", refPath, w.OID, w.Path, err))
				}
			}
		}

		tmpFiles, err := findTmpFiles(store.Root)
		if err != nil {
			exitWith(jinerr.Wrap(jinerr.KindIO, "scan store for leftover temp files", err))
		}
		for _, f := range tmpFiles {
			problems = append(problems, fmt.Sprintf("orphaned temp file: %s", f))
		}

		if txn.Exists(store.Root) {
			problems = append(problems, "a transaction journal is present (crash recovery has not run)")
		}

		if len(problems) == 0 {
			fmt.Printf("%s no problems found\n", ui.RenderPass("✓"))
			return
		}

		fmt.Printf("%s %d problem(s) found:\n", ui.RenderWarn("⚠"), len(problems))
		for _, p := range problems {
			fmt.Printf("  %s\n", p)
		}

		if repairCheck {
			return
		}
		if repairDryRun {
			fmt.Println("\nwould remove every orphaned temp file and run transaction recovery")
			return
		}

		for _, f := range tmpFiles {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				exitWith(jinerr.Wrap(jinerr.KindIO, "remove orphaned temp file "+f, err))
			}
		}
		if err := txn.Recover(store); err != nil {
			exitWith(err)
		}
		fmt.Printf("\n%s repaired: removed %d temp file(s), ran transaction recovery\n", ui.RenderPass("✓"), len(tmpFiles))
	},
}

func findTmpFiles(root string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".tmp") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func init() {
	repairCmd.Flags().BoolVar(&repairCheck, "check", false, "only report problems, never fix them")
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "show what repair would do, without doing it")
	rootCmd.AddCommand(repairCmd)
}
