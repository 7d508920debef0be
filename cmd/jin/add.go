package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/hostvcs"
	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/objstore"
	"github.com/jinvcs/jin/internal/jin/staging"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var addFlags staging.TargetFlags

var addCmd = &cobra.Command{
	Use:     "add <path>...",
	GroupID: "core",
	Short:   "Stage one or more workspace files to a target layer",
	Long: `Stage each given path, relative to the project directory, to
the target layer named by --mode/--scope/--project/--local, or to the
store's configured default layer (ProjectBase unless overridden) when
no layer flag is given. Re-staging an already-staged path overwrites
its target layer.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}

		defaultLayer := layer.ProjectBase
		cfg, err := loadStoreConfig()
		if err != nil {
			exitWith(err)
		}
		if l, err := layer.Parse(cfg.Stage.DefaultLayer); err == nil {
			defaultLayer = l
		}

		target, err := addFlags.Resolve(defaultLayer)
		if err != nil {
			exitWith(err)
		}
		if !layer.Applicable(target, ctx) {
			exitWith(jinerr.Newf(jinerr.KindConfig, "target layer %s is not applicable under the active mode/scope/project context", target))
		}

		idx, err := staging.Load(projectDir)
		if err != nil {
			exitWith(err)
		}

		for _, arg := range args {
			rel, err := relativeToProject(arg)
			if err != nil {
				exitWith(err)
			}

			full := filepath.Join(projectDir, rel)
			data, info, err := readWorkspaceFile(full)
			if err != nil {
				exitWith(err)
			}

			if w, ok := hostvcs.Check(projectDir, rel); ok {
				logger.Warn("host VCS advisory", "path", rel, "reason", w.Reason)
				fmt.Printf("%s %s is %s\n", ui.RenderWarn("note:"), rel, w.Reason)
			}

			oid, err := store.CreateBlob(data)
			if err != nil {
				exitWith(err)
			}

			mode := modeFromInfo(info)
			idx.Add(staging.Entry{Path: rel, TargetLayer: target, ContentOID: oid, Mode: mode, Op: staging.OpUpsert})
			fmt.Printf("%s staged %s -> %s\n", ui.RenderPass("+"), rel, target)
		}

		if err := idx.Save(); err != nil {
			exitWith(err)
		}
	},
}

func init() {
	addCmd.Flags().StringVar(&addFlags.Mode, "mode", "", "target layer's mode component")
	addCmd.Flags().StringVar(&addFlags.Scope, "scope", "", "target layer's scope component")
	addCmd.Flags().StringVar(&addFlags.Project, "project", "", "target layer's project component")
	addCmd.Flags().BoolVar(&addFlags.Local, "local", false, "stage to UserLocal (mutually exclusive with other layer flags)")
	rootCmd.AddCommand(addCmd)
}

func relativeToProject(arg string) (string, error) {
	abs := arg
	if !filepath.IsAbs(arg) {
		abs = filepath.Join(projectDir, arg)
	}
	rel, err := filepath.Rel(projectDir, abs)
	if err != nil {
		return "", jinerr.Wrap(jinerr.KindConfig, "resolve path relative to project directory", err)
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", jinerr.Newf(jinerr.KindConfig, "%s is outside the project directory", arg)
	}
	return filepath.ToSlash(rel), nil
}

func readWorkspaceFile(full string) ([]byte, os.FileInfo, error) {
	info, err := os.Stat(full)
	if err != nil {
		return nil, nil, jinerr.Wrap(jinerr.KindIO, "stat "+full, err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, nil, jinerr.Wrap(jinerr.KindIO, "read "+full, err)
	}
	return data, info, nil
}

func modeFromInfo(info os.FileInfo) objstore.Mode {
	if runtime.GOOS != "windows" && info.Mode()&0o111 != 0 {
		return objstore.ModeExecutable
	}
	return objstore.ModeRegular
}
