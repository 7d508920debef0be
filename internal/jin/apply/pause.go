package apply

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/mergeengine"
	"github.com/jinvcs/jin/internal/jin/objstore"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

// pauseOnConflicts implements spec.md §4.7 step 5: for each conflicting
// path, a .jinmerge file is written from the two highest-precedence
// contributing layers, a PausedState is persisted, and no merged file
// or attachment metadata is written at all — a conflict-paused apply
// is not an error (spec.md §7); it prints a paused-state summary and
// exits 0.
func pauseOnConflicts(
	store *objstore.Store,
	projectDir string,
	ctx layer.Context,
	trees []layerTree,
	conflicts []string,
	cleanMerged map[string][]byte,
	log *slog.Logger,
) (Result, error) {
	sort.Strings(conflicts)

	layerConfig := map[string]string{}
	if ctx.Mode != "" {
		layerConfig["mode"] = ctx.Mode
	}
	if ctx.Scope != "" {
		layerConfig["scope"] = ctx.Scope
	}
	if ctx.Project != "" {
		layerConfig["project"] = ctx.Project
	}

	var appliedFiles []string // cleanly-merged files this run chose not to write, since the whole run pauses
	for p := range cleanMerged {
		appliedFiles = append(appliedFiles, p)
	}
	sort.Strings(appliedFiles)

	buffer := &workspace.PausedBuffer{Files: map[string]objstore.OID{}}
	for _, path := range appliedFiles {
		oid, err := store.CreateBlob(cleanMerged[path])
		if err != nil {
			return Result{}, err
		}
		buffer.Files[path] = oid
	}
	if err := workspace.SavePausedBuffer(projectDir, buffer); err != nil {
		return Result{}, err
	}

	for _, path := range conflicts {
		contributors := contributingLayers(trees, path)
		if len(contributors) < 2 {
			log.Warn("conflict path has fewer than two contributors; writing best-effort jinmerge", "path", path)
		}
		lo, hi := twoHighestPrecedence(contributors)

		loContent, err := store.FindBlob(lo.files[path])
		if err != nil {
			return Result{}, err
		}
		hiContent, err := store.FindBlob(hi.files[path])
		if err != nil {
			return Result{}, err
		}

		cf := mergeengine.ConflictFile{Regions: []mergeengine.ConflictRegion{{
			Layer1Ref:     lo.ref,
			Layer1Content: string(loContent),
			Layer2Ref:     hi.ref,
			Layer2Content: string(hiContent),
		}}}

		full := filepath.Join(projectDir, path+".jinmerge")
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return Result{}, jinerr.Wrap(jinerr.KindIO, "create workspace directory for "+path, err)
		}
		if err := os.WriteFile(full, []byte(mergeengine.Write(cf)), 0o644); err != nil {
			return Result{}, jinerr.Wrap(jinerr.KindIO, "write jinmerge file for "+path, err)
		}
	}

	paused := &workspace.PausedState{
		Timestamp:     time.Now(),
		LayerConfig:   layerConfig,
		ConflictFiles: conflicts,
		AppliedFiles:  appliedFiles,
		ConflictCount: len(conflicts),
	}
	if err := workspace.SavePaused(projectDir, paused); err != nil {
		return Result{}, err
	}

	return Result{Paused: true, Conflicts: conflicts}, nil
}

func contributingLayers(trees []layerTree, path string) []layerTree {
	var out []layerTree
	for _, t := range trees {
		if _, ok := t.files[path]; ok {
			out = append(out, t)
		}
	}
	return out
}

// twoHighestPrecedence returns the two highest-precedence entries in
// contributors, in ascending order (lo, hi). contributors is already
// in ascending precedence order by construction (Run built trees from
// layer.ApplicableLayers, which is precedence-ordered).
func twoHighestPrecedence(contributors []layerTree) (lo, hi layerTree) {
	n := len(contributors)
	if n == 0 {
		return layerTree{}, layerTree{}
	}
	if n == 1 {
		return contributors[0], contributors[0]
	}
	return contributors[n-2], contributors[n-1]
}
