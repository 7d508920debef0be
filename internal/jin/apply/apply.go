// Package apply implements the apply pipeline (§4.7, C7): the inverse
// of commit. It turns committed layer state into a materialized
// workspace, detecting collisions across layers and pausing into a
// durable resume state when the merge engine can't resolve a path
// automatically.
package apply

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/jinlog"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/mergeengine"
	"github.com/jinvcs/jin/internal/jin/objstore"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

// Result summarizes one apply run for the CLI layer to render.
type Result struct {
	Paused      bool
	Conflicts   []string
	AppliedRefs []string
	FilesWritten []string
}

// Options configures a Run.
type Options struct {
	Force     bool
	KeyFields []string
	Logger    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return jinlog.Default
}

// layerTree is one applicable layer's materialized file set for this
// apply run.
type layerTree struct {
	layer layer.Layer
	ref   string
	files map[string]objstore.OID
}

// Run executes the apply pipeline described in spec.md §4.7.
func Run(store *objstore.Store, projectDir string, ctx layer.Context, opts Options) (Result, error) {
	log := opts.logger()

	if opts.Force {
		if err := workspace.ValidateWorkspaceAttached(store, projectDir, ctx); err != nil {
			return Result{}, err
		}
	}
	if workspace.IsPaused(projectDir) {
		return Result{}, jinerr.Wrap(jinerr.KindOther, "a previous apply is paused", jinerr.ErrApplyPaused)
	}

	applicable := layer.ApplicableLayers(ctx)

	var trees []layerTree
	for _, l := range applicable {
		refPath, err := layer.RefPath(l, ctx)
		if err != nil {
			return Result{}, err
		}
		if !store.RefExists(refPath) {
			continue
		}
		commitOID, err := store.ResolveRef(refPath)
		if err != nil {
			return Result{}, err
		}
		commit, err := store.FindCommit(commitOID)
		if err != nil {
			return Result{}, err
		}
		walked, err := store.WalkTree(commit.Tree, true)
		if err != nil {
			return Result{}, err
		}
		files := make(map[string]objstore.OID, len(walked))
		for _, w := range walked {
			files[w.Path] = w.OID
		}
		trees = append(trees, layerTree{layer: l, ref: refPath, files: files})
	}

	pathSet := map[string]bool{}
	for _, t := range trees {
		for p := range t.files {
			pathSet[p] = true
		}
	}
	paths := make([]string, 0, len(pathSet))
	for p := range pathSet {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	merged := map[string][]byte{}
	var conflicts []string
	var appliedRefs []string
	appliedRefSet := map[string]bool{}

	for _, path := range paths {
		var contents []mergeengine.LayerContent
		for _, t := range trees {
			oid, ok := t.files[path]
			if !ok {
				continue
			}
			data, err := store.FindBlob(oid)
			if err != nil {
				return Result{}, err
			}
			contents = append(contents, mergeengine.LayerContent{RefPath: t.ref, Content: data})
		}
		if len(contents) == 0 {
			continue
		}

		result := mergeengine.MergePath(path, contents, opts.KeyFields)
		if result.Err != nil {
			log.Warn("path parse error treated as conflict", "path", path, "error", result.Err)
		}
		if result.Conflict {
			if resolved, refs, ok := tryThreeWay(path, contents); ok {
				log.Info("text conflict resolved by 3-way merge against common ancestor", "path", path)
				merged[path] = resolved
				for _, ref := range refs {
					if !appliedRefSet[ref] {
						appliedRefSet[ref] = true
						appliedRefs = append(appliedRefs, ref)
					}
				}
				continue
			}
			conflicts = append(conflicts, path)
			continue
		}
		merged[path] = result.Merged
		for _, ref := range result.Sources {
			if !appliedRefSet[ref] {
				appliedRefSet[ref] = true
				appliedRefs = append(appliedRefs, ref)
			}
		}
	}
	sort.Strings(appliedRefs)

	if len(conflicts) > 0 {
		return pauseOnConflicts(store, projectDir, ctx, trees, conflicts, merged, log)
	}

	return writeClean(projectDir, merged, appliedRefs, log)
}

func writeClean(projectDir string, merged map[string][]byte, appliedRefs []string, log *slog.Logger) (Result, error) {
	paths := make([]string, 0, len(merged))
	for p := range merged {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files := make(map[string]string, len(paths))
	var written []string
	for _, path := range paths {
		full := filepath.Join(projectDir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return Result{}, jinerr.Wrap(jinerr.KindIO, "create workspace directory for "+path, err)
		}
		tmp := full + ".jin-tmp"
		if err := os.WriteFile(tmp, merged[path], 0o644); err != nil {
			return Result{}, jinerr.Wrap(jinerr.KindIO, "write workspace file "+path, err)
		}
		if err := os.Rename(tmp, full); err != nil {
			os.Remove(tmp)
			return Result{}, jinerr.Wrap(jinerr.KindIO, "rename workspace file "+path+" into place", err)
		}
		files[path] = workspace.ContentHash(merged[path])
		written = append(written, path)
	}

	oldMeta, err := workspace.LoadMetadata(projectDir)
	if err != nil {
		return Result{}, err
	}
	if oldMeta != nil {
		for path := range oldMeta.Files {
			if _, stillPresent := merged[path]; !stillPresent {
				// Deletion semantics during apply are underspecified
				// (spec.md §9 Open Questions); the safe default is to
				// leave the file on disk and warn, not delete it.
				log.Warn("file present in last apply but absent from every current layer; leaving on disk", "path", path)
			}
		}
	}

	meta := &workspace.Metadata{Timestamp: time.Now(), AppliedLayers: appliedRefs, Files: files}
	if err := workspace.SaveMetadata(projectDir, meta); err != nil {
		return Result{}, err
	}

	return Result{AppliedRefs: appliedRefs, FilesWritten: written}, nil
}

// tryThreeWay attempts to rescue a text path the collision gate flagged
// as conflicting when three or more layers contribute to it: the
// lowest-precedence contributor stands in as the common ancestor and
// the two highest-precedence contributors are diffed against it
// (spec.md §4.3's "3-way text merge" capability). With only two
// contributors there is no ancestor to diff against, so the collision
// gate's conflict stands (spec.md §4.3 step 3) and this always returns
// false.
func tryThreeWay(path string, contents []mergeengine.LayerContent) (merged []byte, refs []string, ok bool) {
	if mergeengine.DetectFormat(path) != mergeengine.Text || len(contents) < 3 {
		return nil, nil, false
	}
	base := contents[0]
	ours := contents[len(contents)-2]
	theirs := contents[len(contents)-1]

	result := mergeengine.TextMerge3Way(string(base.Content), string(ours.Content), string(theirs.Content))
	if !result.Clean {
		return nil, nil, false
	}
	return []byte(result.Merged), []string{base.RefPath, ours.RefPath, theirs.RefPath}, true
}
