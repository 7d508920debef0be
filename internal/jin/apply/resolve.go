package apply

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/jinlog"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/objstore"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

// Resolve implements spec.md §4.7 "Resume": the user has edited
// <path>.jinmerge to remove the conflict markers, and resolve replaces
// the .jinmerge file with the user's content at the original path,
// removing path from the conflict set. When the conflict set empties
// out, the pipeline transitions to the clean path using the
// previously-merged buffer plus every resolved path, then deletes the
// paused state. Partial resolution keeps the paused state alive.
func Resolve(store *objstore.Store, projectDir string, path string) (Result, error) {
	paused, err := workspace.LoadPaused(projectDir)
	if err != nil {
		return Result{}, err
	}
	if paused == nil {
		return Result{}, jinerr.New(jinerr.KindOther, "no apply is currently paused")
	}

	idx := indexOf(paused.ConflictFiles, path)
	if idx < 0 {
		return Result{}, jinerr.Newf(jinerr.KindNotFound, "%s is not an outstanding conflict", path)
	}

	jinmergePath := filepath.Join(projectDir, path+".jinmerge")
	resolvedContent, err := os.ReadFile(jinmergePath)
	if err != nil {
		return Result{}, jinerr.Wrap(jinerr.KindIO, "read resolved jinmerge file", err)
	}
	if looksLikeUnresolvedConflict(resolvedContent) {
		return Result{}, jinerr.Newf(jinerr.KindConfig, "%s still contains conflict markers", path+".jinmerge")
	}

	full := filepath.Join(projectDir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Result{}, jinerr.Wrap(jinerr.KindIO, "create workspace directory for "+path, err)
	}
	tmp := full + ".jin-tmp"
	if err := os.WriteFile(tmp, resolvedContent, 0o644); err != nil {
		return Result{}, jinerr.Wrap(jinerr.KindIO, "write resolved file "+path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return Result{}, jinerr.Wrap(jinerr.KindIO, "rename resolved file "+path+" into place", err)
	}
	if err := os.Remove(jinmergePath); err != nil && !os.IsNotExist(err) {
		return Result{}, jinerr.Wrap(jinerr.KindIO, "remove jinmerge file for "+path, err)
	}

	buffer, err := workspace.LoadPausedBuffer(projectDir)
	if err != nil {
		return Result{}, err
	}
	resolvedOID, err := store.CreateBlob(resolvedContent)
	if err != nil {
		return Result{}, err
	}
	buffer.Files[path] = resolvedOID
	if err := workspace.SavePausedBuffer(projectDir, buffer); err != nil {
		return Result{}, err
	}

	paused.ConflictFiles = append(paused.ConflictFiles[:idx], paused.ConflictFiles[idx+1:]...)
	paused.ConflictCount = len(paused.ConflictFiles)

	if len(paused.ConflictFiles) > 0 {
		if err := workspace.SavePaused(projectDir, paused); err != nil {
			return Result{}, err
		}
		return Result{Paused: true, Conflicts: paused.ConflictFiles}, nil
	}

	return finishResolve(store, projectDir, paused, buffer)
}

func indexOf(ss []string, target string) int {
	for i, s := range ss {
		if s == target {
			return i
		}
	}
	return -1
}

func looksLikeUnresolvedConflict(data []byte) bool {
	s := string(data)
	return strings.Contains(s, "<<<<<<<") || strings.Contains(s, "=======") || strings.Contains(s, ">>>>>>>")
}

// finishResolve transitions a drained paused apply to the clean path
// (spec.md §4.7 step 6), writing every file the buffer accumulated —
// both the ones the original run merged cleanly and the ones the user
// just resolved — and reconstructing the applied-ref bookkeeping from
// the layer config the paused state recorded.
func finishResolve(store *objstore.Store, projectDir string, paused *workspace.PausedState, buffer *workspace.PausedBuffer) (Result, error) {
	ctx := layer.Context{
		Mode:    paused.LayerConfig["mode"],
		Scope:   paused.LayerConfig["scope"],
		Project: paused.LayerConfig["project"],
	}

	files := make(map[string]string, len(buffer.Files))
	var written []string
	for path, oid := range buffer.Files {
		data, err := store.FindBlob(oid)
		if err != nil {
			return Result{}, err
		}
		full := filepath.Join(projectDir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return Result{}, jinerr.Wrap(jinerr.KindIO, "create workspace directory for "+path, err)
		}
		tmp := full + ".jin-tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return Result{}, jinerr.Wrap(jinerr.KindIO, "write workspace file "+path, err)
		}
		if err := os.Rename(tmp, full); err != nil {
			os.Remove(tmp)
			return Result{}, jinerr.Wrap(jinerr.KindIO, "rename workspace file "+path+" into place", err)
		}
		files[path] = workspace.ContentHash(data)
		written = append(written, path)
	}
	sort.Strings(written)

	var appliedRefs []string
	for _, l := range layer.ApplicableLayers(ctx) {
		refPath, err := layer.RefPath(l, ctx)
		if err != nil {
			continue
		}
		if store.RefExists(refPath) {
			appliedRefs = append(appliedRefs, refPath)
		}
	}

	meta := &workspace.Metadata{Timestamp: time.Now(), AppliedLayers: appliedRefs, Files: files}
	if err := workspace.SaveMetadata(projectDir, meta); err != nil {
		return Result{}, err
	}
	if err := workspace.RemovePaused(projectDir); err != nil {
		return Result{}, err
	}
	if err := workspace.RemovePausedBuffer(projectDir); err != nil {
		return Result{}, err
	}

	jinlog.Default.Info("apply resumed to a clean state", "files", len(files))
	return Result{AppliedRefs: appliedRefs, FilesWritten: written}, nil
}
