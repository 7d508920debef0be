package workspace

import (
	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

// DetachedDetails carries the extra information a DetachedWorkspace
// error surfaces to the user (spec.md §4.7).
type DetachedDetails struct {
	WorkspaceCommit  string
	ExpectedLayerRef string
	Details          string
	RecoveryHint     string
}

const recoveryHint = "run 'jin apply' to restore the workspace, or 'jin repair --check' to diagnose"

// ValidateWorkspaceAttached implements spec.md §4.7's
// validate_workspace_attached: it returns nil if any of
//
//   - no workspace metadata exists (fresh workspace), or
//   - every recorded applied ref still exists, every recorded path
//     still matches its recorded content hash, and ctx is still valid
//     for the stored layer set.
//
// Otherwise it returns a *jinerr.Error of KindDetachedWorkspace
// carrying a DetachedDetails-shaped message and the fixed recovery
// hint. This gates every destructive operation (reset --hard,
// apply --force).
func ValidateWorkspaceAttached(store *objstore.Store, projectDir string, ctx layer.Context) error {
	meta, err := LoadMetadata(projectDir)
	if err != nil {
		return err
	}
	if meta == nil {
		return nil // fresh workspace
	}

	for _, refPath := range meta.AppliedLayers {
		if !store.RefExists(refPath) {
			return detached(refPath, "recorded layer ref no longer exists")
		}
	}

	changes, err := ScanForExternalChanges(projectDir, meta)
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "scan workspace for attachment validation", err)
	}
	if len(changes) > 0 {
		return detached("", "workspace files diverge from the last recorded apply")
	}

	if !contextStillValid(meta, ctx) {
		return detached("", "active context no longer matches the layer set recorded at last apply")
	}

	return nil
}

func detached(expectedRef, details string) error {
	e := jinerr.Newf(jinerr.KindDetachedWorkspace, "workspace is detached: %s", details)
	return e.WithHint(recoveryHint + "; expected layer ref: " + expectedRef)
}

// contextStillValid checks that every layer recorded as applied is
// still applicable under ctx — i.e. the user hasn't unset a mode/scope
// the last apply depended on without re-running apply.
func contextStillValid(meta *Metadata, ctx layer.Context) bool {
	applicable := map[string]bool{}
	for _, l := range layer.ApplicableLayers(ctx) {
		if path, err := layer.RefPath(l, ctx); err == nil {
			applicable[path] = true
		}
	}
	for _, refPath := range meta.AppliedLayers {
		if !applicable[refPath] {
			return false
		}
	}
	return true
}
