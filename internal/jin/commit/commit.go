// Package commit implements the commit pipeline (§4.6, C6): group
// staging by layer, build one tree per layer, create one commit per
// layer, and hand the (layer -> commit oid) set to the transaction
// manager which atomically advances all references.
package commit

import (
	"time"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/objstore"
	"github.com/jinvcs/jin/internal/jin/staging"
	"github.com/jinvcs/jin/internal/jin/txn"
)

// Result is the per-layer outcome of a commit pipeline run.
type Result struct {
	LayerCommits map[layer.Layer]objstore.OID
}

// Run executes the commit pipeline described in spec.md §4.6 against
// idx, persisting ref moves for ctx's applicable layers through store.
// On success the staging index is cleared and saved; on any failure no
// ref is advanced and idx is left untouched (spec.md §8 property 1).
func Run(store *objstore.Store, idx *staging.Index, ctx layer.Context, author objstore.Signature, message string) (Result, error) {
	if idx.Len() == 0 {
		return Result{}, jinerr.Wrap(jinerr.KindOther, "staging index is empty", jinerr.ErrNothingToCommit)
	}

	affected := idx.AffectedLayers()
	for _, l := range affected {
		if !layer.Applicable(l, ctx) {
			return Result{}, jinerr.Newf(jinerr.KindConfig, "staged layer %s is not applicable under the active context", l)
		}
	}

	layerCommits := make(map[layer.Layer]objstore.OID, len(affected))
	layerRefs := make(map[layer.Layer]string, len(affected))
	now := author.When
	if now.IsZero() {
		now = time.Now()
	}

	for _, l := range affected {
		entries := idx.EntriesForLayer(l)

		var files []objstore.PathOID
		for _, e := range entries {
			if e.Op == staging.OpDelete {
				continue
			}
			files = append(files, objstore.PathOID{Path: e.Path, OID: e.ContentOID, Mode: e.Mode})
		}

		var treeOID objstore.OID
		var err error
		if len(files) == 0 {
			treeOID, err = store.CreateTree(nil)
		} else {
			treeOID, err = store.CreateTreeFromPaths(files)
		}
		if err != nil {
			return Result{}, err
		}

		refPath, err := layer.RefPath(l, ctx)
		if err != nil {
			return Result{}, err
		}
		layerRefs[l] = refPath

		var parents []objstore.OID
		if store.RefExists(refPath) {
			parentOID, err := store.ResolveRef(refPath)
			if err != nil {
				return Result{}, err
			}
			parents = []objstore.OID{parentOID}
		}

		committer := author
		committer.When = now
		commitOID, err := store.CreateCommit(treeOID, parents, author, committer, message)
		if err != nil {
			return Result{}, err
		}
		layerCommits[l] = commitOID
	}

	if err := txn.Recover(store); err != nil {
		return Result{}, err
	}
	tx, err := txn.Begin(store, message)
	if err != nil {
		return Result{}, err
	}
	for _, l := range affected {
		if err := tx.AddUpdate(l, layerRefs[l], layerCommits[l]); err != nil {
			tx.Abort()
			return Result{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}

	idx.Clear()
	if err := idx.Save(); err != nil {
		return Result{}, err
	}

	return Result{LayerCommits: layerCommits}, nil
}
