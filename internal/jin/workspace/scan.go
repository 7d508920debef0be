package workspace

import (
	"os"
	"path/filepath"
)

// EventOp classifies how a workspace file differs from the last
// recorded apply. Vocabulary adapted from the teacher's continuous
// fsnotify-driven FileWatcher (internal/turso/daemon/watcher.go in the
// example corpus), but ScanForExternalChanges below is a single pass
// over the recorded paths, not a background watcher: spec.md §5 mandates a
// single-threaded, synchronous engine with no internal task scheduler,
// and §1 lists a daemon as an explicit non-goal.
type EventOp int

const (
	OpCreate EventOp = iota
	OpModify
	OpDelete
)

func (op EventOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FileChange is one discrepancy found between the workspace and the
// last recorded apply.
type FileChange struct {
	Path string
	Op   EventOp
}

// ScanForExternalChanges reads every path recorded in metadata.Files
// once, relative to projectDir, and compares its content hash against
// the recorded one, returning every
// discrepancy found: a file present in metadata but now missing
// (OpDelete), a file whose hash no longer matches (OpModify), or
// nothing for files that still match. It does not detect files newly
// created outside Jin's tracked set — OpCreate is part of the
// vocabulary for future staging-aware scans but unused by attachment
// validation, which only cares about recorded paths.
func ScanForExternalChanges(projectDir string, metadata *Metadata) ([]FileChange, error) {
	if metadata == nil {
		return nil, nil
	}
	var changes []FileChange
	for path, wantHash := range metadata.Files {
		full := filepath.Join(projectDir, path)
		data, err := os.ReadFile(full)
		if err != nil {
			if os.IsNotExist(err) {
				changes = append(changes, FileChange{Path: path, Op: OpDelete})
				continue
			}
			return nil, err
		}
		if ContentHash(data) != wantHash {
			changes = append(changes, FileChange{Path: path, Op: OpModify})
		}
	}
	return changes, nil
}
