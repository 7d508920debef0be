package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

// PausedBuffer is an implementation-internal companion to PausedState:
// it remembers which object-store blob holds the already-merged
// content for every path the apply run resolved cleanly before it hit
// a conflict elsewhere. spec.md §4.7 step 5b forbids writing those
// files to the workspace while paused ("Do NOT write any merged files
// ... do NOT update attachment metadata"), so their bytes have to live
// somewhere else until resolve finishes the run — the content-addressed
// store is the natural place, since the bytes are already objects.
type PausedBuffer struct {
	Files map[string]objstore.OID `json:"files"`
}

func bufferPath(projectDir string) string {
	return filepath.Join(projectDir, ".jin", ".paused_apply_buffer.json")
}

// SavePausedBuffer writes buf atomically.
func SavePausedBuffer(projectDir string, buf *PausedBuffer) error {
	path := bufferPath(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "create .jin directory", err)
	}
	data, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "marshal paused apply buffer", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "write paused apply buffer temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "rename paused apply buffer into place", err)
	}
	return nil
}

// LoadPausedBuffer reads the buffer, if present.
func LoadPausedBuffer(projectDir string) (*PausedBuffer, error) {
	data, err := os.ReadFile(bufferPath(projectDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &PausedBuffer{Files: map[string]objstore.OID{}}, nil
		}
		return nil, jinerr.Wrap(jinerr.KindIO, "read paused apply buffer", err)
	}
	var b PausedBuffer
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, jinerr.Wrap(jinerr.KindParse, "parse paused apply buffer", err)
	}
	if b.Files == nil {
		b.Files = map[string]objstore.OID{}
	}
	return &b, nil
}

// RemovePausedBuffer deletes the buffer file, if present.
func RemovePausedBuffer(projectDir string) error {
	if err := os.Remove(bufferPath(projectDir)); err != nil && !os.IsNotExist(err) {
		return jinerr.Wrap(jinerr.KindIO, "remove paused apply buffer", err)
	}
	return nil
}
