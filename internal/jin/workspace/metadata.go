package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

// Metadata is the record written after every successful apply: it is
// the sole source of truth for the "attached" state (spec.md §3).
type Metadata struct {
	Timestamp     time.Time         `json:"timestamp"`
	AppliedLayers []string          `json:"applied_layers"`
	Files         map[string]string `json:"files"` // path -> content hash
}

// MetadataPath returns the path to the workspace metadata file.
func MetadataPath(projectDir string) string {
	return filepath.Join(projectDir, ".jin", "workspace", "last_applied.json")
}

// LoadMetadata reads the workspace metadata for a project. A missing
// file returns (nil, nil): per spec.md §7, "a missing workspace
// metadata file is treated as a fresh workspace, not an error" — the
// only error kind recovered locally rather than propagated.
func LoadMetadata(projectDir string) (*Metadata, error) {
	data, err := os.ReadFile(MetadataPath(projectDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, jinerr.Wrap(jinerr.KindIO, "read workspace metadata", err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, jinerr.Wrap(jinerr.KindParse, "parse workspace metadata", err)
	}
	return &m, nil
}

// SaveMetadata writes m atomically.
func SaveMetadata(projectDir string, m *Metadata) error {
	path := MetadataPath(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "create workspace metadata directory", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "marshal workspace metadata", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "write workspace metadata temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "rename workspace metadata into place", err)
	}
	return nil
}

// ContentHash hashes file bytes exactly the way C1 hashes blob content,
// so that Metadata.Files[f] is directly comparable to a freshly
// computed digest of the workspace file (the attachment invariant,
// spec.md §3) without re-reading the object store.
func ContentHash(data []byte) string {
	return string(objstore.BlobOID(data))
}

// RemoveMetadata deletes the workspace metadata file, if present.
func RemoveMetadata(projectDir string) error {
	if err := os.Remove(MetadataPath(projectDir)); err != nil && !os.IsNotExist(err) {
		return jinerr.Wrap(jinerr.KindIO, "remove workspace metadata", err)
	}
	return nil
}
