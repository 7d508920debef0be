package workspace

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jinvcs/jin/internal/jin/jinerr"
)

// PausedState is the durable document persisted when apply encounters
// conflicts. Its presence on disk IS the definition of the paused
// state (spec.md §3).
type PausedState struct {
	Timestamp     time.Time         `yaml:"timestamp"`
	LayerConfig   map[string]string `yaml:"layer_config"`
	ConflictFiles []string          `yaml:"conflict_files"`
	AppliedFiles  []string          `yaml:"applied_files"`
	ConflictCount int               `yaml:"conflict_count"`
}

// PausedPath returns the path to the paused-apply document.
func PausedPath(projectDir string) string {
	return filepath.Join(projectDir, ".jin", ".paused_apply.yaml")
}

// IsPaused reports whether a PausedState document currently exists.
func IsPaused(projectDir string) bool {
	_, err := os.Stat(PausedPath(projectDir))
	return err == nil
}

// LoadPaused reads the paused-apply document, if any.
func LoadPaused(projectDir string) (*PausedState, error) {
	data, err := os.ReadFile(PausedPath(projectDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, jinerr.Wrap(jinerr.KindIO, "read paused apply state", err)
	}
	var p PausedState
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, jinerr.Wrap(jinerr.KindParse, "parse paused apply state", err)
	}
	return &p, nil
}

// SavePaused writes p atomically.
func SavePaused(projectDir string, p *PausedState) error {
	path := PausedPath(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "create .jin directory", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "marshal paused apply state", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "write paused apply state temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "rename paused apply state into place", err)
	}
	return nil
}

// RemovePaused deletes the paused-apply document, if present. Called
// once the conflict set empties out during resolve (spec.md §4.7
// "Resume").
func RemovePaused(projectDir string) error {
	if err := os.Remove(PausedPath(projectDir)); err != nil && !os.IsNotExist(err) {
		return jinerr.Wrap(jinerr.KindIO, "remove paused apply state", err)
	}
	return nil
}
