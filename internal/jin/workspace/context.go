// Package workspace implements the per-project ProjectContext, the
// workspace attachment metadata, the paused-apply document, and a
// one-shot external-change scan used to validate attachment (§3, §4.7,
// §4.8).
package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
)

// ContextPath returns the path to the per-project context file.
func ContextPath(projectDir string) string {
	return filepath.Join(projectDir, ".jin", "context")
}

// LoadContext reads the active ProjectContext for a project. A missing
// file is treated as an all-unset context, not an error, mirroring the
// "fresh workspace" local-recovery rule in spec.md §7 for the sibling
// metadata document.
func LoadContext(projectDir string) (layer.Context, error) {
	data, err := os.ReadFile(ContextPath(projectDir))
	if err != nil {
		if os.IsNotExist(err) {
			return layer.Context{}, nil
		}
		return layer.Context{}, jinerr.Wrap(jinerr.KindIO, "read project context", err)
	}
	var ctx layer.Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return layer.Context{}, jinerr.Wrap(jinerr.KindParse, "parse project context", err)
	}
	return ctx, nil
}

// SaveContext writes ctx atomically.
func SaveContext(projectDir string, ctx layer.Context) error {
	path := ContextPath(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "create .jin directory", err)
	}
	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "marshal project context", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "write project context temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "rename project context into place", err)
	}
	return nil
}
