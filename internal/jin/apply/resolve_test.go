package apply

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

func TestResolveWithoutPausedStateFails(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	if _, err := Resolve(s, projectDir, "README.md"); err == nil {
		t.Fatal("expected error resolving with no paused apply")
	}
}

func TestResolveUnknownPathFails(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{"README.md": "original\n"})
	commitLayerFiles(t, s, layer.UserLocal, ctx, map[string]string{"README.md": "changed\n"})
	if _, err := Run(s, projectDir, ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := Resolve(s, projectDir, "not-a-conflict.md"); err == nil {
		t.Fatal("expected error resolving a path with no outstanding conflict")
	}
}

func TestResolveRejectsUnresolvedMarkers(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{"README.md": "original\n"})
	commitLayerFiles(t, s, layer.UserLocal, ctx, map[string]string{"README.md": "changed\n"})
	if _, err := Run(s, projectDir, ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := Resolve(s, projectDir, "README.md"); err == nil {
		t.Fatal("expected error resolving a .jinmerge file that still has conflict markers")
	}
}

func TestResolveSingleConflictTransitionsToClean(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{
		"README.md":   "original\n",
		"config.json": `{"a":1}`,
	})
	commitLayerFiles(t, s, layer.UserLocal, ctx, map[string]string{
		"README.md":   "changed\n",
		"config.json": `{"b":2}`,
	})
	if _, err := Run(s, projectDir, ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	jinmergePath := filepath.Join(projectDir, "README.md.jinmerge")
	if err := os.WriteFile(jinmergePath, []byte("resolved by hand\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result, err := Resolve(s, projectDir, "README.md")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Paused {
		t.Fatal("expected Resolve to drain the only conflict and finish cleanly")
	}

	data, err := os.ReadFile(filepath.Join(projectDir, "README.md"))
	if err != nil {
		t.Fatalf("ReadFile README.md: %v", err)
	}
	if string(data) != "resolved by hand\n" {
		t.Errorf("README.md = %q, want resolved content", data)
	}
	if _, err := os.Stat(jinmergePath); !os.IsNotExist(err) {
		t.Error(".jinmerge file should be removed after resolve")
	}
	if _, err := os.Stat(filepath.Join(projectDir, "config.json")); err != nil {
		t.Errorf("config.json should be written once the apply drains: %v", err)
	}
	if workspace.IsPaused(projectDir) {
		t.Error("IsPaused = true after draining the only conflict")
	}
}

func TestResolvePartialLeavesPaused(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{
		"a.md": "a\n",
		"b.md": "b\n",
	})
	commitLayerFiles(t, s, layer.UserLocal, ctx, map[string]string{
		"a.md": "a changed\n",
		"b.md": "b changed\n",
	})
	result, err := Run(s, projectDir, ctx, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Conflicts) != 2 {
		t.Fatalf("Conflicts = %v, want 2 entries", result.Conflicts)
	}

	if err := os.WriteFile(filepath.Join(projectDir, "a.md.jinmerge"), []byte("a resolved\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	resolveResult, err := Resolve(s, projectDir, "a.md")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !resolveResult.Paused {
		t.Fatal("expected apply to remain paused with b.md still unresolved")
	}
	if len(resolveResult.Conflicts) != 1 || resolveResult.Conflicts[0] != "b.md" {
		t.Errorf("remaining Conflicts = %v, want [b.md]", resolveResult.Conflicts)
	}
	if !workspace.IsPaused(projectDir) {
		t.Error("IsPaused = false with one conflict still outstanding")
	}
}
