package apply

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

func newTestStore(t *testing.T) *objstore.Store {
	t.Helper()
	s := objstore.Open(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

// commitLayerFiles writes files (path -> content) as a single tree and
// commit, and advances l's ref to it directly — bypassing the staging
// and commit pipelines, which apply tests don't need to exercise.
func commitLayerFiles(t *testing.T, s *objstore.Store, l layer.Layer, ctx layer.Context, files map[string]string) {
	t.Helper()
	var pathOIDs []objstore.PathOID
	for path, content := range files {
		oid, err := s.CreateBlob([]byte(content))
		if err != nil {
			t.Fatalf("CreateBlob: %v", err)
		}
		pathOIDs = append(pathOIDs, objstore.PathOID{Path: path, OID: oid, Mode: objstore.ModeRegular})
	}
	var treeOID objstore.OID
	var err error
	if len(pathOIDs) == 0 {
		treeOID, err = s.CreateTree(nil)
	} else {
		treeOID, err = s.CreateTreeFromPaths(pathOIDs)
	}
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	author := objstore.Signature{Name: "t", Email: "t@example.com"}
	commitOID, err := s.CreateCommit(treeOID, nil, author, author, "test")
	if err != nil {
		t.Fatalf("CreateCommit: %v", err)
	}
	refPath, err := layer.RefPath(l, ctx)
	if err != nil {
		t.Fatalf("RefPath: %v", err)
	}
	if err := s.SetRef(refPath, commitOID, "test"); err != nil {
		t.Fatalf("SetRef: %v", err)
	}
}

func TestRunSingleLayerWritesFilesCleanly(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{"config.json": `{"a":1}`})

	result, err := Run(s, projectDir, ctx, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Paused {
		t.Fatal("Run paused unexpectedly")
	}
	data, err := os.ReadFile(filepath.Join(projectDir, "config.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("config.json = %q, want %q", data, `{"a":1}`)
	}
}

func TestRunStructuredMergeAcrossTwoLayers(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{Mode: "dev"}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{"config.json": `{"port":8080,"debug":false}`})
	commitLayerFiles(t, s, layer.ModeBase, ctx, map[string]string{"config.json": `{"port":9090}`})

	result, err := Run(s, projectDir, ctx, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Paused {
		t.Fatal("Run paused on a clean structured merge")
	}
	data, err := os.ReadFile(filepath.Join(projectDir, "config.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"port": 9090`) {
		t.Errorf("config.json = %s, want port overridden to 9090", data)
	}
}

func TestRunTextConflictPausesWithTwoLayers(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{"README.md": "original\n"})
	commitLayerFiles(t, s, layer.UserLocal, ctx, map[string]string{"README.md": "changed\n"})

	result, err := Run(s, projectDir, ctx, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Paused {
		t.Fatal("expected Run to pause on a two-layer text conflict")
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0] != "README.md" {
		t.Errorf("Conflicts = %v, want [README.md]", result.Conflicts)
	}
	if _, err := os.Stat(filepath.Join(projectDir, "README.md.jinmerge")); err != nil {
		t.Errorf(".jinmerge file not written: %v", err)
	}
}

func TestRunThreeLayerDisjointTextEditsResolvesWithoutPausing(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{"README.md": "line1\nline2\nline3\n"})
	commitLayerFiles(t, s, layer.ScopeBase, layer.Context{Scope: "team"}, map[string]string{"README.md": "line1 changed\nline2\nline3\n"})

	ctxFull := layer.Context{Scope: "team"}
	commitLayerFiles(t, s, layer.UserLocal, ctxFull, map[string]string{"README.md": "line1\nline2\nline3 changed\n"})

	result, err := Run(s, projectDir, ctxFull, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Paused {
		t.Fatalf("expected disjoint 3-layer edits to resolve cleanly, conflicts: %v", result.Conflicts)
	}
	data, err := os.ReadFile(filepath.Join(projectDir, "README.md"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "line1 changed\nline2\nline3 changed\n"
	if string(data) != want {
		t.Errorf("README.md = %q, want %q", data, want)
	}
}

func TestRunThreeLayerOverlappingTextEditsStillPauses(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctxFull := layer.Context{Scope: "team"}
	commitLayerFiles(t, s, layer.GlobalBase, ctxFull, map[string]string{"README.md": "line1\n"})
	commitLayerFiles(t, s, layer.ScopeBase, ctxFull, map[string]string{"README.md": "ours version\n"})
	commitLayerFiles(t, s, layer.UserLocal, ctxFull, map[string]string{"README.md": "theirs version\n"})

	result, err := Run(s, projectDir, ctxFull, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Paused {
		t.Fatal("expected overlapping 3-layer text edits to still pause")
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0] != "README.md" {
		t.Errorf("Conflicts = %v, want [README.md]", result.Conflicts)
	}
}

func TestRunRefusesWhileAlreadyPaused(t *testing.T) {
	s := newTestStore(t)
	projectDir := t.TempDir()
	ctx := layer.Context{}
	commitLayerFiles(t, s, layer.GlobalBase, ctx, map[string]string{"README.md": "original\n"})
	commitLayerFiles(t, s, layer.UserLocal, ctx, map[string]string{"README.md": "changed\n"})

	if _, err := Run(s, projectDir, ctx, Options{}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := Run(s, projectDir, ctx, Options{}); err == nil {
		t.Fatal("expected second Run to refuse while paused")
	}
}
